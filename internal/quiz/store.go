package quiz

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/ramgerassy/ace-ai-sub000/internal/quizgen"
)

const (
	StatusComplete = "complete"
	StatusPartial  = "partial"
)

type QuizRow struct {
	ID             int64  `db:"id" json:"-"`
	PublicID       string `db:"public_id" json:"id"`
	Subject        string `db:"subject" json:"subject"`
	Topics         string `db:"topics" json:"-"`
	Level          string `db:"level" json:"level"`
	RequestedCount int    `db:"requested_count" json:"requestedCount"`
	AchievedCount  int    `db:"achieved_count" json:"achievedCount"`
	Status         string `db:"status" json:"status"`
	CreatedAt      string `db:"created_at" json:"createdAt"`
}

type questionRow struct {
	Ordinal        int    `db:"ordinal"`
	QuestionText   string `db:"question_text"`
	Options        string `db:"options"`
	CorrectIndices string `db:"correct_indices"`
	Explanation    string `db:"explanation"`
	Difficulty     int    `db:"difficulty"`
	Topic          string `db:"topic"`
}

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// SaveQuiz persists the quiz header and its questions in one transaction.
func (s *Store) SaveQuiz(ctx context.Context, rec QuizRow, batch quizgen.Batch) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO quizzes (public_id, subject, topics, level, requested_count, achieved_count, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.PublicID, rec.Subject, rec.Topics, rec.Level, rec.RequestedCount, rec.AchievedCount, rec.Status)
	if err != nil {
		return err
	}
	quizID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for _, q := range batch {
		opts, _ := json.Marshal(q.Options)
		correct, _ := json.Marshal(q.CorrectIndices)
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO questions (quiz_id, ordinal, question_text, options, correct_indices, explanation, difficulty, topic)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			quizID, q.Ordinal, q.Text, string(opts), string(correct), q.Explanation, q.Difficulty, q.Topic); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) ListQuizzes(ctx context.Context, limit int) ([]QuizRow, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []QuizRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, public_id, subject, topics, level, requested_count, achieved_count, status, created_at
		FROM quizzes ORDER BY id DESC LIMIT ?`, limit)
	return rows, err
}

func (s *Store) GetQuiz(ctx context.Context, publicID string) (QuizRow, quizgen.Batch, error) {
	var rec QuizRow
	if err := s.db.GetContext(ctx, &rec, `
		SELECT id, public_id, subject, topics, level, requested_count, achieved_count, status, created_at
		FROM quizzes WHERE public_id=?`, publicID); err != nil {
		return QuizRow{}, nil, err
	}

	var qrows []questionRow
	if err := s.db.SelectContext(ctx, &qrows, `
		SELECT ordinal, question_text, options, correct_indices, explanation, difficulty, topic
		FROM questions WHERE quiz_id=? ORDER BY ordinal ASC`, rec.ID); err != nil {
		return QuizRow{}, nil, err
	}

	batch := make(quizgen.Batch, 0, len(qrows))
	for _, r := range qrows {
		q := quizgen.Question{
			Ordinal:     r.Ordinal,
			Text:        r.QuestionText,
			Explanation: r.Explanation,
			Difficulty:  r.Difficulty,
			Topic:       r.Topic,
		}
		_ = json.Unmarshal([]byte(r.Options), &q.Options)
		_ = json.Unmarshal([]byte(r.CorrectIndices), &q.CorrectIndices)
		batch = append(batch, q)
	}
	return rec, batch, nil
}

func joinTopics(topics []string) string {
	return strings.Join(topics, ",")
}

func splitTopics(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
