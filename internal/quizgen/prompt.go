package quizgen

import (
	"fmt"
	"strings"
)

// instruction shared by every attempt: the exact wire shape, no markdown.
const jsonInstruction = `Return ONLY a JSON object of the form
{"questions":[{"question":"...","possibleAnswers":["...","...","...","..."],"correctAnswer":[0],"explanation":"...","difficulty":5,"topic":"..."}]}
No Markdown, no code fences, no text before or after the JSON.`

// BuildPrompt renders the prompt for one attempt. Attempt 0 carries the full
// instruction set; every later attempt gets a shorter, blunter prompt, which
// raises the odds of compliant output from a less cooperative model.
func BuildPrompt(req Request, attempt int) string {
	if attempt > 0 {
		return buildSimplePrompt(req)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Generate %d multiple-choice quiz questions about %q.\n", req.Count, req.Subject)
	if len(req.Topics) > 0 {
		b.WriteString("Focus on these topics: ")
		b.WriteString(strings.Join(req.Topics, ", "))
		b.WriteString(".\n")
	}
	fmt.Fprintf(&b, "Difficulty level: %s.\n\n", req.Level)

	b.WriteString("Requirements:\n")
	b.WriteString("- Each question must have exactly 4 answer options\n")
	b.WriteString("- correctAnswer is an array of 0-based option indexes; use more than one index only for multi-select questions\n")
	b.WriteString("- Wrong options should be plausible but clearly incorrect\n")
	b.WriteString("- Questions should test understanding, not just recall\n")
	b.WriteString("- Do not give the answer away in the question text\n")
	b.WriteString("- Include a brief explanation and a difficulty score from 1 to 10 per question\n\n")
	b.WriteString(jsonInstruction)
	return b.String()
}

func buildSimplePrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write %d %s multiple-choice questions about %q", req.Count, req.Level, req.Subject)
	if len(req.Topics) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(req.Topics, ", "))
	}
	b.WriteString(". Each has 4 options and at least one correct index.\n")
	b.WriteString(jsonInstruction)
	return b.String()
}
