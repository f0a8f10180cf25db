package ws

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/contrib/websocket"

	"github.com/ramgerassy/ace-ai-sub000/internal/telemetry"
)

// Room hub for generation progress. A client joins "quiz.gen.<request-id>"
// and receives the retry loop's events while its quiz is being generated.

var (
	mu    sync.RWMutex
	rooms = map[string]map[*websocket.Conn]struct{}{}
)

type Action string

const (
	ActionJoin  Action = "join"
	ActionLeave Action = "leave"
)

const RoomGeneration = "quiz.gen"

type Event string

const (
	EventAttemptStarted   Event = "gen.event.attempt_started"
	EventAttemptFailed    Event = "gen.event.attempt_failed"
	EventAttemptRecovered Event = "gen.event.attempt_recovered"
	EventStrategyFallback Event = "gen.event.strategy_fallback"
	EventCompleted        Event = "gen.event.completed"
	EventPartial          Event = "gen.event.partial"
	EventFailed           Event = "gen.event.failed"
)

type PayloadEvent struct {
	Event Event `json:"event"`
	Data  any   `json:"data,omitempty"`
}

type ClientMessage struct {
	Action Action `json:"action"`
	Room   string `json:"room"`
}

func HandleWS(c *websocket.Conn) {
	tlog := telemetry.L().With().Str("module", "ws").Logger()
	tlog.Info().Msg("ws_connected")
	defer func() {
		mu.Lock()
		for room := range rooms {
			delete(rooms[room], c)
		}
		mu.Unlock()
		_ = c.Close()
	}()

	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			break
		}

		var cm ClientMessage
		if err := json.Unmarshal(msg, &cm); err != nil {
			continue
		}

		switch cm.Action {
		case ActionJoin:
			joinRoom(c, cm.Room)
		case ActionLeave:
			leaveRoom(c, cm.Room)
		}
	}
}

func joinRoom(c *websocket.Conn, room string) {
	if room == "" {
		return
	}
	mu.Lock()
	if rooms[room] == nil {
		rooms[room] = map[*websocket.Conn]struct{}{}
	}
	rooms[room][c] = struct{}{}
	mu.Unlock()
}

func leaveRoom(c *websocket.Conn, room string) {
	if room == "" {
		return
	}
	mu.Lock()
	delete(rooms[room], c)
	mu.Unlock()
}

func GenerationRoom(requestID string) string {
	return RoomGeneration + "." + requestID
}

func HasSubscribers(room string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return len(rooms[room]) > 0
}

// Broadcast sends an event to every connection in the room.
func Broadcast(room string, ev Event, data any) {
	pl := PayloadEvent{Event: ev, Data: data}

	mu.RLock()
	conns := rooms[room]
	mu.RUnlock()

	for c := range conns {
		_ = c.WriteJSON(pl)
	}
}
