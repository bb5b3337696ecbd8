package domain

import "time"

// ActionEvent es la jugada normalizada que entrega el adaptador del chat.
type ActionEvent struct {
	SessionID string    `json:"session_id"`
	ActorID   string    `json:"actor_id"`
	Action    Action    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageEvent es un mensaje de texto dirigido al bot. Mentions excluye al propio bot.
type MessageEvent struct {
	AuthorID  string    `json:"author_id"`
	Mentions  []string  `json:"mentions"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Reveal es el mensaje privado con el rol de un solo participante.
type Reveal struct {
	SessionID    string `json:"session_id"`
	PlayerID     string `json:"player_id"`
	Role         Role   `json:"role"`
	Instructions string `json:"instructions"`
}

// ResolutionRender es lo que el adaptador publica en el canal cuando termina la partida.
type ResolutionRender struct {
	SessionID     string          `json:"session_id"`
	Status        SessionStatus   `json:"status"`
	Participants  [2]string       `json:"participants"`
	ActorID       string          `json:"actor_id,omitempty"`
	Action        Action          `json:"action,omitempty"`
	Winners       []string        `json:"winners"`
	RolesRevealed map[string]Role `json:"roles_revealed"`
	Headline      string          `json:"headline"`
}

const (
	EventSessionStarted  = "session.started"
	EventSessionResolved = "session.resolved"
	EventSessionExpired  = "session.expired"
)

// GameEvent es el sobre que se publica hacia los sinks externos (websocket, redis, nats).
type GameEvent struct {
	ID         string            `json:"id"`
	Type       string            `json:"type"`
	SessionID  string            `json:"session_id"`
	OccurredAt time.Time         `json:"occurred_at"`
	Session    *Session          `json:"session,omitempty"`
	Render     *ResolutionRender `json:"render,omitempty"`
}
