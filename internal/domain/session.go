package domain

import "time"

// SessionStatus es el estado de una partida. Solo transiciona Pending -> Resolved | Expired.
type SessionStatus string

const (
	StatusPending  SessionStatus = "pending"
	StatusResolved SessionStatus = "resolved"
	StatusExpired  SessionStatus = "expired"
)

func (s SessionStatus) Concluded() bool {
	return s == StatusResolved || s == StatusExpired
}

// Session representa una partida entre exactamente dos participantes.
type Session struct {
	ID           string          `json:"id"`
	Participants [2]string       `json:"participants"`
	Roles        map[string]Role `json:"roles,omitempty"`
	Combination  RoleCombination `json:"-"`
	Status       SessionStatus   `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
	ExpiresAt    time.Time       `json:"expires_at"`
	Resolution   *Resolution     `json:"resolution,omitempty"`
}

// Resolution es el registro inmutable de cómo terminó una partida.
// Winners vacío significa "sin ganador"; con ambos participantes, "ganan los dos".
// ActedAt es la hora que informó el adaptador; ResolvedAt la fija el servidor.
type Resolution struct {
	SessionID  string        `json:"session_id"`
	Status     SessionStatus `json:"status"`
	ActorID    string        `json:"actor_id,omitempty"`
	Action     Action        `json:"action,omitempty"`
	Winners    []string      `json:"winners"`
	Rationale  string        `json:"rationale"`
	ActedAt    time.Time     `json:"acted_at,omitempty"`
	ResolvedAt time.Time     `json:"resolved_at"`
}

func (s Session) HasParticipant(playerID string) bool {
	return playerID != "" && (s.Participants[0] == playerID || s.Participants[1] == playerID)
}

// Opponent devuelve el otro participante, o "" si playerID no juega esta partida.
func (s Session) Opponent(playerID string) string {
	switch playerID {
	case s.Participants[0]:
		return s.Participants[1]
	case s.Participants[1]:
		return s.Participants[0]
	default:
		return ""
	}
}

// Clone copia los mapas y slices para que el llamador no comparta estado con el store.
func (s Session) Clone() Session {
	out := s
	if s.Roles != nil {
		out.Roles = make(map[string]Role, len(s.Roles))
		for k, v := range s.Roles {
			out.Roles[k] = v
		}
	}
	if s.Resolution != nil {
		res := s.Resolution.Clone()
		out.Resolution = &res
	}
	return out
}

// Public oculta los roles mientras la partida sigue pendiente.
func (s Session) Public() Session {
	out := s.Clone()
	if !out.Status.Concluded() {
		out.Roles = nil
	}
	return out
}

func (r Resolution) Clone() Resolution {
	out := r
	out.Winners = append([]string{}, r.Winners...)
	return out
}

func (r Resolution) HasWinner(playerID string) bool {
	for _, w := range r.Winners {
		if w == playerID {
			return true
		}
	}
	return false
}
