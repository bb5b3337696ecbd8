package domain

import "errors"

// Errores recuperables que el adaptador muestra al usuario como mensaje.
var (
	ErrAlreadyInSession  = errors.New("player already in a pending session")
	ErrSessionNotFound   = errors.New("session not found")
	ErrAlreadyResolved   = errors.New("session already resolved")
	ErrNotAParticipant   = errors.New("player is not a participant")
	ErrInvalidSelfTarget = errors.New("cannot start a session with yourself")
	ErrDeliveryFailed    = errors.New("role reveal could not be delivered")
	ErrInvalidAction     = errors.New("invalid action")
	ErrInvalidInput      = errors.New("invalid input")
	ErrNoCommand         = errors.New("message carries no game command")
)

// ErrRateLimited indica que el jugador inició demasiadas partidas en poco tiempo. Solo
// aparece con el límite de inicios activado.
var ErrRateLimited = errors.New("too many sessions started, slow down")
