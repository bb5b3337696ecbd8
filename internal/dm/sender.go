package dm

import (
	"context"
	"errors"

	"distrust-bot/internal/domain"
)

// Sender entrega a un participante, por mensaje privado, el rol que le tocó.
type Sender interface {
	SendReveal(ctx context.Context, reveal domain.Reveal) error
}

type disabledSender struct {
	reason string
}

// NewDisabledSender rechaza todas las entregas. Se usa cuando no hay canal de DM configurado.
func NewDisabledSender(reason string) Sender {
	return &disabledSender{reason: reason}
}

func (s *disabledSender) SendReveal(_ context.Context, _ domain.Reveal) error {
	if s.reason == "" {
		return errors.New("dm sender disabled")
	}
	return errors.New(s.reason)
}

// SenderFunc adapta una función a Sender.
type SenderFunc func(ctx context.Context, reveal domain.Reveal) error

func (f SenderFunc) SendReveal(ctx context.Context, reveal domain.Reveal) error {
	return f(ctx, reveal)
}
