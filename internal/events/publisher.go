package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"distrust-bot/internal/domain"
)

// Publisher envía eventos de partida a un sink externo. Es best-effort: el estado
// de la partida ya está confirmado cuando se publica.
type Publisher interface {
	Publish(ctx context.Context, event domain.GameEvent) error
}

// MultiPublisher reparte cada evento entre varios sinks y junta los errores, cada
// uno con el nombre de su sink. No loguea: eso le toca a quien publica.
type MultiPublisher struct {
	sinks []namedPublisher
}

type namedPublisher struct {
	name string
	pub  Publisher
}

func NewMultiPublisher() *MultiPublisher {
	return &MultiPublisher{}
}

// Add registra un sink. Los nil se ignoran para simplificar el wiring opcional.
func (m *MultiPublisher) Add(name string, pub Publisher) *MultiPublisher {
	if pub != nil {
		m.sinks = append(m.sinks, namedPublisher{name: name, pub: pub})
	}
	return m
}

func (m *MultiPublisher) Len() int {
	return len(m.sinks)
}

func (m *MultiPublisher) Publish(ctx context.Context, event domain.GameEvent) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.pub.Publish(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	return errors.Join(errs...)
}

type nopPublisher struct{}

func NewNopPublisher() Publisher { return nopPublisher{} }

func (nopPublisher) Publish(context.Context, domain.GameEvent) error { return nil }

func encode(event domain.GameEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// PublisherFunc adapta una función a Publisher.
type PublisherFunc func(ctx context.Context, event domain.GameEvent) error

func (f PublisherFunc) Publish(ctx context.Context, event domain.GameEvent) error {
	return f(ctx, event)
}
