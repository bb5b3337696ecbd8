package events

import (
	"context"
	"strings"

	"github.com/nats-io/nats.go"

	"distrust-bot/internal/domain"
)

type natsConn interface {
	Publish(subject string, data []byte) error
}

type natsPublisher struct {
	conn    natsConn
	subject string
}

// NewNATSPublisher publica en {subject}.{tipo}, p. ej. distrust.events.session.resolved.
func NewNATSPublisher(conn *nats.Conn, subject string) Publisher {
	if conn == nil {
		return nil
	}
	subject = strings.Trim(strings.TrimSpace(subject), ".")
	if subject == "" {
		subject = "distrust.events"
	}
	return &natsPublisher{conn: conn, subject: subject}
}

func (p *natsPublisher) Publish(ctx context.Context, event domain.GameEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encode(event)
	if err != nil {
		return err
	}
	return p.conn.Publish(p.subject+"."+event.Type, data)
}
