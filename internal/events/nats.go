package events

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/nats.go"
)

type NATSPublisher struct {
	conn    *nats.Conn
	subject string
	logger  *slog.Logger
}

func NewNATSPublisher(url string, subject string, logger *slog.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url, nats.Name("student-records"))
	if err != nil {
		return nil, err
	}

	logger.Info("NATS publisher initialized", "url", url, "subject", subject)

	return &NATSPublisher{
		conn:    nc,
		subject: subject,
		logger:  logger,
	}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := &nats.Msg{
		Subject: p.subject,
		Data:    data,
		Header:  nats.Header{},
	}
	msg.Header.Set("Event-Type", string(event.Type))

	if err := p.conn.PublishMsg(msg); err != nil {
		return err
	}

	p.logger.DebugContext(ctx, "event sent to NATS", "subject", p.subject, "type", event.Type)
	return nil
}

func (p *NATSPublisher) Close() error {
	return p.conn.Drain()
}
