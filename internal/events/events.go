// Package events publishes form lifecycle notifications to NATS so other
// parts of the platform (dashboards, mailers) can react without polling.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"clubforms-backend/internal/domain"
	"clubforms-backend/internal/logger"
)

const (
	TopicFormCreated        = "form.created"
	TopicFormClosed         = "form.closed"
	TopicSubmissionAccepted = "submission.accepted"
)

// FormEvent is the payload of form.created and form.closed.
type FormEvent struct {
	FormID  int64        `json:"form_id"`
	Owner   domain.Owner `json:"owner"`
	Version int32        `json:"version"`
	At      time.Time    `json:"at"`
}

// SubmissionEvent is the payload of submission.accepted. Field values are
// not included.
type SubmissionEvent struct {
	FormID       int64     `json:"form_id"`
	SubmissionID int64     `json:"submission_id"`
	FormVersion  int32     `json:"form_version"`
	Count        int       `json:"count"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
	Close()
}

type natsPublisher struct {
	nc     *nats.Conn
	prefix string
}

// NewNATSPublisher connects to url. Subjects are "<prefix>.<topic>".
func NewNATSPublisher(url, prefix string) (Publisher, error) {
	log := logger.WithService("nats")
	nc, err := nats.Connect(url,
		nats.Name("clubforms-backend"),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("NATS disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Info("NATS reconnected", "url", url)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &natsPublisher{nc: nc, prefix: prefix}, nil
}

func (p *natsPublisher) Subject(topic string) string {
	return p.prefix + "." + topic
}

func (p *natsPublisher) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s: %w", topic, err)
	}
	subject := p.Subject(topic)
	logger.ExternalServiceCall("nats", "publish", "subject", subject)
	err = p.nc.Publish(subject, data)
	logger.ExternalServiceResult("nats", "publish", err, "subject", subject)
	return err
}

func (p *natsPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}

type noopPublisher struct{}

// NewNoopPublisher is used when no NATS url is configured.
func NewNoopPublisher() Publisher { return noopPublisher{} }

func (noopPublisher) Publish(context.Context, string, any) error { return nil }
func (noopPublisher) Close()                                     {}
