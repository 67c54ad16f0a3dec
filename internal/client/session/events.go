package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/maintkeeper/internal/logging"
	"github.com/nats-io/nats.go"
)

type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
)

// AuthEvent is an external change of the provider session.
type AuthEvent struct {
	Type   EventType `json:"type"`
	UserID string    `json:"user_id,omitempty"`
}

// DecodeEvent parses a JSON event. Unknown types are rejected.
func DecodeEvent(data []byte) (AuthEvent, error) {
	var ev AuthEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return AuthEvent{}, fmt.Errorf("decode session event: %w", err)
	}
	switch ev.Type {
	case EventSignedIn:
		if ev.UserID == "" {
			return AuthEvent{}, fmt.Errorf("signed_in event without user_id")
		}
	case EventSignedOut:
	default:
		return AuthEvent{}, fmt.Errorf("unknown session event %q", ev.Type)
	}
	return ev, nil
}

// NATSEventSource delivers session events published on a NATS subject.
type NATSEventSource struct {
	nc      *nats.Conn
	subject string
	log     logging.Logger
}

// ConnectNATS dials url and returns a source reading subject.
func ConnectNATS(url, subject string, log logging.Logger) (*NATSEventSource, error) {
	if log == nil {
		log = logging.Nop()
	}
	nc, err := nats.Connect(url,
		nats.Name("maintkeeper-cli"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return &NATSEventSource{nc: nc, subject: subject, log: log}, nil
}

// Events subscribes to the subject. The subscription ends with ctx; the
// channel is never closed.
func (s *NATSEventSource) Events(ctx context.Context) (<-chan AuthEvent, error) {
	ch := make(chan AuthEvent, 16)
	sub, err := s.nc.Subscribe(s.subject, func(msg *nats.Msg) {
		s.deliver(ctx, msg, ch)
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", s.subject, err)
	}

	go func() {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil {
			s.log.Warn(context.Background(), "failed to unsubscribe", "subject", s.subject, "error", err)
		}
	}()
	return ch, nil
}

func (s *NATSEventSource) deliver(ctx context.Context, msg *nats.Msg, ch chan<- AuthEvent) {
	ev, err := DecodeEvent(msg.Data)
	if err != nil {
		s.log.Warn(ctx, "dropping session event", "subject", msg.Subject, "error", err)
		return
	}
	select {
	case ch <- ev:
	case <-ctx.Done():
	}
}

func (s *NATSEventSource) Close() {
	s.nc.Close()
}
