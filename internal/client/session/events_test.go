package session

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/maintkeeper/internal/logging"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEvent(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    AuthEvent
		wantErr bool
	}{
		{"signed in", `{"type":"signed_in","user_id":"u-7"}`, AuthEvent{Type: EventSignedIn, UserID: "u-7"}, false},
		{"signed out", `{"type":"signed_out"}`, AuthEvent{Type: EventSignedOut}, false},
		{"signed in without user", `{"type":"signed_in"}`, AuthEvent{}, true},
		{"unknown type", `{"type":"token_refreshed"}`, AuthEvent{}, true},
		{"garbage", `nope`, AuthEvent{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeEvent([]byte(tt.data))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNATSEventSource_Deliver(t *testing.T) {
	s := &NATSEventSource{subject: "maintkeeper.session", log: logging.Nop()}
	ch := make(chan AuthEvent, 1)
	ctx := context.Background()

	s.deliver(ctx, &nats.Msg{Subject: s.subject, Data: []byte(`{"type":"bogus"}`)}, ch)
	assert.Empty(t, ch)

	s.deliver(ctx, &nats.Msg{Subject: s.subject, Data: []byte(`{"type":"signed_out"}`)}, ch)
	assert.Equal(t, AuthEvent{Type: EventSignedOut}, <-ch)
}

func TestNATSEventSource_DeliverStopsWithContext(t *testing.T) {
	s := &NATSEventSource{subject: "maintkeeper.session", log: logging.Nop()}
	ch := make(chan AuthEvent)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.deliver(ctx, &nats.Msg{Data: []byte(`{"type":"signed_out"}`)}, ch)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("deliver blocked after cancellation")
	}
}

func TestConnectNATS_Unreachable(t *testing.T) {
	_, err := ConnectNATS("nats://127.0.0.1:1", "maintkeeper.session", nil)
	require.Error(t, err)
}
