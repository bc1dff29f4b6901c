package messaging

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubClient struct {
	connected  bool
	requestErr error
	published  map[string][]byte
}

func (c *stubClient) Publish(_ context.Context, subject string, data []byte) error {
	if c.published == nil {
		c.published = make(map[string][]byte)
	}
	c.published[subject] = data
	return nil
}

func (c *stubClient) PublishMsg(ctx context.Context, msg *Message) error {
	return c.Publish(ctx, msg.Subject, msg.Data)
}

func (c *stubClient) Request(context.Context, string, []byte, time.Duration) (*Message, error) {
	if c.requestErr != nil {
		return nil, c.requestErr
	}
	return &Message{Data: []byte("pong")}, nil
}

func (c *stubClient) Subscribe(string, MessageHandler) (Subscription, error)              { return nil, nil }
func (c *stubClient) QueueSubscribe(string, string, MessageHandler) (Subscription, error) { return nil, nil }
func (c *stubClient) Close() error                                                        { return nil }
func (c *stubClient) Drain() error                                                        { return nil }
func (c *stubClient) IsConnected() bool                                                   { return c.connected }

func TestRespond(t *testing.T) {
	client := &stubClient{}

	err := Respond(context.Background(), client, &Message{Subject: SubjectSchemaJobsProject, Reply: "_INBOX.abc"}, []byte(`{"success":true}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(client.published["_INBOX.abc"]) != `{"success":true}` {
		t.Errorf("reply not published to inbox: %v", client.published)
	}

	err = Respond(context.Background(), client, &Message{Subject: SubjectSchemaJobsProject}, []byte("x"))
	if !errors.Is(err, ErrNoReply) {
		t.Errorf("expected ErrNoReply, got %v", err)
	}
}

func TestCheckClientHealth(t *testing.T) {
	tests := []struct {
		name          string
		client        Client
		wantConnected bool
		wantError     bool
	}{
		{name: "nil client", client: nil, wantError: true},
		{name: "disconnected", client: &stubClient{connected: false}, wantError: true},
		{name: "healthy", client: &stubClient{connected: true}, wantConnected: true},
		{name: "no responders is healthy", client: &stubClient{connected: true, requestErr: ErrNoResponders}, wantConnected: true},
		{name: "request failure", client: &stubClient{connected: true, requestErr: errors.New("timeout")}, wantConnected: true, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := CheckClientHealth(context.Background(), tt.client)
			if status.Connected != tt.wantConnected {
				t.Errorf("Connected = %v, want %v", status.Connected, tt.wantConnected)
			}
			if (status.Error != "") != tt.wantError {
				t.Errorf("Error = %q, wantError %v", status.Error, tt.wantError)
			}
		})
	}
}
