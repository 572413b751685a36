package notify

import (
	"context"
	"encoding/json"

	"github.com/nats-io/nats.go"
)

// NATSNotifier publishes notices for a separate mail or push service.
type NATSNotifier struct {
	conn    *nats.Conn
	subject string
}

func NewNATSNotifier(url, subject string) (*NATSNotifier, error) {
	conn, err := nats.Connect(url, nats.Name("follow-api"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, err
	}
	return &NATSNotifier{conn: conn, subject: subject}, nil
}

func (n *NATSNotifier) NotifyFollowRequest(ctx context.Context, notice FollowRequestNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := encodeNotice(notice)
	if err != nil {
		return err
	}
	return n.conn.Publish(n.subject, data)
}

func (n *NATSNotifier) Close() error {
	return n.conn.Drain()
}

func encodeNotice(notice FollowRequestNotice) ([]byte, error) {
	return json.Marshal(struct {
		Type    string `json:"type"`
		ToEmail string `json:"to_email,omitempty"`
		FollowRequestNotice
	}{
		Type:                "follow_request",
		ToEmail:             notice.ToEmail,
		FollowRequestNotice: notice,
	})
}
