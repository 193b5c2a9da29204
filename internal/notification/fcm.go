package notification

import (
	"context"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"github.com/rs/zerolog"

	"carenow-backend/pkg/errs"
)

// Messenger delivers push notifications.
type Messenger interface {
	SendToToken(ctx context.Context, token, title, body string, data map[string]string) error
	SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error
	Subscribe(ctx context.Context, tokens []string, topic string) error
	Unsubscribe(ctx context.Context, tokens []string, topic string) error
}

type FCMMessenger struct {
	client *messaging.Client
}

func NewFCMMessenger(ctx context.Context, app *firebase.App) (*FCMMessenger, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "error getting messaging client")
	}
	return &FCMMessenger{client: client}, nil
}

func (m *FCMMessenger) SendToToken(ctx context.Context, token, title, body string, data map[string]string) error {
	_, err := m.client.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
	return errs.Wrap(err, "error sending push to token")
}

func (m *FCMMessenger) SendToTopic(ctx context.Context, topic, title, body string, data map[string]string) error {
	_, err := m.client.Send(ctx, &messaging.Message{
		Topic: topic,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	})
	return errs.Wrap(err, "error sending push to topic")
}

func (m *FCMMessenger) Subscribe(ctx context.Context, tokens []string, topic string) error {
	resp, err := m.client.SubscribeToTopic(ctx, tokens, topic)
	if err != nil {
		return errs.Wrap(err, "error subscribing to topic")
	}
	if resp.FailureCount > 0 {
		return errs.Newf("%d of %d tokens failed to subscribe to %s", resp.FailureCount, len(tokens), topic)
	}
	return nil
}

func (m *FCMMessenger) Unsubscribe(ctx context.Context, tokens []string, topic string) error {
	resp, err := m.client.UnsubscribeFromTopic(ctx, tokens, topic)
	if err != nil {
		return errs.Wrap(err, "error unsubscribing from topic")
	}
	if resp.FailureCount > 0 {
		return errs.Newf("%d of %d tokens failed to unsubscribe from %s", resp.FailureCount, len(tokens), topic)
	}
	return nil
}

// LogMessenger only logs. Used when Firebase is not configured.
type LogMessenger struct {
	log zerolog.Logger
}

func NewLogMessenger(log zerolog.Logger) *LogMessenger {
	return &LogMessenger{log: log.With().Str("component", "push").Logger()}
}

func (m *LogMessenger) SendToToken(_ context.Context, token, title, _ string, _ map[string]string) error {
	m.log.Debug().Str("title", title).Int("token_len", len(token)).Msg("push to token skipped, FCM disabled")
	return nil
}

func (m *LogMessenger) SendToTopic(_ context.Context, topic, title, _ string, _ map[string]string) error {
	m.log.Debug().Str("topic", topic).Str("title", title).Msg("push to topic skipped, FCM disabled")
	return nil
}

func (m *LogMessenger) Subscribe(_ context.Context, tokens []string, topic string) error {
	m.log.Debug().Str("topic", topic).Int("tokens", len(tokens)).Msg("topic subscribe skipped, FCM disabled")
	return nil
}

func (m *LogMessenger) Unsubscribe(_ context.Context, tokens []string, topic string) error {
	m.log.Debug().Str("topic", topic).Int("tokens", len(tokens)).Msg("topic unsubscribe skipped, FCM disabled")
	return nil
}
