// Package notification keeps the in-app inbox and pushes through FCM when the
// user's preferences allow it.
package notification

import (
	"context"
	"regexp"

	"github.com/rs/zerolog"

	"carenow-backend/internal/metrics"
	"carenow-backend/internal/models"
	"carenow-backend/internal/repository"
	"carenow-backend/pkg/errs"
)

// PromotionsTopic carries marketing pushes; membership follows the
// promotions preference.
const PromotionsTopic = "promotions"

var topicPattern = regexp.MustCompile(`^[a-zA-Z0-9_.~%\-]{1,900}$`)

type Service struct {
	repo      repository.NotificationRepository
	users     repository.UserRepository
	messenger Messenger
	metrics   *metrics.Metrics
	log       zerolog.Logger
}

func NewService(repo repository.NotificationRepository, users repository.UserRepository, messenger Messenger, m *metrics.Metrics, log zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		users:     users,
		messenger: messenger,
		metrics:   m,
		log:       log.With().Str("component", "notification").Logger(),
	}
}

// Notify stores the notification in the user's inbox and pushes it when the
// preference for category is on. Push failures are logged only.
func (s *Service) Notify(ctx context.Context, userID, category, title, body string, data map[string]string) error {
	n := &models.Notification{
		UserID:   userID,
		Category: category,
		Title:    title,
		Body:     body,
		Data:     data,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return errs.Wrap(err, "failed to store notification")
	}

	pref, err := s.repo.GetPreference(ctx, userID)
	if err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("could not read preferences, skipping push")
		return nil
	}
	if !pref.Allows(category) {
		s.metrics.PushSent.WithLabelValues("muted").Inc()
		return nil
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil || user.FCMToken == "" {
		s.metrics.PushSent.WithLabelValues("no_token").Inc()
		return nil
	}

	if err := s.messenger.SendToToken(ctx, user.FCMToken, title, body, data); err != nil {
		s.metrics.PushSent.WithLabelValues("failed").Inc()
		s.log.Warn().Err(err).Str("user_id", userID).Str("category", category).Msg("push failed")
		return nil
	}
	s.metrics.PushSent.WithLabelValues("sent").Inc()
	return nil
}

func (s *Service) List(ctx context.Context, userID string, limit int) ([]models.Notification, error) {
	return s.repo.ListForUser(ctx, userID, limit)
}

func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// RegisterToken stores the device token and puts it on the promotions topic
// when the user opted in.
func (s *Service) RegisterToken(ctx context.Context, userID, token string) error {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	user.FCMToken = token
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	pref, err := s.repo.GetPreference(ctx, userID)
	if err == nil && pref.Promotions {
		if err := s.messenger.Subscribe(ctx, []string{token}, PromotionsTopic); err != nil {
			s.log.Warn().Err(err).Str("user_id", userID).Msg("could not subscribe to promotions")
		}
	}
	return nil
}

// ClearToken forgets the device token, e.g. on sign-out.
func (s *Service) ClearToken(ctx context.Context, userID string) error {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.FCMToken == "" {
		return nil
	}
	if err := s.messenger.Unsubscribe(ctx, []string{user.FCMToken}, PromotionsTopic); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("could not unsubscribe from promotions")
	}
	user.FCMToken = ""
	return s.users.Update(ctx, user)
}

func (s *Service) Preferences(ctx context.Context, userID string) (models.NotificationPreference, error) {
	return s.repo.GetPreference(ctx, userID)
}

func (s *Service) UpdatePreferences(ctx context.Context, userID string, in models.UpdatePreferenceInput) (models.NotificationPreference, error) {
	pref, err := s.repo.GetPreference(ctx, userID)
	if err != nil {
		return models.NotificationPreference{}, err
	}
	wasPromotions := pref.Promotions

	if in.BookingUpdates != nil {
		pref.BookingUpdates = *in.BookingUpdates
	}
	if in.Reviews != nil {
		pref.Reviews = *in.Reviews
	}
	if in.Promotions != nil {
		pref.Promotions = *in.Promotions
	}
	pref.UserID = userID
	if err := s.repo.SavePreference(ctx, &pref); err != nil {
		return models.NotificationPreference{}, err
	}

	if pref.Promotions != wasPromotions {
		var topicErr error
		if pref.Promotions {
			topicErr = s.SubscribeTopic(ctx, userID, PromotionsTopic)
		} else {
			topicErr = s.UnsubscribeTopic(ctx, userID, PromotionsTopic)
		}
		if topicErr != nil {
			s.log.Warn().Err(topicErr).Str("user_id", userID).Msg("promotions topic not updated")
		}
	}
	return pref, nil
}

func (s *Service) SubscribeTopic(ctx context.Context, userID, topic string) error {
	token, err := s.tokenFor(ctx, userID, topic)
	if err != nil || token == "" {
		return err
	}
	return s.messenger.Subscribe(ctx, []string{token}, topic)
}

func (s *Service) UnsubscribeTopic(ctx context.Context, userID, topic string) error {
	token, err := s.tokenFor(ctx, userID, topic)
	if err != nil || token == "" {
		return err
	}
	return s.messenger.Unsubscribe(ctx, []string{token}, topic)
}

func (s *Service) tokenFor(ctx context.Context, userID, topic string) (string, error) {
	if !topicPattern.MatchString(topic) {
		return "", errs.Markf(models.ErrValidation, "invalid topic name %q", topic)
	}
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.FCMToken, nil
}

// Broadcast pushes to every device on topic. Nothing is stored per user.
func (s *Service) Broadcast(ctx context.Context, in models.BroadcastInput) error {
	if !topicPattern.MatchString(in.Topic) {
		return errs.Markf(models.ErrValidation, "invalid topic name %q", in.Topic)
	}
	if err := s.messenger.SendToTopic(ctx, in.Topic, in.Title, in.Body, in.Data); err != nil {
		s.metrics.PushSent.WithLabelValues("failed").Inc()
		return errs.Mark(err, models.ErrUnavailable)
	}
	s.metrics.PushSent.WithLabelValues("sent").Inc()
	s.log.Info().Str("topic", in.Topic).Msg("broadcast sent")
	return nil
}
