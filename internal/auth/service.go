// Package auth handles registration, sign-in and account lifecycle.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"carenow-backend/internal/models"
	"carenow-backend/internal/repository"
	"carenow-backend/pkg/errs"
	"carenow-backend/pkg/utils"
)

// Devices keeps the user's push token in sync.
type Devices interface {
	RegisterToken(ctx context.Context, userID, token string) error
	ClearToken(ctx context.Context, userID string) error
}

type Notifier interface {
	Notify(ctx context.Context, userID, category, title, body string, data map[string]string) error
}

type Session struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type Service struct {
	users    repository.UserRepository
	partners repository.PartnerRepository
	identity IdentityProvider
	devices  Devices
	notifier Notifier
	secret   string
	tokenTTL time.Duration
	log      zerolog.Logger
}

type Deps struct {
	Repos    repository.Repositories
	Identity IdentityProvider
	Devices  Devices
	Notifier Notifier
	Secret   string
	TokenTTL time.Duration
	Log      zerolog.Logger
}

func NewService(d Deps) *Service {
	return &Service{
		users:    d.Repos.Users,
		partners: d.Repos.Partners,
		identity: d.Identity,
		devices:  d.Devices,
		notifier: d.Notifier,
		secret:   d.Secret,
		tokenTTL: d.TokenTTL,
		log:      d.Log.With().Str("component", "auth").Logger(),
	}
}

// Register creates a client account, or a partner account with an empty,
// unverified partner profile.
func (s *Service) Register(ctx context.Context, in models.RegisterInput) (*models.User, error) {
	role := in.RoleID
	if role == 0 {
		role = models.RoleClient
	}
	if role != models.RoleClient && role != models.RolePartner {
		return nil, errs.Markf(models.ErrValidation, "role %d cannot self-register", role)
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, errs.Mark(err, models.ErrValidation)
	}

	user := &models.User{
		FullName:     strings.TrimSpace(in.FullName),
		Email:        in.Email,
		PasswordHash: hash,
		RoleID:       role,
		Phone:        strings.TrimSpace(in.Phone),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if role == models.RolePartner {
		partner := &models.Partner{UserID: user.ID, Name: user.FullName}
		if err := s.partners.Create(ctx, partner); err != nil {
			return nil, errs.Wrap(err, "create partner profile")
		}
	}
	s.log.Info().Str("user_id", user.ID).Uint("role_id", role).Msg("user registered")
	return user, nil
}

func (s *Service) Login(ctx context.Context, in models.LoginInput) (*Session, error) {
	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errs.Is(err, models.ErrNotFound) {
			return nil, errs.Markf(models.ErrUnauthorized, "wrong email or password")
		}
		return nil, err
	}
	if !utils.CheckPassword(in.Password, user.PasswordHash) {
		return nil, errs.Markf(models.ErrUnauthorized, "wrong email or password")
	}
	return s.session(ctx, user, in.FCMToken)
}

// FirebaseLogin signs in with an ID token minted on the device. Unknown
// identities get a client account on first use.
func (s *Service) FirebaseLogin(ctx context.Context, in models.FirebaseLoginInput) (*Session, error) {
	id, err := s.identity.VerifyIDToken(ctx, in.IDToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByFirebaseUID(ctx, id.UID)
	switch {
	case err == nil:
	case errs.Is(err, models.ErrNotFound):
		user, err = s.linkOrCreate(ctx, id, in.FullName)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	return s.session(ctx, user, in.FCMToken)
}

func (s *Service) linkOrCreate(ctx context.Context, id *Identity, fullName string) (*models.User, error) {
	if id.Email != "" {
		existing, err := s.users.GetByEmail(ctx, id.Email)
		if err == nil {
			existing.FirebaseUID = id.UID
			if existing.Phone == "" {
				existing.Phone = id.Phone
			}
			if err := s.users.Update(ctx, existing); err != nil {
				return nil, err
			}
			s.log.Info().Str("user_id", existing.ID).Msg("firebase identity linked")
			return existing, nil
		}
		if !errs.Is(err, models.ErrNotFound) {
			return nil, err
		}
	}

	name := strings.TrimSpace(fullName)
	if name == "" {
		name = id.Name
	}
	if name == "" {
		name = id.Phone
	}
	user := &models.User{
		RoleID:      models.RoleClient,
		FullName:    name,
		Email:       id.Email,
		Phone:       id.Phone,
		FirebaseUID: id.UID,
		IsVerified:  true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Msg("user registered via firebase")
	return user, nil
}

func (s *Service) session(ctx context.Context, user *models.User, fcmToken string) (*Session, error) {
	if fcmToken != "" {
		if err := s.devices.RegisterToken(ctx, user.ID, fcmToken); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("push token not saved")
		} else {
			user.FCMToken = fcmToken
		}
	}
	token, err := utils.GenerateToken(s.secret, s.tokenTTL, user.ID, user.RoleID)
	if err != nil {
		return nil, errs.Wrap(err, "sign access token")
	}
	return &Session{Token: token, User: user}, nil
}

// RequestPasswordReset pushes a reset link to the account's device. Unknown
// emails succeed silently.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errs.Is(err, models.ErrNotFound) {
			return nil
		}
		return err
	}
	link, err := s.identity.PasswordResetLink(ctx, user.Email)
	if err != nil {
		return err
	}
	s.log.Info().Str("user_id", user.ID).Msg("password reset link generated")
	return s.notifier.Notify(ctx, user.ID, models.NotificationSystem, "Reset your password",
		"Open the link to choose a new password.", map[string]string{"link": link})
}

func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.users.Get(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, in models.UpdateUserInput) (*models.User, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if name := strings.TrimSpace(in.FullName); name != "" {
		user.FullName = name
	}
	if phone := strings.TrimSpace(in.Phone); phone != "" {
		user.Phone = phone
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout revokes Firebase sessions and forgets the push token. Issued JWTs
// stay valid until they expire.
func (s *Service) Logout(ctx context.Context, userID string) error {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if user.FirebaseUID != "" {
		if err := s.identity.RevokeRefreshTokens(ctx, user.FirebaseUID); err != nil {
			return err
		}
	}
	return s.devices.ClearToken(ctx, userID)
}

func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := s.devices.ClearToken(ctx, userID); err != nil {
		s.log.Warn().Err(err).Str("user_id", userID).Msg("push token not cleared")
	}
	if user.FirebaseUID != "" {
		if err := s.identity.DeleteUser(ctx, user.FirebaseUID); err != nil {
			return err
		}
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}
	s.log.Info().Str("user_id", userID).Msg("account deleted")
	return nil
}
