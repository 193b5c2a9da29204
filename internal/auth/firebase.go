package auth

import (
	"context"

	firebase "firebase.google.com/go"
	fbauth "firebase.google.com/go/auth"

	"carenow-backend/internal/models"
	"carenow-backend/pkg/errs"
)

// Identity is what we learn about a Firebase user from a verified ID token.
type Identity struct {
	UID   string
	Email string
	Phone string
	Name  string
}

// IdentityProvider is the slice of Firebase Authentication we rely on.
type IdentityProvider interface {
	VerifyIDToken(ctx context.Context, idToken string) (*Identity, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
	DeleteUser(ctx context.Context, uid string) error
	PasswordResetLink(ctx context.Context, email string) (string, error)
}

type FirebaseIdentity struct {
	client *fbauth.Client
}

func NewFirebaseIdentity(ctx context.Context, app *firebase.App) (*FirebaseIdentity, error) {
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, errs.Wrap(err, "init firebase auth client")
	}
	return &FirebaseIdentity{client: client}, nil
}

func (f *FirebaseIdentity) VerifyIDToken(ctx context.Context, idToken string) (*Identity, error) {
	token, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, errs.Mark(errs.Wrap(err, "verify id token"), models.ErrUnauthorized)
	}

	id := &Identity{UID: token.UID}
	// Phone OTP sign-ins carry the number only on the user record.
	record, err := f.client.GetUser(ctx, token.UID)
	if err != nil {
		return nil, errs.Wrapf(err, "get firebase user %s", token.UID)
	}
	if record.UserInfo != nil {
		id.Email = record.Email
		id.Phone = record.PhoneNumber
		id.Name = record.DisplayName
	}
	return id, nil
}

func (f *FirebaseIdentity) RevokeRefreshTokens(ctx context.Context, uid string) error {
	return errs.Wrapf(f.client.RevokeRefreshTokens(ctx, uid), "revoke refresh tokens of %s", uid)
}

func (f *FirebaseIdentity) DeleteUser(ctx context.Context, uid string) error {
	err := f.client.DeleteUser(ctx, uid)
	if fbauth.IsUserNotFound(err) {
		return nil
	}
	return errs.Wrapf(err, "delete firebase user %s", uid)
}

func (f *FirebaseIdentity) PasswordResetLink(ctx context.Context, email string) (string, error) {
	link, err := f.client.PasswordResetLink(ctx, email)
	if err != nil {
		return "", errs.Wrap(err, "generate password reset link")
	}
	return link, nil
}

// DisabledIdentity is used when no Firebase credentials are configured.
type DisabledIdentity struct{}

var errIdentityDisabled = errs.Markf(models.ErrUnavailable, "firebase authentication is not configured")

func (DisabledIdentity) VerifyIDToken(context.Context, string) (*Identity, error) {
	return nil, errIdentityDisabled
}

func (DisabledIdentity) RevokeRefreshTokens(context.Context, string) error { return nil }

func (DisabledIdentity) DeleteUser(context.Context, string) error { return nil }

func (DisabledIdentity) PasswordResetLink(context.Context, string) (string, error) {
	return "", errIdentityDisabled
}
