package config

import (
	"context"

	firebase "firebase.google.com/go"
	"google.golang.org/api/option"

	"carenow-backend/pkg/errs"
)

// NewFirebaseApp returns nil, nil when no credentials are configured so
// callers can fall back to the in-process implementations.
func NewFirebaseApp(ctx context.Context, cfg FirebaseConfig) (*firebase.App, error) {
	if !cfg.Enabled() {
		return nil, nil
	}

	var fbCfg *firebase.Config
	if cfg.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.ProjectID}
	}

	app, err := firebase.NewApp(ctx, fbCfg, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, errs.Wrap(err, "error initializing firebase app")
	}
	return app, nil
}
