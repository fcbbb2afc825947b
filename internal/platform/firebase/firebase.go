package firebase

import (
	"context"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/fx"
	"google.golang.org/api/option"

	cfgpkg "github.com/zenova/wms-billing/pkg/config"
)

// TokenVerifier is the identity-verifier collaborator: bearer credential in,
// verified principal id out.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (string, error)
}

// MulticastSender is the push-delivery collaborator, satisfied by the FCM
// messaging client.
type MulticastSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

func NewApp(cfg *cfgpkg.Config) (*firebase.App, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if cfg.Firebase.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.Firebase.CredentialsFile))
	}

	var fbCfg *firebase.Config
	if cfg.Firebase.ProjectID != "" {
		fbCfg = &firebase.Config{ProjectID: cfg.Firebase.ProjectID}
	}

	return firebase.NewApp(ctx, fbCfg, opts...)
}

type authVerifier struct {
	app *firebase.App
}

func (v *authVerifier) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	client, err := v.app.Auth(ctx)
	if err != nil {
		return "", err
	}
	token, err := client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", err
	}
	return token.UID, nil
}

func NewTokenVerifier(app *firebase.App) TokenVerifier {
	return &authVerifier{app: app}
}

func NewMulticastSender(app *firebase.App) (MulticastSender, error) {
	return app.Messaging(context.Background())
}

var Module = fx.Options(
	fx.Provide(NewApp),
	fx.Provide(NewTokenVerifier),
	fx.Provide(NewMulticastSender),
)
