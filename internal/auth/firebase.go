package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

var _ TokenVerifier = (*FirebaseTokenVerifier)(nil)

// FirebaseTokenVerifier checks Firebase ID tokens. Key rotation, expiry and
// audience checks are done by the firebase SDK.
type FirebaseTokenVerifier struct {
	client *firebaseauth.Client
}

// NewFirebaseTokenVerifier loads the service account key once; the client is
// safe for concurrent use for the lifetime of the process.
func NewFirebaseTokenVerifier(ctx context.Context, credentialsFile string) (*FirebaseTokenVerifier, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth client: %w", err)
	}

	log.Debugf("firebase auth client initialized from: %s", credentialsFile)

	return &FirebaseTokenVerifier{
		client: client,
	}, nil
}

func (v *FirebaseTokenVerifier) VerifyIDToken(ctx context.Context, idToken string) (*IDToken, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}

	email, _ := token.Claims["email"].(string)
	return &IDToken{
		Subject: token.UID,
		Email:   email,
		Claims:  token.Claims,
	}, nil
}
