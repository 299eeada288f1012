package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/2beens/blogtracker/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/codes"
)

//go:generate mockgen -source=$GOFILE -destination=verifier_mocks_test.go -package=auth_test

const bearerScheme = "bearer"

var (
	ErrMissingCredential   = errors.New("authorization header missing")
	ErrMalformedCredential = errors.New("invalid authorization header format")
	ErrInvalidCredential   = errors.New("invalid token")

	errInvalidScheme = fmt.Errorf("%w: invalid auth scheme", ErrMalformedCredential)
)

// IDToken holds the claims the identity provider vouches for
type IDToken struct {
	Subject string
	Email   string
	Claims  map[string]interface{}
}

// TokenVerifier is the identity provider boundary
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*IDToken, error)
}

// Verifier turns an Authorization header value into a Principal.
// It is the only credential check in the service.
type Verifier struct {
	tokenVerifier TokenVerifier
}

func NewVerifier(tokenVerifier TokenVerifier) *Verifier {
	return &Verifier{
		tokenVerifier: tokenVerifier,
	}
}

func (v *Verifier) Verify(ctx context.Context, authorization string) (_ *Principal, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "auth.verify")
	defer func() {
		if err != nil {
			span.SetStatus(codes.Error, RejectionReason(err))
		}
		span.End()
	}()

	if authorization == "" {
		return nil, ErrMissingCredential
	}

	parts := strings.Fields(authorization)
	if len(parts) != 2 {
		return nil, ErrMalformedCredential
	}
	if strings.ToLower(parts[0]) != bearerScheme {
		return nil, errInvalidScheme
	}

	idToken, err := v.tokenVerifier.VerifyIDToken(ctx, parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredential, err)
	}
	if idToken == nil || idToken.Subject == "" {
		return nil, fmt.Errorf("%w: no subject in token", ErrInvalidCredential)
	}

	return &Principal{
		SubjectID: idToken.Subject,
		Email:     idToken.Email,
		Claims:    idToken.Claims,
	}, nil
}

// RejectionReason maps a Verify error to a short label (used in metrics and spans)
func RejectionReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingCredential):
		return "missing"
	case errors.Is(err, ErrMalformedCredential):
		return "malformed"
	case errors.Is(err, ErrInvalidCredential):
		return "invalid"
	default:
		return "error"
	}
}

// PublicDetail is the client facing message for a Verify error.
// Provider specifics are never exposed.
func PublicDetail(err error) string {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return "Authorization header missing"
	case errors.Is(err, errInvalidScheme):
		return "Invalid auth scheme"
	case errors.Is(err, ErrMalformedCredential):
		return "Invalid authorization header format"
	default:
		return "Invalid token"
	}
}
