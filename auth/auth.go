// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/danielhkuo/pollbook/engine"
	"github.com/danielhkuo/pollbook/models"
)

var (
	ErrInvalidToken     = errors.New("invalid token format")
	ErrInvalidSignature = errors.New("invalid token signature")
)

var b64 = base64.RawURLEncoding

func sign(identity models.Identity, salt string) []byte {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(identity))
	return h.Sum(nil)
}

// IssueToken creates a caller token binding identity to the server salt.
// Format: base64url(identity) "." base64url(hmac-sha256(salt, identity))
func IssueToken(identity models.Identity, salt string) string {
	return b64.EncodeToString([]byte(identity)) + "." + b64.EncodeToString(sign(identity, salt))
}

// ParseToken verifies a caller token and returns the identity it carries.
func ParseToken(token, salt string) (models.Identity, error) {
	encID, encSig, ok := strings.Cut(token, ".")
	if !ok || encID == "" || encSig == "" {
		return "", ErrInvalidToken
	}
	rawID, err := b64.DecodeString(encID)
	if err != nil {
		return "", ErrInvalidToken
	}
	sig, err := b64.DecodeString(encSig)
	if err != nil {
		return "", ErrInvalidToken
	}

	identity := models.Identity(rawID)
	if !hmac.Equal(sig, sign(identity, salt)) {
		return "", ErrInvalidSignature
	}
	return identity, nil
}

type callerKey struct{}

// WithCaller attaches an authenticated identity to ctx.
func WithCaller(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, callerKey{}, identity)
}

// CallerFromContext returns the identity attached by WithCaller.
func CallerFromContext(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(callerKey{}).(models.Identity)
	return identity, ok && identity != ""
}

// ContextIdentity is the engine.IdentityProvider for request-scoped callers.
type ContextIdentity struct{}

func (ContextIdentity) Caller(ctx context.Context) (models.Identity, error) {
	identity, ok := CallerFromContext(ctx)
	if !ok {
		return "", engine.ErrUnauthenticated
	}
	return identity, nil
}
