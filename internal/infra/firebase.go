// README: Firebase ID-token verification for trip routes, with a short-lived verified-token cache.
package infra

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"github.com/patrickmn/go-cache"
	"google.golang.org/api/option"
)

// FirebaseToken holds the verified token data used by downstream middleware.
type FirebaseToken struct {
	UID     string
	Claims  map[string]interface{}
	Expires time.Time
}

type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*FirebaseToken, error)
}

type firebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier builds a verifier for projectID. An empty credentialsFile
// falls back to application-default credentials.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (TokenVerifier, error) {
	if projectID == "" {
		return nil, fmt.Errorf("firebase: project id is required")
	}
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase app.Auth: %w", err)
	}
	return NewCachingVerifier(&firebaseVerifier{client: client}, time.Minute), nil
}

func (v *firebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*FirebaseToken, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	return &FirebaseToken{UID: token.UID, Claims: token.Claims, Expires: time.Unix(token.Expires, 0)}, nil
}

// CachingVerifier remembers successful verifications for ttl so repeated
// requests with the same token skip signature checks. Failures are not cached,
// and no entry outlives the token's own expiry.
type CachingVerifier struct {
	next   TokenVerifier
	tokens *cache.Cache
	ttl    time.Duration
}

func NewCachingVerifier(next TokenVerifier, ttl time.Duration) *CachingVerifier {
	return &CachingVerifier{next: next, tokens: cache.New(ttl, 2*ttl), ttl: ttl}
}

func (v *CachingVerifier) VerifyIDToken(ctx context.Context, idToken string) (*FirebaseToken, error) {
	sum := sha256.Sum256([]byte(idToken))
	key := hex.EncodeToString(sum[:])
	if t, ok := v.tokens.Get(key); ok {
		return t.(*FirebaseToken), nil
	}
	token, err := v.next.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, err
	}
	ttl := v.ttl
	if exp := tokenExpiry(token); !exp.IsZero() {
		ttl = min(ttl, time.Until(exp))
	}
	if ttl > 0 {
		v.tokens.Set(key, token, ttl)
	}
	return token, nil
}

// tokenExpiry reads Expires, or the exp claim when Expires is unset.
func tokenExpiry(t *FirebaseToken) time.Time {
	if !t.Expires.IsZero() {
		return t.Expires
	}
	switch exp := t.Claims["exp"].(type) {
	case float64:
		return time.Unix(int64(exp), 0)
	case int64:
		return time.Unix(exp, 0)
	case int:
		return time.Unix(int64(exp), 0)
	}
	return time.Time{}
}
