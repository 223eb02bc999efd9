package infra

import (
	"context"
	"errors"
	"testing"
	"time"
)

type countingVerifier struct {
	calls   int
	err     error
	expires time.Time
	claims  map[string]interface{}
}

func (c *countingVerifier) VerifyIDToken(_ context.Context, raw string) (*FirebaseToken, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &FirebaseToken{UID: "uid-" + raw, Expires: c.expires, Claims: c.claims}, nil
}

func TestCachingVerifierReusesSuccess(t *testing.T) {
	inner := &countingVerifier{}
	v := NewCachingVerifier(inner, time.Minute)

	for i := 0; i < 3; i++ {
		tok, err := v.VerifyIDToken(context.Background(), "abc")
		if err != nil || tok.UID != "uid-abc" {
			t.Fatalf("verify: %v %+v", err, tok)
		}
	}
	if inner.calls != 1 {
		t.Fatalf("expected one upstream verification, got %d", inner.calls)
	}
	if _, err := v.VerifyIDToken(context.Background(), "other"); err != nil || inner.calls != 2 {
		t.Fatalf("distinct token must be verified separately: %v calls=%d", err, inner.calls)
	}
}

func TestCachingVerifierDoesNotCacheFailures(t *testing.T) {
	inner := &countingVerifier{err: errors.New("expired")}
	v := NewCachingVerifier(inner, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := v.VerifyIDToken(context.Background(), "abc"); err == nil {
			t.Fatal("expected error")
		}
	}
	if inner.calls != 2 {
		t.Fatalf("failures must reach upstream each time, got %d", inner.calls)
	}
}

func TestCachingVerifierStopsAtTokenExpiry(t *testing.T) {
	inner := &countingVerifier{expires: time.Now().Add(50 * time.Millisecond)}
	v := NewCachingVerifier(inner, time.Minute)

	if _, err := v.VerifyIDToken(context.Background(), "abc"); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if _, err := v.VerifyIDToken(context.Background(), "abc"); err != nil || inner.calls != 1 {
		t.Fatalf("expected cached hit before expiry: %v calls=%d", err, inner.calls)
	}
	time.Sleep(100 * time.Millisecond)
	if _, err := v.VerifyIDToken(context.Background(), "abc"); err != nil || inner.calls != 2 {
		t.Fatalf("expired token must be verified again: %v calls=%d", err, inner.calls)
	}
}

func TestCachingVerifierSkipsExpiredClaim(t *testing.T) {
	inner := &countingVerifier{claims: map[string]interface{}{"exp": float64(time.Now().Add(-time.Second).Unix())}}
	v := NewCachingVerifier(inner, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := v.VerifyIDToken(context.Background(), "abc"); err != nil {
			t.Fatalf("verify: %v", err)
		}
	}
	if inner.calls != 2 {
		t.Fatalf("a token past its exp claim must not be cached, got %d upstream calls", inner.calls)
	}
}
