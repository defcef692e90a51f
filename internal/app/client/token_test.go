package client

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dorsu/alumnitracer/internal/pkg/clientstorage"
)

func newTestStorage(t *testing.T) *clientstorage.Store {
	t.Helper()
	s, err := clientstorage.New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(s.Close)
	return s
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestCurrentReturnsStoredToken(t *testing.T) {
	storage := newTestStorage(t)
	ts := NewTokenStore(storage, time.Second, 10*time.Millisecond)

	if _, ok := ts.Current(); ok {
		t.Fatal("empty store reported a token")
	}
	if err := ts.Set("opaque-token"); err != nil {
		t.Fatal(err)
	}
	if tok, ok := ts.Current(); !ok || tok != "opaque-token" {
		t.Fatalf("got %q ok=%v", tok, ok)
	}
}

func TestCurrentSkipsExpiredJWT(t *testing.T) {
	storage := newTestStorage(t)
	ts := NewTokenStore(storage, time.Second, 10*time.Millisecond)

	if err := ts.Set(signedToken(t, time.Now().Add(-time.Hour))); err != nil {
		t.Fatal(err)
	}
	if _, ok := ts.Current(); ok {
		t.Fatal("expired token reported as usable")
	}

	if err := ts.Set(signedToken(t, time.Now().Add(time.Hour))); err != nil {
		t.Fatal(err)
	}
	if _, ok := ts.Current(); !ok {
		t.Fatal("live token not returned")
	}
}

func TestAwaitPicksUpLateToken(t *testing.T) {
	storage := newTestStorage(t)
	ts := NewTokenStore(storage, time.Second, 10*time.Millisecond)

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = ts.Set("late-token")
	}()

	tok, ok := ts.Await(context.Background())
	if !ok || tok != "late-token" {
		t.Fatalf("got %q ok=%v", tok, ok)
	}
}

func TestAwaitGivesUpAfterWindow(t *testing.T) {
	storage := newTestStorage(t)
	ts := NewTokenStore(storage, 50*time.Millisecond, 10*time.Millisecond)

	start := time.Now()
	if _, ok := ts.Await(context.Background()); ok {
		t.Fatal("no token should be found")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("poll did not respect the window: %v", elapsed)
	}
}

func TestAwaitHonorsContext(t *testing.T) {
	storage := newTestStorage(t)
	ts := NewTokenStore(storage, 10*time.Second, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, ok := ts.Await(ctx); ok {
		t.Fatal("no token should be found")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("cancelled await ran too long: %v", elapsed)
	}
}

func TestClearRemovesToken(t *testing.T) {
	storage := newTestStorage(t)
	ts := NewTokenStore(storage, time.Second, 10*time.Millisecond)

	if err := ts.Set("abc"); err != nil {
		t.Fatal(err)
	}
	if err := ts.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, ok := ts.Current(); ok {
		t.Fatal("cleared token still present")
	}
}
