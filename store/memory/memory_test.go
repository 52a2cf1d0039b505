package memory

import (
	"bytes"
	"context"
	"testing"
	"time"
)

func TestSetGetDel(t *testing.T) {
	ctx := context.Background()
	s := New(Config{})
	defer s.Close(ctx)

	if _, ok, err := s.Get(ctx, "k"); err != nil || ok {
		t.Fatalf("expected miss, ok=%v err=%v", ok, err)
	}

	if ok, err := s.Set(ctx, "k", []byte("v"), 1, 0); err != nil || !ok {
		t.Fatalf("Set: ok=%v err=%v", ok, err)
	}
	b, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || !bytes.Equal(b, []byte("v")) {
		t.Fatalf("Get: ok=%v err=%v b=%q", ok, err, b)
	}

	if err := s.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after delete")
	}
}

func TestTTLExpiry(t *testing.T) {
	ctx := context.Background()
	s := New(Config{})
	defer s.Close(ctx)

	if _, err := s.Set(ctx, "k", []byte("v"), 1, 10*time.Millisecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "k"); !ok {
		t.Fatalf("expected hit before expiry")
	}
	time.Sleep(20 * time.Millisecond)
	if _, ok, _ := s.Get(ctx, "k"); ok {
		t.Fatalf("expected miss after expiry")
	}
	if s.Len() != 0 {
		t.Fatalf("lazy expiry should have dropped the entry, len=%d", s.Len())
	}
}

func TestSweep(t *testing.T) {
	ctx := context.Background()
	s := New(Config{CleanupInterval: 5 * time.Millisecond})
	defer s.Close(ctx)

	_, _ = s.Set(ctx, "a", []byte("1"), 1, 5*time.Millisecond)
	_, _ = s.Set(ctx, "b", []byte("2"), 1, 0) // no expiry

	time.Sleep(30 * time.Millisecond)
	if s.Len() != 1 {
		t.Fatalf("sweep should leave only the non-expiring entry, len=%d", s.Len())
	}
	if _, ok, _ := s.Get(ctx, "b"); !ok {
		t.Fatalf("non-expiring entry should survive the sweep")
	}
}

func TestCloseIdempotent(t *testing.T) {
	ctx := context.Background()
	s := New(Config{CleanupInterval: time.Minute})
	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := s.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}
