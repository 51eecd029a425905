package booking

import (
	"testing"
	"time"

	"github.com/bellastudio/booking-api/internal/httperr"
)

func TestDeriveIdempotencyKey_Deterministic(t *testing.T) {
	at := time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)

	k1, err := DeriveIdempotencyKey("client@example.com", 7, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	k2, err := DeriveIdempotencyKey("client@example.com", 7, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if k1 != k2 {
		t.Errorf("keys differ: %q vs %q", k1, k2)
	}
	if len(k1) != 64 {
		t.Errorf("key length = %d, want 64 hex chars", len(k1))
	}
}

func TestDeriveIdempotencyKey_CaseAndWhitespaceInsensitive(t *testing.T) {
	at := time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)

	k1, err := DeriveIdempotencyKey("A@Ex.com", 5, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	k2, err := DeriveIdempotencyKey("  a@ex.com ", 5, at)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if k1 != k2 {
		t.Errorf("keys differ for equivalent emails: %q vs %q", k1, k2)
	}
}

func TestDeriveIdempotencyKey_TimezoneAndPrecision(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	utc := time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)
	local := utc.In(loc)
	jittered := utc.Add(300 * time.Millisecond)

	k1, _ := DeriveIdempotencyKey("a@ex.com", 5, utc)
	k2, _ := DeriveIdempotencyKey("a@ex.com", 5, local)
	k3, _ := DeriveIdempotencyKey("a@ex.com", 5, jittered)

	if k1 != k2 {
		t.Errorf("same instant in another zone derived a different key")
	}
	if k1 != k3 {
		t.Errorf("sub-second jitter derived a different key")
	}
}

func TestDeriveIdempotencyKey_DistinctRequests(t *testing.T) {
	at := time.Date(2025, 3, 1, 14, 0, 0, 0, time.UTC)

	base, _ := DeriveIdempotencyKey("a@ex.com", 5, at)

	otherClient, _ := DeriveIdempotencyKey("b@ex.com", 5, at)
	otherService, _ := DeriveIdempotencyKey("a@ex.com", 6, at)
	otherTime, _ := DeriveIdempotencyKey("a@ex.com", 5, at.Add(time.Second))

	for name, k := range map[string]string{
		"client":  otherClient,
		"service": otherService,
		"time":    otherTime,
	} {
		if k == base {
			t.Errorf("changing %s did not change the key", name)
		}
	}
}

func TestDeriveIdempotencyKey_MissingEmail(t *testing.T) {
	_, err := DeriveIdempotencyKey("   ", 5, time.Now())
	if !httperr.IsBusiness(err, "invalid_request") {
		t.Fatalf("expected invalid_request, got %v", err)
	}
}
