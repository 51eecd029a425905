package booking

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/bellastudio/booking-api/internal/httperr"
)

// keyDelimiter separates the request fields before hashing. It cannot appear
// in a service id or an RFC3339 instant, and the email is the first field, so
// distinct requests can never concatenate to the same byte string.
const keyDelimiter = "|"

// NormalizeSlotTime converts the requested instant to the canonical stored
// form: UTC, second precision.
func NormalizeSlotTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}

// NormalizeEmail lower-cases and trims the client email so that casing and
// whitespace jitter never change the client's identity.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// DeriveIdempotencyKey turns a logical booking request into a stable opaque
// token. Two requests for the same (client email, service, second-aligned
// instant) always derive the same key, regardless of process, retry count or
// submission time.
func DeriveIdempotencyKey(clientEmail string, serviceID uint, scheduledAt time.Time) (string, error) {
	email := NormalizeEmail(clientEmail)
	if email == "" {
		return "", httperr.ErrBusiness("invalid_request")
	}

	instant := NormalizeSlotTime(scheduledAt).Format(time.RFC3339)

	payload := email + keyDelimiter + fmt.Sprintf("%d", serviceID) + keyDelimiter + instant
	digest := sha256.Sum256([]byte(payload))

	return hex.EncodeToString(digest[:]), nil
}
