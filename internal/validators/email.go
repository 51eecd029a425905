package validators

import (
	"net"
	"net/mail"
	"strings"
)

// IsEmailSyntaxValid checks the address shape only; no network involved, so
// it is safe on the booking hot path.
func IsEmailSyntaxValid(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}

	addr, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}

	// Reject display-name forms, keep bare addresses only.
	return addr.Address == email && strings.Contains(email, "@")
}

// IsEmailDomainValid resolves the domain. Used for contact intake, never for
// booking: a DNS lookup has no place inside the scheduling path.
func IsEmailDomainValid(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]

	if mx, err := net.LookupMX(domain); err == nil && len(mx) > 0 {
		return true
	}

	if ips, err := net.LookupIP(domain); err == nil && len(ips) > 0 {
		return true
	}

	return false
}
