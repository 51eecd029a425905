package validators

import "strings"

func IsPhoneValid(phone string) bool {
	phone = strings.TrimSpace(phone)
	if len(phone) < 6 {
		return false
	}

	digits := 0
	for _, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')':
		default:
			return false
		}
	}

	return digits >= 6
}
