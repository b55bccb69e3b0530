package sanitizer

import "strings"

const (
	MinPhoneDigits = 10
	MaxPhoneDigits = 15
)

func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func IsValidPhone(phone string) bool {
	n := len(NormalizePhone(phone))
	return n >= MinPhoneDigits && n <= MaxPhoneDigits
}
