package refcode

import (
	"context"
	"errors"
	"math/rand"
	"strings"
)

const (
	BookingPrefix     = "BK-"
	TransactionPrefix = "TXN-"

	suffixLen   = 8
	alphabet    = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxAttempts = 8
)

var ErrExhausted = errors.New("could not generate a unique reference")

// ExistsFunc reports whether a reference is already taken.
type ExistsFunc func(ctx context.Context, code string) (bool, error)

// New returns prefix + 8 random uppercase alphanumerics. Uniqueness is
// practical, not cryptographic.
func New(prefix string) string {
	var b strings.Builder
	b.Grow(len(prefix) + suffixLen)
	b.WriteString(prefix)
	for i := 0; i < suffixLen; i++ {
		b.WriteByte(alphabet[rand.Intn(len(alphabet))])
	}
	return b.String()
}

// Generate draws references until exists reports a free one.
func Generate(ctx context.Context, prefix string, exists ExistsFunc) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		code := New(prefix)
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrExhausted
}

func Valid(prefix, code string) bool {
	if !strings.HasPrefix(code, prefix) {
		return false
	}
	suffix := code[len(prefix):]
	if len(suffix) != suffixLen {
		return false
	}
	for i := 0; i < len(suffix); i++ {
		if strings.IndexByte(alphabet, suffix[i]) < 0 {
			return false
		}
	}
	return true
}
