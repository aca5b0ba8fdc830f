package orders

import (
	"crypto/rand"
	"fmt"
	"time"
)

// base32 without the lookalikes 0/O/1/I.
const orderNumberAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const orderNumberSuffixLen = 6

// GenerateOrderNumber produces a human-readable reference like R-20260901-K3KQ7M.
func GenerateOrderNumber(now time.Time) (string, error) {
	buf := make([]byte, orderNumberSuffixLen)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating order number: %w", err)
	}
	suffix := make([]byte, orderNumberSuffixLen)
	for i, b := range buf {
		suffix[i] = orderNumberAlphabet[int(b)%len(orderNumberAlphabet)]
	}
	return fmt.Sprintf("R-%s-%s", now.UTC().Format("20060102"), string(suffix)), nil
}
