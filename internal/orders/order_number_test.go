package orders

import (
	"regexp"
	"testing"
	"time"
)

var orderNumberPattern = regexp.MustCompile(`^R-\d{8}-[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{6}$`)

func TestGenerateOrderNumberFormat(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	number, err := GenerateOrderNumber(now)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !orderNumberPattern.MatchString(number) {
		t.Fatalf("unexpected format %q", number)
	}
	if number[2:10] != "20260901" {
		t.Fatalf("expected UTC date in number, got %q", number)
	}
}

func TestGenerateOrderNumberVaries(t *testing.T) {
	now := time.Now()
	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		number, err := GenerateOrderNumber(now)
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		seen[number] = true
	}
	if len(seen) < 2 {
		t.Fatal("expected random suffixes to vary")
	}
}
