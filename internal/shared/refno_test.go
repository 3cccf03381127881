package shared

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewDocRefFormat(t *testing.T) {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	ref := NewDocRef("RFQ", at)
	require.Regexp(t, regexp.MustCompile(`^RFQ-20260314-[0-9A-Z]{4}$`), ref)

	ref = NewDocRef("ORD", at)
	require.Regexp(t, regexp.MustCompile(`^ORD-20260314-[0-9A-Z]{4}$`), ref)
}

func TestNewDocRefDistinctness(t *testing.T) {
	// The 4-char base36 suffix gives ~1.7M combinations per day, so
	// collisions among 1,000 refs are possible but rare. A unique index
	// backstops the occasional clash; here we only assert the generator
	// is not degenerate.
	at := time.Now()
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		seen[NewDocRef("RFQ", at)] = struct{}{}
	}
	require.GreaterOrEqual(t, len(seen), 995)
}
