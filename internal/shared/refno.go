package shared

import (
	"crypto/rand"
	"fmt"
	"time"
)

const refAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewDocRef builds a human-readable document reference such as
// RFQ-20260830-7KQ2. The 4-character random suffix makes collisions on
// the same calendar day unlikely but not impossible; the unique index
// on the column is the backstop.
func NewDocRef(prefix string, t time.Time) string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	for i, b := range buf {
		buf[i] = refAlphabet[int(b)%len(refAlphabet)]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, t.UTC().Format("20060102"), buf)
}
