package auction

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const skuSuffixChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateSku builds a product SKU as <first two name letters, upper-cased>,
// the unix timestamp, and a 3 character random suffix, e.g. "CA-1700000000-X4X".
func GenerateSku(productName string, now time.Time) string {
	// slice runes, a multibyte first letter must not be cut mid-sequence
	runes := []rune(productName)
	if len(runes) > 2 {
		runes = runes[:2]
	}
	prefix := string(runes)

	suffix := make([]byte, 3)
	for i := range suffix {
		suffix[i] = skuSuffixChars[rand.Intn(len(skuSuffixChars))]
	}

	return fmt.Sprintf("%s-%d-%s", strings.ToUpper(prefix), now.Unix(), suffix)
}
