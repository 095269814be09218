package verification

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// codeAlphabet is the symbol set challenge codes are drawn from.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// codeLength is the number of random symbols in a challenge code.
const codeLength = 4

// codePrefix is prepended to every challenge code.
const codePrefix = "Verify-"

// GenerateCode generates a challenge code of the form "Verify-XXXX" with four
// symbols drawn uniformly (with repetition) from A-Z and 0-9. Codes are not
// guaranteed unique across sessions; the 36^4 space makes collisions
// negligible for this use.
func GenerateCode() (string, error) {
	buf := make([]byte, codeLength)
	for i := range buf {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(codeAlphabet))))
		if err != nil {
			return "", fmt.Errorf("error generating challenge code: %w", err)
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return codePrefix + string(buf), nil
}
