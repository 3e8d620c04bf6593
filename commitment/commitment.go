package commitment

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"
)

const (
	DELIMITER = "|"

	MIN_NUMBER = 0
	MAX_NUMBER = 100

	// Hex encoded SHA-256
	COMMITMENT_LENGTH = 64
)

// Build derives the preimage "identity|number|nonce" and returns it together
// with the lowercase hex SHA-256 digest of its UTF-8 bytes. Inputs are not
// validated here; callers reject empty fields and out of range numbers.
func Build(identity string, number int, nonce string) (string, string) {

	preimage := Preimage(identity, number, nonce)
	digest := sha256.Sum256([]byte(preimage))

	return preimage, hex.EncodeToString(digest[:])
}

// Preimage joins the three inputs with DELIMITER, number in base 10.
func Preimage(identity string, number int, nonce string) string {
	return strings.Join([]string{identity, strconv.Itoa(number), nonce}, DELIMITER)
}

// Verify recomputes the commitment for the revealed values and compares it
// against a previously submitted one.
func Verify(identity string, number int, nonce string, commitment string) bool {

	_, expected := Build(identity, number, nonce)

	return subtle.ConstantTimeCompare([]byte(expected), []byte(commitment)) == 1
}

func ValidNumber(number int) bool {
	return number >= MIN_NUMBER && number <= MAX_NUMBER
}

// IsCommitment reports whether s has the shape of a commitment: exactly
// 64 lowercase hexadecimal characters.
func IsCommitment(s string) bool {

	if len(s) != COMMITMENT_LENGTH {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}

	return true
}
