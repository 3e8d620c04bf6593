package util

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// GenericHash returns the 32 byte BLAKE2b digest of key || buffer.
// An empty key hashes the buffer alone.
func GenericHash(buffer []byte, key []byte) ([]byte, error) {

	hashInput := make([]byte, 0, len(key)+len(buffer))
	hashInput = append(hashInput, key...)
	hashInput = append(hashInput, buffer...)

	hasher, err := blake2b.New256(nil)
	if err != nil {
		return nil, errors.Wrap(err, "Unable create blake2b hash object")
	}

	if _, err := hasher.Write(hashInput); err != nil {
		return nil, errors.Wrap(err, "Unable write buffer bytes to hash function")
	}

	return hasher.Sum(nil), nil
}

// StripQuote trims surrounding whitespace and a single pair of matching
// double or single quotes.
func StripQuote(s string) string {

	m := strings.TrimSpace(s)
	if len(m) < 2 {
		return m
	}

	first, last := m[0], m[len(m)-1]
	if first == last && (first == '"' || first == '\'') {
		m = m[1 : len(m)-1]
	}

	return m
}
