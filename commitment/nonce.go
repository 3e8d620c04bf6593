package commitment

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"

	"beautycontest/util"
)

const NONCE_SEED_BYTES = 32

// GenerateNonce suggests a fresh secret nonce: 32 random bytes hashed with
// BLAKE2b-256, hex encoded. The protocol never calls this on its own; a
// participant must keep the nonce to be able to reveal later.
func GenerateNonce() (string, error) {

	randBytes := make([]byte, NONCE_SEED_BYTES)
	if _, err := rand.Read(randBytes); err != nil {
		log.WithError(err).Error("Unable to read random bytes")
		return "", errors.Wrap(err, "Unable to read random bytes")
	}

	nonceHash, err := util.GenericHash(randBytes, nil)
	if err != nil {
		log.WithError(err).Error("Unable to hash rand bytes for nonce")
		return "", err
	}

	return hex.EncodeToString(nonceHash), nil
}
