package bigsegments

import (
	"crypto/sha256"
	"encoding/base64"
)

// HashForUserKey computes the hash used to look up a user in a big segment store.
func HashForUserKey(key string) string {
	hashBytes := sha256.Sum256([]byte(key))
	return base64.StdEncoding.EncodeToString(hashBytes[:])
}
