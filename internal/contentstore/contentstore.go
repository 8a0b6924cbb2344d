// Package contentstore holds document attachments addressed by the SHA-256
// of their bytes. The registry only ever stores the ref; the bytes live here.
package contentstore

import (
	"crypto/sha256"
	"encoding/hex"

	"medledger/pkg/domain"
)

const refPrefix = "sha256-"

// RefFor returns the content address for data.
func RefFor(data []byte) domain.ContentRef {
	sum := sha256.Sum256(data)
	return domain.ContentRef(refPrefix + hex.EncodeToString(sum[:]))
}
