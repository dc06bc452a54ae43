// Package storage keeps uploaded logo images out of line, either in an
// S3-compatible bucket or on the local filesystem.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"path"

	"github.com/google/uuid"
	"github.com/h2non/filetype"
)

// logoKey returns "logos/<owner hash>/<uuid>.<ext>". The owner id is hashed
// so arbitrary ids never reach a path or object key.
func logoKey(ownerID string, data []byte) string {
	sum := sha256.Sum256([]byte(ownerID))
	return path.Join("logos", hex.EncodeToString(sum[:8]), uuid.NewString()+"."+extension(data))
}

func extension(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "bin"
	}
	return kind.Extension
}
