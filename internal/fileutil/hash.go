package fileutil

import (
	"encoding/hex"

	"lukechampine.com/blake3"
)

// HashBytes returns the hex BLAKE3 digest of data.
func HashBytes(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
