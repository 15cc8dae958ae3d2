package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash computes the SHA-256 hex digest of data. Used to key conversion
// results on input file content.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ResultKey builds a cache key for a conversion result: the input content
// hash combined with every option that influences the output. The options
// are hashed through their JSON encoding, which is deterministic (map keys
// are sorted).
func ResultKey(contentHash string, opts ...any) string {
	data, _ := json.Marshal(opts)
	sum := sha256.Sum256(data)
	return fmt.Sprintf("result:%s:%s", contentHash, hex.EncodeToString(sum[:16]))
}
