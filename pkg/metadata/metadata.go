// Package metadata fingerprints loaded datasets.
package metadata

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// Metadata verification errors.
var (
	ErrNoHashFound  = errors.New("no hash found in metadata")
	ErrHashMismatch = errors.New("hash mismatch")
)

// Metadata describes where a dataset came from and what it contained.
type Metadata struct {
	LoadedAt time.Time `json:"loadedAt"`
	Source   string    `json:"source"`
	Hash     string    `json:"hash"`
	Weeks    int       `json:"weeks"`
	Clusters int       `json:"clusters"`
	Articles int       `json:"articles"`
}

// CalculateHash computes the SHA-256 hash of the raw dataset bytes.
func CalculateHash(content []byte) string {
	hash := sha256.Sum256(content)

	return hex.EncodeToString(hash[:])
}

// New fingerprints raw content loaded from source.
func New(source string, content []byte) *Metadata {
	return &Metadata{
		LoadedAt: time.Now().UTC(),
		Source:   source,
		Hash:     CalculateHash(content),
	}
}

// Short returns the first 12 hex characters of the hash, for cache keys and ETags.
func (m *Metadata) Short() string {
	if len(m.Hash) <= 12 {
		return m.Hash
	}

	return m.Hash[:12]
}

// Verify checks if content matches the recorded hash.
func (m *Metadata) Verify(content []byte) (bool, error) {
	if m.Hash == "" {
		return false, ErrNoHashFound
	}

	calculated := CalculateHash(content)
	if calculated != m.Hash {
		return false, fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, m.Hash, calculated)
	}

	return true, nil
}

// String summarizes the metadata for logs.
func (m *Metadata) String() string {
	return fmt.Sprintf("%s (weeks=%d clusters=%d articles=%d hash=%s)",
		m.Source, m.Weeks, m.Clusters, m.Articles, m.Short())
}
