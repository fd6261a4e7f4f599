// Package cache provides localized filesystem-based caching for transient metadata API results.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/tokgrab-cli/tokgrab/filesystem"
	"github.com/tokgrab-cli/tokgrab/where"
)

// TTL bounds how long a cached entry is served. Media URLs returned by the
// upstream API are short-lived, so the window is kept tight.
const TTL = time.Hour

// GenerateKey generates a deterministic SHA-256 hash from a query and scope pair for use as a cache identifier.
func GenerateKey(query, scope string) string {
	sanitized := strings.ToLower(strings.ReplaceAll(query, " ", "")) + scope
	hash := sha256.Sum256([]byte(sanitized))
	return hex.EncodeToString(hash[:])
}

// Read attempts to retrieve and deserialize a cached object if it exists and has not exceeded its TTL.
func Read(key string, target interface{}) bool {
	fs := filesystem.API()
	path := filepath.Join(where.Cache(), key)

	info, err := fs.Stat(path)
	if err != nil || time.Since(info.ModTime()) > TTL {
		return false
	}

	content, err := fs.ReadFile(path)
	if err != nil {
		return false
	}

	return json.Unmarshal(content, target) == nil
}

// CollectGarbage removes cache entries that have outlived their TTL.
// Intended to run in the background on startup; failures are silent.
func CollectGarbage() {
	fs := filesystem.API()
	dir := where.Cache()

	entries, err := fs.ReadDir(dir)
	if err != nil {
		return
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if time.Since(entry.ModTime()) > TTL {
			_ = fs.Remove(filepath.Join(dir, entry.Name()))
		}
	}
}

// Write persists a serializable object to the cache using an atomic file swap to ensure data integrity.
func Write(key string, data interface{}) error {
	fs := filesystem.API()
	path := filepath.Join(where.Cache(), key)
	tmpPath := path + ".tmp"

	content, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if err := fs.WriteFile(tmpPath, content, 0644); err != nil {
		return err
	}

	return fs.Rename(tmpPath, path)
}
