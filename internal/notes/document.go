package notes

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// Document is a single note file as seen by the indexing pipeline.
type Document struct {
	ID              string    // Stable identifier derived from the absolute path.
	Path            string    // Absolute path on disk.
	Title           string    // First level-1 heading, frontmatter override, or filename stem.
	Text            string    // Note body with frontmatter stripped.
	Tags            []string  // Tags from frontmatter, empty when absent.
	CreatedAt       time.Time // Frontmatter `created` or file modification time.
	UpdatedAt       time.Time // Frontmatter `updated` or file modification time.
	CreatedExplicit bool      // CreatedAt came from frontmatter rather than mtime.
	Fingerprint     string    // SHA-256 over the normalized text.
}

// DocumentID derives the stable document identifier for a path.
// The first 16 hex characters of the SHA-256 digest are plenty for a
// single-user corpus and keep chunk IDs readable.
func DocumentID(absPath string) string {
	sum := sha256.Sum256([]byte(absPath))
	return hex.EncodeToString(sum[:])[:16]
}

// Fingerprint hashes the normalized document text. Normalization strips
// surrounding whitespace and unifies line endings so that a metadata-only
// touch (mtime change, trailing newline) does not force re-indexing.
func Fingerprint(text string) string {
	normalized := strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
