package notes

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultMaxFileSize is the largest note the scanner will read (4 MB).
const DefaultMaxFileSize int64 = 4 << 20

// supportedExtensions lists the note file types the scanner picks up.
var supportedExtensions = map[string]bool{
	".md":       true,
	".markdown": true,
	".txt":      true,
}

// Warning records a per-file problem encountered during a scan. Scans never
// abort on individual files; callers surface warnings in the sync summary.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %v", w.Path, w.Err)
}

// Scanner enumerates note files under one or more root directories.
type Scanner struct {
	dirs        []string
	include     []string
	exclude     []string
	maxFileSize int64
}

// NewScanner creates a Scanner over the given directories. Include and
// exclude are doublestar glob patterns matched against the path relative to
// the scanned root; empty include means everything.
func NewScanner(dirs, include, exclude []string, maxFileSize int64) *Scanner {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Scanner{
		dirs:        dirs,
		include:     include,
		exclude:     exclude,
		maxFileSize: maxFileSize,
	}
}

// Scan walks every configured directory and returns the documents found,
// along with warnings for entries that could not be read or decoded.
// A missing root directory is a warning, not an error.
func (s *Scanner) Scan() ([]Document, []Warning, error) {
	var docs []Document
	var warnings []Warning
	seen := make(map[string]bool)

	for _, dir := range s.dirs {
		root, err := filepath.Abs(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("notes: resolve root %s: %w", dir, err)
		}

		if _, err := os.Stat(root); err != nil {
			warnings = append(warnings, Warning{Path: root, Err: err})
			continue
		}

		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				warnings = append(warnings, Warning{Path: path, Err: walkErr})
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			name := d.Name()
			if d.IsDir() {
				// Skip hidden directories (.git, .obsidian, .notesmith, ...).
				if path != root && strings.HasPrefix(name, ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.Type().IsRegular() {
				return nil
			}
			if !supportedExtensions[strings.ToLower(filepath.Ext(name))] {
				return nil
			}

			relPath, err := filepath.Rel(root, path)
			if err != nil {
				return nil
			}
			if !matchesInclude(relPath, s.include) || matchesExclude(relPath, s.exclude) {
				return nil
			}

			info, err := d.Info()
			if err != nil {
				warnings = append(warnings, Warning{Path: path, Err: err})
				return nil
			}
			if info.Size() > s.maxFileSize {
				warnings = append(warnings, Warning{Path: path, Err: fmt.Errorf("file exceeds %d bytes, skipped", s.maxFileSize)})
				return nil
			}

			doc, err := s.Read(path)
			if err != nil {
				warnings = append(warnings, Warning{Path: path, Err: err})
				return nil
			}
			if seen[doc.ID] {
				return nil
			}
			seen[doc.ID] = true
			docs = append(docs, doc)
			return nil
		})
		if err != nil {
			return nil, nil, fmt.Errorf("notes: walking %s: %w", root, err)
		}
	}

	return docs, warnings, nil
}

// Read loads a single note file and extracts its metadata. Frontmatter
// parse failures degrade to treating the whole file as body text.
func (s *Scanner) Read(path string) (Document, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Document{}, fmt.Errorf("resolve %s: %w", path, err)
	}

	raw, err := os.ReadFile(abs)
	if err != nil {
		return Document{}, err
	}
	if !utf8.Valid(raw) {
		return Document{}, fmt.Errorf("not valid UTF-8 text")
	}

	info, err := os.Stat(abs)
	if err != nil {
		return Document{}, err
	}

	fm, body, fmErr := SplitFrontmatter(string(raw))
	if fmErr != nil {
		// Keep the note searchable even when the metadata block is broken.
		body = string(raw)
		fm = Frontmatter{}
	}

	doc := Document{
		ID:          DocumentID(abs),
		Path:        abs,
		Text:        body,
		Tags:        fm.Tags,
		CreatedAt:   info.ModTime(),
		UpdatedAt:   info.ModTime(),
		Fingerprint: Fingerprint(body),
	}

	doc.Title = resolveTitle(abs, body, fm)

	if created, err := ParseTime(fm.Created); err == nil && !created.IsZero() {
		doc.CreatedAt = created
		doc.CreatedExplicit = true
	}
	if updated, err := ParseTime(fm.Updated); err == nil && !updated.IsZero() {
		doc.UpdatedAt = updated
	}

	return doc, nil
}

// resolveTitle picks the document title: frontmatter override, then the
// first level-1 heading, then the filename without extension.
func resolveTitle(path, body string, fm Frontmatter) string {
	if fm.Title != "" {
		return fm.Title
	}
	if isMarkdown(path) {
		if h := FirstHeading([]byte(body)); h != "" {
			return h
		}
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func isMarkdown(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".md" || ext == ".markdown"
}

func matchesInclude(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	return matchesAny(relPath, patterns)
}

func matchesExclude(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	return matchesAny(relPath, patterns)
}

// matchesAny checks relPath against doublestar patterns, also matching the
// bare filename so a pattern like "*.txt" works at any depth.
func matchesAny(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		if ok, err := doublestar.PathMatch(pattern, normalized); err == nil && ok {
			return true
		}
		if ok, err := doublestar.PathMatch(pattern, filepath.Base(normalized)); err == nil && ok {
			return true
		}
	}
	return false
}
