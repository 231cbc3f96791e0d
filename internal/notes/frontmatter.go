package notes

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Frontmatter holds the recognized metadata keys of a note. Unrecognized
// keys land in Extra instead of being threaded through the pipeline as an
// untyped map.
type Frontmatter struct {
	Title   string         `yaml:"title"`
	Tags    []string       `yaml:"tags"`
	Created string         `yaml:"created"`
	Updated string         `yaml:"updated"`
	Extra   map[string]any `yaml:",inline"`
}

const frontmatterDelimiter = "---"

// SplitFrontmatter separates a YAML frontmatter block from the note body.
// Content without a leading delimiter is returned unchanged with a zero
// Frontmatter. A malformed block is an error; callers treat it as a
// per-file warning, not a scan failure.
func SplitFrontmatter(content string) (Frontmatter, string, error) {
	var fm Frontmatter

	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, frontmatterDelimiter+"\n") {
		return fm, content, nil
	}

	rest := normalized[len(frontmatterDelimiter)+1:]
	end := strings.Index(rest, "\n"+frontmatterDelimiter)
	if end < 0 {
		return fm, content, fmt.Errorf("frontmatter: missing closing delimiter")
	}

	block := rest[:end]
	body := rest[end+len(frontmatterDelimiter)+1:]
	body = strings.TrimPrefix(body, "\n")

	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return Frontmatter{}, content, fmt.Errorf("frontmatter: %w", err)
	}

	return fm, body, nil
}

// frontmatterTimeFormats are the accepted layouts for `created`/`updated`.
var frontmatterTimeFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime parses a frontmatter timestamp value. Empty input yields a zero
// time with no error.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range frontmatterTimeFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", value)
}
