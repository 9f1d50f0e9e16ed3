// Package frontmatter splits YAML frontmatter from the body of a text file.
package frontmatter

import (
	"fmt"
	"strings"

	"github.com/taigrr/fsexport/internal/types"
	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Handler parses frontmatter documents.
type Handler struct {
	// Strict makes Parse fail on malformed YAML instead of treating the
	// whole file as body.
	Strict bool
}

// New creates a new Handler.
func New() *Handler {
	return &Handler{}
}

// Parse splits content into frontmatter and body. Content without a
// leading "---" line has empty frontmatter.
func (h *Handler) Parse(content string) (types.Document, error) {
	doc := types.Document{
		Frontmatter: make(map[string]any),
		Content:     content,
	}

	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalized, delimiter+"\n") {
		return doc, nil
	}

	rest := normalized[len(delimiter)+1:]
	var yamlContent, body string
	switch {
	case strings.HasPrefix(rest, delimiter+"\n"):
		body = rest[len(delimiter)+1:]
	case rest == delimiter:
	default:
		end := strings.Index(rest, "\n"+delimiter+"\n")
		if end == -1 {
			// Closing delimiter at the very end
			if !strings.HasSuffix(rest, "\n"+delimiter) {
				return doc, nil
			}
			end = len(rest) - len(delimiter) - 1
			yamlContent = rest[:end]
		} else {
			yamlContent = rest[:end]
			body = rest[end+len(delimiter)+2:]
		}
	}

	var fm map[string]any
	if err := yaml.Unmarshal([]byte(yamlContent), &fm); err != nil {
		if h.Strict {
			return doc, fmt.Errorf("invalid frontmatter: %w", err)
		}
		return doc, nil
	}

	if fm != nil {
		doc.Frontmatter = fm
	}
	doc.Content = body
	return doc, nil
}
