package types

// Document is a text file split into YAML frontmatter and body.
type Document struct {
	Frontmatter map[string]any `json:"frontmatter"`
	Content     string         `json:"content"`
}
