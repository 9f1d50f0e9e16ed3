package loader

import "github.com/taigrr/fsexport/internal/frontmatter"

// Markdown loads text documents with YAML frontmatter into
// {"frontmatter": map, "content": string}.
func Markdown(h *frontmatter.Handler) Loader {
	if h == nil {
		h = &frontmatter.Handler{Strict: true}
	}
	return LoaderFunc(func(_ string, src []byte) (any, error) {
		doc, err := h.Parse(string(src))
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"frontmatter": doc.Frontmatter,
			"content":     doc.Content,
		}, nil
	})
}
