package types

type (
	// Transform maps one exported value to another.
	Transform func(value any) (any, error)

	// Tree mirrors a directory: file basenames map to values and directory
	// names map to nested Trees.
	Tree map[string]any

	// ExportParams contains parameters for a recursive export.
	ExportParams struct {
		Root      string    `json:"root"`
		Pick      []string  `json:"pick,omitempty"` // nil means ["js", "json"]
		Transform Transform `json:"-"`
	}

	// PassParams contains parameters for threading a value through the
	// modules of a directory.
	PassParams struct {
		Dir     string `json:"dir"`
		Initial any    `json:"initial,omitempty"`
	}
)
