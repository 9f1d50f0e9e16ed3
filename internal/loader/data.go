package loader

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/taigrr/fsexport/internal/codec"
	"gopkg.in/yaml.v3"
)

// JSON parses JSON data files.
func JSON() Loader {
	return LoaderFunc(func(_ string, src []byte) (any, error) {
		return codec.Parse(src)
	})
}

// YAML parses YAML data files. Mappings with non-string keys are
// converted to string-keyed maps.
func YAML() Loader {
	return LoaderFunc(func(_ string, src []byte) (any, error) {
		var v any
		if err := yaml.Unmarshal(src, &v); err != nil {
			return nil, fmt.Errorf("malformed YAML: %w", err)
		}
		return normalize(v), nil
	})
}

// TOML parses TOML data files into a map.
func TOML() Loader {
	return LoaderFunc(func(_ string, src []byte) (any, error) {
		var v map[string]any
		if err := toml.Unmarshal(src, &v); err != nil {
			return nil, fmt.Errorf("malformed TOML: %w", err)
		}
		if v == nil {
			v = map[string]any{}
		}
		return v, nil
	})
}

func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, elem := range t {
			t[k] = normalize(elem)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, elem := range t {
			out[fmt.Sprint(k)] = normalize(elem)
		}
		return out
	case []any:
		for i, elem := range t {
			t[i] = normalize(elem)
		}
		return t
	}
	return v
}
