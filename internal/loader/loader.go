// Package loader turns files into values according to a static table that
// maps file extensions to loaders.
//
// Files whose extension has a loader are loaded as structured values
// (parsed data, or the exports of a code module). Everything else is read
// as raw text by the caller. The default table knows only "js" and "json";
// further loaders are enabled by name:
//
//	reg := loader.NewRegistry()
//	if err := reg.Enable("yaml", "toml"); err != nil {
//		return err
//	}
//	v, err := reg.Load("config/app.yaml", "yaml", src)
package loader

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Kind selects how a file becomes a value.
type Kind int

const (
	// KindRawText values are the file's text, unparsed.
	KindRawText Kind = iota
	// KindLoadedValue values come from parsing data or running a module.
	KindLoadedValue
)

func (k Kind) String() string {
	if k == KindLoadedValue {
		return "loaded"
	}
	return "raw"
}

// Value is either a loaded value or raw text.
type Value struct {
	Kind Kind
	Data any
}

// LoadedValue wraps a parsed or evaluated value.
func LoadedValue(v any) Value {
	return Value{Kind: KindLoadedValue, Data: v}
}

// RawText wraps file text.
func RawText(s string) Value {
	return Value{Kind: KindRawText, Data: s}
}

// Loader produces the value of a file from its contents.
type Loader interface {
	Load(path string, src []byte) (any, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(path string, src []byte) (any, error)

// Load calls f.
func (f LoaderFunc) Load(path string, src []byte) (any, error) {
	return f(path, src)
}

// Options configures the built-in loaders.
type Options struct {
	// EvalTimeout bounds module evaluation and each call into a loaded
	// function. Zero means no limit.
	EvalTimeout time.Duration
	Logger      *zap.Logger
}

// Registry is the extension to loader table.
type Registry struct {
	opts    Options
	loaders map[string]Loader
}

// NewRegistry returns a registry holding the default "js" and "json" loaders.
func NewRegistry(opts ...Options) *Registry {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	r := &Registry{opts: o, loaders: make(map[string]Loader)}
	r.Register("json", JSON())
	r.Register("js", NewJavaScript(o.EvalTimeout, o.Logger))
	return r
}

// Register binds ext (without the leading dot) to l, replacing any
// previous binding.
func (r *Registry) Register(ext string, l Loader) {
	r.loaders[strings.TrimPrefix(ext, ".")] = l
}

// Available lists the loader set names accepted by Enable.
func Available() []string {
	return []string{"md", "star", "toml", "yaml"}
}

// Enable registers optional loader sets by name: "yaml" (yaml, yml),
// "toml", "star" and "md" (md, markdown).
func (r *Registry) Enable(names ...string) error {
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "":
		case "yaml", "yml":
			r.Register("yaml", YAML())
			r.Register("yml", YAML())
		case "toml":
			r.Register("toml", TOML())
		case "star", "starlark":
			r.Register("star", NewStarlark(r.opts.EvalTimeout, r.opts.Logger))
		case "md", "markdown":
			r.Register("md", Markdown(nil))
			r.Register("markdown", Markdown(nil))
		default:
			return fmt.Errorf("unknown loader %q (available: %s)", name, strings.Join(Available(), ", "))
		}
	}
	return nil
}

// Lookup returns the loader bound to ext.
func (r *Registry) Lookup(ext string) (Loader, bool) {
	l, ok := r.loaders[ext]
	return l, ok
}

// Has reports whether ext has a loader.
func (r *Registry) Has(ext string) bool {
	_, ok := r.loaders[ext]
	return ok
}

// Extensions returns the registered extensions in sorted order.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.loaders))
	for ext := range r.loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Partition splits pick into the extensions that are loaded and the ones
// read as raw text. Order within each part follows pick; duplicates are
// dropped.
func (r *Registry) Partition(pick []string) (loadable, readable []string) {
	for _, ext := range pick {
		if slices.Contains(loadable, ext) || slices.Contains(readable, ext) {
			continue
		}
		if r.Has(ext) {
			loadable = append(loadable, ext)
		} else {
			readable = append(readable, ext)
		}
	}
	return loadable, readable
}

// Load runs the loader bound to the extension of path over src. A panic in
// the loader is returned as an error.
func (r *Registry) Load(path, ext string, src []byte) (v any, err error) {
	l, ok := r.Lookup(ext)
	if !ok {
		return nil, fmt.Errorf("no loader registered for extension %q", ext)
	}

	defer func() {
		if rec := recover(); rec != nil {
			v, err = nil, fmt.Errorf("loader for %q panicked: %v", ext, rec)
		}
	}()
	return l.Load(path, src)
}
