// Package fsexport exports directory trees as nested values, threads values
// through the modules of a directory, and reads and writes JSON files.
//
// Files are turned into values by extension: "json" files are parsed and
// "js" files are evaluated as CommonJS-style modules. Other picked
// extensions are read as raw text.
//
//	fsx, err := fsexport.New()
//	if err != nil {
//		return err
//	}
//	tree, err := fsx.Export(fsexport.ExportParams{Root: "./config"})
package fsexport

import (
	"time"

	"github.com/taigrr/fsexport/internal/errs"
	"github.com/taigrr/fsexport/internal/exporter"
	"github.com/taigrr/fsexport/internal/filesystem"
	"github.com/taigrr/fsexport/internal/future"
	"github.com/taigrr/fsexport/internal/loader"
	"github.com/taigrr/fsexport/internal/pathfilter"
	"github.com/taigrr/fsexport/internal/types"
	"go.uber.org/zap"
)

type (
	Tree         = types.Tree
	Transform    = types.Transform
	ExportParams = types.ExportParams
	PassParams   = types.PassParams
	EntryInfo    = types.EntryInfo
	Func         = loader.Func
	Loader       = loader.Loader
	LoaderFunc   = loader.LoaderFunc
	Error        = errs.Error
)

// Future is the pending result of an async operation.
type Future[T any] = future.Future[T]

var (
	ErrInvalidArgument = errs.ErrInvalidArgument
	ErrNotFound        = errs.ErrNotFound
	ErrRead            = errs.ErrRead
	ErrWrite           = errs.ErrWrite
	ErrParse           = errs.ErrParse
	ErrLoad            = errs.ErrLoad
	ErrTransform       = errs.ErrTransform
	ErrCycle           = errs.ErrCycle
)

// FS is the entry point to every fsexport operation.
type FS struct {
	fs       *filesystem.Service
	exporter *exporter.Exporter
}

type settings struct {
	root        string
	loaderSets  []string
	custom      map[string]Loader
	ignore      []string
	selfName    string
	evalTimeout time.Duration
	logger      *zap.Logger
}

// Option configures an FS.
type Option func(*settings)

// WithRoot confines every path to root. Relative paths resolve under it.
func WithRoot(root string) Option {
	return func(s *settings) { s.root = root }
}

// WithLoaders enables optional loader sets: "yaml", "toml", "star", "md".
func WithLoaders(names ...string) Option {
	return func(s *settings) { s.loaderSets = append(s.loaderSets, names...) }
}

// WithLoader binds ext to a custom loader.
func WithLoader(ext string, l Loader) Option {
	return func(s *settings) {
		if s.custom == nil {
			s.custom = make(map[string]Loader)
		}
		s.custom[ext] = l
	}
}

// WithIgnore skips entries whose path relative to the walk root matches
// one of the doublestar patterns.
func WithIgnore(patterns ...string) Option {
	return func(s *settings) { s.ignore = append(s.ignore, patterns...) }
}

// WithSelfName sets the entry name skipped in every directory. The default
// is "index.js".
func WithSelfName(name string) Option {
	return func(s *settings) { s.selfName = name }
}

// WithEvalTimeout bounds module evaluation and each call into a loaded
// function.
func WithEvalTimeout(d time.Duration) Option {
	return func(s *settings) { s.evalTimeout = d }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(s *settings) { s.logger = logger }
}

// New creates an FS.
func New(opts ...Option) (*FS, error) {
	s := settings{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&s)
	}

	reg := loader.NewRegistry(loader.Options{EvalTimeout: s.evalTimeout, Logger: s.logger})
	if err := reg.Enable(s.loaderSets...); err != nil {
		return nil, errs.InvalidArgument("new", "loaders", err.Error())
	}
	for ext, l := range s.custom {
		reg.Register(ext, l)
	}

	filter, err := pathfilter.New(s.ignore)
	if err != nil {
		return nil, errs.InvalidArgument("new", "ignore", err.Error())
	}

	fsys := filesystem.New(s.root)
	return &FS{
		fs: fsys,
		exporter: exporter.New(fsys, exporter.Options{
			SelfName: s.selfName,
			Loaders:  reg,
			Ignore:   filter,
			Logger:   s.logger,
		}),
	}, nil
}

// Export loads the directory tree under params.Root.
func (f *FS) Export(params ExportParams) (Tree, error) {
	return f.exporter.Export(params)
}

// ExportAsync is the deferred form of Export.
func (f *FS) ExportAsync(params ExportParams) *Future[Tree] {
	return f.exporter.ExportAsync(params)
}

// Pass threads initial through the module files of dir in lexicographic
// order.
func (f *FS) Pass(dir string, initial any) (any, error) {
	return f.exporter.Pass(PassParams{Dir: dir, Initial: initial})
}

// PassAsync is the deferred form of Pass.
func (f *FS) PassAsync(dir string, initial any) *Future[any] {
	return f.exporter.PassAsync(PassParams{Dir: dir, Initial: initial})
}

// Find reports whether path exists. It never fails.
func (f *FS) Find(path string) bool {
	return f.fs.Exists(path)
}

// PathExists is an alias of Find.
func (f *FS) PathExists(path string) bool {
	return f.fs.Exists(path)
}

// ReadJSON reads and parses a JSON file.
func (f *FS) ReadJSON(path string) (any, error) {
	return f.fs.ReadJSON(path)
}

// ReadJSONInto reads a JSON file and decodes it into v.
func (f *FS) ReadJSONInto(path string, v any) error {
	return f.fs.ReadJSONInto(path, v)
}

// ReadJSONAsync is the deferred form of ReadJSON.
func (f *FS) ReadJSONAsync(path string) *Future[any] {
	return f.fs.ReadJSONAsync(path)
}

// WriteJSON writes v to path as indented JSON.
func (f *FS) WriteJSON(path string, v any) error {
	return f.fs.WriteJSON(path, v)
}

// WriteJSONAsync is the deferred form of WriteJSON.
func (f *FS) WriteJSONAsync(path string, v any) *Future[struct{}] {
	return f.fs.WriteJSONAsync(path, v)
}

// ReadFileText reads a file as UTF-8 text.
func (f *FS) ReadFileText(path string) (string, error) {
	return f.fs.ReadFileText(path)
}

// ReadFileTextAsync is the deferred form of ReadFileText.
func (f *FS) ReadFileTextAsync(path string) *Future[string] {
	return f.fs.ReadFileTextAsync(path)
}

// WriteFileText writes content to path, creating parent directories.
func (f *FS) WriteFileText(path, content string) error {
	return f.fs.WriteFileText(path, content)
}

// WriteFileTextAsync is the deferred form of WriteFileText.
func (f *FS) WriteFileTextAsync(path, content string) *Future[struct{}] {
	return f.fs.WriteFileTextAsync(path, content)
}

// ListDirectory returns the entry names of path in lexicographic order.
func (f *FS) ListDirectory(path string) ([]string, error) {
	return f.fs.ListDirectory(path)
}

// ListDirectoryAsync is the deferred form of ListDirectory.
func (f *FS) ListDirectoryAsync(path string) *Future[[]string] {
	return f.fs.ListDirectoryAsync(path)
}

// Stat describes the entry at path.
func (f *FS) Stat(path string) (EntryInfo, error) {
	return f.fs.Stat(path)
}
