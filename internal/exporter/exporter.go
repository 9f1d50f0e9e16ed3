// Package exporter loads whole directory trees into nested maps and threads
// values through the modules of a directory.
package exporter

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/taigrr/fsexport/internal/errs"
	"github.com/taigrr/fsexport/internal/filesystem"
	"github.com/taigrr/fsexport/internal/loader"
	"github.com/taigrr/fsexport/internal/pathfilter"
	"github.com/taigrr/fsexport/internal/types"
	"go.uber.org/zap"
)

// DefaultSelfName is the entry skipped in every directory: the module
// performing the export usually lives beside the files it exports.
const DefaultSelfName = "index.js"

// DefaultPick is the extension filter used when none is given.
var DefaultPick = []string{"js", "json"}

// Options configures an Exporter.
type Options struct {
	SelfName string
	Loaders  *loader.Registry
	Ignore   *pathfilter.PathFilter
	Logger   *zap.Logger
}

// Exporter walks directories through a filesystem.Service.
type Exporter struct {
	fs       *filesystem.Service
	loaders  *loader.Registry
	ignore   *pathfilter.PathFilter
	selfName string
	log      *zap.Logger
}

// New creates an Exporter. Zero options select the defaults.
func New(fsys *filesystem.Service, opts Options) *Exporter {
	if fsys == nil {
		fsys = filesystem.New("")
	}
	if opts.SelfName == "" {
		opts.SelfName = DefaultSelfName
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Loaders == nil {
		opts.Loaders = loader.NewRegistry(loader.Options{Logger: opts.Logger})
	}
	opts.Logger.Debug("exporter ready",
		zap.String("self_name", opts.SelfName),
		zap.Strings("loaders", opts.Loaders.Extensions()),
		zap.Strings("ignore", opts.Ignore.Patterns()),
	)
	return &Exporter{
		fs:       fsys,
		loaders:  opts.Loaders,
		ignore:   opts.Ignore,
		selfName: opts.SelfName,
		log:      opts.Logger,
	}
}

// request is an ExportParams resolved at the call boundary.
type request struct {
	root      string
	loadable  []string
	readable  []string
	transform types.Transform
}

func (e *Exporter) resolve(params types.ExportParams) (*request, error) {
	const op = "export"

	if strings.TrimSpace(params.Root) == "" {
		return nil, errs.InvalidArgument(op, "root", "must be a non-empty string")
	}

	pick := DefaultPick
	if params.Pick != nil {
		if len(params.Pick) == 0 {
			return nil, errs.InvalidArgument(op, "pick", "must be a non-empty string or list of strings")
		}
		pick = make([]string, 0, len(params.Pick))
		for i, ext := range params.Pick {
			ext = strings.TrimPrefix(strings.TrimSpace(ext), ".")
			if ext == "" {
				return nil, errs.InvalidArgument(op, "pick", fmt.Sprintf("entry %d must be a non-empty string", i))
			}
			pick = append(pick, ext)
		}
	}

	transform := params.Transform
	if transform == nil {
		transform = func(v any) (any, error) { return v, nil }
	}

	loadable, readable := e.loaders.Partition(pick)
	return &request{
		root:      params.Root,
		loadable:  loadable,
		readable:  readable,
		transform: transform,
	}, nil
}

// Export loads the directory tree under params.Root. Any failure aborts
// the whole export and no partial tree is returned.
func (e *Exporter) Export(params types.ExportParams) (types.Tree, error) {
	req, err := e.resolve(params)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	w := &walk{Exporter: e, req: req}

	tree, err := w.dir(req.root, ".", nil)
	if err != nil {
		e.log.Debug("export failed", zap.String("root", req.root), zap.Error(err))
		return nil, err
	}

	e.log.Info("export complete",
		zap.String("root", req.root),
		zap.Int("files", w.files),
		zap.Int("directories", w.dirs),
		zap.Duration("elapsed", time.Since(start)),
	)
	return tree, nil
}

type walk struct {
	*Exporter
	req   *request
	files int
	dirs  int
}

// dir exports one directory. ancestors holds the real paths of every
// directory on the current recursion path.
func (w *walk) dir(dir, rel string, ancestors []string) (types.Tree, error) {
	const op = "export"

	entries, err := w.fs.ReadDir(dir)
	if err != nil {
		return nil, relabel(err, op, dir)
	}

	realPath, err := w.fs.RealPath(dir)
	if err != nil {
		return nil, relabel(err, op, dir)
	}
	if slices.Contains(ancestors, realPath) {
		return nil, errs.Read(op, dir, fmt.Errorf("%w: %s", errs.ErrCycle, realPath))
	}
	ancestors = append(ancestors, realPath)
	w.dirs++

	result := types.Tree{}
	for _, entry := range entries {
		if entry.Name == w.selfName {
			continue
		}

		entryRel := path.Join(rel, entry.Name)
		if w.ignore.IsIgnored(entryRel) {
			w.log.Debug("entry ignored", zap.String("path", entryRel))
			continue
		}

		fullPath := filepath.Join(dir, entry.Name)
		switch {
		case entry.IsDir():
			sub, err := w.dir(fullPath, entryRel, ancestors)
			if err != nil {
				return nil, err
			}
			result[entry.Name] = sub

		case slices.Contains(w.req.loadable, entry.Extension):
			src, err := w.fs.ReadFile(fullPath)
			if err != nil {
				return nil, relabel(err, op, fullPath)
			}
			v, err := w.loaders.Load(fullPath, entry.Extension, src)
			if err != nil {
				return nil, errs.Load(op, fullPath, err)
			}
			if result[entry.Basename()], err = w.apply(fullPath, loader.LoadedValue(v)); err != nil {
				return nil, err
			}

		case slices.Contains(w.req.readable, entry.Extension):
			text, err := w.fs.ReadFileText(fullPath)
			if err != nil {
				return nil, relabel(err, op, fullPath)
			}
			if result[entry.Basename()], err = w.apply(fullPath, loader.RawText(text)); err != nil {
				return nil, err
			}

		default:
			continue
		}
	}

	return result, nil
}

func (w *walk) apply(fullPath string, v loader.Value) (out any, err error) {
	w.files++
	w.log.Debug("entry exported", zap.String("path", fullPath), zap.Stringer("kind", v.Kind))

	defer func() {
		if r := recover(); r != nil {
			err = errs.Transform("export", fullPath, fmt.Errorf("transform panicked: %v", r))
		}
	}()

	out, err = w.req.transform(v.Data)
	if err != nil {
		return nil, errs.Transform("export", fullPath, err)
	}
	return out, nil
}

// relabel reports a filesystem error under op and path, keeping its kind.
func relabel(err error, op, path string) error {
	var e *errs.Error
	if !errors.As(err, &e) {
		return errs.Read(op, path, err)
	}
	c := *e
	c.Op, c.Path = op, path
	return &c
}
