package exporter

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/taigrr/fsexport/internal/errs"
	"github.com/taigrr/fsexport/internal/loader"
	"github.com/taigrr/fsexport/internal/types"
	"go.uber.org/zap"
)

// Pass threads params.Initial through every module file directly inside
// params.Dir, in lexicographic order: acc = f(acc) for each file.
// Subdirectories, the self-reference entry and ignored entries are skipped.
func (e *Exporter) Pass(params types.PassParams) (any, error) {
	const op = "pass"

	if strings.TrimSpace(params.Dir) == "" {
		return nil, errs.InvalidArgument(op, "dir", "must be a non-empty string")
	}

	entries, err := e.fs.ReadDir(params.Dir)
	if err != nil {
		return nil, relabel(err, op, params.Dir)
	}

	acc := params.Initial
	steps := 0
	for _, entry := range entries {
		if entry.IsDir() || entry.Name == e.selfName || e.ignore.IsIgnored(entry.Name) {
			continue
		}

		fullPath := filepath.Join(params.Dir, entry.Name)
		fn, err := e.loadFunc(fullPath, entry)
		if err != nil {
			return nil, err
		}

		if acc, err = fn.Call(acc); err != nil {
			return nil, errs.Transform(op, fullPath, err)
		}
		steps++
		e.log.Debug("pass step", zap.String("path", fullPath), zap.String("func", fn.Name()))
	}

	e.log.Info("pass complete", zap.String("dir", params.Dir), zap.Int("steps", steps))
	return acc, nil
}

func (e *Exporter) loadFunc(fullPath string, entry types.DirectoryEntry) (*loader.Func, error) {
	const op = "pass"

	if !e.loaders.Has(entry.Extension) {
		return nil, errs.Load(op, fullPath, fmt.Errorf("no loader registered for extension %q", entry.Extension))
	}

	src, err := e.fs.ReadFile(fullPath)
	if err != nil {
		return nil, relabel(err, op, fullPath)
	}

	v, err := e.loaders.Load(fullPath, entry.Extension, src)
	if err != nil {
		return nil, errs.Load(op, fullPath, err)
	}

	fn, ok := v.(*loader.Func)
	if !ok {
		return nil, errs.Load(op, fullPath, fmt.Errorf("module does not export a function (got %T)", v))
	}
	return fn, nil
}
