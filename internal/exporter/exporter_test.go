package exporter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/fsexport/internal/errs"
	"github.com/taigrr/fsexport/internal/filesystem"
	"github.com/taigrr/fsexport/internal/loader"
	"github.com/taigrr/fsexport/internal/pathfilter"
	"github.com/taigrr/fsexport/internal/types"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		full := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func newExporter(t *testing.T, opts Options) *Exporter {
	t.Helper()
	return New(filesystem.New(""), opts)
}

func TestExportJSON(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.json": `{"x": 1}`})

	tree, err := newExporter(t, Options{}).Export(types.ExportParams{Root: dir, Pick: []string{"json"}})
	require.NoError(t, err)
	assert.Equal(t, types.Tree{"a": map[string]any{"x": float64(1)}}, tree)
}

func TestExportRawText(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "hello"})

	tree, err := newExporter(t, Options{}).Export(types.ExportParams{Root: dir, Pick: []string{".txt"}})
	require.NoError(t, err)
	assert.Equal(t, types.Tree{"a": "hello"}, tree)
}

func TestExportNested(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"sub/a.json":      `{"x": 1}`,
		"sub/deep/b.json": `[1, 2]`,
		"top.js":          `module.exports = "top";`,
		"empty.dir/.keep": "",
	})

	tree, err := newExporter(t, Options{}).Export(types.ExportParams{Root: dir})
	require.NoError(t, err)
	assert.Equal(t, types.Tree{
		"top": "top",
		"sub": types.Tree{
			"a":    map[string]any{"x": float64(1)},
			"deep": types.Tree{"b": []any{float64(1), float64(2)}},
		},
		"empty.dir": types.Tree{},
	}, tree)
}

func TestExportNonMatchingExtensions(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.txt": "x", "b.md": "y", "Makefile": "all:", ".env": "K=V"})

	tree, err := newExporter(t, Options{}).Export(types.ExportParams{Root: dir})
	require.NoError(t, err)
	assert.Empty(t, tree)
}

func TestExportSkipsSelfReference(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"index.js":     `module.exports = "self";`,
		"other.js":     `module.exports = "other";`,
		"sub/index.js": `module.exports = "nested self";`,
	})

	tree, err := newExporter(t, Options{}).Export(types.ExportParams{Root: dir})
	require.NoError(t, err)
	assert.Equal(t, types.Tree{"other": "other", "sub": types.Tree{}}, tree)

	tree, err = newExporter(t, Options{SelfName: "other.js"}).Export(types.ExportParams{Root: dir})
	require.NoError(t, err)
	assert.Equal(t, types.Tree{"index": "self", "sub": types.Tree{"index": "nested self"}}, tree)
}

func TestExportTransform(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.txt":     "one",
		"b.txt":     "two",
		"sub/c.txt": "three",
	})

	var calls []any
	tree, err := newExporter(t, Options{}).Export(types.ExportParams{
		Root: dir,
		Pick: []string{"txt"},
		Transform: func(v any) (any, error) {
			calls = append(calls, v)
			return strings.ToUpper(v.(string)), nil
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []any{"one", "two", "three"}, calls, "applied once per value, never to directories")
	assert.Equal(t, types.Tree{"a": "ONE", "b": "TWO", "sub": types.Tree{"c": "THREE"}}, tree)
}

func TestExportTransformErrors(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.json": `1`})

	ex := newExporter(t, Options{})

	tree, err := ex.Export(types.ExportParams{
		Root:      dir,
		Transform: func(any) (any, error) { return nil, errors.New("rejected") },
	})
	assert.Nil(t, tree)
	assert.ErrorIs(t, err, errs.ErrTransform)
	assert.Contains(t, err.Error(), "rejected")

	_, err = ex.Export(types.ExportParams{
		Root:      dir,
		Transform: func(any) (any, error) { panic("boom") },
	})
	assert.ErrorIs(t, err, errs.ErrTransform)
	assert.Contains(t, err.Error(), "boom")
}

func TestExportMalformedJSONIsLoadError(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.json": `{"ok": true}`, "b.json": `{"x":`})

	tree, err := newExporter(t, Options{}).Export(types.ExportParams{Root: dir})
	assert.Nil(t, tree, "no partial result")
	assert.ErrorIs(t, err, errs.ErrLoad)
	assert.Contains(t, err.Error(), "b.json")
}

func TestExportNotFound(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"file.json": `{}`})

	ex := newExporter(t, Options{})

	_, err := ex.Export(types.ExportParams{Root: filepath.Join(dir, "missing")})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = ex.Export(types.ExportParams{Root: filepath.Join(dir, "file.json")})
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestExportInvalidArguments(t *testing.T) {
	dir := t.TempDir()
	ex := newExporter(t, Options{})

	tests := []struct {
		name   string
		params types.ExportParams
		param  string
	}{
		{"empty root", types.ExportParams{Root: ""}, "root"},
		{"blank root", types.ExportParams{Root: "   "}, "root"},
		{"empty pick", types.ExportParams{Root: dir, Pick: []string{}}, "pick"},
		{"empty pick entry", types.ExportParams{Root: dir, Pick: []string{"json", ""}}, "pick"},
		{"dot only", types.ExportParams{Root: dir, Pick: []string{"."}}, "pick"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ex.Export(tt.params)
			require.ErrorIs(t, err, errs.ErrInvalidArgument)

			var e *errs.Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.param, e.Param)
		})
	}
}

func TestExportIgnore(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.json":              `1`,
		"node_modules/x.json": `2`,
		"sub/skip.json":       `3`,
		"sub/keep.json":       `4`,
	})

	filter, err := pathfilter.New([]string{"node_modules", "**/skip.json"})
	require.NoError(t, err)

	tree, err := newExporter(t, Options{Ignore: filter}).Export(types.ExportParams{Root: dir})
	require.NoError(t, err)
	assert.Equal(t, types.Tree{
		"a":   float64(1),
		"sub": types.Tree{"keep": float64(4)},
	}, tree)
}

func TestExportKeyCollisionLaterWins(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"a.js":   `module.exports = "js";`,
		"a.json": `"json"`,
	})

	tree, err := newExporter(t, Options{}).Export(types.ExportParams{Root: dir})
	require.NoError(t, err)
	assert.Equal(t, types.Tree{"a": "json"}, tree)
}

func TestExportExtraLoaders(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"app.yaml": "port: 80\n",
		"db.toml":  "host = \"localhost\"\n",
		"notes.md": "---\ntitle: T\n---\nbody",
	})

	reg := loader.NewRegistry()
	require.NoError(t, reg.Enable("yaml", "toml"))

	tree, err := newExporter(t, Options{Loaders: reg}).Export(types.ExportParams{
		Root: dir,
		Pick: []string{"yaml", "toml", "md"},
	})
	require.NoError(t, err)
	assert.Equal(t, types.Tree{
		"app":   map[string]any{"port": 80},
		"db":    map[string]any{"host": "localhost"},
		"notes": "---\ntitle: T\n---\nbody",
	}, tree)
}

func TestExportSymlinkCycle(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"sub/a.json": `1`})
	if err := os.Symlink(dir, filepath.Join(dir, "sub", "loop")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	_, err := newExporter(t, Options{}).Export(types.ExportParams{Root: dir})
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrRead)
	assert.ErrorIs(t, err, errs.ErrCycle)
}

func TestExportSymlinkedDirectory(t *testing.T) {
	dir := t.TempDir()
	target := t.TempDir()
	writeFiles(t, target, map[string]string{"a.json": `{"linked": true}`})
	if err := os.Symlink(target, filepath.Join(dir, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	tree, err := newExporter(t, Options{}).Export(types.ExportParams{Root: dir})
	require.NoError(t, err)
	assert.Equal(t, types.Tree{"link": types.Tree{"a": map[string]any{"linked": true}}}, tree)
}

func TestExportFunctionValues(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"inc.js": `module.exports = (x) => x + 1;`})

	tree, err := newExporter(t, Options{}).Export(types.ExportParams{Root: dir})
	require.NoError(t, err)

	fn, ok := tree["inc"].(*loader.Func)
	require.True(t, ok, "got %T", tree["inc"])
	out, err := fn.Call(41)
	require.NoError(t, err)
	assert.EqualValues(t, 42, out)
}

func TestExportAsync(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"a.json": `{"x": 1}`})

	ex := newExporter(t, Options{})
	sync, err := ex.Export(types.ExportParams{Root: dir})
	require.NoError(t, err)

	async, err := ex.ExportAsync(types.ExportParams{Root: dir}).Await()
	require.NoError(t, err)
	assert.Equal(t, sync, async)

	_, err = ex.ExportAsync(types.ExportParams{Root: ""}).Await()
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestExportHostileModules(t *testing.T) {
	reg := loader.NewRegistry()
	require.NoError(t, reg.Enable("star"))
	reg.Register("bad", loader.LoaderFunc(func(string, []byte) (any, error) {
		panic("kaboom")
	}))

	tests := []struct {
		name string
		file string
		src  string
		msg  string
	}{
		{"circular object", "self.js", `const o = {}; o.self = o; module.exports = o;`, "circular structure"},
		{"circular array", "arr.js", `const a = []; a.push(a); module.exports = {a};`, "circular structure"},
		{"throwing getter", "getter.js", `module.exports = { get x() { throw new Error("boom"); } };`, "boom"},
		{"circular starlark list", "self.star", "a = []\na.append(a)\nexports = a\n", "circular structure"},
		{"panicking loader", "x.bad", "anything", `loader for "bad" panicked: kaboom`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, map[string]string{"ok.json": `{"fine": true}`, tt.file: tt.src})

			ex := newExporter(t, Options{Loaders: reg})
			params := types.ExportParams{Root: dir, Pick: []string{"json", "js", "star", "bad"}}

			tree, err := ex.Export(params)
			assert.Nil(t, tree, "no partial result")
			require.ErrorIs(t, err, errs.ErrLoad)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Contains(t, err.Error(), tt.file)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			tree, err = ex.ExportAsync(params).AwaitContext(ctx)
			assert.Nil(t, tree)
			require.ErrorIs(t, err, errs.ErrLoad)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
