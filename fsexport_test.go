package fsexport_test

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
	"github.com/taigrr/fsexport"
)

func TestExportAndPass(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1.js"), []byte(`module.exports = x => x + 1;`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2.js"), []byte(`module.exports = x => x * 2;`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.js"), []byte(`module.exports = "self";`), 0o644))

	fsx, err := fsexport.New()
	require.NoError(t, err)

	got, err := fsx.Pass(dir, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, got)

	got, err = fsx.PassAsync(dir, 5).Await()
	require.NoError(t, err)
	assert.EqualValues(t, 12, got)

	tree, err := fsx.Export(fsexport.ExportParams{Root: dir})
	require.NoError(t, err)
	assert.Len(t, tree, 2)
	assert.NotContains(t, tree, "index")
	assert.IsType(t, &fsexport.Func{}, tree["1"])
}

func TestExportWithOptions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "conf", "tmp"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conf", "app.yaml"), []byte("name: svc\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conf", "tmp", "x.yaml"), []byte("x: 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "conf", "cols.csv"), []byte("a,b,c"), 0o644))

	fsx, err := fsexport.New(
		fsexport.WithRoot(dir),
		fsexport.WithLoaders("yaml"),
		fsexport.WithIgnore("tmp"),
		fsexport.WithLoader("csv", fsexport.LoaderFunc(func(_ string, src []byte) (any, error) {
			return strings.Split(string(src), ","), nil
		})),
	)
	require.NoError(t, err)

	tree, err := fsx.ExportAsync(fsexport.ExportParams{Root: "conf", Pick: []string{"yaml", "csv"}}).Await()
	require.NoError(t, err)
	assert.Equal(t, fsexport.Tree{
		"app":  map[string]any{"name": "svc"},
		"cols": []string{"a", "b", "c"},
	}, tree)
}

func TestNewInvalidOptions(t *testing.T) {
	_, err := fsexport.New(fsexport.WithLoaders("xml"))
	assert.ErrorIs(t, err, fsexport.ErrInvalidArgument)

	_, err = fsexport.New(fsexport.WithIgnore("[bad"))
	assert.ErrorIs(t, err, fsexport.ErrInvalidArgument)
}

func TestJSONRoundTrip(t *testing.T) {
	fsx, err := fsexport.New(fsexport.WithRoot(t.TempDir()))
	require.NoError(t, err)

	in := map[string]any{
		"name":  "svc",
		"ports": []any{float64(80), float64(443)},
		"tls":   map[string]any{"enabled": true, "cert": nil},
	}
	require.NoError(t, fsx.WriteJSON("out/config.json", in))

	out, err := fsx.ReadJSON("out/config.json")
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = fsx.WriteJSONAsync("async.json", []int{1, 2}).Await()
	require.NoError(t, err)
	out, err = fsx.ReadJSONAsync("async.json").Await()
	require.NoError(t, err)
	assert.Equal(t, []any{float64(1), float64(2)}, out)

	var typed struct {
		Name string `json:"name"`
	}
	require.NoError(t, fsx.ReadJSONInto("out/config.json", &typed))
	assert.Equal(t, "svc", typed.Name)
}

func TestReadJSONMalformedIsParseError(t *testing.T) {
	fsx, err := fsexport.New(fsexport.WithRoot(t.TempDir()))
	require.NoError(t, err)

	require.NoError(t, fsx.WriteFileText("bad.json", `{"x":`))
	_, err = fsx.ReadJSON("bad.json")
	assert.ErrorIs(t, err, fsexport.ErrParse)
	assert.NotErrorIs(t, err, fsexport.ErrRead)

	_, err = fsx.ReadJSON("missing.json")
	assert.ErrorIs(t, err, fsexport.ErrNotFound)

	var fe *fsexport.Error
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "readJson", fe.Op)
}

func TestFindNeverFails(t *testing.T) {
	root := t.TempDir()
	fsx, err := fsexport.New(fsexport.WithRoot(root))
	require.NoError(t, err)

	require.NoError(t, fsx.WriteFileText("present.txt", "x"))

	assert.True(t, fsx.Find("present.txt"))
	assert.True(t, fsx.PathExists("."))
	assert.False(t, fsx.Find("absent.txt"))
	assert.False(t, fsx.Find(""))
	assert.False(t, fsx.Find("bad\x00name"))
	assert.False(t, fsx.PathExists("../outside"))
}

func TestHostFileAPI(t *testing.T) {
	fsx, err := fsexport.New(fsexport.WithRoot(t.TempDir()))
	require.NoError(t, err)

	_, err = fsx.WriteFileTextAsync("docs/b.txt", "bee").Await()
	require.NoError(t, err)
	require.NoError(t, fsx.WriteFileText("docs/a.txt", "ay"))

	names, err := fsx.ListDirectory("docs")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, names)

	names, err = fsx.ListDirectoryAsync("docs").Await()
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, names)

	text, err := fsx.ReadFileTextAsync("docs/b.txt").Await()
	require.NoError(t, err)
	assert.Equal(t, "bee", text)

	info, err := fsx.Stat("docs/a.txt")
	require.NoError(t, err)
	assert.False(t, info.IsDirectory)
	assert.EqualValues(t, 2, info.Size)

	_, err = fsx.ReadFileText("")
	assert.ErrorIs(t, err, fsexport.ErrInvalidArgument)
}

func TestEvalTimeout(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spin.js"), []byte(`for (;;) {}`), 0o644))

	fsx, err := fsexport.New(fsexport.WithEvalTimeout(50 * time.Millisecond))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = fsx.ExportAsync(fsexport.ExportParams{Root: dir}).AwaitContext(ctx)
	assert.ErrorIs(t, err, fsexport.ErrLoad)
}

func TestHostileModulesFailCleanly(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "self.js"), []byte(`const o = {}; o.self = o; module.exports = o;`), 0o644))

	fsx, err := fsexport.New(fsexport.WithLoader("bad", fsexport.LoaderFunc(func(string, []byte) (any, error) {
		panic("kaboom")
	})))
	require.NoError(t, err)

	_, err = fsx.Export(fsexport.ExportParams{Root: dir})
	assert.ErrorIs(t, err, fsexport.ErrLoad)

	_, err = fsx.PassAsync(dir, 0).Await()
	assert.ErrorIs(t, err, fsexport.ErrLoad)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "x.bad"), []byte("x"), 0o644))
	_, err = fsx.ExportAsync(fsexport.ExportParams{Root: dir, Pick: []string{"bad"}}).Await()
	assert.ErrorIs(t, err, fsexport.ErrLoad)
}
