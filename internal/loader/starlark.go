package loader

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"go.uber.org/zap"
)

// Starlark evaluates Starlark modules. The module value is the global
// "exports" when defined, otherwise a map of every public global.
type Starlark struct {
	timeout time.Duration
	log     *zap.Logger
}

// NewStarlark creates a Starlark loader. A zero timeout disables the
// evaluation limit.
func NewStarlark(timeout time.Duration, log *zap.Logger) *Starlark {
	if log == nil {
		log = zap.NewNop()
	}
	return &Starlark{timeout: timeout, log: log}
}

var starlarkFileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

type starModule struct {
	thread  *starlark.Thread
	mu      sync.Mutex
	timeout time.Duration
}

// Load executes src and converts its exports to Go.
func (s *Starlark) Load(path string, src []byte) (any, error) {
	m := &starModule{
		timeout: s.timeout,
		thread: &starlark.Thread{
			Name: path,
			Print: func(_ *starlark.Thread, msg string) {
				s.log.Debug("module print", zap.String("module", path), zap.String("message", msg))
			},
			Load: func(_ *starlark.Thread, module string) (starlark.StringDict, error) {
				return nil, fmt.Errorf("load(%q) is not supported", module)
			},
		},
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var globals starlark.StringDict
	err := m.run(func() error {
		var err error
		globals, err = starlark.ExecFileOptions(starlarkFileOptions, m.thread, path, src, nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate module: %w", err)
	}

	if exports, ok := globals["exports"]; ok {
		return m.toGo(exports)
	}

	names := make([]string, 0, len(globals))
	for name := range globals {
		if !strings.HasPrefix(name, "_") {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make(map[string]any, len(names))
	for _, name := range names {
		v, err := m.toGo(globals[name])
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func (m *starModule) run(fn func() error) error {
	if m.timeout > 0 {
		timer := time.AfterFunc(m.timeout, func() {
			m.thread.Cancel("execution timeout exceeded")
		})
		defer timer.Stop()
	}
	return fn()
}

func (m *starModule) caller(fn starlark.Callable) func(any) (any, error) {
	return func(arg any) (any, error) {
		m.mu.Lock()
		defer m.mu.Unlock()

		starArg, err := toStarlark(arg)
		if err != nil {
			return nil, err
		}

		// a cancelled thread stays cancelled, so every call gets its own
		thread := &starlark.Thread{Name: m.thread.Name, Print: m.thread.Print, Load: m.thread.Load}
		call := &starModule{thread: thread, timeout: m.timeout}

		var res starlark.Value
		err = call.run(func() error {
			var err error
			res, err = starlark.Call(thread, fn, starlark.Tuple{starArg}, nil)
			return err
		})
		if err != nil {
			return nil, err
		}
		return m.toGo(res)
	}
}

func (m *starModule) toGo(v starlark.Value) (any, error) {
	return m.convert(v, map[starlark.Value]bool{})
}

// convert converts v to Go. seen holds the lists and dicts on the current
// path.
func (m *starModule) convert(v starlark.Value, seen map[starlark.Value]bool) (any, error) {
	switch t := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.String:
		return string(t), nil
	case starlark.Bool:
		return bool(t), nil
	case starlark.Int:
		if i, ok := t.Int64(); ok {
			return i, nil
		}
		if u, ok := t.Uint64(); ok {
			return u, nil
		}
		return nil, errors.New("integer out of range")
	case starlark.Float:
		return float64(t), nil
	case starlark.Callable:
		return NewFunc(t.Name(), m.caller(t)), nil
	case starlark.Indexable: // list, tuple
		if l, ok := t.(*starlark.List); ok {
			if seen[l] {
				return nil, errCircular
			}
			seen[l] = true
			defer delete(seen, l)
		}
		out := make([]any, 0, t.Len())
		for i := 0; i < t.Len(); i++ {
			elem, err := m.convert(t.Index(i), seen)
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	case *starlark.Dict:
		if seen[t] {
			return nil, errCircular
		}
		seen[t] = true
		defer delete(seen, t)
		out := make(map[string]any, t.Len())
		for _, item := range t.Items() {
			key, ok := item[0].(starlark.String)
			if !ok {
				return nil, fmt.Errorf("dict key %v must be a string, got %s", item[0], item[0].Type())
			}
			elem, err := m.convert(item[1], seen)
			if err != nil {
				return nil, err
			}
			out[string(key)] = elem
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported starlark value of type %s", v.Type())
}

func toStarlark(v any) (starlark.Value, error) {
	switch t := v.(type) {
	case nil:
		return starlark.None, nil
	case starlark.Value:
		return t, nil
	case string:
		return starlark.String(t), nil
	case bool:
		return starlark.Bool(t), nil
	case int:
		return starlark.MakeInt(t), nil
	case int32:
		return starlark.MakeInt64(int64(t)), nil
	case int64:
		return starlark.MakeInt64(t), nil
	case uint64:
		return starlark.MakeUint64(t), nil
	case float32:
		return starlark.Float(t), nil
	case float64:
		return starlark.Float(t), nil
	case []any:
		list := make([]starlark.Value, 0, len(t))
		for _, elem := range t {
			sv, err := toStarlark(elem)
			if err != nil {
				return nil, err
			}
			list = append(list, sv)
		}
		return starlark.NewList(list), nil
	case map[string]any:
		dict := starlark.NewDict(len(t))
		for k, elem := range t {
			sv, err := toStarlark(elem)
			if err != nil {
				return nil, err
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, err
			}
		}
		return dict, nil
	}
	return nil, fmt.Errorf("cannot convert %T to a starlark value", v)
}
