package loader

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dop251/goja"
	"go.uber.org/zap"
)

// JavaScript evaluates CommonJS-style modules and yields module.exports.
type JavaScript struct {
	timeout time.Duration
	log     *zap.Logger
}

// NewJavaScript creates a JavaScript loader. A zero timeout disables the
// evaluation limit.
func NewJavaScript(timeout time.Duration, log *zap.Logger) *JavaScript {
	if log == nil {
		log = zap.NewNop()
	}
	return &JavaScript{timeout: timeout, log: log}
}

// jsModule is one evaluated module. goja runtimes are not safe for
// concurrent use, so every entry into vm holds mu.
type jsModule struct {
	vm      *goja.Runtime
	mu      sync.Mutex
	timeout time.Duration
	path    string
}

// Load evaluates src with module, exports, __filename and __dirname in
// scope. Each call gets a fresh runtime.
func (j *JavaScript) Load(path string, src []byte) (any, error) {
	m := &jsModule{vm: goja.New(), timeout: j.timeout, path: path}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.setupGlobals(j.log)

	wrapper, err := m.vm.RunScript(path, "(function (module, exports, __filename, __dirname) {"+string(src)+"\n})")
	if err != nil {
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}
	fn, ok := goja.AssertFunction(wrapper)
	if !ok {
		return nil, fmt.Errorf("failed to compile module: wrapper is not a function")
	}

	module := m.vm.NewObject()
	exports := m.vm.NewObject()
	if err := module.Set("exports", exports); err != nil {
		return nil, err
	}

	if _, err := m.run(func() (goja.Value, error) {
		return fn(goja.Undefined(), module, exports, m.vm.ToValue(path), m.vm.ToValue(filepath.Dir(path)))
	}); err != nil {
		return nil, fmt.Errorf("failed to evaluate module: %w", err)
	}

	return m.exportValue(module.Get("exports"))
}

func (m *jsModule) setupGlobals(log *zap.Logger) {
	console := m.vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		console.Set(level, func(call goja.FunctionCall) goja.Value {
			parts := make([]string, 0, len(call.Arguments))
			for _, arg := range call.Arguments {
				parts = append(parts, arg.String())
			}
			log.Debug("module console",
				zap.String("module", m.path),
				zap.String("level", level),
				zap.String("message", strings.Join(parts, " ")),
			)
			return goja.Undefined()
		})
	}
	m.vm.Set("console", console)
}

// run executes fn, interrupting the runtime once the timeout elapses.
func (m *jsModule) run(fn func() (goja.Value, error)) (goja.Value, error) {
	if m.timeout > 0 {
		timer := time.AfterFunc(m.timeout, func() {
			m.vm.Interrupt("execution timeout exceeded")
		})
		defer func() {
			timer.Stop()
			m.vm.ClearInterrupt()
		}()
	}
	return fn()
}

var errCircular = errors.New("circular structure in module exports")

// exportValue converts v under the evaluation timeout. Exceptions thrown
// while reading v, such as from a getter, are returned as errors.
func (m *jsModule) exportValue(v goja.Value) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("failed to read module exports: %v", r)
		}
	}()

	_, err = m.run(func() (goja.Value, error) {
		var convErr error
		if ex := m.vm.Try(func() {
			out, convErr = m.export(v, map[*goja.Object]bool{})
		}); ex != nil {
			return nil, ex
		}
		return nil, convErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read module exports: %w", err)
	}
	return out, nil
}

// export converts a JavaScript value to Go. Functions become *Func, plain
// objects and arrays are converted element by element so nested functions
// stay callable. seen holds the objects on the current path.
func (m *jsModule) export(v goja.Value, seen map[*goja.Object]bool) (any, error) {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil, nil
	}

	if fn, ok := goja.AssertFunction(v); ok {
		name := ""
		if obj, ok := v.(*goja.Object); ok {
			if n := obj.Get("name"); n != nil && !goja.IsUndefined(n) {
				name = n.String()
			}
		}
		return NewFunc(name, m.caller(fn)), nil
	}

	obj, ok := v.(*goja.Object)
	if !ok {
		return v.Export(), nil
	}

	class := obj.ClassName()
	if class != "Array" && class != "Object" {
		return obj.Export(), nil
	}
	if seen[obj] {
		return nil, errCircular
	}
	seen[obj] = true
	defer delete(seen, obj)

	if class == "Array" {
		n := obj.Get("length").ToInteger()
		out := make([]any, 0, n)
		for i := int64(0); i < n; i++ {
			elem, err := m.export(obj.Get(strconv.FormatInt(i, 10)), seen)
			if err != nil {
				return nil, err
			}
			out = append(out, elem)
		}
		return out, nil
	}

	keys := obj.Keys()
	out := make(map[string]any, len(keys))
	for _, key := range keys {
		elem, err := m.export(obj.Get(key), seen)
		if err != nil {
			return nil, err
		}
		out[key] = elem
	}
	return out, nil
}

func (m *jsModule) caller(fn goja.Callable) func(any) (any, error) {
	return func(arg any) (any, error) {
		m.mu.Lock()
		defer m.mu.Unlock()

		res, err := m.run(func() (goja.Value, error) {
			return fn(goja.Undefined(), m.vm.ToValue(arg))
		})
		if err != nil {
			return nil, err
		}
		return m.exportValue(res)
	}
}
