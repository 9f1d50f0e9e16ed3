package loader

import (
	"fmt"

	"github.com/goccy/go-json"
)

// Func is a callable exported by a code module.
type Func struct {
	name string
	call func(any) (any, error)
}

// NewFunc wraps call as a Func.
func NewFunc(name string, call func(any) (any, error)) *Func {
	if name == "" {
		name = "anonymous"
	}
	return &Func{name: name, call: call}
}

// Name returns the function's name, or "anonymous".
func (f *Func) Name() string {
	return f.name
}

// Call invokes the function with a single argument. A panic inside the
// call is returned as an error.
func (f *Func) Call(arg any) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("function %s panicked: %v", f.name, r)
		}
	}()
	return f.call(arg)
}

func (f *Func) String() string {
	return "[Function: " + f.name + "]"
}

// MarshalJSON renders the function as its description string.
func (f *Func) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.String())
}
