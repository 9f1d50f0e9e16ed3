package exporter

import (
	"github.com/taigrr/fsexport/internal/future"
	"github.com/taigrr/fsexport/internal/types"
)

// ExportAsync runs Export on its own goroutine.
func (e *Exporter) ExportAsync(params types.ExportParams) *future.Future[types.Tree] {
	return future.Go(func() (types.Tree, error) {
		return e.Export(params)
	})
}

// PassAsync runs Pass on its own goroutine.
func (e *Exporter) PassAsync(params types.PassParams) *future.Future[any] {
	return future.Go(func() (any, error) {
		return e.Pass(params)
	})
}
