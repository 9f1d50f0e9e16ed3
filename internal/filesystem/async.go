package filesystem

import "github.com/taigrr/fsexport/internal/future"

// ListDirectoryAsync is the deferred form of ListDirectory.
func (s *Service) ListDirectoryAsync(path string) *future.Future[[]string] {
	return future.Go(func() ([]string, error) {
		return s.ListDirectory(path)
	})
}

// ReadFileTextAsync is the deferred form of ReadFileText.
func (s *Service) ReadFileTextAsync(path string) *future.Future[string] {
	return future.Go(func() (string, error) {
		return s.ReadFileText(path)
	})
}

// WriteFileTextAsync is the deferred form of WriteFileText.
func (s *Service) WriteFileTextAsync(path, content string) *future.Future[struct{}] {
	return future.Go(func() (struct{}, error) {
		return struct{}{}, s.WriteFileText(path, content)
	})
}

// ReadJSONAsync is the deferred form of ReadJSON.
func (s *Service) ReadJSONAsync(path string) *future.Future[any] {
	return future.Go(func() (any, error) {
		return s.ReadJSON(path)
	})
}

// WriteJSONAsync is the deferred form of WriteJSON.
func (s *Service) WriteJSONAsync(path string, v any) *future.Future[struct{}] {
	return future.Go(func() (struct{}, error) {
		return struct{}{}, s.WriteJSON(path, v)
	})
}
