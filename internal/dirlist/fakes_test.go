package dirlist

import (
	"errors"

	"dirview/internal/sizecalc"
	"dirview/internal/watcher"
)

// fakeWatcher records lifecycle calls and hands out queued events
type fakeWatcher struct {
	started   []string
	redirects []string
	queued    []watcher.Event
	closed    bool
	degraded  bool
	startErr  error
}

func (w *fakeWatcher) Start(path string) error {
	if w.startErr != nil {
		return w.startErr
	}
	w.started = append(w.started, path)
	return nil
}

func (w *fakeWatcher) Redirect(path string) error {
	if w.closed {
		return errors.New("closed")
	}
	w.redirects = append(w.redirects, path)
	return nil
}

func (w *fakeWatcher) Drain() []watcher.Event {
	out := w.queued
	w.queued = nil
	return out
}

func (w *fakeWatcher) Degraded() bool {
	return w.degraded
}

func (w *fakeWatcher) Close() error {
	w.closed = true
	return nil
}

// fakeSizes records submissions; results are queued by the test
type fakeSizes struct {
	submitted []sizecalc.Request
	results   []sizecalc.Result
}

func (s *fakeSizes) Submit(name, parentDir string) {
	s.submitted = append(s.submitted, sizecalc.Request{Name: name, ParentDir: parentDir})
}

func (s *fakeSizes) Drain() []sizecalc.Result {
	out := s.results
	s.results = nil
	return out
}

// Pending counts submissions with no queued result yet
func (s *fakeSizes) Pending() int {
	return len(s.submitted) - len(s.results)
}

func (s *fakeSizes) submittedNames() []string {
	out := make([]string, 0, len(s.submitted))
	for _, r := range s.submitted {
		out = append(out, r.Name)
	}
	return out
}

func sizeResult(name string, size int64) sizecalc.Result {
	return sizecalc.Result{Name: name, ParentDir: "/data", Size: size}
}
