// Package sizecalc computes recursive directory sizes off the interactive path
package sizecalc

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"dirview/internal/activity"
	apperrors "dirview/internal/errors"
	"dirview/internal/logging"
)

// Request names one entry whose size should be computed
type Request struct {
	Name      string
	ParentDir string
}

// Path returns the full path of the requested entry
func (r Request) Path() string {
	return filepath.Join(r.ParentDir, r.Name)
}

// Result is the outcome of one size computation. Failed results carry Size 0.
type Result struct {
	Name      string
	ParentDir string
	Size      int64
	Failed    bool
	Elapsed   time.Duration
}

// Options configures a Calculator
type Options struct {
	Fs            afero.Fs
	MaxConcurrent int // 0 leaves workers unbounded
	Logger        *zap.Logger
	Activity      *activity.Log
}

// Calculator runs one goroutine per submitted request and queues results
// until they are drained. Completions arrive in no particular order.
type Calculator struct {
	fs       afero.Fs
	logger   *zap.Logger
	activity *activity.Log
	sem      *semaphore.Weighted
	group    singleflight.Group

	mu      sync.Mutex
	results []Result
	pending int

	wg sync.WaitGroup
}

// New creates a Calculator
func New(opts Options) *Calculator {
	if opts.Fs == nil {
		opts.Fs = afero.NewOsFs()
	}
	c := &Calculator{
		fs:       opts.Fs,
		logger:   logging.OrNop(opts.Logger).Named("sizecalc"),
		activity: opts.Activity,
	}
	if opts.MaxConcurrent > 0 {
		c.sem = semaphore.NewWeighted(int64(opts.MaxConcurrent))
	}
	return c
}

// Submit schedules the size computation for parentDir/name and returns
// immediately. A scan of the same path already in flight is not shared with
// this request, since it may predate the change that caused the resubmission.
func (c *Calculator) Submit(name, parentDir string) {
	req := Request{Name: name, ParentDir: parentDir}
	c.group.Forget(req.Path())

	c.mu.Lock()
	c.pending++
	c.mu.Unlock()

	c.wg.Add(1)
	go c.run(req)
}

func (c *Calculator) run(req Request) {
	defer c.wg.Done()

	if c.sem != nil {
		// Background context: workers are never cancelled
		_ = c.sem.Acquire(context.Background(), 1)
		defer c.sem.Release(1)
	}

	start := time.Now()
	path := req.Path()
	c.logger.Debug("computing size", logging.Path(path))

	v, _, _ := c.group.Do(path, func() (interface{}, error) {
		size, err := c.compute(path)
		return computed{size: size, err: err}, nil
	})
	out := v.(computed)

	res := Result{
		Name:      req.Name,
		ParentDir: req.ParentDir,
		Size:      out.size,
		Elapsed:   time.Since(start),
	}
	if out.err != nil {
		res.Size = 0
		res.Failed = true
		c.logger.Warn("size computation failed", logging.Err(out.err))
	}

	c.mu.Lock()
	c.results = append(c.results, res)
	c.pending--
	c.mu.Unlock()

	c.logger.Debug("size computed", logging.Path(path), logging.Int64("bytes", res.Size), logging.Duration("elapsed", res.Elapsed))
	c.activity.Addf("Dir size for %s in %s", req.Name, res.Elapsed.Round(time.Microsecond))
}

type computed struct {
	size int64
	err  error
}

// compute sums regular file sizes below path. The top-level path is resolved
// through symlinks; nested symlinks are counted as links and not followed.
// Unreadable subtrees are skipped.
func (c *Calculator) compute(path string) (int64, error) {
	root, err := c.resolve(path)
	if err != nil {
		return 0, apperrors.NewSizeError("resolve", path, "unable to resolve path", err)
	}

	info, err := c.fs.Stat(root)
	if err != nil {
		return 0, apperrors.NewSizeError("stat", path, "unable to stat path", err)
	}
	if !info.IsDir() {
		return info.Size(), nil
	}

	var total int64
	walkErr := afero.Walk(c.fs, root, func(p string, fi os.FileInfo, err error) error {
		if err != nil {
			c.logger.Debug("skipping unreadable path", logging.Path(p), logging.Err(err))
			if fi != nil && fi.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if fi.Mode().IsRegular() {
			total += fi.Size()
		}
		return nil
	})
	if walkErr != nil {
		c.logger.Debug("walk ended early", logging.Path(root), logging.Err(walkErr))
	}
	return total, nil
}

// resolve follows a symlink chain at path when the Fs can read links
func (c *Calculator) resolve(path string) (string, error) {
	reader, ok := c.fs.(afero.LinkReader)
	if !ok {
		return path, nil
	}
	lstater, ok := c.fs.(afero.Lstater)
	if !ok {
		return path, nil
	}

	current := path
	for hops := 0; hops < maxLinkHops; hops++ {
		info, _, err := lstater.LstatIfPossible(current)
		if err != nil {
			return "", err
		}
		if info.Mode()&os.ModeSymlink == 0 {
			return current, nil
		}
		target, err := reader.ReadlinkIfPossible(current)
		if err != nil {
			return "", err
		}
		if !filepath.IsAbs(target) {
			target = filepath.Join(filepath.Dir(current), target)
		}
		current = target
	}
	return "", os.ErrInvalid
}

const maxLinkHops = 40

// Drain returns and clears every completed result
func (c *Calculator) Drain() []Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.results
	c.results = nil
	return out
}

// Pending returns how many submitted computations have not finished
func (c *Calculator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Wait blocks until every submitted computation has finished
func (c *Calculator) Wait() {
	c.wg.Wait()
}
