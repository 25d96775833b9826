package watch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"mercator-hq/texsolve/pkg/config"
	"mercator-hq/texsolve/pkg/engine"
	"mercator-hq/texsolve/pkg/ltp"
)

// Result describes the handling of one markup file.
type Result struct {
	Source    string // Markup file that was converted
	Output    string // File written: the solver output or the error report
	RequestID string
	Err       error // Conversion failure, nil on success
}

// Watcher converts markup files in a directory tree whenever they change.
type Watcher struct {
	config   *config.WatchConfig
	engine   *engine.Engine
	logger   *slog.Logger
	watcher  *fsnotify.Watcher
	debounce *Debouncer

	// OnResult, when set, is called after each file is handled.
	OnResult func(Result)

	mu      sync.Mutex
	running bool
}

// New creates a watcher for cfg.Dir. A nil logger uses slog.Default().
func New(cfg *config.WatchConfig, eng *engine.Engine, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &Watcher{
		config:   cfg,
		engine:   eng,
		logger:   logger.With("component", "watch"),
		watcher:  fsw,
		debounce: NewDebouncer(cfg.Debounce),
	}, nil
}

// Run converts every existing markup file, then converts files as they
// change until ctx is done. Pending conversions are dropped on exit and
// in-flight ones are awaited.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer w.Close()

	if err := w.addDirectory(w.config.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.config.Dir, err)
	}

	if _, err := w.ConvertAll(ctx); err != nil {
		return err
	}

	w.logger.Info("watching for changes",
		"dir", w.config.Dir,
		"extensions", w.config.Extensions,
		"debounce_ms", w.config.Debounce.Milliseconds(),
	)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

// Close releases the file watcher and waits for in-flight conversions.
// Run closes the watcher on return; call Close directly when only
// ConvertAll or ProcessFile were used.
func (w *Watcher) Close() error {
	w.debounce.Stop()
	return w.watcher.Close()
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !isHidden(event.Name) {
				if err := w.addDirectory(event.Name); err != nil {
					w.logger.Warn("failed to watch new directory", "path", event.Name, "error", err)
				}
			}
			return
		}
	}

	if !w.shouldProcess(event) {
		return
	}

	w.logger.Debug("file event", "path", event.Name, "op", event.Op.String())
	path := event.Name
	w.debounce.Trigger(path, func() {
		if _, err := w.ProcessFile(ctx, path); err != nil && !errors.Is(err, os.ErrNotExist) {
			w.logger.Error("failed to process file", "path", path, "error", err)
		}
	})
}

// ConvertAll converts every markup file under the watched directory and
// returns how many were handled.
func (w *Watcher) ConvertAll(ctx context.Context) (int, error) {
	var count int
	err := filepath.WalkDir(w.config.Dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != w.config.Dir && isHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !w.hasValidExtension(path) {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := w.ProcessFile(ctx, path); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}

// ProcessFile converts one markup file. On success it writes the output
// next to the source with Suffix and removes a stale error report; on a
// conversion failure it writes the message with ErrorSuffix and removes a
// stale output. The returned error covers I/O only; conversion failures
// are reported in Result.Err.
func (w *Watcher) ProcessFile(ctx context.Context, path string) (Result, error) {
	res := Result{Source: path}

	data, err := os.ReadFile(path)
	if err != nil {
		return res, err
	}

	out, convErr := w.engine.Convert(ctx, engine.Request{
		Input:  strings.TrimSpace(string(data)),
		Origin: engine.OriginWatch,
	})
	res.RequestID = out.RequestID
	res.Err = convErr

	base := strings.TrimSuffix(path, filepath.Ext(path))
	outPath, stalePath := base+w.config.Suffix, base+w.config.ErrorSuffix
	content := out.Output + "\n"
	if convErr != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		outPath, stalePath = stalePath, outPath
		content = errorMessage(convErr) + "\n"
	}
	res.Output = outPath

	if err := writeFileAtomic(outPath, []byte(content)); err != nil {
		return res, err
	}
	if err := os.Remove(stalePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return res, err
	}

	if convErr != nil {
		w.logger.Warn("conversion failed",
			"path", path,
			"request_id", res.RequestID,
			"error_type", engine.ErrorType(convErr),
		)
	} else {
		w.logger.Info("converted", "path", path, "output", outPath, "request_id", res.RequestID)
	}

	if w.OnResult != nil {
		w.OnResult(res)
	}
	return res, nil
}

func errorMessage(err error) string {
	var convErr *ltp.Error
	if errors.As(err, &convErr) {
		return convErr.Message
	}
	return "Error: " + err.Error()
}

// writeFileAtomic writes data to a temporary file in the same directory and
// renames it over path, so readers never see a partial file.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (w *Watcher) addDirectory(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && isHidden(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch directory %q: %w", path, err)
		}
		w.logger.Debug("watching directory", "path", path)
		return nil
	})
}

func (w *Watcher) shouldProcess(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	if isHidden(event.Name) {
		return false
	}
	return w.hasValidExtension(event.Name)
}

func (w *Watcher) hasValidExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, valid := range w.config.Extensions {
		if ext == strings.ToLower(valid) {
			return true
		}
	}
	return false
}

func isHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}
