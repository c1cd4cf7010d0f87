// Package follow implements -f/--follow: it turns a regular file into an
// io.Reader that blocks for new bytes appended after EOF instead of
// ending the stream, so a single Parser can keep consuming a log file
// that is still being written. It is not multi-stream: exactly one file
// is watched per Reader.
package follow

import (
	"io"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	mylog "github.com/bascanada/yategrep/pkg/log"
)

// Reader wraps an *os.File, returning io.EOF only when the caller closes
// it; otherwise a Read that hits the current end of file blocks until
// fsnotify reports a write, falling back to a poll ticker if the watcher
// could not be created.
type Reader struct {
	f       *os.File
	watcher *fsnotify.Watcher
	poll    *time.Ticker
	done    chan struct{}
}

// New opens path and returns a Reader that tails it. The caller must
// Close it when done.
func New(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r := &Reader{f: f, done: make(chan struct{})}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		mylog.Warn("follow: fsnotify unavailable (%v), falling back to polling", err)
		r.poll = time.NewTicker(500 * time.Millisecond)
		return r, nil
	}
	if err := w.Add(path); err != nil {
		mylog.Warn("follow: watching %s failed (%v), falling back to polling", path, err)
		w.Close()
		r.poll = time.NewTicker(500 * time.Millisecond)
		return r, nil
	}
	r.watcher = w
	return r, nil
}

// Read blocks past the current end of file until new bytes are written or
// Close is called, at which point it returns io.EOF.
func (r *Reader) Read(p []byte) (int, error) {
	for {
		n, err := r.f.Read(p)
		if n > 0 {
			return n, nil
		}
		if err != nil && err != io.EOF {
			return n, err
		}
		if !r.waitForMore() {
			return 0, io.EOF
		}
	}
}

// waitForMore blocks until a write event, a poll tick, or Close. It
// returns false only once Close has been called.
func (r *Reader) waitForMore() bool {
	if r.watcher != nil {
		select {
		case <-r.done:
			return false
		case evt, ok := <-r.watcher.Events:
			if !ok {
				return false
			}
			if evt.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				return true
			}
			return true
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return false
			}
			mylog.Warn("follow: watcher error: %v", err)
			return true
		}
	}

	select {
	case <-r.done:
		return false
	case <-r.poll.C:
		return true
	}
}

// Close stops watching and releases the underlying file.
func (r *Reader) Close() error {
	close(r.done)
	if r.watcher != nil {
		r.watcher.Close()
	}
	if r.poll != nil {
		r.poll.Stop()
	}
	return r.f.Close()
}
