package organize

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"
)

// retrier reruns filesystem operations that fail with transient errors,
// doubling the pause between attempts. A single attempt that hangs longer
// than timeout counts as a transient failure; its goroutine is abandoned.
type retrier struct {
	attempts int
	base     time.Duration
	ceiling  time.Duration
	timeout  time.Duration
}

var defaultRetrier = retrier{
	attempts: 4,
	base:     500 * time.Millisecond,
	ceiling:  5 * time.Second,
	timeout:  30 * time.Second,
}

func (rt retrier) do(ctx context.Context, op string, fn func() error) error {
	var last error
	pause := rt.base
	for attempt := range rt.attempts {
		if attempt > 0 {
			t := time.NewTimer(pause)
			select {
			case <-ctx.Done():
				t.Stop()
				return fmt.Errorf("%s: cancelled after %d attempts: %w", op, attempt, last)
			case <-t.C:
			}
			pause = min(pause*2, rt.ceiling)
		}

		err := rt.once(ctx, fn)
		switch {
		case err == nil:
			return nil
		case ctx.Err() != nil:
			return fmt.Errorf("%s: %w", op, ctx.Err())
		case !transient(err):
			return fmt.Errorf("%s: %w", op, err)
		}
		last = err
	}
	return fmt.Errorf("%s: gave up after %d attempts: %w", op, rt.attempts, last)
}

func (rt retrier) once(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()

	t := time.NewTimer(rt.timeout)
	defer t.Stop()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return fmt.Errorf("no answer within %v: %w", rt.timeout, os.ErrDeadlineExceeded)
	}
}

// transientHints are substrings of error messages from SMB and NFS mounts
// that do not map to a portable errno.
var transientHints = []string{
	"locked", "in use", "busy", "access denied",
	"timeout", "connection", "network", "i/o", "temporary",
}

// transient reports whether err looks like a lock or a flaky mount rather
// than a real problem with the path. Permission errors are never transient.
func transient(err error) bool {
	switch {
	case err == nil, errors.Is(err, os.ErrPermission), errors.Is(err, os.ErrNotExist):
		return false
	case errors.Is(err, os.ErrDeadlineExceeded),
		errors.Is(err, syscall.EBUSY),
		errors.Is(err, syscall.EAGAIN),
		errors.Is(err, syscall.EIO),
		errors.Is(err, syscall.ETIMEDOUT):
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, h := range transientHints {
		if strings.Contains(msg, h) {
			return true
		}
	}
	return false
}

// move renames src to dst, falling back to copy and delete when the rename
// fails, as it does across devices.
func move(fs afero.Fs, src, dst string) error {
	renameErr := fs.Rename(src, dst)
	if renameErr == nil {
		return nil
	}
	if err := copyNew(fs, src, dst); err != nil {
		return fmt.Errorf("%w (copy fallback: %w)", renameErr, err)
	}
	return fs.Remove(src)
}

// copyNew copies src to dst, which must not exist yet. A partial dst is
// removed.
func copyNew(fs afero.Fs, src, dst string) (err error) {
	in, err := fs.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = fs.Remove(dst)
		}
	}()

	_, err = io.Copy(out, in)
	return err
}

// freePath returns path, or the first "stem (n).ext" that taken rejects.
func freePath(path string, taken func(string) bool) string {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for n, p := 1, path; ; n++ {
		if !taken(p) {
			return p
		}
		p = fmt.Sprintf("%s (%d)%s", stem, n, ext)
	}
}
