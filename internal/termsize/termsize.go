// Package termsize implements C7 (spec.md §4.6, §6): querying the
// controlling terminal's size, a SIGWINCH-driven resize notifier goroutine,
// and resolving the user's shell.
package termsize

import (
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/dgatis/sm/internal/ptyhost"
)

// Get returns the current window size of fd, falling back to a sane
// default if the ioctl fails (e.g. fd is not a terminal, as in tests).
func Get(fd int) ptyhost.Winsize {
	ws, err := unix.IoctlGetWinsize(fd, unix.TIOCGWINSZ)
	if err != nil {
		return ptyhost.Winsize{Rows: 24, Cols: 80}
	}
	return ptyhost.Winsize{Rows: ws.Row, Cols: ws.Col}
}

// ResizeNotifier translates SIGWINCH into a notification-only channel, the
// "terminal-resize notifier" input source the event loop (C6) selects on.
type ResizeNotifier struct {
	sigCh  chan os.Signal
	notify chan struct{}
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewResizeNotifier creates and starts a resize notifier. Call Stop to
// release the signal subscription.
func NewResizeNotifier() *ResizeNotifier {
	r := &ResizeNotifier{
		sigCh:  make(chan os.Signal, 1),
		notify: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
	signal.Notify(r.sigCh, syscall.SIGWINCH)
	go r.watch()
	return r
}

func (r *ResizeNotifier) watch() {
	defer close(r.doneCh)
	for {
		select {
		case <-r.stopCh:
			return
		case <-r.sigCh:
			// Non-blocking send; a pending notification already covers any
			// resize that happened since the event loop last drained it.
			select {
			case r.notify <- struct{}{}:
			default:
			}
		}
	}
}

// Events returns the notification channel.
func (r *ResizeNotifier) Events() <-chan struct{} { return r.notify }

// Stop unsubscribes from SIGWINCH and waits for the watch goroutine to exit.
func (r *ResizeNotifier) Stop() {
	signal.Stop(r.sigCh)
	close(r.stopCh)
	<-r.doneCh
}

// ResolveShell returns the SHELL environment variable, falling back to
// /bin/sh (spec.md §6).
func ResolveShell() string {
	if shell := os.Getenv("SHELL"); shell != "" {
		return shell
	}
	return "/bin/sh"
}
