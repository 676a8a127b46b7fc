// Package eventloop implements the event loop (C6, spec.md §4.6): merges
// keyboard input, per-window PTY byte streams, terminal-resize
// notifications, and a coalescing redraw tick, and implements the
// prefix/management-mode keyboard protocol.
package eventloop

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/dgatis/sm/internal/session"
	"github.com/dgatis/sm/internal/termsize"
)

// keyboardChanCapacity bounds the keyboard producer's channel (spec.md §5).
const keyboardChanCapacity = 256

// StartKeyboardProducer reads r one byte at a time and pushes each onto a
// bounded channel, closing it on read error or EOF. This is the "keyboard
// decoder" input source of spec.md §4.6; sm treats every raw byte as its
// own event rather than decoding multi-byte key sequences, since the only
// keys the spec's management mode distinguishes (Ctrl-B, 'c', 'n', 'p') are
// each a single byte.
func StartKeyboardProducer(r io.Reader) <-chan byte {
	out := make(chan byte, keyboardChanCapacity)
	go func() {
		defer close(out)
		buf := make([]byte, 1)
		for {
			n, err := r.Read(buf)
			if n > 0 {
				out <- buf[0]
			}
			if err != nil {
				return
			}
		}
	}()
	return out
}

// Config bundles everything the loop needs beyond the session it drives.
type Config struct {
	Keyboard   <-chan byte
	Resize     *termsize.ResizeNotifier
	Writer     io.Writer
	TTYFd      int
	Prefix     byte
	RedrawTick time.Duration
	Logger     *log.Logger
}

// Run drives the event loop until the session has no windows left to
// select, at which point it writes the exit banner and returns the result
// of that write. It also returns nil when the keyboard channel closes, and
// returns an error on a failed initial window, a PTY update error other
// than ErrWindowLost, or a failed redraw. It creates the session's first window before entering the select loop
// (spec.md §4.6 "At start, the loop creates one window...").
func Run(sess *session.Session, shell string, cfg Config) error {
	if _, err := sess.NewWindow(shell, nil); err != nil {
		return fmt.Errorf("eventloop: initial window: %w", err)
	}
	if id, ok := sess.FirstWindowIdx(); ok {
		sess.SelectWindow(id)
	}

	ticker := time.NewTicker(cfg.RedrawTick)
	defer ticker.Stop()

	dirty := true
	manageMode := false

	for {
		select {
		case b, ok := <-cfg.Keyboard:
			if !ok {
				return nil
			}
			changed := handleKey(sess, &manageMode, cfg.Prefix, b, cfg.Logger)
			dirty = dirty || changed

		case upd, ok := <-sess.Updates():
			if !ok {
				continue
			}
			if err := sess.PtyUpdate(upd); err != nil {
				if !errors.Is(err, session.ErrWindowLost) {
					return err
				}
				logf(cfg.Logger, "eventloop: %v", err)
			}
			dirty = true

		case <-cfg.Resize.Events():
			size := termsize.Get(cfg.TTYFd)
			if err := sess.Resize(size); err != nil && !errors.Is(err, session.ErrNoSelectedWindow) {
				logf(cfg.Logger, "eventloop: resize: %v", err)
			}
			dirty = true

		case <-ticker.C:
			if !dirty {
				continue
			}
			if err := sess.Redraw(cfg.Writer); err != nil {
				if errors.Is(err, session.ErrNoSelectedWindow) {
					return exitBanner(cfg.Writer)
				}
				return fmt.Errorf("eventloop: redraw: %w", err)
			}
			dirty = false
		}
	}
}

// handleKey applies spec.md §4.6's prefix/management-mode protocol for one
// incoming raw byte. It returns whether the session's dirty flag should be
// set as a result (management-mode commands always set dirty; plain
// pass-through defers to whatever the child's output triggers).
func handleKey(sess *session.Session, manageMode *bool, prefix byte, b byte, logger *log.Logger) bool {
	if !*manageMode {
		if b == prefix {
			*manageMode = true
			return false
		}
		if err := sess.ReceiveStdin([]byte{b}); err != nil {
			logf(logger, "eventloop: receive_stdin: %v", err)
		}
		return false
	}

	*manageMode = false
	switch b {
	case prefix:
		if err := sess.ReceiveStdin([]byte{b}); err != nil {
			logf(logger, "eventloop: receive_stdin: %v", err)
		}
	case 'c':
		id, err := sess.NewWindow(shellForNewWindow(), nil)
		if err != nil {
			logf(logger, "eventloop: new_window: %v", err)
			return true
		}
		sess.SelectWindow(id)
	case 'n':
		if id, ok := sess.NextWindowIdx(); ok {
			sess.SelectWindow(id)
		} else if id, ok := sess.FirstWindowIdx(); ok {
			sess.SelectWindow(id)
		}
	case 'p':
		if id, ok := sess.PrevWindowIdx(); ok {
			sess.SelectWindow(id)
		} else if id, ok := sess.LastWindowIdx(); ok {
			sess.SelectWindow(id)
		}
	default:
		logf(logger, "eventloop: ignored management-mode key %q", b)
	}
	return true
}

// shellForNewWindow resolves the shell the same way the initial window did.
func shellForNewWindow() string {
	return termsize.ResolveShell()
}

// exitBanner writes the last-window-closed message at (1,1) on a cleared
// screen (spec.md §6, §7).
func exitBanner(w io.Writer) error {
	_, err := fmt.Fprint(w, "\x1b[1;1H\x1b[2Jsm: last window closed. Exiting.\r\n")
	return err
}

func logf(logger *log.Logger, format string, args ...any) {
	if logger != nil {
		logger.Printf(format, args...)
	}
}
