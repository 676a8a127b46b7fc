// Package ptyhost implements the PTY host (spec.md §4.1): spawning a child
// process on a fresh pseudoterminal and exposing its output as a bounded
// stream of events plus a resize operation.
package ptyhost

import (
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/creack/pty"
)

// Winsize mirrors the window-size ioctl payload.
type Winsize struct {
	Rows uint16
	Cols uint16
}

// EventKind distinguishes a data byte from the end-of-stream sentinel.
type EventKind int

const (
	EventByte EventKind = iota
	EventExited
)

// ByteEvent is one item on a PTY's output stream: either a single byte read
// from the master, or the terminal Exited sentinel. ExitErr carries the
// child's non-zero exit, if any, alongside Exited.
type ByteEvent struct {
	Kind    EventKind
	Byte    byte
	ExitErr error
}

// ErrSpawnFailed wraps failures allocating a PTY or starting the child.
var ErrSpawnFailed = fmt.Errorf("pty: spawn failed")

// ErrResizeFailed wraps failures issuing the window-size ioctl.
var ErrResizeFailed = fmt.Errorf("pty: resize failed")

// eventChanCapacity is the bounded channel capacity recommended by spec.md
// §4.1; the producer blocks rather than drops bytes when the consumer falls
// behind (spec.md §5 "Backpressure").
const eventChanCapacity = 4096

// PTY owns one child process's master file descriptor and its event stream.
type PTY struct {
	master *os.File
	cmd    *exec.Cmd
	events chan ByteEvent
}

// Spawn starts command with args on a fresh PTY sized to size, with the
// child's stdio bound to the slave side and the slave as its controlling
// terminal (handled by pty.StartWithSize, matching the teacher's
// virtualterminal.VT.StartPTY). A background goroutine immediately begins
// producing ByteEvents from the master.
func Spawn(command string, args []string, size Winsize) (*PTY, <-chan ByteEvent, error) {
	cmd := exec.Command(command, args...)
	master, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: size.Rows, Cols: size.Cols})
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	p := &PTY{
		master: master,
		cmd:    cmd,
		events: make(chan ByteEvent, eventChanCapacity),
	}
	go p.produce()
	return p, p.events, nil
}

// produce reads the master in chunks of up to 4096 bytes and pushes each
// byte as its own event onto the bounded event channel, emitting one terminal EventExited on end-of-file before closing it. It
// never drops a byte: a full channel simply blocks the send, which in turn
// blocks further reads from the master (spec.md §4.1, §5).
func (p *PTY) produce() {
	defer close(p.events)

	buf := make([]byte, 4096)
	for {
		n, err := p.master.Read(buf)
		for i := 0; i < n; i++ {
			p.events <- ByteEvent{Kind: EventByte, Byte: buf[i]}
		}
		if err != nil {
			var exitErr error
			if werr := p.cmd.Wait(); werr != nil {
				if _, ok := werr.(*exec.ExitError); ok {
					exitErr = werr
				}
			}
			p.events <- ByteEvent{Kind: EventExited, ExitErr: exitErr}
			return
		}
	}
}

// Write sends stdin bytes to the child. The caller (Window) is the sole
// writer for stdin forwarding; the grid is the sole writer for device-status
// replies, and both run on the main task, so no locking is required here
// (spec.md §9 "shared child file descriptors").
func (p *PTY) Write(data []byte) (int, error) {
	return p.master.Write(data)
}

// Resize issues the window-size ioctl to the master.
func (p *PTY) Resize(size Winsize) error {
	if err := pty.Setsize(p.master, &pty.Winsize{Rows: size.Rows, Cols: size.Cols}); err != nil {
		return fmt.Errorf("%w: %v", ErrResizeFailed, err)
	}
	return nil
}

// Close releases the master file descriptor.
func (p *PTY) Close() error {
	return p.master.Close()
}

var _ io.Writer = (*PTY)(nil)
