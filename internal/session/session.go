// Package session implements the Session (C5, spec.md §4.5): an ordered
// collection of windows, a single selected window, window-lifecycle on
// child exit, and fan-out/fan-in of stdin and PTY byte streams tagged by
// window id.
package session

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sort"

	"github.com/dgatis/sm/internal/ptyhost"
	"github.com/dgatis/sm/internal/window"
)

// Sentinel errors for the session-level error taxonomy (spec.md §7).
var (
	ErrNoSelectedWindow = errors.New("session: no selected window")
	ErrWindowLost       = errors.New("session: pty update for unknown window")
)

// EventKind distinguishes a data byte from the end-of-stream sentinel on a
// tagged, per-window event.
type EventKind = ptyhost.EventKind

const (
	EventByte   = ptyhost.EventByte
	EventExited = ptyhost.EventExited
)

// Update is a per-window byte event tagged with its window id, the
// SessionPtyUpdate of spec.md §4.5.
type Update struct {
	WindowID int
	Kind     EventKind
	Byte     byte
	ExitErr  error
}

// Session owns the ordered window set and the currently selected window.
type Session struct {
	nextID  int
	ids     []int
	windows map[int]*window.Window

	selected   int
	hasSelect  bool
	size       ptyhost.Winsize
	logger     *log.Logger
	updateSink chan Update
}

// New creates an empty session at the given initial terminal size. Callers
// should immediately call NewWindow to satisfy invariant 2 (spec.md §3).
func New(size ptyhost.Winsize, logger *log.Logger) *Session {
	return &Session{
		windows:    make(map[int]*window.Window),
		size:       size,
		logger:     logger,
		updateSink: make(chan Update, updateSinkCapacity),
	}
}

// updateSinkCapacity mirrors the per-window channel capacity so
// the session's merged sink does not become the bottleneck ahead of the
// per-window channels it drains (spec.md §5 "Backpressure").
const updateSinkCapacity = 4096

// Updates returns the channel every window's tagged events are fanned into.
// The event loop (C6) selects on this single channel instead of a dynamic
// per-window set, preserving per-window FIFO order and a starvation-free
// merge across windows (spec.md §4.6, §5).
func (s *Session) Updates() <-chan Update { return s.updateSink }

// NewWindow allocates an id, spawns a window at the session's current size,
// and starts fanning its tagged byte stream into Updates() (spec.md §4.5).
func (s *Session) NewWindow(command string, args []string) (int, error) {
	id := s.nextID
	s.nextID++

	w, err := window.New(command, args, s.size, s.logger)
	if err != nil {
		return 0, fmt.Errorf("session: new_window %d: %w", id, err)
	}

	s.windows[id] = w
	s.ids = append(s.ids, id)
	sort.Ints(s.ids)

	go s.fanIn(id, w.Events())

	return id, nil
}

// fanIn tags each event from a window's raw stream with its id and forwards
// it to the session's merged sink, preserving the window's own FIFO order.
func (s *Session) fanIn(id int, events <-chan ptyhost.ByteEvent) {
	for ev := range events {
		s.updateSink <- Update{WindowID: id, Kind: ev.Kind, Byte: ev.Byte, ExitErr: ev.ExitErr}
	}
}

// SelectWindow selects id if it exists, resizing and fully redrawing it.
func (s *Session) SelectWindow(id int) (int, bool) {
	w, ok := s.windows[id]
	if !ok {
		return 0, false
	}
	s.selected = id
	s.hasSelect = true
	if err := w.Resize(s.size); err != nil {
		s.logf("session: resize on select window %d: %v", id, err)
	}
	w.MarkDirty()
	return id, true
}

// SelectedWindowIdx returns the currently selected id, if any.
func (s *Session) SelectedWindowIdx() (int, bool) {
	if !s.hasSelect {
		return 0, false
	}
	return s.selected, true
}

// FirstWindowIdx returns the smallest key, if any windows exist.
func (s *Session) FirstWindowIdx() (int, bool) {
	if len(s.ids) == 0 {
		return 0, false
	}
	return s.ids[0], true
}

// LastWindowIdx returns the largest key, if any windows exist.
func (s *Session) LastWindowIdx() (int, bool) {
	if len(s.ids) == 0 {
		return 0, false
	}
	return s.ids[len(s.ids)-1], true
}

// NextWindowIdx returns the smallest key strictly greater than selected.
func (s *Session) NextWindowIdx() (int, bool) {
	if !s.hasSelect {
		return 0, false
	}
	for _, id := range s.ids {
		if id > s.selected {
			return id, true
		}
	}
	return 0, false
}

// PrevWindowIdx returns the greatest key strictly less than selected.
func (s *Session) PrevWindowIdx() (int, bool) {
	if !s.hasSelect {
		return 0, false
	}
	for i := len(s.ids) - 1; i >= 0; i-- {
		if s.ids[i] < s.selected {
			return s.ids[i], true
		}
	}
	return 0, false
}

// ReceiveStdin forwards data to the selected window.
func (s *Session) ReceiveStdin(data []byte) error {
	w, ok := s.selectedWindow()
	if !ok {
		return ErrNoSelectedWindow
	}
	return w.ReceiveStdin(data)
}

// Redraw delegates to the selected window's redraw.
func (s *Session) Redraw(writer io.Writer) error {
	w, ok := s.selectedWindow()
	if !ok {
		return ErrNoSelectedWindow
	}
	return w.Redraw(writer)
}

// PtyUpdate applies one tagged event: a byte is fed through to its window's
// parser; Exited removes the window and re-selects per spec.md §4.5.
func (s *Session) PtyUpdate(update Update) error {
	w, ok := s.windows[update.WindowID]
	if !ok {
		return fmt.Errorf("%w: window %d", ErrWindowLost, update.WindowID)
	}

	switch update.Kind {
	case EventByte:
		w.PtyUpdate(update.Byte)
		return nil
	case EventExited:
		if update.ExitErr != nil {
			s.logf("session: window %d exited: %v", update.WindowID, update.ExitErr)
		}
		return s.removeWindow(update.WindowID, w)
	default:
		return nil
	}
}

// removeWindow deletes id from the window set and, if it was selected,
// re-selects per spec.md §4.5: next_window_idx() OR last_window_idx(),
// evaluated after removal (so "last" means the greatest remaining id, not
// the greatest id smaller than the removed one — spec.md §9, S5).
func (s *Session) removeWindow(id int, w *window.Window) error {
	wasSelected := s.hasSelect && s.selected == id

	delete(s.windows, id)
	for i, cur := range s.ids {
		if cur == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	if err := w.Close(); err != nil {
		s.logf("session: close window %d: %v", id, err)
	}

	if !wasSelected {
		return nil
	}

	// s.selected still holds the removed id (now absent from s.ids), which
	// is exactly what NextWindowIdx/LastWindowIdx need to compute "smallest
	// remaining id greater than the removed one" / "greatest remaining id"
	// per spec.md §4.5, §9 (S5: last is evaluated after removal).
	next, hasNext := s.NextWindowIdx()
	last, hasLast := s.LastWindowIdx()
	s.hasSelect = false

	if hasNext {
		s.SelectWindow(next)
		return nil
	}
	if hasLast {
		s.SelectWindow(last)
	}
	return nil
}

// Resize updates the authoritative terminal size and forwards it to the
// selected window; background windows are resized lazily on selection
// (spec.md §4.5).
func (s *Session) Resize(size ptyhost.Winsize) error {
	s.size = size
	w, ok := s.selectedWindow()
	if !ok {
		return ErrNoSelectedWindow
	}
	return w.Resize(size)
}

func (s *Session) selectedWindow() (*window.Window, bool) {
	if !s.hasSelect {
		return nil, false
	}
	w, ok := s.windows[s.selected]
	return w, ok
}

func (s *Session) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
