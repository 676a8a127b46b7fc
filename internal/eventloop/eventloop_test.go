package eventloop

import (
	"bytes"
	"strings"
	"testing"

	"github.com/dgatis/sm/internal/ptyhost"
	"github.com/dgatis/sm/internal/session"
)

func newTestSession(t *testing.T) *session.Session {
	t.Helper()
	return session.New(ptyhost.Winsize{Rows: 24, Cols: 80}, nil)
}

func TestStartKeyboardProducerDeliversBytesInOrder(t *testing.T) {
	r := strings.NewReader("abc")
	ch := StartKeyboardProducer(r)

	var got []byte
	for b := range ch {
		got = append(got, b)
	}
	if string(got) != "abc" {
		t.Fatalf("keyboard producer delivered %q, want %q", got, "abc")
	}
}

func TestHandleKeyPrefixEntersManageModeWithoutForwarding(t *testing.T) {
	s := newTestSession(t)
	id, err := s.NewWindow("cat", nil)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	s.SelectWindow(id)

	manageMode := false
	const prefix = 0x02
	changed := handleKey(s, &manageMode, prefix, prefix, nil)

	if !manageMode {
		t.Fatal("prefix byte should enter manage mode")
	}
	if changed {
		t.Fatal("entering manage mode should not itself mark dirty")
	}
}

func TestHandleKeyLiteralPrefixForwardsAndExitsManageMode(t *testing.T) {
	s := newTestSession(t)
	id, err := s.NewWindow("cat", nil)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	s.SelectWindow(id)

	manageMode := true
	const prefix = 0x02
	changed := handleKey(s, &manageMode, prefix, prefix, nil)

	if manageMode {
		t.Fatal("manage mode should reset after consuming one key")
	}
	if !changed {
		t.Fatal("management-mode commands should mark dirty")
	}
}

func TestHandleKeyUnknownManageModeCommandIsIgnored(t *testing.T) {
	s := newTestSession(t)
	id, err := s.NewWindow("cat", nil)
	if err != nil {
		t.Fatalf("NewWindow: %v", err)
	}
	s.SelectWindow(id)

	manageMode := true
	handleKey(s, &manageMode, 0x02, 'z', nil)

	if manageMode {
		t.Fatal("manage mode should reset even for an ignored command")
	}
}

func TestExitBannerFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := exitBanner(&buf); err != nil {
		t.Fatalf("exitBanner: %v", err)
	}
	want := "\x1b[1;1H\x1b[2Jsm: last window closed. Exiting.\r\n"
	if got := buf.String(); got != want {
		t.Fatalf("exitBanner wrote %q, want %q", got, want)
	}
}
