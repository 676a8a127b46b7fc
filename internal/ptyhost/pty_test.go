package ptyhost

import (
	"os"
	"strings"
	"testing"
)

// S1: pwd child.
func TestSpawnPwd(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}

	p, events, err := Spawn("pwd", nil, Winsize{Rows: 24, Cols: 80})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	defer p.Close()

	var out []byte
	for ev := range events {
		if ev.Kind == EventExited {
			break
		}
		out = append(out, ev.Byte)
	}

	got := strings.TrimSpace(string(out))
	want := strings.TrimSpace(wd)
	if got != want {
		t.Fatalf("pwd output = %q, want %q", got, want)
	}
}

func TestResizeFailsOnClosedMaster(t *testing.T) {
	p, events, err := Spawn("true", nil, Winsize{Rows: 24, Cols: 80})
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	for range events {
	}
	p.Close()

	if err := p.Resize(Winsize{Rows: 10, Cols: 10}); err == nil {
		t.Fatal("Resize on closed master: want error, got nil")
	}
}
