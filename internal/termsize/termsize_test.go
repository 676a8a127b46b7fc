package termsize

import (
	"os"
	"testing"
)

func TestResolveShellFallback(t *testing.T) {
	old, had := os.LookupEnv("SHELL")
	os.Unsetenv("SHELL")
	defer func() {
		if had {
			os.Setenv("SHELL", old)
		}
	}()

	if got := ResolveShell(); got != "/bin/sh" {
		t.Fatalf("ResolveShell with no SHELL set = %q, want /bin/sh", got)
	}
}

func TestResolveShellFromEnv(t *testing.T) {
	old, had := os.LookupEnv("SHELL")
	os.Setenv("SHELL", "/bin/zsh")
	defer func() {
		if had {
			os.Setenv("SHELL", old)
		} else {
			os.Unsetenv("SHELL")
		}
	}()

	if got := ResolveShell(); got != "/bin/zsh" {
		t.Fatalf("ResolveShell = %q, want /bin/zsh", got)
	}
}

func TestGetFallsBackOnNonTerminalFd(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "not-a-tty")
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	size := Get(int(f.Fd()))
	if size.Rows != 24 || size.Cols != 80 {
		t.Fatalf("Get on non-terminal fd = %+v, want the 80x24 fallback", size)
	}
}

func TestResizeNotifierStartStop(t *testing.T) {
	r := NewResizeNotifier()
	select {
	case <-r.Events():
		t.Fatal("unexpected notification with no SIGWINCH sent")
	default:
	}
	r.Stop()
}
