// Command sm is a terminal multiplexer: it spawns the user's shell in a
// PTY, renders it through an ANSI-driven grid, and lets the user create and
// cycle additional windows with a Ctrl-B prefix (spec.md §6).
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dgatis/sm/internal/config"
	"github.com/dgatis/sm/internal/eventloop"
	"github.com/dgatis/sm/internal/session"
	"github.com/dgatis/sm/internal/termsize"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// newRootCmd builds the root command. sm takes no subcommands or
// positional arguments (spec.md §6); cobra still supplies --version and
// -h/--help the way the teacher's CLI construction does.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "sm",
		Short:   "sm is a terminal multiplexer",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	root.SilenceUsage = true
	return root
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("sm: load config: %w", err)
	}

	logFile, err := os.OpenFile(cfg.LogFilePath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("sm: open log file: %w", err)
	}
	defer logFile.Close()
	logger := log.New(logFile, "", log.LstdFlags)

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("sm: set raw mode: %w", err)
	}
	defer func() {
		term.Restore(fd, oldState)
		os.Stdout.Write([]byte("\r\n"))
	}()

	shell := termsize.ResolveShell()
	size := termsize.Get(fd)

	sess := session.New(size, logger)

	resizeNotifier := termsize.NewResizeNotifier()
	defer resizeNotifier.Stop()

	keyboard := eventloop.StartKeyboardProducer(os.Stdin)

	return eventloop.Run(sess, shell, eventloop.Config{
		Keyboard:   keyboard,
		Resize:     resizeNotifier,
		Writer:     os.Stdout,
		TTYFd:      fd,
		Prefix:     cfg.PrefixByte(),
		RedrawTick: cfg.RedrawTick(),
		Logger:     logger,
	})
}
