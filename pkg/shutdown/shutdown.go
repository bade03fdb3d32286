// Package shutdown handles fatal-exit diagnostics and signal wiring.
package shutdown

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"foliodb/pkg/logger"
)

// Abort logs a fatal startup error, writes a crash dump next to the store
// and exits. The delay gives log sinks time to flush.
func Abort(contextMsg string, err error, storePath string) {
	logger.Error("startup_fatal", "msg", contextMsg, "error", err)
	dumpPath, derr := writeCrashDump(storePath, contextMsg, err)
	if derr != nil {
		logger.Error("crash_dump_failed", "error", derr)
		fmt.Fprintf(os.Stderr, "FAILED TO WRITE CRASH DUMP: %v\n", derr)
	} else {
		logger.Error("startup_fatal_crashdump", "path", dumpPath)
		fmt.Fprintf(os.Stderr, "CRASH DUMP WRITTEN: %s\n", dumpPath)
	}
	time.Sleep(2 * time.Second)
	os.Exit(2)
}

// writeCrashDump records the reason, environment and goroutine stacks under
// <storePath>/state/crash, falling back to ./crash when no store path is
// known.
func writeCrashDump(storePath, reason string, err error) (string, error) {
	crashDir := "./crash"
	if storePath != "" {
		crashDir = filepath.Join(storePath, "state", "crash")
	}
	if e := os.MkdirAll(crashDir, 0o700); e != nil {
		return "", fmt.Errorf("create crash dir: %w", e)
	}

	dumpPath := filepath.Join(crashDir, fmt.Sprintf("crash-%d.log", time.Now().UnixNano()))
	f, ferr := os.CreateTemp(crashDir, ".crash-*.tmp")
	if ferr != nil {
		return "", fmt.Errorf("create temp crash file: %w", ferr)
	}
	tmpName := f.Name()
	defer func() { _ = os.Remove(tmpName) }()

	fmt.Fprintf(f, "time: %s\n", time.Now().UTC().Format(time.RFC3339))
	fmt.Fprintf(f, "reason: %s\n", reason)
	fmt.Fprintf(f, "error: %v\n", err)
	fmt.Fprintf(f, "\n--- environ ---\n")
	for _, e := range os.Environ() {
		fmt.Fprintln(f, e)
	}
	fmt.Fprintf(f, "\n--- goroutine stacks ---\n")
	buf := make([]byte, 1<<20)
	n := runtime.Stack(buf, true)
	_, _ = f.Write(buf[:n])
	_ = f.Sync()
	_ = f.Close()

	if err := os.Rename(tmpName, dumpPath); err != nil {
		return "", fmt.Errorf("move crash dump into place: %w", err)
	}
	_ = os.Chmod(dumpPath, 0o600)
	return dumpPath, nil
}

// SetupSignalHandler returns a context cancelled on SIGINT or SIGTERM. A
// SIGPIPE additionally dumps goroutine stacks for diagnostics.
func SetupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		s := <-sigc
		logger.Info("signal_received", "signal", s.String(), "msg", "shutdown requested")
		cancel()
	}()

	sigpipe := make(chan os.Signal, 1)
	signal.Notify(sigpipe, syscall.SIGPIPE)
	go func() {
		s := <-sigpipe
		logger.Info("signal_received", "signal", s.String(), "msg", "SIGPIPE - dumping goroutine stacks")
		buf := make([]byte, 1<<20)
		n := runtime.Stack(buf, true)
		logger.Info("goroutine_stack_dump", "dump", string(buf[:n]))
		cancel()
	}()

	return ctx, cancel
}
