package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/issues/internal/api"
	"github.com/joescharf/issues/internal/daemon"
	"github.com/joescharf/issues/internal/store"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the issue tracker API server",
	Long: `Run the issue tracker HTTP API in the foreground.

Issues are held in memory and are lost when the server stops.
By default it listens on port 8080. Use --port to change it, or
'issues serve start' to run it in the background.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals()...)
		defer stop()
		return serveRun(ctx, os.Stderr)
	},
}

var serveStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the API server in the background",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStartRun()
	},
}

var serveStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStopRun()
	},
}

var serveStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the background API server is running",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveStatusRun()
	},
}

func init() {
	serveCmd.PersistentFlags().IntP("port", "p", 8080, "port to listen on")
	serveCmd.PersistentFlags().String("addr", "", "address to listen on (default all interfaces)")
	_ = viper.BindPFlag("server.port", serveCmd.PersistentFlags().Lookup("port"))
	_ = viper.BindPFlag("server.addr", serveCmd.PersistentFlags().Lookup("addr"))

	serveCmd.AddCommand(serveStartCmd)
	serveCmd.AddCommand(serveStopCmd)
	serveCmd.AddCommand(serveStatusCmd)
	rootCmd.AddCommand(serveCmd)
}

func listenAddr() string {
	return net.JoinHostPort(viper.GetString("server.addr"), strconv.Itoa(viper.GetInt("server.port")))
}

// newLogger builds the server logger from log.level and log.format.
func newLogger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log.level"))); err != nil {
		return nil, fmt.Errorf("invalid log.level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch format := strings.ToLower(viper.GetString("log.format")); format {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log.format %q (want text or json)", format)
	}
}

// serveRun serves the API until ctx is cancelled, then shuts down gracefully.
func serveRun(ctx context.Context, logOut io.Writer) error {
	logger, err := newLogger(logOut)
	if err != nil {
		return err
	}

	addr := listenAddr()
	if dryRun {
		ui.DryRunMsg("Would serve the issues API on %s", addr)
		return nil
	}

	ms := store.NewMemoryStore(store.WithLogger(logger))
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(ms, logger).Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	logger.Info("issues API listening", "addr", ln.Addr().String(), "version", buildVersion)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// pidFile returns the PID file of the background server.
func pidFile() *daemon.PIDFile {
	return daemon.NewPIDFile(filepath.Join(stateDir(), "issues-serve.pid"))
}

// serveLogPath returns the log file the background server writes to.
func serveLogPath() string {
	return filepath.Join(stateDir(), "issues-serve.log")
}

func serveStartRun() error {
	pf := pidFile()
	if pid, running := pf.IsRunning(); running {
		return fmt.Errorf("server already running (PID %d)", pid)
	}

	if dryRun {
		ui.DryRunMsg("Would start the issues API on %s in the background", listenAddr())
		return nil
	}

	if err := os.MkdirAll(stateDir(), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("find executable: %w", err)
	}

	logFile, err := os.OpenFile(serveLogPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()

	args := []string{"serve",
		"--port", strconv.Itoa(viper.GetInt("server.port")),
		"--addr", viper.GetString("server.addr"),
	}
	if cfg := viper.ConfigFileUsed(); cfg != "" {
		args = append(args, "--config", cfg)
	}

	child := exec.Command(exe, args...)
	child.Stdout = logFile
	child.Stderr = logFile
	setDaemonAttrs(child)

	if err := child.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}
	if err := pf.WritePID(child.Process.Pid); err != nil {
		return fmt.Errorf("write PID file: %w", err)
	}
	_ = child.Process.Release()

	ui.Success("Server started (PID %d) on %s", child.Process.Pid, listenAddr())
	ui.Info("Logs: %s", serveLogPath())
	return nil
}

func serveStopRun() error {
	pf := pidFile()
	pid, running := pf.IsRunning()
	if !running {
		_ = pf.Remove()
		return daemon.ErrNotRunning
	}

	if dryRun {
		ui.DryRunMsg("Would stop server (PID %d)", pid)
		return nil
	}

	if err := pf.Signal(sigTERM()); err != nil {
		return fmt.Errorf("signal server: %w", err)
	}
	if !pf.WaitExit(shutdownTimeout+time.Second, 100*time.Millisecond) {
		ui.Warning("Server did not exit in time, killing PID %d", pid)
		if err := pf.Signal(sigKILL()); err != nil {
			return fmt.Errorf("kill server: %w", err)
		}
	}
	_ = pf.Remove()

	ui.Success("Server stopped (PID %d)", pid)
	return nil
}

func serveStatusRun() error {
	pf := pidFile()
	pid, running := pf.IsRunning()
	if !running {
		ui.Info("Server: %s", "not running")
		return nil
	}
	ui.Info("Server: running (PID %d)", pid)
	ui.Info("URL:    %s", viper.GetString("server.url"))
	ui.Info("Logs:   %s", serveLogPath())
	return nil
}
