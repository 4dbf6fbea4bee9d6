// Package commands implements the tempmail command tree.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/heptiolabs/healthcheck"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	tempmail "github.com/tempmail-go/client-go"
	"github.com/tempmail-go/client-go/internal/cli/ui"
	"github.com/tempmail-go/client-go/internal/config"
	"github.com/tempmail-go/client-go/internal/logger"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitError   = 1
	ExitTimeout = 2
)

// errReported marks an error whose message was already printed.
type errReported struct{ err error }

func (e *errReported) Error() string { return e.err.Error() }
func (e *errReported) Unwrap() error { return e.err }

// app carries state shared by every subcommand of one invocation.
type app struct {
	printer *ui.Printer
	errOut  io.Writer

	// global flags
	configPath  string
	sessionFile string
	logLevel    string
	metricsAddr string
	baseURL     string

	cfg           *config.Config
	logger        *zap.Logger
	registry      *prometheus.Registry
	metricsServer *http.Server
}

// NewRootCommand builds the command tree writing to out and errOut.
func NewRootCommand(out, errOut io.Writer) *cobra.Command {
	a := &app{
		printer: ui.NewPrinter(out, errOut),
		errOut:  errOut,
		logger:  zap.NewNop(),
	}

	rootCmd := &cobra.Command{
		Use:   "tempmail",
		Short: "Disposable mailboxes from the command line",
		Long: `tempmail provisions disposable email addresses and watches them for new mail.

A generated mailbox is saved to a session file so that later commands
can list or wait on it. Settings come from flags, TEMPMAIL_* environment
variables, a .env file or a config file.`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (yaml, json or toml)")
	flags.StringVarP(&a.sessionFile, "session-file", "s", "", "session file (default "+config.DefaultSessionFile+")")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.StringVar(&a.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9100")
	flags.StringVar(&a.baseURL, "base-url", "", "service base URL")

	rootCmd.AddCommand(
		newNewCmd(a),
		newListCmd(a),
		newWaitCmd(a),
		newVersionCmd(a),
	)

	return rootCmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	return run(os.Args[1:], os.Stdout, os.Stderr)
}

func run(args []string, out, errOut io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := NewRootCommand(out, errOut)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return ExitOK
	}

	var reported *errReported
	if !errors.As(err, &reported) {
		ui.NewPrinter(out, errOut).Error("%v", err)
	}
	return ExitCode(err)
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, tempmail.ErrWaitTimeout):
		return ExitTimeout
	default:
		return ExitError
	}
}

// setup loads configuration, then starts logging and the metrics endpoint.
func (a *app) setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("session-file") {
		cfg.SessionFile = a.sessionFile
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = a.metricsAddr
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = a.baseURL
	}
	a.cfg = cfg

	log, err := logger.NewLogger(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		LogFile:     cfg.Log.File,
		MaxSize:     10,
		MaxBackups:  3,
		MaxAge:      7,
		Output:      a.errOut,
	})
	if err != nil {
		log = logger.NewDevelopmentLogger(a.errOut)
		log.Warn("log file unavailable, logging to stderr only",
			zap.String("file", cfg.Log.File), zap.Error(err))
	}
	a.logger = log

	if cfg.MetricsAddr != "" {
		if err := a.serveMetrics(cfg.MetricsAddr); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) teardown(cmd *cobra.Command, args []string) error {
	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			a.logger.Warn("metrics server shutdown failed", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
	return nil
}

// serveMetrics exposes /metrics, /live and /ready for the lifetime of the
// command.
func (a *app) serveMetrics(addr string) error {
	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen for metrics: %w", err)
	}

	health := healthcheck.NewHandler()
	health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(1000))
	if host := a.serviceHost(); host != "" {
		health.AddReadinessCheck("service-dns", healthcheck.DNSResolveCheck(host, 2*time.Second))
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))
	mux.Handle("/live", health)
	mux.Handle("/ready", health)
	a.metricsServer = &http.Server{Addr: ln.Addr().String(), Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := a.metricsServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", zap.Error(err))
		}
	}()
	a.logger.Info("serving metrics", zap.String("addr", a.metricsServer.Addr))
	return nil
}

// serviceHost returns the host name of the configured base URL.
func (a *app) serviceHost() string {
	if a.cfg == nil {
		return ""
	}
	u, err := url.Parse(a.cfg.BaseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// newClient builds a client from the loaded configuration.
func (a *app) newClient() (*tempmail.Client, error) {
	opts := []tempmail.Option{
		tempmail.WithBaseURL(a.cfg.BaseURL),
		tempmail.WithTimeout(a.cfg.Timeout),
		tempmail.WithRequestTimeout(a.cfg.RequestTimeout),
		tempmail.WithLogger(a.logger),
	}
	if a.registry != nil {
		opts = append(opts, tempmail.WithMetrics(a.registry))
	}
	if a.cfg.RateLimit > 0 {
		opts = append(opts, tempmail.WithRateLimit(rate.Limit(a.cfg.RateLimit), a.cfg.RateBurst))
	}
	return tempmail.New(opts...)
}

// loadSession builds a client resuming the session stored at path.
func (a *app) loadSession(path string) (*tempmail.Client, error) {
	client, err := a.newClient()
	if err != nil {
		return nil, err
	}
	if err := client.ImportFromFile(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no session at %s, run 'tempmail new' first", path)
		}
		return nil, fmt.Errorf("load session %s: %w", path, err)
	}
	return client, nil
}
