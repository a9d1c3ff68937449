// Command navdemo is a terminal app built on the navigation stack.
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/vango-dev/navstack/internal/demo"
	"github.com/vango-dev/navstack/internal/errors"
	"github.com/vango-dev/navstack/pkg/inspect"
	"github.com/vango-dev/navstack/pkg/middleware"
	"github.com/vango-dev/navstack/pkg/nav"
	"github.com/vango-dev/navstack/pkg/store"
)

type options struct {
	stateDir   string
	stackID    string
	s3Bucket   string
	s3Prefix   string
	s3Region   string
	s3Endpoint string
	inspect    string
	logFile    string
	debounce   time.Duration
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "navdemo",
		Short: "Terminal demo of the navigation stack",
		Long: `navdemo opens a small terminal app whose screens are generated routes.

The stack is saved on exit and restored on the next start. With --inspect
the live stack is served over HTTP:

  navdemo --inspect :7070
  curl localhost:7070/owners`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.stateDir, "state-dir", defaultStateDir(), "directory for saved stacks")
	flags.StringVar(&opts.stackID, "stack", demo.DefaultStackID, "name of the saved stack")
	flags.StringVar(&opts.s3Bucket, "s3-bucket", "", "save stacks to this S3 bucket instead of --state-dir")
	flags.StringVar(&opts.s3Prefix, "s3-prefix", "navdemo/", "object key prefix in the S3 bucket")
	flags.StringVar(&opts.s3Region, "s3-region", "us-east-1", "S3 region")
	flags.StringVar(&opts.s3Endpoint, "s3-endpoint", "", "custom S3 endpoint, e.g. a local MinIO")
	flags.StringVar(&opts.inspect, "inspect", "", "serve the inspector on this address")
	flags.StringVar(&opts.logFile, "log-file", "", "write debug logs to this file")
	flags.DurationVar(&opts.debounce, "debounce", 150*time.Millisecond, "reject repeated pushes of one screen within this interval")
	return cmd
}

func defaultStateDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".navdemo"
	}
	return filepath.Join(dir, "navdemo")
}

func run(ctx context.Context, opts options) error {
	logger, closeLog, err := openLogger(opts.logFile)
	if err != nil {
		return err
	}
	defer closeLog()

	st, err := openStore(opts)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics := middleware.Metrics(middleware.WithRegistry(reg))
	cfg := demo.Config{
		Store:     st,
		StackID:   opts.stackID,
		Logger:    logger,
		Debounce:  opts.debounce,
		Reporters: []nav.Reporter{metrics, middleware.Tracing()},
		Observers: []nav.OwnerObserver{metrics},
	}

	if opts.inspect != "" {
		inspector := inspect.New(
			inspect.WithCodec(demo.NewCodec()),
			inspect.WithLogger(logger),
			inspect.WithGatherer(reg),
		)
		defer inspector.Close()
		cfg.Observers = append(cfg.Observers, inspector)

		srv := &http.Server{
			Addr:              opts.inspect,
			Handler:           inspector.Handler(),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
				logger.Error("inspector stopped", "addr", opts.inspect, "error", err)
			}
		}()
		defer func() {
			shutdown, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdown)
		}()
		logger.Info("inspector listening", "addr", opts.inspect)
	}

	app, err := demo.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if _, err := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("navdemo: %w", err)
	}
	return nil
}

func openLogger(path string) (*slog.Logger, func(), error) {
	if path == "" {
		return slog.New(slog.DiscardHandler), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("navdemo: open log file: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return logger, func() { f.Close() }, nil
}

func openStore(opts options) (store.Store, error) {
	if opts.s3Bucket == "" {
		return store.NewFile(opts.stateDir)
	}
	s3Opts := s3.Options{
		Region:      opts.s3Region,
		Credentials: aws.NewCredentialsCache(aws.CredentialsProviderFunc(envCredentials)),
	}
	if opts.s3Endpoint != "" {
		s3Opts.BaseEndpoint = aws.String(opts.s3Endpoint)
		s3Opts.UsePathStyle = true
	}
	return store.NewS3(s3.New(s3Opts), opts.s3Bucket, opts.s3Prefix), nil
}

// envCredentials reads the standard AWS_* variables.
func envCredentials(context.Context) (aws.Credentials, error) {
	id, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return aws.Credentials{}, stderrors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set")
	}
	return aws.Credentials{
		AccessKeyID:     id,
		SecretAccessKey: secret,
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		Source:          "environment",
	}, nil
}
