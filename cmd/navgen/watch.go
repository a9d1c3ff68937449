package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vango-dev/navstack/internal/config"
	"github.com/vango-dev/navstack/internal/watch"
)

func (c *cli) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Regenerate the route table whenever the route package changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return c.report(err)
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.runWatch(ctx, cfg)
		},
	}

	cmd.Flags().Duration("debounce", config.DefaultDebounce, "quiet period before regenerating")
	return cmd
}

// runWatch generates once, then again after every settled burst of changes.
// Build errors are printed and the watch continues.
func (c *cli) runWatch(ctx context.Context, cfg *config.Config) error {
	_ = c.report(c.runGen(cfg))

	w, err := watch.New(watch.Config{
		Dir:      cfg.RoutesPath(),
		Ignore:   []string{cfg.Output},
		Debounce: cfg.Debounce,
		Logger:   c.logger,
	})
	if err != nil {
		return c.report(err)
	}
	w.OnChange(func(paths []string) {
		c.logger.Debug("route package changed", "files", paths)
		_ = c.report(c.runGen(cfg))
	})

	c.info("Watching %s (Ctrl+C to stop)", cfg.RoutesPath())
	err = w.Start(ctx)
	if err == context.Canceled {
		return nil
	}
	return err
}
