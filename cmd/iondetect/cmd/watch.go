package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"iondetect/pkg/scan"
)

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s for new scan files (Ctrl-C to stop)\n", watchDir)

	cache := scan.NewCache()
	if err := cache.Watch(ctx, watchDir); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
