package cmd

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/bep/debounce"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	watchOutput   string
	watchRepair   bool
	watchInterval time.Duration
	watchWait     time.Duration
)

func init() {
	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "destination, rewritten on every change")
	watchCmd.Flags().BoolVar(&watchRepair, "repair", false, "repair malformed JSON before parsing")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 250*time.Millisecond, "how often to check the file")
	watchCmd.Flags().DurationVar(&watchWait, "wait", 500*time.Millisecond, "quiet period before re-rendering")
	watchCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(watchCmd)
}

var watchCmd = &cobra.Command{
	Use:   "watch <piece.json> -o <dest>",
	Short: "Re-renders a piece whenever it changes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		path := args[0]
		rerender := func() {
			if _, err := Render(ctx, globalConfig, path, watchOutput, watchRepair, cmd.OutOrStdout()); err != nil {
				slog.Error("render failed", "piece", path, "error", err)
			}
		}

		rerender()
		slog.Info("watching", "piece", path, "dest", watchOutput)
		return watchFile(ctx, path, watchInterval, watchWait, rerender)
	},
}

// watchFile polls the modification time of path and calls onChange once a
// burst of changes has been quiet for wait. It returns when ctx is done, and
// onChange is not called after that.
func watchFile(ctx context.Context, path string, interval, wait time.Duration, onChange func()) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrap(err, "could not watch")
	}
	last := info.ModTime()

	debounced := debounce.New(wait)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// drop a render still waiting out its quiet period
			debounced(func() {})
			return nil
		case <-ticker.C:
			info, err := os.Stat(path)
			if err != nil {
				slog.Warn("could not stat", "piece", path, "error", err)
				continue
			}
			if !info.ModTime().Equal(last) {
				last = info.ModTime()
				slog.Debug("changed", "piece", path, "mtime", last)
				debounced(onChange)
			}
		}
	}
}
