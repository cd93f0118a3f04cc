package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/jsphweid/midiscore/config"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool

	globalConfig = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "midiscore",
	Short: "Renders scale-degree melodies to MIDI",
	Long: `midiscore turns a JSON description of voices, written as degrees of
named scales, into a Standard MIDI File.

Examples:
  midiscore render piece.json -o piece.mid
  midiscore spell Ebmin 0 1 2 3 4 5 6
  midiscore serve --listen :8080`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		globalConfig = cfg
		slog.Debug("config loaded", "path", cfgFile, "output_dir", cfg.OutputDir, "program", cfg.Program)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	cobra.CheckErr(rootCmd.ExecuteContext(ctx))
}
