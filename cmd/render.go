package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jsphweid/midiscore/config"
	"github.com/jsphweid/midiscore/file"
	"github.com/jsphweid/midiscore/input"
	"github.com/spf13/cobra"
)

var (
	renderOutput string
	renderRepair bool
)

func init() {
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "destination: a path, - for stdout, or s3://bucket/key (default <output_dir>/<uuid>.mid)")
	renderCmd.Flags().BoolVar(&renderRepair, "repair", false, "repair malformed JSON before parsing")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render <piece.json>",
	Short: "Renders a piece to a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dest, err := Render(cmd.Context(), globalConfig, args[0], renderOutput, renderRepair, cmd.OutOrStdout())
		if err != nil {
			return err
		}
		if dest != file.Stdout {
			fmt.Fprintln(cmd.OutOrStdout(), dest)
		}
		return nil
	},
}

func newSink(cfg *config.Config, dest string, stdout io.Writer) (*file.Sink, error) {
	sink := &file.Sink{Stdout: stdout}
	if file.IsS3(dest) {
		uploader, err := file.NewS3Uploader(cfg.S3Config())
		if err != nil {
			return nil, err
		}
		sink.Uploader = uploader
	}
	return sink, nil
}

// Render parses the piece at path and writes it to dest, returning where it
// went. An empty dest picks a fresh name in the configured output directory.
func Render(ctx context.Context, cfg *config.Config, path, dest string, repair bool, stdout io.Writer) (string, error) {
	var opts []input.Option
	if repair || cfg.RepairJSON {
		opts = append(opts, input.WithRepair())
	}
	p, err := input.ParseFile(path, opts...)
	if err != nil {
		return "", err
	}
	data, err := p.Bytes(cfg.Instrument())
	if err != nil {
		return "", err
	}

	if dest == "" {
		dest = file.DefaultPath(cfg.OutputDir)
	}
	sink, err := newSink(cfg, dest, stdout)
	if err != nil {
		return "", err
	}
	if err := sink.Write(ctx, dest, data); err != nil {
		return "", err
	}

	slog.Info("rendered", "piece", path, "tracks", len(p.Tracks), "ticks", p.Duration(), "bytes", len(data), "dest", dest)
	return dest, nil
}
