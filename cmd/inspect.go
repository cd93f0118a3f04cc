package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/jsphweid/midiscore/chord"
	"github.com/jsphweid/midiscore/key"
	"github.com/jsphweid/midiscore/midi"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2/smf"
)

var (
	inspectFrom  uint64
	inspectLimit int
)

func init() {
	inspectCmd.Flags().Uint64Var(&inspectFrom, "from", 0, "skip to this beat")
	inspectCmd.Flags().IntVar(&inspectLimit, "limit", 0, "note events per track, 0 for all")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file.mid>",
	Short: "Prints the events and chords of a MIDI file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := midi.ReadMidiFile(args[0])
		if err != nil {
			return err
		}
		s, err = window(s, inspectFrom, inspectLimit)
		if err != nil {
			return err
		}
		inspect(cmd.OutOrStdout(), s)
		return nil
	},
}

// window cuts s from the given beat, counted in the file's own resolution.
func window(s *smf.SMF, fromBeat uint64, limit int) (*smf.SMF, error) {
	if fromBeat == 0 && limit <= 0 {
		return s, nil
	}
	var from uint64
	if fromBeat > 0 {
		ticks, ok := s.TimeFormat.(smf.MetricTicks)
		if !ok {
			return nil, errors.Errorf("--from needs a file timed in ticks per beat, got %v", s.TimeFormat)
		}
		from = fromBeat * uint64(ticks.Ticks4th())
	}
	return midi.Excerpt(s, from, limit), nil
}

func inspect(w io.Writer, s *smf.SMF) {
	fmt.Fprintf(w, "time format: %v\n", s.TimeFormat)
	fmt.Fprintf(w, "tracks: %d\n", len(s.Tracks))
	for i, track := range s.Tracks {
		fmt.Fprintf(w, "\ntrack %d\n", i)
		for _, line := range midi.Describe(track) {
			fmt.Fprintln(w, line)
		}
	}

	fmt.Fprintf(w, "\nchords\n")
	for _, c := range chord.GetChords(s) {
		names := make([]string, len(c.Notes))
		for i, n := range c.Notes {
			names[i] = key.Note(n).String()
		}
		fmt.Fprintf(w, "%8d %-12s %s\n", c.TicksOffset, chord.CreateChordKey(c.Notes), strings.Join(names, " "))
	}
}
