package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jsphweid/midiscore/model"
	"github.com/jsphweid/midiscore/scale"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	spellOctave  int
	spellUnicode bool
)

func init() {
	spellCmd.Flags().IntVar(&spellOctave, "octave", 4, "octave of degree 0")
	spellCmd.Flags().BoolVar(&spellUnicode, "unicode", false, "print accidentals as ♭ ♯ 𝄪 𝄫")
	// so negative positions are not read as flags
	spellCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(spellCmd)
}

var spellCmd = &cobra.Command{
	Use:   "spell [--octave 4] [--unicode] <scale> <position>...",
	Short: "Prints the spelled notes of scale degrees",
	Example: `  midiscore spell Cmaj 0 1 2 3 4 5 6 7
  midiscore spell --octave 3 Ebmin -1 0 1`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		positions, err := parsePositions(args[1:])
		if err != nil {
			return err
		}
		res, err := Spell(args[0], spellOctave, positions, spellUnicode)
		if err != nil {
			return err
		}
		names := make([]string, len(res.Notes))
		for i, n := range res.Notes {
			names[i] = n.Name
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(names, " "))
		return nil
	},
}

func parsePositions(args []string) ([]int, error) {
	positions := make([]int, len(args))
	for i, arg := range args {
		p, err := strconv.Atoi(strings.TrimSpace(arg))
		if err != nil {
			return nil, errors.Errorf("position %q is not an integer", arg)
		}
		positions[i] = p
	}
	return positions, nil
}

// Spell names the given degrees of a scale; nil positions means one octave of
// degrees.
func Spell(scaleName string, octave int, positions []int, unicode bool) (*model.SpellResponse, error) {
	s, err := scale.Parse(scaleName)
	if err != nil {
		return nil, err
	}
	if positions == nil {
		for i := 0; i < s.Len(); i++ {
			positions = append(positions, i)
		}
	}
	res := &model.SpellResponse{Scale: s.String(), Octave: octave, Notes: []model.SpelledNote{}}
	for _, p := range positions {
		nn, err := s.NamedNote(p, octave)
		if err != nil {
			return nil, err
		}
		note, err := nn.Note()
		if err != nil {
			return nil, err
		}
		name := nn.String()
		if unicode {
			name = nn.Unicode()
		}
		res.Notes = append(res.Notes, model.SpelledNote{Position: p, Name: name, Note: uint8(note)})
	}
	return res, nil
}
