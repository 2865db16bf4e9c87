package main

import (
	"encoding/json"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/cobra"

	"github.com/okian/readiness/internal/config"
	"github.com/okian/readiness/internal/domain/chart"
	"github.com/okian/readiness/internal/domain/scoring"
)

// scoreOutput is what the score command prints.
type scoreOutput struct {
	scoring.Sheet
	Radar chart.RadarSeries `json:"radar"`
}

func newScoreCmd() *cobra.Command {
	var answersPath string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score an answers file without saving it",
		Long: `score reads a YAML answers file and prints the scored sheet as JSON.

The file maps dimension names to answers in question order:

  responses:
    Product: [4, 4, 3, 5]
    Security: [1, 1, 2, 1]

Missing dimensions and trailing answers count as 3.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Context())
			if err != nil {
				return err
			}
			cat, err := cfg.Catalog()
			if err != nil {
				return err
			}
			responses, err := loadAnswers(answersPath)
			if err != nil {
				return err
			}
			sheet, err := scoring.Evaluate(cat, responses)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(scoreOutput{Sheet: sheet, Radar: chart.Radar(sheet.Dimensions)})
		},
	}
	cmd.Flags().StringVarP(&answersPath, "answers", "a", "", "YAML answers file")
	_ = cmd.MarkFlagRequired("answers")
	return cmd
}

func loadAnswers(path string) (map[string][]int, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("read answers %s: %w", path, err)
	}
	var responses map[string][]int
	if err := k.Unmarshal("responses", &responses); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", scoring.ErrInvalidInput, path, err)
	}
	return responses, nil
}
