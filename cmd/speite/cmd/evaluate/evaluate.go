package evaluate

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"speite/internal/app/evaluation"
)

var (
	referencePath  string
	hypothesisPath string
	asJSON         bool
)

func init() {
	Cmd.Flags().StringVar(&referencePath, "reference", "", "file with the reference transcript")
	Cmd.Flags().StringVar(&hypothesisPath, "hypothesis", "", "file with the transcript to score")
	Cmd.Flags().BoolVar(&asJSON, "json", false, "print scores as JSON")

	_ = Cmd.MarkFlagRequired("reference")
	_ = Cmd.MarkFlagRequired("hypothesis")
}

// Cmd represents the evaluate command
var Cmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score a transcript against a reference (WER and CER)",
	RunE: func(cmd *cobra.Command, args []string) error {
		reference, err := os.ReadFile(referencePath)
		if err != nil {
			return fmt.Errorf("failed to read reference: %w", err)
		}
		hypothesis, err := os.ReadFile(hypothesisPath)
		if err != nil {
			return fmt.Errorf("failed to read hypothesis: %w", err)
		}

		scores := evaluation.Evaluate(string(reference), string(hypothesis))
		return printScores(cmd.OutOrStdout(), scores, asJSON)
	},
}

func printScores(w io.Writer, scores evaluation.Scores, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(scores)
	}
	fmt.Fprintf(w, "WER: %s\n", percent(scores.WER))
	fmt.Fprintf(w, "CER: %s\n", percent(scores.CER))
	return nil
}

func percent(rate *float64) string {
	if rate == nil {
		return "n/a (empty reference)"
	}
	return fmt.Sprintf("%.2f%%", *rate*100)
}
