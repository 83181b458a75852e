package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/stockmarket/internal/preset"
)

// presetCmd represents the preset command
var presetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Work with market presets",
}

var presetValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a preset and print its fingerprint",
	Long: `Validates a preset YAML file and prints its warnings and hash.
Without a file the built-in preset is checked.

Example:
  go run ./cmd/market preset validate presets/tech.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPresetValidate,
}

func init() {
	rootCmd.AddCommand(presetCmd)
	presetCmd.AddCommand(presetValidateCmd)
}

func runPresetValidate(cmd *cobra.Command, args []string) error {
	p := preset.Default()
	if len(args) == 1 {
		loaded, err := preset.Load(args[0])
		if err != nil {
			return fmt.Errorf("preset %s: %w", args[0], err)
		}
		p = loaded
	}

	hash, err := preset.Hash(p)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Preset  : %s\n", p.Name)
	fmt.Fprintf(out, "Stocks  : %d\n", len(p.Stocks))
	fmt.Fprintf(out, "Hash    : %s\n", hash)

	warnings := preset.Warn(p)
	for _, w := range warnings {
		PrintWarning(out, fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}

	PrintSuccess(out, fmt.Sprintf("Preset is valid (%d warnings)", len(warnings)))
	return nil
}
