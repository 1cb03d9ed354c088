package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/nkagan-1326/onboarding-plan-generator/internal/catalog"
	"github.com/nkagan-1326/onboarding-plan-generator/internal/observability"
)

var presetsCmd = &cobra.Command{
	Use:   "presets [name]",
	Short: "List preset roles, or show one preset",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runPresets,
}

var (
	presetsFile string
	presetsJSON bool
)

func init() {
	presetsCmd.Flags().StringVar(&presetsFile, "presets", "", "YAML preset catalog replacing the built-in presets")
	presetsCmd.Flags().BoolVar(&presetsJSON, "json", false, "Print JSON instead of formatted output")
	rootCmd.AddCommand(presetsCmd)
}

func runPresets(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cat, err := loadCatalog(presetsFile)
	if err != nil {
		return err
	}
	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	return showPresets(cmd.OutOrStdout(), cat, name, presetsJSON)
}

// showPresets prints every preset, or the named one.
func showPresets(out io.Writer, cat *catalog.Catalog, name string, asJSON bool) error {
	var value any = cat.Presets()
	if name != "" {
		preset, ok := cat.Preset(name)
		if !ok {
			return fmt.Errorf("unknown preset %q (run 'presets' to list them)", name)
		}
		value = preset
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	}

	printer := observability.NewPrinter(out)
	if preset, ok := value.(catalog.Preset); ok {
		printer.PrintPreset(preset)
	} else {
		printer.PrintPresets(cat.Presets())
	}
	return nil
}
