package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/pawminder/pawminder/internal/storage"
	"github.com/pawminder/pawminder/internal/wire"
)

// Export command flags.
var (
	exportFlagOutput string
)

// exportCmd represents the export command.
var exportCmd = &cobra.Command{
	Use:     "export",
	Aliases: []string{"dump"},
	Short:   "Export reminders as wire records",
	Long: `Export every live reminder in the versioned wire record format.

The output can be re-imported with 'pawminder import', including files
produced by older releases.

Examples:
  pawminder export
  pawminder export -o reminders.json`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFlagOutput, "output", "o", "", "Output file (stdout if omitted)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	reminders, err := ctx.ReminderRepo.ListActive()
	if err != nil {
		return err
	}

	records := make([]*wire.Record, len(reminders))
	for i, r := range reminders {
		records[i] = wire.Encode(r)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	if exportFlagOutput == "" {
		_, err = os.Stdout.Write(data)
		return err
	}

	// Atomic write so an interrupted export never leaves a truncated file.
	if err := storage.SafeWrite(exportFlagOutput, data, 0644); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"status": "exported",
			"count":  len(records),
			"file":   exportFlagOutput,
		})
	}

	ctx.CLIFormatter().Success("Exported " + pluralize(len(records), "reminder") + " to " + exportFlagOutput)
	return nil
}
