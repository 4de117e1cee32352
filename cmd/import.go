package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pawminder/pawminder/internal/runtime"
	"github.com/pawminder/pawminder/internal/storage"
	"github.com/pawminder/pawminder/internal/wire"
)

// Import command flags.
var (
	importFlagDog    string
	importFlagDryRun bool
)

// importCmd represents the import command.
var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import reminders from wire records",
	Long: `Import reminders from a file of wire records, as written by
'pawminder export'. Records from older releases without a version field
are accepted.

Wire records carry no dog reference, so every imported reminder
attaches to the dog given with --dog and gets a fresh ID.

Examples:
  pawminder import reminders.json --dog Biscuit
  pawminder import reminders.json --dog Biscuit --dry-run`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importFlagDog, "dog", "", "Attach every imported reminder to this dog")
	importCmd.MarkFlagRequired("dog")
	importCmd.Flags().BoolVar(&importFlagDryRun, "dry-run", false, "Validate without writing")

	importCmd.RegisterFlagCompletionFunc("dog", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return completeDogs(toComplete), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	var records []*wire.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("invalid import file: %w", err)
	}

	dog, derr := ctx.DogRepo.GetByName(importFlagDog)
	if derr != nil {
		if storage.IsErrKeyNotFound(derr) {
			return runtime.ErrDogNotFound
		}
		return derr
	}

	imported := 0
	legacy := 0
	for i, rec := range records {
		reminder, derr := wire.Decode(rec)
		if derr != nil {
			return fmt.Errorf("record %d: %w", i, derr)
		}
		if rec.IsLegacy() {
			legacy++
		}

		reminder.DogKey = dog.Key

		if importFlagDryRun {
			imported++
			continue
		}

		// Fresh identity in this household
		reminder.ID = 0
		reminder.Key = ""
		if err := ctx.ReminderRepo.Create(reminder); err != nil {
			return err
		}
		imported++
	}

	if ctx.IsJSON() {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"status":         "imported",
			"count":          imported,
			"legacy_records": legacy,
			"dry_run":        importFlagDryRun,
		})
	}

	cli := ctx.CLIFormatter()
	if importFlagDryRun {
		cli.Success(fmt.Sprintf("Validated %s (%d legacy)", pluralize(imported, "record"), legacy))
		return nil
	}
	cli.Success("Imported " + pluralize(imported, "reminder"))
	if legacy > 0 {
		cli.Muted(fmt.Sprintf("  %d records used the pre-versioned format", legacy))
	}
	return nil
}

// pluralize renders "1 reminder" / "3 reminders".
func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
