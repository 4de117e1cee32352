package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pawminder/pawminder/internal/model"
	"github.com/pawminder/pawminder/internal/output"
	"github.com/pawminder/pawminder/internal/parser"
	"github.com/pawminder/pawminder/internal/runtime"
	"github.com/pawminder/pawminder/internal/scheduler"
	"github.com/pawminder/pawminder/internal/storage"
	"github.com/pawminder/pawminder/internal/validate"
)

// Log command flags.
var (
	logAddFlagNote    string
	logAddFlagAt      string
	logListFlagPeriod string
)

// logCmd represents the log command.
var logCmd = &cobra.Command{
	Use:     "log [command]",
	Aliases: []string{"logs"},
	Short:   "Record and browse care given",
	Long: `The care log is the household's shared record of who did what and
when. Reminders marked done and skipped occurrences also land here.

Examples:
  pawminder log add Biscuit walk
  pawminder log add Biscuit medicine --note "heartworm pill"
  pawminder log add Biscuit feed --at "2 hours ago"
  pawminder log list Biscuit
  pawminder log remove log:abc123`,
	RunE: runLogList,
}

// logAddCmd records care.
var logAddCmd = &cobra.Command{
	Use:   "add DOG ACTION...",
	Short: "Record care given to a dog",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runLogAdd,
}

// logListCmd lists log entries.
var logListCmd = &cobra.Command{
	Use:   "list [DOG]",
	Short: "List care log entries, newest first",
	RunE:  runLogList,
}

// logRemoveCmd deletes a log entry.
var logRemoveCmd = &cobra.Command{
	Use:     "remove KEY",
	Aliases: []string{"rm", "delete"},
	Short:   "Delete a care log entry",
	Long: `Delete a care log entry.

If the entry backs a pending skip, deleting it restores the skipped
occurrence.`,
	Args: cobra.ExactArgs(1),
	RunE: runLogRemove,
}

func init() {
	logAddCmd.Flags().StringVarP(&logAddFlagNote, "note", "n", "", "Attach a note")
	logAddCmd.Flags().StringVar(&logAddFlagAt, "at", "", "When the care happened (e.g. '2 hours ago')")

	logListCmd.Flags().StringVarP(&logListFlagPeriod, "period", "p", "",
		"Only show entries from a period (today, yesterday, 'this week', 'last month')")

	logAddCmd.ValidArgsFunction = completeDogArgs
	logListCmd.ValidArgsFunction = completeDogArgs

	logCmd.AddCommand(logAddCmd)
	logCmd.AddCommand(logListCmd)
	logCmd.AddCommand(logRemoveCmd)
	rootCmd.AddCommand(logCmd)
}

func runLogAdd(cmd *cobra.Command, args []string) error {
	dog, err := ctx.DogRepo.GetByName(args[0])
	if err != nil {
		if storage.IsErrKeyNotFound(err) {
			return runtime.ErrDogNotFound
		}
		return err
	}

	timestamp := time.Now()
	if logAddFlagAt != "" {
		result := parser.ParseTimestamp(logAddFlagAt)
		if result.Error != nil {
			return runtime.ErrInvalidTimestamp
		}
		timestamp = result.Time
	}

	phrase := validate.SanitizeActionName(strings.Join(args[1:], " "))
	action := strings.ToLower(phrase)
	custom := ""
	if !model.IsValidAction(action) {
		custom = phrase
		action = model.ActionCustom
	}

	entry := model.NewLog(dog.Key, action, "", timestamp)
	entry.CustomActionName = custom
	entry.Note = validate.SanitizeNote(logAddFlagNote)
	if err := ctx.LogRepo.Create(entry); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewLogOutput(entry, dog.Name))
	}

	cli := ctx.CLIFormatter()
	cli.Success("Logged " + cli.FormatDogAction(dog.Name, entry.DisplayName()))
	if entry.Note != "" {
		cli.Printf("  %s\n", cli.Note(entry.Note))
	}
	return nil
}

func runLogList(cmd *cobra.Command, args []string) error {
	var entries []*model.Log
	var err error
	if len(args) > 0 {
		dog, derr := ctx.DogRepo.GetByName(args[0])
		if derr != nil {
			if storage.IsErrKeyNotFound(derr) {
				return runtime.ErrDogNotFound
			}
			return derr
		}
		entries, err = ctx.LogRepo.ListByDog(dog.Key)
	} else {
		entries, err = ctx.LogRepo.List()
	}
	if err != nil {
		return err
	}

	if logListFlagPeriod != "" {
		window := parser.GetPeriodRange(logListFlagPeriod)
		kept := entries[:0]
		for _, l := range entries {
			if !l.Timestamp.Before(window.Start) && l.Timestamp.Before(window.End) {
				kept = append(kept, l)
			}
		}
		entries = kept
	}

	if ctx.IsJSON() {
		outputs := make([]*output.LogOutput, len(entries))
		for i, l := range entries {
			outputs[i] = output.NewLogOutput(l, dogNameFor(l.DogKey))
		}
		return ctx.JSONFormatter().PrintLogs(outputs)
	}

	cli := ctx.CLIFormatter()

	if len(entries) == 0 {
		cli.Muted("No care logged yet.")
		return nil
	}

	for _, l := range entries {
		cli.PrintLogEntry(l, dogNameFor(l.DogKey))
	}

	return nil
}

// runLogRemove deletes a log entry and undoes any skip it backed.
func runLogRemove(cmd *cobra.Command, args []string) error {
	key := args[0]

	entry, err := ctx.LogRepo.Get(key)
	if err != nil {
		if storage.IsErrKeyNotFound(err) {
			return runtime.ErrLogNotFound
		}
		return err
	}

	if err := ctx.LogRepo.Delete(key); err != nil {
		return err
	}

	sweep := scheduler.NewSkipSweep(ctx.ReminderRepo, ctx.LogRepo)
	restored, err := sweep.ReconcileLogDeletion(entry)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		ids := make([]int64, len(restored))
		for i, r := range restored {
			ids[i] = r.ID
		}
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"status":             "removed",
			"log":                key,
			"restored_reminders": ids,
		})
	}

	cli := ctx.CLIFormatter()
	cli.Success("Deleted log entry")
	for _, r := range restored {
		cli.Printf("  Restored skipped occurrence of %s (#%d)\n",
			cli.ActionName(r.DisplayName()), r.ID)
	}
	return nil
}
