package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pawminder/pawminder/internal/model"
	"github.com/pawminder/pawminder/internal/output"
	"github.com/pawminder/pawminder/internal/parser"
	"github.com/pawminder/pawminder/internal/runtime"
	"github.com/pawminder/pawminder/internal/storage"
	"github.com/pawminder/pawminder/internal/validate"
)

// Reminder command flags.
var (
	reminderSnoozeFlagFor string
)

// reminderCmd represents the reminder command.
var reminderCmd = &cobra.Command{
	Use:     "reminder [command]",
	Aliases: []string{"reminders", "rem", "r"},
	Short:   "Manage reminders",
	Long: `Create and manage recurring care reminders.

Schedules are written in plain language:
  every 4h                     repeat on a countdown
  every mon,wed,fri at 7:30    weekly on chosen days
  every day at 18:00           weekly on all days
  monthly on 15 at 9am         monthly on a day of the month
  on tomorrow 3pm              one time

Examples:
  pawminder reminder add Biscuit walk every 4h
  pawminder reminder add Biscuit feed every mon,wed,fri at 7:30
  pawminder reminder add Biscuit flea treatment monthly on 15
  pawminder reminder list Biscuit
  pawminder reminder skip 3
  pawminder reminder snooze 3 --for 10m
  pawminder reminder done 3`,
	RunE: runReminderList,
}

// reminderAddCmd creates a new reminder.
var reminderAddCmd = &cobra.Command{
	Use:   "add DOG SCHEDULE...",
	Short: "Add a reminder for a dog",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runReminderAdd,
}

// reminderListCmd lists reminders.
var reminderListCmd = &cobra.Command{
	Use:   "list [DOG]",
	Short: "List reminders, most urgent first",
	RunE:  runReminderList,
}

// reminderSkipCmd skips the next occurrence.
var reminderSkipCmd = &cobra.Command{
	Use:   "skip ID",
	Short: "Skip the next occurrence of a reminder",
	Long: `Skip the next occurrence of a weekly or monthly reminder.

Skipping records a care log entry; deleting that log entry undoes the
skip.`,
	Args: cobra.ExactArgs(1),
	RunE: runReminderSkip,
}

// reminderSnoozeCmd snoozes a reminder.
var reminderSnoozeCmd = &cobra.Command{
	Use:   "snooze ID",
	Short: "Snooze a reminder for a short while",
	Args:  cobra.ExactArgs(1),
	RunE:  runReminderSnooze,
}

// reminderDoneCmd acknowledges a fired reminder.
var reminderDoneCmd = &cobra.Command{
	Use:     "done ID",
	Aliases: []string{"ack"},
	Short:   "Mark a reminder as handled and record the care",
	Args:    cobra.ExactArgs(1),
	RunE:    runReminderDone,
}

// reminderEnableCmd enables a reminder.
var reminderEnableCmd = &cobra.Command{
	Use:   "enable ID",
	Short: "Enable a reminder",
	Args:  cobra.ExactArgs(1),
	RunE:  runReminderEnable,
}

// reminderDisableCmd disables a reminder.
var reminderDisableCmd = &cobra.Command{
	Use:   "disable ID",
	Short: "Disable a reminder without deleting it",
	Args:  cobra.ExactArgs(1),
	RunE:  runReminderDisable,
}

// reminderRemoveCmd removes a reminder.
var reminderRemoveCmd = &cobra.Command{
	Use:     "remove ID",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a reminder",
	Args:    cobra.ExactArgs(1),
	RunE:    runReminderRemove,
}

func init() {
	reminderSnoozeCmd.Flags().StringVar(&reminderSnoozeFlagFor, "for", "",
		"Snooze interval (e.g. 10m, 1h); defaults to the family setting")

	reminderAddCmd.ValidArgsFunction = completeDogArgs
	reminderListCmd.ValidArgsFunction = completeDogArgs

	reminderCmd.AddCommand(reminderAddCmd)
	reminderCmd.AddCommand(reminderListCmd)
	reminderCmd.AddCommand(reminderSkipCmd)
	reminderCmd.AddCommand(reminderSnoozeCmd)
	reminderCmd.AddCommand(reminderDoneCmd)
	reminderCmd.AddCommand(reminderEnableCmd)
	reminderCmd.AddCommand(reminderDisableCmd)
	reminderCmd.AddCommand(reminderRemoveCmd)
	rootCmd.AddCommand(reminderCmd)
}

func runReminderAdd(cmd *cobra.Command, args []string) error {
	now := time.Now()

	dog, err := ctx.DogRepo.GetByName(args[0])
	if err != nil {
		if storage.IsErrKeyNotFound(err) {
			return runtime.ErrDogNotFound
		}
		return err
	}

	spec, err := parser.ParseReminderSpec(args[1:])
	if err != nil {
		return err
	}

	phrase := validate.SanitizeActionName(spec.Action)
	action := strings.ToLower(phrase)
	custom := ""
	if !model.IsValidAction(action) {
		custom = phrase
		action = model.ActionCustom
	}

	reminder := model.NewReminder(dog.Key, action, model.ReminderKind(spec.Schedule), now)
	if custom != "" {
		if err := reminder.ChangeCustomActionName(custom); err != nil {
			return err
		}
	}

	switch spec.Schedule {
	case parser.ScheduleCountdown:
		if err := reminder.Countdown.ChangeExecutionInterval(spec.Interval); err != nil {
			return err
		}
	case parser.ScheduleWeekly:
		if err := reminder.Weekly.ChangeWeekdays(spec.Weekdays); err != nil {
			return err
		}
		if spec.HasTime {
			if err := reminder.ChangeHour(spec.Hour); err != nil {
				return err
			}
			if err := reminder.ChangeMinute(spec.Minute); err != nil {
				return err
			}
		}
	case parser.ScheduleMonthly:
		if err := reminder.Monthly.ChangeDayOfMonth(spec.DayOfMonth); err != nil {
			return err
		}
		if spec.HasTime {
			if err := reminder.ChangeHour(spec.Hour); err != nil {
				return err
			}
			if err := reminder.ChangeMinute(spec.Minute); err != nil {
				return err
			}
		}
	case parser.ScheduleOneTime:
		reminder.OneTime.Replace(spec.Date)
	}

	if err := ctx.ReminderRepo.Create(reminder); err != nil {
		return err
	}

	sctx := ctx.SchedulingContext(now)
	fireAt, _ := reminder.NextFire(sctx)

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewReminderOutput(reminder, dog.Name, fireAt, false))
	}

	cli := ctx.CLIFormatter()
	cli.Success(fmt.Sprintf("Reminder #%d: %s", reminder.ID, cli.FormatDogAction(dog.Name, reminder.DisplayName())))
	cli.Printf("  Schedule: %s\n", output.DescribeSchedule(reminder))
	if !fireAt.IsZero() {
		cli.Printf("  Next: %s\n", cli.When(output.FormatTime(fireAt)))
	}
	return nil
}

func runReminderList(cmd *cobra.Command, args []string) error {
	now := time.Now()
	sctx := ctx.SchedulingContext(now)

	var reminders []*model.Reminder
	var err error
	if len(args) > 0 {
		dog, derr := ctx.DogRepo.GetByName(args[0])
		if derr != nil {
			if storage.IsErrKeyNotFound(derr) {
				return runtime.ErrDogNotFound
			}
			return derr
		}
		reminders, err = ctx.ReminderRepo.ListByDog(dog.Key)
	} else {
		reminders, err = ctx.ReminderRepo.ListActive()
	}
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		outputs := make([]*output.ReminderOutput, len(reminders))
		for i, r := range reminders {
			fireAt, _ := r.NextFire(sctx)
			outputs[i] = output.NewReminderOutput(r, dogNameFor(r.DogKey), fireAt, !fireAt.IsZero() && !fireAt.After(now))
		}
		return ctx.JSONFormatter().PrintReminders(outputs)
	}

	cli := ctx.CLIFormatter()

	if len(reminders) == 0 {
		cli.Muted("No reminders.")
		cli.Muted("Use 'pawminder reminder add <dog> <schedule>' to create one.")
		return nil
	}

	for _, r := range reminders {
		fireAt, ok := r.NextFire(sctx)
		if !ok {
			fireAt = time.Time{}
		}
		cli.PrintReminder(r, dogNameFor(r.DogKey), fireAt, ok && !fireAt.After(now))
	}

	return nil
}

func runReminderSkip(cmd *cobra.Command, args []string) error {
	now := time.Now()

	reminder, err := getReminderByArg(args[0])
	if err != nil {
		return err
	}

	if !reminder.SupportsSkip() {
		return runtime.ErrSkipUnsupported
	}
	if reminder.IsSkipping() {
		return fmt.Errorf("reminder #%d is already skipping its next occurrence", reminder.ID)
	}

	// The skip is backed by a care log entry; deleting that entry later
	// undoes the skip.
	entry := model.NewLog(reminder.DogKey, reminder.Action, "", now)
	entry.ReminderID = reminder.ID
	entry.CustomActionName = reminder.CustomActionName
	entry.Note = "skipped"
	if err := ctx.LogRepo.Create(entry); err != nil {
		return err
	}

	changed, err := reminder.RequestSkip(now, entry.GetKey())
	if err != nil {
		return err
	}
	if changed {
		if err := ctx.ReminderRepo.Update(reminder); err != nil {
			return err
		}
	}

	sctx := ctx.SchedulingContext(now)
	fireAt, _ := reminder.NextFire(sctx)

	if ctx.IsJSON() {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"status":    "skipped",
			"reminder":  reminder.ID,
			"log_key":   entry.GetKey(),
			"next_fire": fireAt,
		})
	}

	cli := ctx.CLIFormatter()
	cli.Success(fmt.Sprintf("Skipped next %s", cli.ActionName(reminder.DisplayName())))
	cli.Printf("  Next: %s\n", cli.When(output.FormatTime(fireAt)))
	cli.Printf("  Undo by deleting log entry: pawminder log remove %s\n", entry.GetKey())
	return nil
}

func runReminderSnooze(cmd *cobra.Command, args []string) error {
	now := time.Now()

	reminder, err := getReminderByArg(args[0])
	if err != nil {
		return err
	}

	interval := time.Duration(0)
	if reminderSnoozeFlagFor != "" {
		result := parser.ParseDuration(reminderSnoozeFlagFor)
		if !result.Valid {
			return runtime.ErrInvalidDuration
		}
		interval = result.Duration
	} else {
		family, ferr := ctx.FamilyRepo.Get()
		if ferr != nil {
			return ferr
		}
		interval = family.EffectiveSnoozeInterval()
	}

	if err := reminder.ActivateSnooze(now, interval); err != nil {
		return err
	}
	if err := ctx.ReminderRepo.Update(reminder); err != nil {
		return err
	}

	sctx := ctx.SchedulingContext(now)
	fireAt, _ := reminder.NextFire(sctx)

	if ctx.IsJSON() {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"status":    "snoozed",
			"reminder":  reminder.ID,
			"next_fire": fireAt,
		})
	}

	cli := ctx.CLIFormatter()
	cli.Success(fmt.Sprintf("Snoozed %s until %s",
		cli.ActionName(reminder.DisplayName()), cli.When(output.FormatTime(fireAt))))
	return nil
}

func runReminderDone(cmd *cobra.Command, args []string) error {
	now := time.Now()

	reminder, err := getReminderByArg(args[0])
	if err != nil {
		return err
	}

	entry := model.NewLog(reminder.DogKey, reminder.Action, "", now)
	entry.ReminderID = reminder.ID
	entry.CustomActionName = reminder.CustomActionName
	if err := ctx.LogRepo.Create(entry); err != nil {
		return err
	}

	reminder.AcknowledgeFire(now)
	if err := ctx.ReminderRepo.Update(reminder); err != nil {
		return err
	}

	sctx := ctx.SchedulingContext(now)
	fireAt, recurring := reminder.NextFire(sctx)

	if ctx.IsJSON() {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"status":    "done",
			"reminder":  reminder.ID,
			"log_key":   entry.GetKey(),
			"next_fire": fireAt,
		})
	}

	cli := ctx.CLIFormatter()
	cli.Success(fmt.Sprintf("Logged %s", cli.FormatDogAction(dogNameFor(reminder.DogKey), reminder.DisplayName())))
	if recurring {
		cli.Printf("  Next: %s\n", cli.When(output.FormatTime(fireAt)))
	}
	return nil
}

func runReminderEnable(cmd *cobra.Command, args []string) error {
	return setReminderEnabled(args[0], true)
}

func runReminderDisable(cmd *cobra.Command, args []string) error {
	return setReminderEnabled(args[0], false)
}

func setReminderEnabled(arg string, enabled bool) error {
	reminder, err := getReminderByArg(arg)
	if err != nil {
		return err
	}

	reminder.Enabled = enabled
	if err := ctx.ReminderRepo.Update(reminder); err != nil {
		return err
	}

	status := "disabled"
	if enabled {
		status = "enabled"
	}

	if ctx.IsJSON() {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"status":   status,
			"reminder": reminder.ID,
		})
	}

	ctx.CLIFormatter().Success(fmt.Sprintf("Reminder #%d %s", reminder.ID, status))
	return nil
}

func runReminderRemove(cmd *cobra.Command, args []string) error {
	reminder, err := getReminderByArg(args[0])
	if err != nil {
		return err
	}

	if err := ctx.ReminderRepo.SoftDelete(reminder.Key, time.Now()); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"status":   "removed",
			"reminder": reminder.ID,
		})
	}

	ctx.CLIFormatter().Success(fmt.Sprintf("Removed reminder #%d", reminder.ID))
	return nil
}

// getReminderByArg resolves a numeric reminder ID argument.
func getReminderByArg(arg string) (*model.Reminder, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return nil, runtime.NewParseError("reminder ID", arg, "must be a number")
	}

	reminder, err := ctx.ReminderRepo.GetByID(id)
	if err != nil {
		if storage.IsErrKeyNotFound(err) {
			return nil, runtime.ErrReminderNotFound
		}
		return nil, err
	}
	if reminder.IsDeleted() {
		return nil, runtime.ErrReminderNotFound
	}
	return reminder, nil
}
