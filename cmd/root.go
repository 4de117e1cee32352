// Package cmd provides the CLI commands for Pawminder.
package cmd

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pawminder/pawminder/internal/output"
	"github.com/pawminder/pawminder/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagColor  string
	flagDebug  bool
)

// ctx is the shared runtime context.
var ctx *runtime.Context

// skipRuntimeInit reports whether cmd runs without the database.
// The running daemon holds the data-directory lock, so daemon
// process-control subcommands must not open it; only the foreground
// daemon itself does.
func skipRuntimeInit(cmd *cobra.Command) bool {
	// Allow __complete through for dynamic completions.
	if cmd.Name() == "completion" || cmd.Name() == "help" {
		return true
	}
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "daemon" {
			return cmd.Name() != "start" || !daemonStartFlagForeground
		}
	}
	return false
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pawminder",
	Short: "Household dog-care reminders from the command line",
	Long: `Pawminder keeps track of the care your dogs need and reminds the
household when it is due.

Examples:
  pawminder dog add Biscuit
  pawminder reminder add Biscuit walk every 4h
  pawminder reminder add Biscuit feed every mon,wed,fri at 7:30
  pawminder log add Biscuit walk
  pawminder daemon start`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if skipRuntimeInit(cmd) {
			return nil
		}

		// Parse format flag
		var format output.Format
		switch flagFormat {
		case "json":
			format = output.FormatJSON
		case "plain":
			format = output.FormatPlain
		default:
			format = output.FormatCLI
		}

		// Parse color flag
		var colorMode output.ColorMode
		switch flagColor {
		case "always":
			colorMode = output.ColorAlways
		case "never":
			colorMode = output.ColorNever
		default:
			colorMode = output.ColorAuto
		}

		// Create runtime context
		opts := runtime.DefaultOptions()
		opts.Format = format
		opts.ColorMode = colorMode
		opts.Debug = flagDebug

		var err error
		ctx, err = runtime.New(opts)
		if err != nil {
			return err
		}

		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ctx != nil {
			return ctx.Close()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: show what is due
		return runOverview(cmd, args)
	},
}

// runOverview shows every active reminder, most urgent first.
func runOverview(cmd *cobra.Command, args []string) error {
	now := time.Now()
	sctx := ctx.SchedulingContext(now)

	reminders, err := ctx.ReminderRepo.ListActive()
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		outputs := make([]*output.ReminderOutput, 0, len(reminders))
		for _, r := range reminders {
			fireAt, ok := r.NextFire(sctx)
			if !ok {
				continue
			}
			outputs = append(outputs, output.NewReminderOutput(r, dogNameFor(r.DogKey), fireAt, !fireAt.After(now)))
		}
		return ctx.JSONFormatter().PrintReminders(outputs)
	}

	cli := ctx.CLIFormatter()

	if sctx.FamilyPaused {
		cli.PrintPaused()
		return nil
	}

	if len(reminders) == 0 {
		cli.Muted("No reminders set up.")
		cli.Muted("Use 'pawminder reminder add <dog> <schedule>' to create one.")
		return nil
	}

	for _, r := range reminders {
		fireAt, ok := r.NextFire(sctx)
		if !ok {
			continue
		}
		cli.PrintReminder(r, dogNameFor(r.DogKey), fireAt, !fireAt.After(now))
	}

	return nil
}

// dogNameFor resolves a dog key to its display name, falling back to the key.
func dogNameFor(dogKey string) string {
	dog, err := ctx.DogRepo.Get(dogKey)
	if err != nil {
		return dogKey
	}
	return dog.Name
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("pawminder %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
	},
}

// Die prints an error and exits.
func Die(err error) {
	if ctx != nil && ctx.IsJSON() {
		ctx.JSONFormatter().PrintError("error", err.Error(), runtime.GetSuggestion(err))
	} else {
		os.Stderr.WriteString("Error: " + runtime.FormatError(err) + "\n")
	}
	os.Exit(1)
}
