package cmd

import (
	"github.com/spf13/cobra"
)

// pauseCmd suspends every reminder schedule.
var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause all reminders",
	Long: `Pause the whole household. Reminders keep their configuration but
none of them fires until you resume.`,
	RunE: runPause,
}

// resumeCmd resumes reminder schedules.
var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume paused reminders",
	RunE:  runResume,
}

func init() {
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
}

func runPause(cmd *cobra.Command, args []string) error {
	if err := ctx.FamilyRepo.SetPaused(true); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.PrintJSON(map[string]interface{}{"status": "paused"})
	}

	ctx.CLIFormatter().PrintPaused()
	return nil
}

func runResume(cmd *cobra.Command, args []string) error {
	if err := ctx.FamilyRepo.SetPaused(false); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.PrintJSON(map[string]interface{}{"status": "resumed"})
	}

	ctx.CLIFormatter().Success("Reminders resumed")
	return nil
}
