package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pawminder/pawminder/internal/daemon"
	"github.com/pawminder/pawminder/internal/notify"
)

// Daemon command flags.
var (
	daemonStartFlagForeground bool
	daemonLogsFlagTail        int
	daemonLogsFlagFollow      bool
	daemonInstallFlagForce    bool
)

// daemonCmd represents the daemon command.
var daemonCmd = &cobra.Command{
	Use:     "daemon [command]",
	Aliases: []string{"d", "bg", "service"},
	Short:   "Manage the background daemon",
	Long: `Manage the Pawminder background daemon that schedules reminder
alarms, reconciles skipped occurrences, and sends webhook notifications
when care is due.

Examples:
  pawminder daemon start
  pawminder daemon status
  pawminder daemon stop
  pawminder daemon logs --tail 20`,
	RunE: runDaemonStatus,
}

// daemonStartCmd starts the daemon.
var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the background daemon",
	Long: `Start the Pawminder background daemon.

The daemon fires reminder alarms and sends notifications via configured webhooks.

Examples:
  pawminder daemon start           # Start in background
  pawminder daemon start -f        # Start in foreground (for debugging)`,
	RunE: runDaemonStart,
}

// daemonStopCmd stops the daemon.
var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background daemon",
	RunE:  runDaemonStop,
}

// daemonStatusCmd shows daemon status.
var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status and health",
	RunE:  runDaemonStatus,
}

// daemonLogsCmd shows daemon logs.
var daemonLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View daemon logs",
	Long: `View the daemon log file.

Examples:
  pawminder daemon logs
  pawminder daemon logs --tail 50
  pawminder daemon logs -f`,
	RunE: runDaemonLogs,
}

// daemonInstallCmd installs the daemon as a system service.
var daemonInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install daemon as a system service",
	Long: `Install the Pawminder daemon as a system service that starts automatically on login.

On macOS, this creates a launchd agent in ~/Library/LaunchAgents.
On Linux, this creates a systemd user service in ~/.config/systemd/user.

Examples:
  pawminder daemon install
  pawminder daemon install --force   # Reinstall if already installed`,
	RunE: runDaemonInstall,
}

// daemonUninstallCmd uninstalls the daemon system service.
var daemonUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstall daemon system service",
	Long: `Remove the Pawminder daemon from system services.

This stops the service and removes the service configuration.`,
	RunE: runDaemonUninstall,
}

func init() {
	daemonStartCmd.Flags().BoolVarP(&daemonStartFlagForeground, "foreground", "f", false,
		"Run in foreground (don't daemonize)")

	daemonLogsCmd.Flags().IntVarP(&daemonLogsFlagTail, "tail", "n", 20,
		"Number of lines to show")
	daemonLogsCmd.Flags().BoolVarP(&daemonLogsFlagFollow, "follow", "f", false,
		"Follow log output (like tail -f)")

	daemonInstallCmd.Flags().BoolVar(&daemonInstallFlagForce, "force", false,
		"Force reinstall if already installed")

	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonLogsCmd)
	daemonCmd.AddCommand(daemonInstallCmd)
	daemonCmd.AddCommand(daemonUninstallCmd)

	rootCmd.AddCommand(daemonCmd)
}

// runDaemonStart handles the daemon start command.
func runDaemonStart(cmd *cobra.Command, args []string) error {
	if !daemonStartFlagForeground {
		// Background mode runs without the database. The spawned
		// foreground child opens it and takes the directory lock.
		d := daemon.NewDaemon(nil)
		d.SetDebug(flagDebug)

		if d.IsRunning() {
			return fmt.Errorf("daemon is already running (PID: %d)", d.GetStatus().PID)
		}

		fmt.Println("Starting pawminder daemon...")
		pid, err := d.StartBackground()
		if err != nil {
			return err
		}
		fmt.Printf("Daemon started (PID: %d)\n", pid)
		return nil
	}

	d := daemon.NewDaemon(ctx.DB)
	d.SetDebug(ctx.Debug)

	if d.IsRunning() {
		return fmt.Errorf("daemon is already running (PID: %d)", d.GetStatus().PID)
	}

	if notify.NewDispatcher(ctx.WebhookRepo).CountEnabledWebhooks() == 0 {
		fmt.Println("Warning: no webhooks configured. Add with: pawminder webhook add")
		fmt.Println("")
	}

	fmt.Println("Starting pawminder daemon (foreground mode)...")
	return d.Start(context.Background())
}

// runDaemonStop handles the daemon stop command.
func runDaemonStop(cmd *cobra.Command, args []string) error {
	d := daemon.NewDaemon(nil)

	status := d.GetStatus()
	if !status.Running {
		fmt.Println("Daemon is not running")
		return nil
	}

	fmt.Println("Stopping pawminder daemon...")
	if err := d.Stop(); err != nil {
		return err
	}

	fmt.Printf("Daemon stopped (was PID: %d)\n", status.PID)
	return nil
}

// runDaemonStatus handles the daemon status command.
func runDaemonStatus(cmd *cobra.Command, args []string) error {
	status := daemon.NewDaemon(nil).GetStatus()

	fmt.Println("Pawminder Daemon Status")
	fmt.Println("")

	if !status.Running {
		fmt.Printf("  Status:    stopped\n")
		fmt.Println("")
		fmt.Println("Start with: pawminder daemon start")
		return nil
	}

	fmt.Printf("  Status:    running\n")
	fmt.Printf("  PID:       %d\n", status.PID)
	fmt.Printf("  Uptime:    %s\n", status.Uptime)

	if h := status.Health; h != nil {
		fmt.Println("")
		fmt.Printf("  Health:        %s (checked %s)\n", h.Status, h.CheckedAt.Format("15:04:05"))
		fmt.Printf("  Alarms:        %d scheduled\n", h.ActiveAlarms)
		fmt.Printf("  Notifications: %d sent, %d failed\n", h.Notifications.Sent, h.Notifications.Failed)
		if h.RetryQueue.QueueSize > 0 {
			fmt.Printf("  Retry queue:   %d pending delivery\n", h.RetryQueue.QueueSize)
		}
		if !h.DatabaseHealthy {
			fmt.Printf("  Database:      unhealthy (%d errors)\n", len(h.DatabaseErrors))
		}
		if h.DiskWarning != "" {
			fmt.Printf("  %s\n", h.DiskWarning)
		}
	}

	return nil
}

// runDaemonLogs handles the daemon logs command.
func runDaemonLogs(cmd *cobra.Command, args []string) error {
	logPath := daemon.GetLogPath()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		fmt.Println("No log file found.")
		fmt.Printf("Log path: %s\n", logPath)
		return nil
	}

	if daemonLogsFlagFollow {
		return followLogs(logPath)
	}

	lines, err := tailFile(logPath, daemonLogsFlagTail)
	if err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

// tailFile reads the last n lines from a file.
func tailFile(path string, n int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if len(lines) > n {
			lines = lines[1:]
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// followLogs prints new log lines as they are appended, tail -f style.
func followLogs(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	file.Seek(0, 2)

	for {
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			fmt.Println(scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return err
		}
		time.Sleep(500 * time.Millisecond)
	}
}

// runDaemonInstall handles the daemon install command.
func runDaemonInstall(cmd *cobra.Command, args []string) error {
	mgr, err := daemon.NewServiceManager()
	if err != nil {
		return err
	}
	mgr.SetDebug(flagDebug)

	if mgr.IsInstalled() {
		if !daemonInstallFlagForce {
			fmt.Println("Service is already installed.")
			fmt.Println("Use --force to reinstall.")
			return nil
		}
		fmt.Println("Removing existing service...")
		if err := mgr.Uninstall(); err != nil {
			return fmt.Errorf("removing existing service: %w", err)
		}
	}

	fmt.Println("Installing Pawminder daemon as system service...")
	if err := mgr.Install(); err != nil {
		return err
	}

	fmt.Println("")
	fmt.Println("✓ Service installed successfully")
	fmt.Println("")
	fmt.Println("The daemon will now start automatically when you log in.")
	fmt.Println("To start it now: pawminder daemon start")
	fmt.Println("To remove: pawminder daemon uninstall")
	return nil
}

// runDaemonUninstall handles the daemon uninstall command.
func runDaemonUninstall(cmd *cobra.Command, args []string) error {
	mgr, err := daemon.NewServiceManager()
	if err != nil {
		return err
	}
	mgr.SetDebug(flagDebug)

	if !mgr.IsInstalled() {
		fmt.Println("Service is not installed.")
		return nil
	}

	d := daemon.NewDaemon(nil)
	if d.IsRunning() {
		fmt.Println("Stopping running daemon...")
		if err := d.Stop(); err != nil && flagDebug {
			fmt.Printf("[DEBUG] Warning: failed to stop daemon: %v\n", err)
		}
	}

	fmt.Println("Uninstalling Pawminder daemon service...")
	if err := mgr.Uninstall(); err != nil {
		return err
	}

	fmt.Println("")
	fmt.Println("✓ Service uninstalled successfully")
	fmt.Println("")
	fmt.Println("The daemon will no longer start automatically.")
	fmt.Println("To reinstall: pawminder daemon install")
	return nil
}
