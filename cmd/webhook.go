package cmd

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pawminder/pawminder/internal/model"
	"github.com/pawminder/pawminder/internal/notify"
	"github.com/pawminder/pawminder/internal/runtime"
)

// Webhook command flags.
var (
	webhookAddFlagType     string
	webhookAddFlagTemplate string
	webhookRemoveFlagForce bool
	webhookTestFlagAll     bool
)

// webhookCmd represents the webhook command.
var webhookCmd = &cobra.Command{
	Use:     "webhook [command]",
	Aliases: []string{"w", "wh", "hook"},
	Short:   "Configure notification webhooks",
	Long: `Configure webhooks for Discord, Slack, or custom endpoints.

Webhooks receive due reminders, snooze notices, and the daily care
recap while the daemon is running.

Examples:
  pawminder webhook add family-discord https://discord.com/api/webhooks/...
  pawminder webhook add family-slack https://hooks.slack.com/services/...
  pawminder webhook list
  pawminder webhook test family-discord
  pawminder webhook disable family-slack
  pawminder webhook remove family-discord`,
	RunE: runWebhookList,
}

// webhookAddCmd adds a new webhook.
var webhookAddCmd = &cobra.Command{
	Use:   "add NAME URL",
	Short: "Add a webhook",
	Long: `Add a webhook for receiving notifications.

The type is auto-detected from the URL:
  discord  discord.com/api/webhooks/...
  slack    hooks.slack.com/services/...
  generic  anything else; POSTs JSON, or a custom --template

Examples:
  pawminder webhook add family-discord https://discord.com/api/webhooks/123/abc
  pawminder webhook add home-server https://example.com/hook --type generic`,
	Args: cobra.ExactArgs(2),
	RunE: runWebhookAdd,
}

// webhookListCmd lists all webhooks.
var webhookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured webhooks",
	RunE:  runWebhookList,
}

// webhookTestCmd sends a test notification.
var webhookTestCmd = &cobra.Command{
	Use:   "test [NAME]",
	Short: "Send a test notification through a webhook",
	RunE:  runWebhookTest,
}

// webhookRemoveCmd removes a webhook.
var webhookRemoveCmd = &cobra.Command{
	Use:     "remove NAME",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a webhook",
	Args:    cobra.ExactArgs(1),
	RunE:    runWebhookRemove,
}

// webhookEnableCmd enables a webhook.
var webhookEnableCmd = &cobra.Command{
	Use:   "enable NAME",
	Short: "Enable a webhook",
	Args:  cobra.ExactArgs(1),
	RunE:  runWebhookEnable,
}

// webhookDisableCmd disables a webhook.
var webhookDisableCmd = &cobra.Command{
	Use:   "disable NAME",
	Short: "Disable a webhook without deleting it",
	Args:  cobra.ExactArgs(1),
	RunE:  runWebhookDisable,
}

func init() {
	webhookAddCmd.Flags().StringVarP(&webhookAddFlagType, "type", "t", "",
		"Webhook type: discord, slack, generic (auto-detected from the URL)")
	webhookAddCmd.Flags().StringVar(&webhookAddFlagTemplate, "template", "",
		"Custom payload template for generic webhooks")

	webhookRemoveCmd.Flags().BoolVar(&webhookRemoveFlagForce, "force", false,
		"Skip confirmation")

	webhookTestCmd.Flags().BoolVarP(&webhookTestFlagAll, "all", "a", false,
		"Test every enabled webhook")

	webhookTestCmd.ValidArgsFunction = completeWebhookArgs
	webhookRemoveCmd.ValidArgsFunction = completeWebhookArgs
	webhookEnableCmd.ValidArgsFunction = completeWebhookArgs
	webhookDisableCmd.ValidArgsFunction = completeWebhookArgs

	webhookCmd.AddCommand(webhookAddCmd)
	webhookCmd.AddCommand(webhookListCmd)
	webhookCmd.AddCommand(webhookTestCmd)
	webhookCmd.AddCommand(webhookRemoveCmd)
	webhookCmd.AddCommand(webhookEnableCmd)
	webhookCmd.AddCommand(webhookDisableCmd)
	rootCmd.AddCommand(webhookCmd)
}

// completeWebhookArgs completes webhook names.
func completeWebhookArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	if ctx == nil {
		var err error
		ctx, err = runtime.New(runtime.DefaultOptions())
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		defer ctx.Close()
	}

	webhooks, err := ctx.WebhookRepo.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, wh := range webhooks {
		if strings.HasPrefix(wh.Name, toComplete) {
			names = append(names, wh.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func runWebhookAdd(cmd *cobra.Command, args []string) error {
	name, rawURL := args[0], args[1]

	if !model.IsValidWebhookName(name) {
		return fmt.Errorf("invalid webhook name %q: use letters, digits, dash, or underscore (max 50 chars)", name)
	}
	if _, err := url.Parse(rawURL); err != nil {
		return fmt.Errorf("invalid webhook URL: %w", err)
	}

	exists, err := ctx.WebhookRepo.Exists(name)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("webhook %q already exists", name)
	}

	webhookType := webhookAddFlagType
	if webhookType == "" {
		webhookType = model.DetectWebhookType(rawURL)
	}
	if !model.IsValidWebhookType(webhookType) {
		return fmt.Errorf("invalid webhook type %q: must be one of %s",
			webhookType, strings.Join(model.ValidWebhookTypes(), ", "))
	}

	webhook := model.NewWebhook(name, webhookType, rawURL)
	if webhookAddFlagTemplate != "" {
		webhook.Template = webhookAddFlagTemplate
	}

	if err := ctx.WebhookRepo.Create(webhook); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"name":       webhook.Name,
			"type":       webhook.Type,
			"url":        webhook.MaskedURL(),
			"enabled":    webhook.Enabled,
			"created_at": webhook.CreatedAt,
		})
	}

	cli := ctx.CLIFormatter()
	cli.Success("Added webhook: " + name)
	cli.Printf("  Type: %s\n", webhook.Type)
	cli.Printf("  URL: %s\n", webhook.MaskedURL())
	cli.Printf("  Try it with: pawminder webhook test %s\n", name)
	return nil
}

func runWebhookList(cmd *cobra.Command, args []string) error {
	webhooks, err := ctx.WebhookRepo.List()
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"webhooks": webhooks,
			"count":    len(webhooks),
		})
	}

	cli := ctx.CLIFormatter()

	if len(webhooks) == 0 {
		cli.Muted("No webhooks configured.")
		cli.Muted("Use 'pawminder webhook add <name> <url>' to add one.")
		return nil
	}

	cli.Title(fmt.Sprintf("Webhooks (%d)", len(webhooks)))
	cli.Println("")

	for _, wh := range webhooks {
		marker := "•"
		if !wh.Enabled {
			marker = "○"
		}

		cli.Printf("%s %s\n", marker, notify.SummaryLine(wh))
		if !wh.Enabled {
			cli.Printf("    disabled\n")
		}
		if !wh.LastUsed.IsZero() {
			cli.Printf("    last used %s\n", formatTimeAgo(wh.LastUsed))
		}
		if wh.LastError != "" {
			cli.Printf("    last error: %s\n", wh.LastError)
		}
	}

	return nil
}

func runWebhookTest(cmd *cobra.Command, args []string) error {
	dispatcher := notify.NewDispatcher(ctx.WebhookRepo)
	c, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if webhookTestFlagAll {
		webhooks, err := ctx.WebhookRepo.ListEnabled()
		if err != nil {
			return err
		}
		if len(webhooks) == 0 {
			return fmt.Errorf("no enabled webhooks to test")
		}

		results := make([]notify.DispatchResult, 0, len(webhooks))
		for _, wh := range webhooks {
			results = append(results, dispatcher.TestWebhook(c, wh.Name))
		}

		if ctx.IsJSON() {
			return ctx.Formatter.PrintJSON(map[string]interface{}{"results": results})
		}

		cli := ctx.CLIFormatter()
		for _, result := range results {
			if result.Success {
				cli.Success(fmt.Sprintf("%s: delivered in %dms", result.WebhookName, result.Duration.Milliseconds()))
			} else {
				cli.Error(fmt.Sprintf("%s: %s", result.WebhookName, result.Error))
			}
		}
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("webhook name required (or use --all)")
	}
	name := args[0]

	result := dispatcher.TestWebhook(c, name)

	if ctx.IsJSON() {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"webhook":     name,
			"success":     result.Success,
			"status_code": result.StatusCode,
			"duration_ms": result.Duration.Milliseconds(),
			"error":       errorString(result.Error),
		})
	}

	cli := ctx.CLIFormatter()
	if result.Success {
		cli.Success(fmt.Sprintf("Delivered in %dms. Check the channel for the test message.", result.Duration.Milliseconds()))
	} else {
		cli.Error(fmt.Sprintf("Delivery failed: %s", result.Error))
		cli.Muted("The URL may be wrong or the service unreachable.")
	}
	return nil
}

func runWebhookRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	exists, err := ctx.WebhookRepo.Exists(name)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("webhook %q not found", name)
	}

	cli := ctx.CLIFormatter()
	if !webhookRemoveFlagForce && !ctx.IsJSON() {
		cli.Printf("Remove webhook %q? [y/N] ", name)
		var response string
		fmt.Scanln(&response)
		if response != "y" && response != "Y" {
			cli.Muted("Cancelled.")
			return nil
		}
	}

	if err := ctx.WebhookRepo.Delete(name); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"status":  "removed",
			"webhook": name,
		})
	}

	cli.Success("Removed webhook: " + name)
	return nil
}

func runWebhookEnable(cmd *cobra.Command, args []string) error {
	return setWebhookEnabled(args[0], true)
}

func runWebhookDisable(cmd *cobra.Command, args []string) error {
	return setWebhookEnabled(args[0], false)
}

func setWebhookEnabled(name string, enabled bool) error {
	var err error
	if enabled {
		err = ctx.WebhookRepo.Enable(name)
	} else {
		err = ctx.WebhookRepo.Disable(name)
	}
	if err != nil {
		return err
	}

	status := "disabled"
	if enabled {
		status = "enabled"
	}

	if ctx.IsJSON() {
		return ctx.Formatter.PrintJSON(map[string]interface{}{
			"status":  status,
			"webhook": name,
		})
	}

	ctx.CLIFormatter().Success(fmt.Sprintf("Webhook %s %s", name, status))
	return nil
}

// formatTimeAgo renders a rough relative time for list output.
func formatTimeAgo(t time.Time) string {
	diff := time.Since(t)

	switch {
	case diff < time.Minute:
		return "just now"
	case diff < time.Hour:
		mins := int(diff.Minutes())
		if mins == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", mins)
	case diff < 24*time.Hour:
		hours := int(diff.Hours())
		if hours == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", hours)
	case diff < 48*time.Hour:
		return "yesterday"
	default:
		return fmt.Sprintf("%d days ago", int(diff.Hours()/24))
	}
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
