package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/pawminder/pawminder/internal/config"
	"github.com/pawminder/pawminder/internal/logging"
	"github.com/pawminder/pawminder/internal/model"
	"github.com/pawminder/pawminder/internal/notify"
	"github.com/pawminder/pawminder/internal/storage"
)

// RecapGenerator sends the evening care recap: what got done for each
// dog today, and anything still due before midnight.
type RecapGenerator struct {
	dogRepo      *storage.DogRepo
	reminderRepo *storage.ReminderRepo
	logRepo      *storage.LogRepo
	familyRepo   *storage.FamilyRepo
	webhookRepo  *storage.WebhookRepo
	dispatcher   *notify.Dispatcher
	lastRecap    time.Time
	debug        bool
}

// NewRecapGenerator creates a new recap generator.
func NewRecapGenerator(
	dogRepo *storage.DogRepo,
	reminderRepo *storage.ReminderRepo,
	logRepo *storage.LogRepo,
	familyRepo *storage.FamilyRepo,
	webhookRepo *storage.WebhookRepo,
) *RecapGenerator {
	return &RecapGenerator{
		dogRepo:      dogRepo,
		reminderRepo: reminderRepo,
		logRepo:      logRepo,
		familyRepo:   familyRepo,
		webhookRepo:  webhookRepo,
		dispatcher:   notify.NewDispatcher(webhookRepo),
	}
}

// SetDebug enables debug output.
func (g *RecapGenerator) SetDebug(debug bool) {
	g.debug = debug
}

// SetDispatcher replaces the default dispatcher with a shared one.
func (g *RecapGenerator) SetDispatcher(d *notify.Dispatcher) {
	g.dispatcher = d
}

// CheckDailyRecap checks if it's time to send the daily recap.
func (g *RecapGenerator) CheckDailyRecap() {
	recapAt := config.Global.Scheduler.DailyRecapAt
	if recapAt == "" {
		return
	}

	targetTime, err := parseTimeOfDay(recapAt)
	if err != nil {
		if g.debug {
			logging.DebugLog("invalid daily recap time", logging.KeyError, err)
		}
		return
	}

	if !g.shouldSendRecap(targetTime) {
		return
	}

	g.sendDailyRecap()
	g.lastRecap = time.Now()
}

// shouldSendRecap checks if we are inside the send window and have not
// already sent today.
func (g *RecapGenerator) shouldSendRecap(targetTime time.Time) bool {
	now := time.Now()

	todayTarget := time.Date(now.Year(), now.Month(), now.Day(),
		targetTime.Hour(), targetTime.Minute(), 0, 0, now.Location())

	// Within 5 minutes after the target time
	if now.Before(todayTarget) || now.After(todayTarget.Add(5*time.Minute)) {
		return false
	}

	if !g.lastRecap.IsZero() {
		lastDay := time.Date(g.lastRecap.Year(), g.lastRecap.Month(), g.lastRecap.Day(), 0, 0, 0, 0, g.lastRecap.Location())
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		if lastDay.Equal(today) {
			return false
		}
	}

	return true
}

// sendDailyRecap builds and dispatches the recap notification.
func (g *RecapGenerator) sendDailyRecap() {
	now := time.Now()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	dogs, err := g.dogRepo.ListActive()
	if err != nil {
		if g.debug {
			logging.DebugLog("failed to list dogs", logging.KeyError, err)
		}
		return
	}
	if len(dogs) == 0 {
		return
	}

	logs, err := g.logRepo.List()
	if err != nil {
		if g.debug {
			logging.DebugLog("failed to list logs", logging.KeyError, err)
		}
		return
	}

	careByDog := make(map[string][]string)
	for _, l := range logs {
		if l.Timestamp.Before(startOfToday) || l.Timestamp.After(now) {
			continue
		}
		careByDog[l.DogKey] = append(careByDog[l.DogKey], l.DisplayName())
	}

	dueTonight := g.remindersDueBefore(endOfDay(now))

	var message strings.Builder
	totalCare := 0
	for _, dog := range dogs {
		care := careByDog[dog.Key]
		if len(care) == 0 {
			message.WriteString(fmt.Sprintf("%s: no care logged today\n", dog.Name))
			continue
		}
		totalCare += len(care)
		message.WriteString(fmt.Sprintf("%s: %s\n", dog.Name, strings.Join(care, ", ")))
	}

	if len(dueTonight) > 0 {
		message.WriteString("\nStill due tonight:\n")
		for _, entry := range dueTonight {
			message.WriteString(fmt.Sprintf("  • %s at %s\n", entry.label, entry.fireAt.Format("3:04 PM")))
		}
	}

	notification := model.NewNotification(
		model.NotifyDailyRecap,
		"Daily Care Recap",
		strings.TrimSpace(message.String()),
	).WithColor(model.ColorInfo)

	notification.WithField("Care Logged", fmt.Sprintf("%d", totalCare))
	if len(dueTonight) > 0 {
		notification.WithField("Still Due", fmt.Sprintf("%d", len(dueTonight)))
	}

	ctx := context.Background()
	results := g.dispatcher.SendNotification(ctx, notification)

	if g.debug {
		for _, result := range results {
			if result.Success {
				logging.DebugLog("sent daily recap", logging.KeyWebhook, result.WebhookName)
			} else {
				logging.DebugLog("failed to send daily recap",
					logging.KeyWebhook, result.WebhookName, logging.KeyError, result.Error)
			}
		}
	}
}

// dueEntry is one reminder still due today.
type dueEntry struct {
	label  string
	fireAt time.Time
}

// remindersDueBefore lists active reminders whose next fire lands
// between now and the cutoff, soonest first.
func (g *RecapGenerator) remindersDueBefore(cutoff time.Time) []dueEntry {
	reminders, err := g.reminderRepo.ListActive()
	if err != nil {
		return nil
	}

	sctx := model.Context(time.Now())
	if family, err := g.familyRepo.Get(); err == nil {
		sctx.FamilyPaused = family.IsPaused
	}

	var due []dueEntry
	for _, reminder := range reminders {
		fireAt, ok := reminder.NextFire(sctx)
		if !ok || fireAt.After(cutoff) {
			continue
		}
		due = append(due, dueEntry{label: reminder.DisplayName(), fireAt: fireAt})
	}

	sort.Slice(due, func(i, j int) bool {
		return due[i].fireAt.Before(due[j].fireAt)
	})

	return due
}

func endOfDay(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 23, 59, 59, 0, now.Location())
}

// parseTimeOfDay parses a time string in HH:MM format.
func parseTimeOfDay(s string) (time.Time, error) {
	// Try parsing as HH:MM
	t, err := time.Parse("15:04", s)
	if err == nil {
		return t, nil
	}

	// Try parsing as H:MM
	t, err = time.Parse("3:04", s)
	if err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("invalid time format: %s (expected HH:MM)", s)
}
