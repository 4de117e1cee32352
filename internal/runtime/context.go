// Package runtime provides application runtime context for Pawminder.
package runtime

import (
	"os"
	"time"

	"github.com/pawminder/pawminder/internal/model"
	"github.com/pawminder/pawminder/internal/output"
	"github.com/pawminder/pawminder/internal/storage"
)

// Context holds the application runtime context.
type Context struct {
	DB        *storage.DB
	Formatter *output.Formatter

	// Repositories
	DogRepo      *storage.DogRepo
	ReminderRepo *storage.ReminderRepo
	LogRepo      *storage.LogRepo
	FamilyRepo   *storage.FamilyRepo
	WebhookRepo  *storage.WebhookRepo

	// Debug mode
	Debug bool
}

// Options configures the runtime context.
type Options struct {
	DBPath    string
	InMemory  bool
	Format    output.Format
	ColorMode output.ColorMode
	Debug     bool
}

// DefaultOptions returns default runtime options.
func DefaultOptions() Options {
	return Options{
		DBPath:    storage.DefaultPath(),
		InMemory:  false,
		Format:    output.FormatCLI,
		ColorMode: output.ColorAuto,
		Debug:     false,
	}
}

// New opens the database and wires up repositories and the output
// formatter. PAWMINDER_DATABASE overrides the database location;
// ":memory:" selects the in-memory store.
func New(opts Options) (*Context, error) {
	if envPath := os.Getenv("PAWMINDER_DATABASE"); envPath != "" {
		if envPath == ":memory:" {
			opts.InMemory = true
		} else {
			opts.DBPath = envPath
		}
	}

	db, err := storage.Open(storage.Options{
		Path:     opts.DBPath,
		InMemory: opts.InMemory,
	})
	if err != nil {
		return nil, err
	}

	formatter := output.NewFormatter()
	formatter.Format = opts.Format
	formatter.ColorMode = opts.ColorMode

	return &Context{
		DB:           db,
		Formatter:    formatter,
		DogRepo:      storage.NewDogRepo(db),
		ReminderRepo: storage.NewReminderRepo(db),
		LogRepo:      storage.NewLogRepo(db),
		FamilyRepo:   storage.NewFamilyRepo(db),
		WebhookRepo:  storage.NewWebhookRepo(db),
		Debug:        opts.Debug,
	}, nil
}

// Close closes the runtime context.
func (c *Context) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// CLIFormatter returns a CLI formatter.
func (c *Context) CLIFormatter() *output.CLIFormatter {
	return output.NewCLIFormatter(c.Formatter)
}

// JSONFormatter returns a JSON formatter.
func (c *Context) JSONFormatter() *output.JSONFormatter {
	return output.NewJSONFormatter(c.Formatter)
}

// IsJSON returns true if output format is JSON.
func (c *Context) IsJSON() bool {
	return c.Formatter.Format == output.FormatJSON
}

// IsCLI returns true if output format is CLI.
func (c *Context) IsCLI() bool {
	return c.Formatter.Format == output.FormatCLI
}

// SchedulingContext builds the scheduling context for now from stored
// family state.
func (c *Context) SchedulingContext(now time.Time) model.SchedulingContext {
	sctx := model.Context(now)
	if family, err := c.FamilyRepo.Get(); err == nil {
		sctx.FamilyPaused = family.IsPaused
	}
	return sctx
}

// Debugf prints debug output if debug mode is enabled.
func (c *Context) Debugf(format string, args ...interface{}) {
	if c.Debug {
		c.Formatter.Printf("[DEBUG] "+format+"\n", args...)
	}
}
