package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/kanshi/internal/adapter"
	"github.com/mmcdole/kanshi/internal/domain"
	"github.com/mmcdole/kanshi/internal/tui"
	"github.com/mmcdole/kanshi/internal/tui/styles"
)

// Version is set at build time via -ldflags
var Version = "dev"

// clearSpinnerLine clears the spinner line from the terminal
const clearSpinnerLine = "\r                                              \r"

const usage = `Usage: kanshi [flags] <command> [args]

Commands:
  migrate    Check and migrate list links to another provider (default)
  refresh    Resolve every list link
  providers  List available meta data providers
  tags       List known tags
  search     Search cached titles of a provider
  entries    List cached entries of a provider
  show       Show the cached record of an identifier
  dead       List entries whose link no longer exists
  open       Open an identifier in the browser
  import     Import lists and records from a JSON file
  export     Export lists and records as JSON
  invalidate Drop persisted cache data
  clear-cache Delete the cache database
  init       Write the default configuration file

Flags:
`

func main() {
	// Handle version flag
	var showVersion bool
	var configPath string
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Printf("kanshi %s\n", Version)
		return
	}

	if err := run(configPath, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, args []string) error {
	// Load configuration
	var cfg *adapter.Config
	var err error
	if configPath != "" {
		cfg, err = adapter.LoadConfigFile(configPath)
	} else {
		cfg, err = adapter.LoadConfig()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, err := adapter.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = adapter.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting kanshi", "version", Version)

	name := "migrate"
	if len(args) > 0 {
		name, args = args[0], args[1:]
	}

	// Commands that do not need the store
	switch name {
	case "init":
		return runInit(cfg, configPath)
	case "clear-cache":
		if err := adapter.ClearCache(cfg); err != nil {
			return err
		}
		fmt.Println("✓ Cache cleared")
		return nil
	case "help":
		flag.Usage()
		return nil
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Error("failed to close store", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch name {
	case "migrate":
		return a.runMigrate(ctx, args)
	case "refresh":
		return a.runRefresh(ctx, args)
	case "providers":
		return a.runProviders()
	case "tags":
		return a.runTags(args)
	case "search":
		return a.runSearch(args)
	case "entries":
		return a.runEntries(args)
	case "show":
		return a.runShow(args)
	case "dead":
		return a.runDead()
	case "open":
		return a.runOpen(args)
	case "import":
		return a.runImport(args)
	case "export":
		return a.runExport(args)
	case "invalidate":
		return a.runInvalidate(args)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command: %s", name)
	}
}

// runInit writes the loaded configuration as a config file
func runInit(cfg *adapter.Config, path string) error {
	if path != "" {
		if err := adapter.SaveConfigAs(cfg, path); err != nil {
			return err
		}
	} else if err := adapter.SaveConfig(cfg); err != nil {
		return err
	}
	fmt.Println("✓ Configuration saved!")
	return nil
}

// runMigrate checks the lists against the target provider. In a terminal the
// review happens in the TUI; otherwise the buckets are printed and applied
// according to the flags.
func (a *app) runMigrate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ContinueOnError)
	from := fs.String("from", a.cfg.Migration.From, "provider host the links currently point at")
	to := fs.String("to", a.cfg.Migration.To, "provider host to migrate to")
	plain := fs.Bool("plain", a.cfg.UI.Plain, "print instead of starting the TUI")
	yes := fs.Bool("yes", false, "apply single mappings without review (plain mode)")
	removeUnmapped := fs.Bool("remove-unmapped", false, "remove entries without mapping (plain mode)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *from == "" || *to == "" {
		return errors.New("both -from and -to are required (or migration.from/migration.to in the config)")
	}

	// Resolve links first so the providers are known to the cache
	if _, err := a.commands.Refresh(ctx, false, nil); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		a.logger.Warn("refresh incomplete", "error", err)
	}

	if !*plain && term.IsTerminal(int(os.Stdout.Fd())) {
		return a.runMigrateTUI(*from, *to)
	}
	return a.runMigratePlain(ctx, *from, *to, *yes, *removeUnmapped)
}

func (a *app) runMigrateTUI(from, to string) error {
	model := tui.NewModel(a.migration, a.history, from, to, a.logger)
	model.Opener = a.opener

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	a.logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		a.logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	a.logger.Info("shutting down")
	return nil
}

func (a *app) runMigratePlain(ctx context.Context, from, to string, yes, removeUnmapped bool) error {
	result, err := a.migration.CheckMigration(ctx, from, to, &spinnerObserver{})
	fmt.Print(clearSpinnerLine)
	if err != nil {
		return err
	}

	printResult(result)

	if yes {
		mappings := make(domain.Mappings)
		for lt, c := range result.Lists {
			if len(c.Mappings) > 0 {
				mappings[lt] = c.Mappings
			}
		}
		if err := a.migration.MigrateEntries(ctx, mappings); err != nil {
			return err
		}
		_, _, single := result.Counts()
		fmt.Printf("✓ Migrated %d entries\n", single)
	}

	if removeUnmapped {
		unmapped := make(domain.Unmapped)
		n := 0
		for lt, c := range result.Lists {
			if len(c.WithoutMapping) > 0 {
				unmapped[lt] = c.WithoutMapping
				n += len(c.WithoutMapping)
			}
		}
		if err := a.migration.RemoveUnmapped(ctx, unmapped); err != nil {
			return err
		}
		fmt.Printf("✓ Removed %d entries\n", n)
	}
	return nil
}

func printResult(result domain.MigrationResult) {
	for _, lt := range domain.ListTypes {
		c := result.Lists[lt]
		if c.IsEmpty() {
			continue
		}
		fmt.Printf("\n%s\n", strings.ToUpper(lt.String()))
		for _, m := range c.Mappings {
			fmt.Printf("  %s %-40s → %s\n", styles.MappedChar, m.Entry.GetTitle(), m.Target)
		}
		for _, m := range c.MultipleMappings {
			ids := make([]string, len(m.Candidates))
			for i, id := range m.Candidates {
				ids[i] = id.String()
			}
			fmt.Printf("  %s %-40s ? %s\n", styles.AmbiguousChar, m.Entry.GetTitle(), strings.Join(ids, ", "))
		}
		for _, e := range c.WithoutMapping {
			fmt.Printf("  %s %-40s   %s\n", styles.UnmappedChar, e.GetTitle(), e.GetLink())
		}
	}
	without, multiple, single := result.Counts()
	fmt.Printf("\n%d mapped, %d ambiguous, %d without mapping\n", single, multiple, without)
}

func (a *app) runRefresh(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("refresh", flag.ContinueOnError)
	force := fs.Bool("force", false, "clear the cache and load every link again")
	if err := fs.Parse(args); err != nil {
		return err
	}

	frame := 0
	result, err := a.commands.Refresh(ctx, *force, func(loaded, total int) {
		fmt.Printf("\r%s Resolving links %d/%d", spinnerFrame(frame), loaded, total)
		frame++
	})
	fmt.Print(clearSpinnerLine)

	fmt.Printf("✓ %d links: %d present, %d dead, %d failed\n", result.Total, result.Present, result.Dead, result.Failed)
	if err != nil && ctx.Err() == nil {
		// Failures are retryable; report them without failing the run
		for _, e := range splitJoined(err) {
			fmt.Fprintf(os.Stderr, "  %v\n", e)
		}
		return nil
	}
	return err
}

func (a *app) runProviders() error {
	for _, host := range a.queries.AvailableProviders() {
		fmt.Println(host)
	}
	return nil
}

func (a *app) runTags(args []string) error {
	fs := flag.NewFlagSet("tags", flag.ContinueOnError)
	provider := fs.String("provider", "", "list entries of this provider with the tag")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		for _, tag := range a.queries.AvailableTags() {
			fmt.Println(tag)
		}
		return nil
	}
	if *provider == "" {
		return errors.New("-provider is required when filtering by tag")
	}
	for _, e := range a.queries.FilterByTag(*provider, fs.Arg(0)) {
		fmt.Printf("%-50s %s\n", e.Record.Title, e.ID)
	}
	return nil
}

func (a *app) runSearch(args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	provider := fs.String("provider", "", "provider host to search")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *provider == "" || fs.NArg() == 0 {
		return errors.New("usage: kanshi search -provider <host> <query>")
	}

	for _, r := range a.queries.Search(*provider, strings.Join(fs.Args(), " ")) {
		fmt.Printf("%-50s %s\n", r.MatchedTitle, r.ID)
	}
	return nil
}

func (a *app) runEntries(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: kanshi entries <host>")
	}
	for _, e := range a.queries.Entries(args[0]) {
		fmt.Printf("%-50s %-20s %s\n", e.Record.Title, e.Record.Description(), e.ID)
	}
	return nil
}

func (a *app) runShow(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: kanshi show <identifier>")
	}
	id, err := domain.ParseIdentifier(args[0])
	if err != nil {
		return err
	}
	r, ok := a.queries.Record(id)
	if !ok {
		return fmt.Errorf("%s is not cached, run refresh first", id)
	}

	fmt.Println(r.Title)
	if d := r.Description(); d != "" {
		fmt.Printf("  %s\n", d)
	}
	if r.Duration > 0 {
		fmt.Printf("  %s per episode\n", r.FormattedDuration())
	}
	if r.Season.Year > 0 {
		fmt.Printf("  %s %d\n", r.Season.Season, r.Season.Year)
	}
	if len(r.Synonyms) > 0 {
		fmt.Printf("  Also known as: %s\n", strings.Join(r.Synonyms, ", "))
	}
	if len(r.Tags) > 0 {
		fmt.Printf("  Tags: %s\n", strings.Join(r.Tags, ", "))
	}
	fmt.Printf("  Providers: %s\n", strings.Join(r.Hosts(), ", "))
	for _, src := range r.Sources {
		fmt.Printf("    %s\n", src)
	}
	return nil
}

func (a *app) runDead() error {
	for _, lt := range domain.ListTypes {
		for _, e := range a.queries.DeadEntries(lt) {
			fmt.Printf("%-12s %-40s %s\n", lt.String(), e.GetTitle(), e.GetLink())
		}
	}
	return nil
}

func (a *app) runOpen(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: kanshi open <identifier>")
	}
	id, err := domain.ParseIdentifier(args[0])
	if err != nil {
		return err
	}
	if id.IsZero() {
		return domain.ErrNoIdentifier
	}
	return a.opener.Open(id.String())
}

func (a *app) runImport(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: kanshi import <file.json>")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := a.commands.Import(f)
	if err != nil {
		return err
	}
	n := 0
	for _, d := range result.Diffs {
		n += len(d.Added)
	}
	fmt.Printf("✓ Imported %d entries and %d records\n", n, result.Records)
	return nil
}

func (a *app) runExport(args []string) error {
	if len(args) == 0 || args[0] == "-" {
		return a.commands.Export(os.Stdout)
	}
	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	if err := a.commands.Export(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) runInvalidate(args []string) error {
	fs := flag.NewFlagSet("invalidate", flag.ContinueOnError)
	provider := fs.String("provider", "", "drop persisted records of this provider host")
	all := fs.Bool("all", false, "drop everything persisted, lists included")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch {
	case *all:
		a.commands.InvalidateAll()
		return nil
	case *provider != "":
		a.commands.InvalidateProvider(*provider)
		return nil
	default:
		return errors.New("usage: kanshi invalidate -provider <host> | -all")
	}
}

// spinnerObserver prints classification progress on one line
type spinnerObserver struct{}

func (spinnerObserver) OnProgress(p domain.MigrationProgress) {
	fmt.Printf("\r%s Checking entries %d/%d", spinnerFrame(p.Finished), p.Finished, p.Total)
}
func (spinnerObserver) OnResult(domain.MigrationResult) {}
func (spinnerObserver) OnFailure(error)                 {}

// splitJoined unwraps an errors.Join result
func splitJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
