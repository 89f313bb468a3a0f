// Package app wires the runtime together and drives the two entry
// modes: the interactive CLI and the HTTP server.
package app

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"
	"github.com/metoolok/metoolok/internal/api"
	"github.com/metoolok/metoolok/internal/brain"
	"github.com/metoolok/metoolok/internal/config"
	"github.com/metoolok/metoolok/internal/cron"
	"github.com/metoolok/metoolok/internal/httpx"
	"github.com/metoolok/metoolok/internal/memory"
	"github.com/metoolok/metoolok/internal/skills"
	"github.com/metoolok/metoolok/internal/store"
	"go.uber.org/zap"
	"golang.org/x/term"
)

type App struct {
	Config     *config.Config
	Memory     *memory.Store
	Archive    *store.Store
	Registry   *skills.Registry
	Brain      *brain.Brain
	HTTP       *httpx.Client
	Logger     *zap.Logger
	CronRunner *cron.Runner
	Version    string

	manifest *config.Manifest
}

// New builds the full runtime from config.
func New(cfg *config.Config, logger *zap.Logger, version string) (*App, error) {
	mem, err := memory.Open(cfg.Storage.ContextFile, cfg.Storage.TempDir, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open context memory: %w", err)
	}

	var archive *store.Store
	if cfg.Storage.ArchiveOn {
		archive, err = store.New(cfg.Storage.SQLitePath)
		if err != nil {
			logger.Warn("Conversation archive unavailable", zap.Error(err))
			archive = nil
		}
	}

	client := httpx.New(httpx.DefaultConfig(), logger)

	registry := skills.NewRegistry(logger)
	manifest := RegisterSkills(cfg, mem, registry, client, logger)

	runner := skills.NewRunner(logger)
	if archive != nil {
		runner.SetArchive(archive)
	}

	b := brain.New(registry, runner, mem, logger)
	if archive != nil {
		b.SetArchive(archive)
	}

	return &App{
		Config:   cfg,
		Memory:   mem,
		Archive:  archive,
		Registry: registry,
		Brain:    b,
		HTTP:     client,
		Logger:   logger,
		Version:  version,
		manifest: manifest,
	}, nil
}

// Close flushes memory and releases resources.
func (app *App) Close() {
	if app.CronRunner != nil {
		app.CronRunner.Stop()
	}
	if err := app.Memory.Save(); err != nil {
		app.Logger.Error("Failed to save context memory on close", zap.Error(err))
	}
	if app.Archive != nil {
		if err := app.Archive.Close(); err != nil {
			app.Logger.Error("Failed to close archive", zap.Error(err))
		}
	}
}

// RunCLI runs a one-shot message or the interactive loop.
func (app *App) RunCLI(message string) {
	defer app.Close()

	if message != "" {
		app.oneShot(message)
		return
	}
	app.interactive()
}

var (
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	faintStyle    = lipgloss.NewStyle().Faint(true)
	fallbackWidth = 80
)

// renderer builds a markdown renderer when stdout is a terminal.
// Piped output stays plain.
func renderer() *glamour.TermRenderer {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil
	}
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 || width > 120 {
		width = fallbackWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

func printReply(r *glamour.TermRenderer, reply string) {
	if r != nil {
		if rendered, err := r.Render(reply); err == nil {
			fmt.Print(rendered)
			return
		}
	}
	fmt.Println(reply)
}

func (app *App) oneShot(msg string) {
	r := renderer()
	start := time.Now()
	reply := app.Brain.ProcessInput(context.Background(), msg)
	printReply(r, reply)
	fmt.Println(faintStyle.Render(fmt.Sprintf("⏱️  %v", time.Since(start).Round(time.Millisecond))))
}

func (app *App) interactive() {
	r := renderer()

	fmt.Println(botStyle.Render("🤖 Metoolok - Interactive Mode"))
	fmt.Println("Type 'exit' or 'quit' to leave, 'help' for commands")
	fmt.Println()

	reader := bufio.NewReader(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Print(promptStyle.Render("👤 You: "))
		input, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println()
			return
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit", "q":
			fmt.Println("👋 Goodbye!")
			return
		case "help", "h":
			app.printInteractiveHelp()
			continue
		case "clear", "cls":
			fmt.Print("\033[H\033[2J")
			continue
		}

		fmt.Println()
		fmt.Println(botStyle.Render("🤖 Metoolok:"))

		start := time.Now()
		reply := app.Brain.ProcessInput(ctx, input)
		printReply(r, reply)
		fmt.Println(faintStyle.Render(fmt.Sprintf("⏱️  %v", time.Since(start).Round(time.Millisecond))))
		fmt.Println()
	}
}

func (app *App) printInteractiveHelp() {
	fmt.Println()
	fmt.Println("Interactive Commands:")
	fmt.Println("  help, h     - Show this help")
	fmt.Println("  clear, cls  - Clear screen")
	fmt.Println("  exit, quit  - Exit the program")
	fmt.Println()
	fmt.Println("Loaded skills:")
	for _, s := range app.Registry.Skills() {
		fmt.Printf("  %-10s - %s\n", s.Name(), s.Description())
	}
	fmt.Println()
}

// RunServer starts the HTTP API, the autosave loop and the manifest
// watcher, then blocks until SIGINT/SIGTERM.
func (app *App) RunServer() {
	defer app.Close()

	if app.Config.Autosave.Enabled {
		app.CronRunner = cron.NewRunner(cron.Config{
			Interval: time.Duration(app.Config.Autosave.IntervalSeconds) * time.Second,
		}, app.Memory, app.Logger)
		if err := app.CronRunner.Start(); err != nil {
			app.Logger.Error("Failed to start autosave runner", zap.Error(err))
		}
	}

	var watcher *fsnotify.Watcher
	if app.Config.Skills.WatchManifest && app.Config.Skills.Manifest != "" {
		watcher = app.watchManifest()
		if watcher != nil {
			defer watcher.Close()
		}
	}

	server := api.New(app.Config, app.Brain, app.Registry, app.Memory, app.Archive, app.Logger)

	go func() {
		if err := server.Start(); err != nil {
			app.Logger.Fatal("Server error", zap.Error(err))
		}
	}()

	app.Logger.Info("Server started",
		zap.String("address", app.Config.Server.Address),
		zap.Int("port", app.Config.Server.Port),
		zap.Int("skills", app.Registry.Count()),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info("Shutting down...")
	if err := server.Shutdown(); err != nil {
		app.Logger.Error("Server shutdown error", zap.Error(err))
	}
}

// watchManifest reloads the registry when the skills manifest changes
// on disk.
func (app *App) watchManifest() *fsnotify.Watcher {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		app.Logger.Warn("Manifest watcher unavailable", zap.Error(err))
		return nil
	}

	if err := watcher.Add(app.Config.Skills.Manifest); err != nil {
		app.Logger.Warn("Cannot watch skills manifest",
			zap.String("path", app.Config.Skills.Manifest),
			zap.Error(err))
		watcher.Close()
		return nil
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				app.Logger.Info("Skills manifest changed, reloading", zap.String("path", event.Name))
				manifest, err := config.LoadManifest(app.Config.Skills.Manifest)
				if err != nil {
					app.Logger.Error("Reload skipped, manifest invalid", zap.Error(err))
					continue
				}
				app.manifest = manifest
				app.Registry.Reload(Factories(), manifest, skills.Deps{
					Memory:         app.Memory,
					HTTP:           app.HTTP,
					Logger:         app.Logger,
					DefaultTimeout: time.Duration(app.Config.Skills.DefaultTimeout) * time.Second,
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				app.Logger.Warn("Manifest watcher error", zap.Error(err))
			}
		}
	}()

	return watcher
}
