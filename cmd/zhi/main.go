package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/martinemde/zhi/internal/color"
	"github.com/martinemde/zhi/internal/completion"
	"github.com/martinemde/zhi/internal/config"
	"github.com/martinemde/zhi/internal/history"
	"github.com/martinemde/zhi/internal/interaction"
	"github.com/martinemde/zhi/internal/mcpserver"
	"github.com/martinemde/zhi/internal/popup"
)

const version = "0.1.0"

func main() {
	if err := run(os.Args, os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globals are the flags accepted before the subcommand
type globals struct {
	configPath string
	color      string
	logLevel   string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.SetOutput(stderr)

	var g globals
	var (
		showVersion = flags.Bool("version", false, "Show version information")
		showHelp    = flags.Bool("help", false, "Show help information")
	)
	flags.StringVar(&g.configPath, "config", "", "Config file (default: "+config.DefaultPath()+")")
	flags.StringVar(&g.color, "color", "", "Control color output (auto, always, never)")
	flags.StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	if err := flags.Parse(args[1:]); err != nil {
		return err
	}

	if *showVersion {
		_, _ = fmt.Fprintf(stdout, "zhi version %s\n", version)
		return nil
	}

	rest := flags.Args()
	if *showHelp || len(rest) == 0 {
		printHelp(stdout, g.color)
		return nil
	}

	// Set up context with cancellation on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command, cmdArgs := rest[0], rest[1:]
	switch command {
	case "mcp":
		return runMCP(ctx, g, stdin, stdout, stderr)
	case "ui":
		return runUI(ctx, g, stdout, stderr)
	case "popup":
		return runPopup(ctx, g, cmdArgs, stdout, stderr)
	case "history":
		return runHistory(ctx, g, cmdArgs, stdout, stderr)
	case "completion":
		if len(cmdArgs) != 1 {
			return fmt.Errorf("usage: zhi completion <%s>", joinShells())
		}
		return completion.Generate(stdout, cmdArgs[0])
	default:
		return fmt.Errorf("unknown command %q (run 'zhi --help' for usage)", command)
	}
}

// loadConfig loads the configuration and applies global flag overrides
func loadConfig(g globals) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{Path: g.configPath})
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if g.color != "" {
		mode, err := color.ParseMode(g.color)
		if err != nil {
			return nil, err
		}
		cfg.Color = mode
	}
	if g.logLevel != "" {
		cfg.LogLevel = g.logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	color.Configure(cfg.Color)
	return cfg, nil
}

// newLogger writes to stderr; stdout is reserved for protocol output
func newLogger(cfg *config.Config, stderr io.Writer) *log.Logger {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	return log.NewWithOptions(stderr, log.Options{
		Level:           level,
		Prefix:          "zhi",
		ReportTimestamp: true,
	})
}

// newPresenter picks the popup transport from the configuration
func newPresenter(cfg *config.Config) (interaction.Presenter, error) {
	switch cfg.Transport {
	case config.TransportExec:
		command := cfg.PopupCommand
		if len(command) == 0 {
			self, err := os.Executable()
			if err != nil {
				return nil, fmt.Errorf("failed to locate zhi executable: %w", err)
			}
			return popup.NewTerminalCommand(self, "popup"), nil
		}
		return popup.NewCommand(command[0], command[1:]...), nil
	default:
		return popup.NewClient(cfg.SocketPath, cfg.DialTimeout), nil
	}
}

func runMCP(ctx context.Context, g globals, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, stderr)

	presenter, err := newPresenter(cfg)
	if err != nil {
		return err
	}

	opts := []mcpserver.Option{mcpserver.WithTimeout(cfg.PopupTimeout)}
	if cfg.History {
		store, err := history.Open(ctx, cfg.HistoryPath)
		if err != nil {
			// History is optional; keep serving without it
			logger.Warn("history disabled", "err", err)
		} else {
			defer func() { _ = store.Close() }()
			opts = append(opts, mcpserver.WithRecorder(store))
		}
	}

	logger.Debug("popup transport", "transport", cfg.Transport, "socket", cfg.SocketPath)
	return mcpserver.New(presenter, logger, opts...).Serve(ctx, version, stdin, stdout)
}

func runUI(ctx context.Context, g globals, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, stderr)

	srv := popup.NewServer(cfg.SocketPath, popup.NewForm(stdout, cfg.Color), logger)
	if err := srv.Start(ctx); err != nil {
		return err
	}
	defer srv.Stop()

	_, _ = fmt.Fprintf(stdout, "Waiting for popups on %s\n", srv.SocketPath())
	_, _ = fmt.Fprintf(stdout, "MCP servers started elsewhere need: export %s=%s\n", popup.SocketEnvVar, srv.SocketPath())

	<-ctx.Done()
	return nil
}

func runPopup(ctx context.Context, g globals, args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("popup", flag.ContinueOnError)
	flags.SetOutput(stderr)
	requestPath := flags.String("request", "", "Popup request file (JSON)")
	if err := flags.Parse(args); err != nil {
		return err
	}
	if *requestPath == "" {
		return fmt.Errorf("popup requires --request <file>")
	}

	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}

	req, err := popup.ReadRequestFile(*requestPath)
	if err != nil {
		return err
	}

	// The form draws on stderr so stdout carries only the response
	raw, err := popup.NewForm(stderr, cfg.Color).Prompt(ctx, req)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, raw)
	return err
}

func runHistory(ctx context.Context, g globals, args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("history", flag.ContinueOnError)
	flags.SetOutput(stderr)
	limit := flags.Int("limit", history.DefaultLimit, "Number of entries to show")
	client := flags.String("client", "", "Only show interactions from this client")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg, err := loadConfig(g)
	if err != nil {
		return err
	}
	if !cfg.History {
		return errors.New("history is disabled in the configuration")
	}

	store, err := history.Open(ctx, cfg.HistoryPath)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	entries, err := store.Recent(ctx, history.Query{Limit: *limit, Client: *client})
	if err != nil {
		return err
	}
	return history.Write(stdout, entries)
}

func joinShells() string {
	return strings.Join(completion.SupportedShells(), "|")
}
