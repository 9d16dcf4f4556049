// Package main is the rezine-config management command.
package main

import (
	"crypto/rand"
	"encoding/hex"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/rezine-project/rezine/internal/config"
	"github.com/rezine-project/rezine/internal/config/schema"
	"github.com/rezine-project/rezine/internal/plugin"
)

// ConfigName is the configuration file inside an instance folder.
const ConfigName = "rezine.ini"

func main() {
	os.Exit(run())
}

func run() int {
	var instance string
	var logLevel string

	flag.StringVar(&instance, "instance", ".", "Path to the Rezine instance folder")
	flag.StringVar(&instance, "I", ".", "Path to the Rezine instance folder (shorthand)")
	flag.StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "rezine-config - manage a Rezine instance's configuration\n\n")
		fmt.Fprintf(os.Stderr, "Usage: rezine-config [options] <command> [args]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  init              Create a new instance folder\n")
		fmt.Fprintf(os.Stderr, "  get KEY           Print the effective value of KEY\n")
		fmt.Fprintf(os.Stderr, "  set KEY VALUE     Persist an override for KEY\n")
		fmt.Fprintf(os.Stderr, "  revert KEY        Drop the override for KEY\n")
		fmt.Fprintf(os.Stderr, "  list              List every key with its value\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		return 2
	}

	logger := newLogger(logLevel)

	if args[0] == "init" {
		if err := initInstance(instance, logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Printf("Initialized Rezine instance in %s\n", instance)
		return 0
	}

	cfg, err := openInstance(instance, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	switch args[0] {
	case "get":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "Usage: rezine-config get KEY")
			return 2
		}
		value, err := cfg.Get(args[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		fmt.Println(formatValue(cfg, args[1], value))

	case "set":
		if len(args) != 3 {
			fmt.Fprintln(os.Stderr, "Usage: rezine-config set KEY VALUE")
			return 2
		}
		t := cfg.Edit()
		if err := t.SetFromString(args[1], args[2]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if err := t.Commit(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}

	case "revert":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "Usage: rezine-config revert KEY")
			return 2
		}
		t := cfg.Edit()
		if err := t.RevertToDefault(args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if err := t.Commit(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}

	case "list":
		for _, section := range cfg.Details() {
			fmt.Printf("[%s]\n", section.Name)
			for _, item := range section.Items {
				marker := ""
				if item.UseDefault {
					marker = " (default)"
				}
				fmt.Printf("  %s = %s%s\n", item.Name, item.Value, marker)
			}
		}

	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command %q\n", args[0])
		flag.Usage()
		return 2
	}

	return 0
}

// openInstance builds the registry from the built-in schema plus any
// installed plugins and opens the instance configuration.
func openInstance(instance string, logger *slog.Logger) (*config.Configuration, error) {
	builder := schema.Builtin()

	plugins, err := plugin.Discover([]string{filepath.Join(instance, "plugins")})
	if err != nil {
		return nil, err
	}
	if err := plugin.Contribute(builder, plugins); err != nil {
		return nil, err
	}

	return config.New(filepath.Join(instance, ConfigName), builder.Build(),
		config.WithLogger(logger))
}

// initInstance creates the instance folder and commits the generated
// instance id and secret key through a regular transaction, so the
// first configuration file is written the same way every later change
// is.
func initInstance(instance string, logger *slog.Logger) error {
	if err := os.MkdirAll(filepath.Join(instance, "plugins"), 0o755); err != nil {
		return err
	}

	cfg, err := openInstance(instance, logger)
	if err != nil {
		return err
	}
	if cfg.HasOverride("iid") {
		return fmt.Errorf("instance in %s is already initialized", instance)
	}

	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return err
	}

	t := cfg.Edit()
	if err := t.Update(map[string]any{
		"iid":        uuid.New().String(),
		"secret_key": hex.EncodeToString(secret),
	}); err != nil {
		return err
	}
	return t.Commit()
}

func formatValue(cfg *config.Configuration, key string, value any) string {
	f, err := cfg.Registry().Resolve(key)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	s, err := f.ToString(value)
	if err != nil {
		return fmt.Sprintf("%v", value)
	}
	return s
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
