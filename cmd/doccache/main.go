package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/advisorhub/doccache/cache"
	"github.com/advisorhub/doccache/config"
	"github.com/advisorhub/doccache/logger"
	"github.com/advisorhub/doccache/resolver"
)

var (
	configPath string
	basePaths  []string
	maxSize    string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "doccache",
	Short: "Memory-bounded cache over a markdown document workspace",
	Long: `doccache mirrors a tree of markdown documents into a byte-budgeted
in-memory cache and exposes lookup, search, refresh, and write-through
create/update over it.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: $DOCCACHE_CONFIG or doccache.yaml)")
	rootCmd.PersistentFlags().StringArrayVarP(&basePaths, "base", "b", nil, "Base directory to load (repeatable, overrides config)")
	rootCmd.PersistentFlags().StringVar(&maxSize, "max-size", "", `Cache byte budget, e.g. "200MB" (overrides config)`)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "trace, debug, info, warn, error or none")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "console or json")

	getCmd.Flags().BoolVar(&showMeta, "meta", false, "Print the entry as JSON including metadata instead of raw content")

	rootCmd.AddCommand(loadCmd, getCmd, searchCmd, typesCmd, refreshCmd, statsCmd, createCmd, updateCmd, watchCmd)
}

func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		path = os.Getenv("DOCCACHE_CONFIG")
	}
	if path == "" {
		path = "doccache.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if len(basePaths) > 0 {
		cfg.BasePaths = basePaths
	}
	if maxSize != "" {
		cfg.MaxSize = maxSize
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) logger.Logger {
	level := logger.ParseLevel(cfg.LogLevel)
	if cfg.LogLevel == "" {
		level = logger.GetLevelFromEnv()
	}
	if cfg.LogFormat == "json" {
		return logger.NewJSONLogger(level)
	}
	return logger.NewConsoleLogger(level)
}

// newCache constructs the single Cache instance a process uses and hands it
// back along with its config. Nothing here is global.
func newCache() (*cache.Cache, *config.Config, logger.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}
	budget, err := cfg.MaxSizeBytes()
	if err != nil {
		return nil, nil, nil, err
	}
	log := newLogger(cfg)
	opts := []cache.Option{
		cache.WithMaxSize(budget),
		cache.WithLogger(log),
		cache.WithResolver(resolver.New()),
	}
	if len(cfg.IgnoreMarkers) > 0 {
		opts = append(opts, cache.WithIgnoreMarkers(cfg.IgnoreMarkers))
	}
	if cfg.LoadConcurrency > 0 {
		opts = append(opts, cache.WithLoadConcurrency(cfg.LoadConcurrency))
	}
	return cache.New(opts...), cfg, log, nil
}

// loadedCache is newCache plus a bulk load of the configured base paths.
func loadedCache(ctx context.Context) (*cache.Cache, *config.Config, logger.Logger, error) {
	c, cfg, log, err := newCache()
	if err != nil {
		return nil, nil, nil, err
	}
	if len(cfg.BasePaths) > 0 {
		c.Load(ctx, cfg.BasePaths...)
	}
	return c, cfg, log, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// contentArg returns the document body from the second positional argument,
// or stdin when the argument is "-" or absent.
func contentArg(args []string) (string, error) {
	if len(args) > 1 && args[1] != "-" {
		return args[1], nil
	}
	buf, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

var loadCmd = &cobra.Command{
	Use:   "load [paths...]",
	Short: "Bulk-load markdown trees into the cache and report what fit",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, _, err := newCache()
		if err != nil {
			return err
		}
		paths := args
		if len(paths) == 0 {
			paths = cfg.BasePaths
		}
		if len(paths) == 0 {
			return fmt.Errorf("no base paths: pass them as arguments or configure base_paths")
		}
		n := c.Load(cmd.Context(), paths...)
		fmt.Printf("loaded %d documents (%d bytes)\n", n, c.TotalSize())
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Print a cached document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, _, err := loadedCache(cmd.Context())
		if err != nil {
			return err
		}
		entry, ok := c.Get(args[0])
		if !ok {
			return fmt.Errorf("not cached: %s", args[0])
		}
		if showMeta {
			return printJSON(entry)
		}
		fmt.Print(entry.Content)
		return nil
	},
}

var showMeta bool

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Case-insensitive substring search over document contents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, _, err := loadedCache(cmd.Context())
		if err != nil {
			return err
		}
		for _, entry := range c.Search(args[0]) {
			fmt.Printf("%-10s %s\n", entry.DocType, entry.Path)
		}
		return nil
	},
}

var typesCmd = &cobra.Command{
	Use:   "types <doctype>",
	Short: "List cached documents of one type (standard, incident, task, project, document)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, _, err := loadedCache(cmd.Context())
		if err != nil {
			return err
		}
		for _, entry := range c.GetByType(cache.DocType(args[0])) {
			fmt.Printf("%8d %s\n", entry.Size, entry.Path)
		}
		return nil
	},
}

var refreshCmd = &cobra.Command{
	Use:   "refresh <path>",
	Short: "Re-synchronize one cached path against disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, _, err := loadedCache(cmd.Context())
		if err != nil {
			return err
		}
		if c.Refresh(args[0]) {
			fmt.Println("refreshed")
		} else {
			fmt.Println("unchanged")
		}
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print cache statistics as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, _, err := loadedCache(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(c.Statistics())
	},
}

var createCmd = &cobra.Command{
	Use:   "create <path> [content|-]",
	Short: "Write a new document and cache it (content from arg or stdin)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, _, err := loadedCache(cmd.Context())
		if err != nil {
			return err
		}
		content, err := contentArg(args)
		if err != nil {
			return err
		}
		if !c.Create(args[0], content) {
			return fmt.Errorf("create failed: %s", args[0])
		}
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <path> [content|-]",
	Short: "Write-through update of a document (content from arg or stdin)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, _, _, err := loadedCache(cmd.Context())
		if err != nil {
			return err
		}
		content, err := contentArg(args)
		if err != nil {
			return err
		}
		if !c.Update(args[0], content) {
			return fmt.Errorf("update failed: %s", args[0])
		}
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Load the configured trees and auto-refresh on filesystem changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, cfg, log, err := loadedCache(cmd.Context())
		if err != nil {
			return err
		}
		if len(cfg.BasePaths) == 0 {
			return fmt.Errorf("no base paths configured")
		}
		debounce, err := cfg.WatchDebounceDuration()
		if err != nil {
			return err
		}
		w, err := cache.NewWatcher(c, cfg.BasePaths, debounce)
		if err != nil {
			return err
		}
		defer w.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Info("watching %d trees, %d documents cached", len(cfg.BasePaths), c.Len())
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-w.Events():
				if !ok {
					return nil
				}
				if ev.Changed {
					log.Info("refreshed %s", ev.Path)
				} else {
					log.Debug("unchanged %s", ev.Path)
				}
			}
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
