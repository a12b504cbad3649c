package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/fatih/color"
	"github.com/loupe-dev/loupe/internal/cache"
	"github.com/loupe-dev/loupe/pkg/config"
	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

func main() {
	app := &cli.App{
		Name:     "loupe",
		Usage:    "Local source tree analyzer",
		Version:  version,
		Metadata: make(map[string]interface{}),
		Description: `Loupe analyzes a source tree for structure, declared dependencies,
lexical complexity, and heuristic code smells, without executing any
project code or reaching the network.

Supports: Go, Rust, Python, TypeScript, JavaScript, Java, C, C++, C#, Ruby, PHP, Bash`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"LOUPE_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Value:   "text",
				Usage:   "Output format: text, json, yaml, toon",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Additional exclude patterns (gitignore syntax)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Worker pool size (0 = 2x CPU count)",
			},
			&cli.BoolFlag{
				Name:  "cache",
				Usage: "Enable the per-file result cache",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable caching even if enabled in config",
			},
			&cli.BoolFlag{
				Name:  "no-progress",
				Usage: "Suppress the progress bar",
			},
			&cli.StringFlag{
				Name:  "pprof",
				Usage: "Enable pprof profiling and write to specified prefix (creates <prefix>.cpu.pprof and <prefix>.mem.pprof)",
			},
		},
		Before: func(c *cli.Context) error {
			if pprofPrefix := c.String("pprof"); pprofPrefix != "" {
				cpuFile, err := os.Create(pprofPrefix + ".cpu.pprof")
				if err != nil {
					return fmt.Errorf("failed to create CPU profile: %w", err)
				}
				if err := pprof.StartCPUProfile(cpuFile); err != nil {
					cpuFile.Close()
					return fmt.Errorf("failed to start CPU profile: %w", err)
				}
				c.App.Metadata["pprofCPU"] = cpuFile
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if pprofPrefix := c.String("pprof"); pprofPrefix != "" {
				pprof.StopCPUProfile()
				if cpuFile, ok := c.App.Metadata["pprofCPU"].(*os.File); ok {
					cpuFile.Close()
					color.Green("CPU profile written to %s.cpu.pprof", pprofPrefix)
				}

				memFile, err := os.Create(pprofPrefix + ".mem.pprof")
				if err != nil {
					return fmt.Errorf("failed to create memory profile: %w", err)
				}
				defer memFile.Close()

				runtime.GC()
				if err := pprof.WriteHeapProfile(memFile); err != nil {
					return fmt.Errorf("failed to write memory profile: %w", err)
				}
				color.Green("Memory profile written to %s.mem.pprof", pprofPrefix)
			}
			return nil
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			structureCmd(),
			depsCmd(),
			complexityCmd(),
			smellsCmd(),
			cacheCmd(),
			mcpCmd(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// getRoot returns the positional path argument, defaulting to ".".
func getRoot(c *cli.Context) string {
	if c.Args().Len() > 0 {
		return c.Args().First()
	}
	return "."
}

// loadConfig resolves config from --config or standard locations, then
// applies command-line overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	if path := c.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.LoadOrDefault()
	}

	if patterns := c.StringSlice("exclude"); len(patterns) > 0 {
		cfg.Exclude.Patterns = append(cfg.Exclude.Patterns, patterns...)
	}
	if c.IsSet("workers") {
		cfg.Workers = c.Int("workers")
	}
	if c.Bool("cache") {
		cfg.Cache.Enabled = true
	}
	if c.Bool("no-cache") {
		cfg.Cache.Enabled = false
	}
	if c.IsSet("format") {
		cfg.Output.Format = c.String("format")
	}
	return cfg, nil
}

func cacheCmd() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the analysis result cache",
		Subcommands: []*cli.Command{
			{
				Name:  "clear",
				Usage: "Remove all cached results",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					store, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true)
					if err != nil {
						return err
					}
					if err := store.Clear(); err != nil {
						return err
					}
					color.Green("Cache cleared")
					return nil
				},
			},
			{
				Name:  "stats",
				Usage: "Show cache entry count and size",
				Action: func(c *cli.Context) error {
					cfg, err := loadConfig(c)
					if err != nil {
						return err
					}
					store, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true)
					if err != nil {
						return err
					}
					stats, err := store.Stat()
					if err != nil {
						return err
					}
					fmt.Printf("%d entries, %d bytes\n", stats.Entries, stats.TotalSize)
					return nil
				},
			},
		},
	}
}
