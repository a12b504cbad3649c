package main

import (
	"fmt"
	"strings"

	"github.com/loupe-dev/loupe/internal/engine"
	"github.com/loupe-dev/loupe/internal/fileproc"
	"github.com/loupe-dev/loupe/internal/output"
	"github.com/loupe-dev/loupe/internal/progress"
	"github.com/loupe-dev/loupe/pkg/config"
	"github.com/urfave/cli/v2"
)

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"all"},
		Usage:     "Run the full analysis: structure, dependencies, complexity, smells",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "only",
				Usage: "Comma-separated subset: structure,dependencies,complexity,smells",
			},
		},
		Action: func(c *cli.Context) error {
			if only := c.String("only"); only != "" {
				subset, err := parseSubset(only)
				if err != nil {
					return err
				}
				return runAnalysis(c, "Analyzing...", func(*config.Config) engine.Subset {
					return subset
				})
			}
			return runAnalysis(c, "Analyzing...", engine.SubsetFromConfig)
		},
	}
}

// parseSubset resolves an --only value into an analysis subset.
func parseSubset(s string) (engine.Subset, error) {
	var subset engine.Subset
	for _, part := range strings.Split(s, ",") {
		switch strings.TrimSpace(part) {
		case "structure":
			subset.Structure = true
		case "dependencies", "deps":
			subset.Dependencies = true
		case "complexity":
			subset.Complexity = true
		case "smells":
			subset.Smells = true
		case "":
		default:
			return engine.Subset{}, fmt.Errorf("unknown analysis %q (want structure, dependencies, complexity, or smells)", strings.TrimSpace(part))
		}
	}
	return subset, nil
}

func structureCmd() *cli.Command {
	return &cli.Command{
		Name:      "structure",
		Aliases:   []string{"st"},
		Usage:     "Summarize project layout and language mix",
		ArgsUsage: "[path]",
		Action: func(c *cli.Context) error {
			return runAnalysis(c, "Scanning...", func(*config.Config) engine.Subset {
				return engine.Subset{Structure: true}
			})
		},
	}
}

func depsCmd() *cli.Command {
	return &cli.Command{
		Name:      "deps",
		Aliases:   []string{"dependencies"},
		Usage:     "Extract declared dependencies from package manifests",
		ArgsUsage: "[path]",
		Action: func(c *cli.Context) error {
			return runAnalysis(c, "Parsing manifests...", func(*config.Config) engine.Subset {
				return engine.Subset{Dependencies: true}
			})
		},
	}
}

func complexityCmd() *cli.Command {
	return &cli.Command{
		Name:      "complexity",
		Aliases:   []string{"cx"},
		Usage:     "Score per-file lexical complexity",
		ArgsUsage: "[path]",
		Action: func(c *cli.Context) error {
			return runAnalysis(c, "Scoring complexity...", func(*config.Config) engine.Subset {
				return engine.Subset{Complexity: true}
			})
		},
	}
}

func smellsCmd() *cli.Command {
	return &cli.Command{
		Name:      "smells",
		Usage:     "Detect heuristic code smells",
		ArgsUsage: "[path]",
		Action: func(c *cli.Context) error {
			return runAnalysis(c, "Detecting smells...", func(*config.Config) engine.Subset {
				return engine.Subset{Smells: true}
			})
		},
	}
}

func runAnalysis(c *cli.Context, label string, selectSubset func(*config.Config) engine.Subset) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg)
	if err != nil {
		return err
	}

	var tracker *progress.Tracker
	var progressFor engine.ProgressFactory
	if !c.Bool("no-progress") {
		progressFor = func(total int) fileproc.ProgressFunc {
			tracker = progress.NewTracker(label, total)
			return tracker.Tick
		}
	}

	report, err := eng.Run(c.Context, getRoot(c), selectSubset(cfg), progressFor)
	tracker.Finish()
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	formatter, err := output.NewFormatter(
		output.ParseFormat(cfg.Output.Format),
		c.String("output"),
		cfg.Output.Color,
	)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Render(report)
}
