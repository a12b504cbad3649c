package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/loupe-dev/loupe/internal/mcpserver"
	"github.com/urfave/cli/v2"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Run as an MCP server over stdio",
		Description: `Serves the analysis tools over the Model Context Protocol so LLM
agents can call them directly. Communicates on stdin/stdout; logs go
to stderr.`,
		Action: runMCPCmd,
	}
}

func runMCPCmd(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	fmt.Fprintln(os.Stderr, "loupe MCP server listening on stdio")
	return mcpserver.NewServer(version, cfg).Run(ctx)
}
