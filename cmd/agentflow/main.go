// Command agentflow is a command-line client for the agentflow server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/xiaot623/agentflow/internal/adapter/runclient"
)

type cliOptions struct {
	server string
	useSSE bool
}

func newRootCommand() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "agentflow",
		Short:         "Run research pipelines on an agentflow server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.server, "server", envOr("AGENTFLOW_SERVER", "http://localhost:8000"), "agentflow server base URL")
	root.PersistentFlags().BoolVar(&opts.useSSE, "sse", false, "stream events over SSE instead of WebSocket")

	root.AddCommand(
		newRunCommand(opts),
		newStreamCommand(opts),
		newResultCommand(opts),
	)
	return root
}

func (o *cliOptions) client() *runclient.Client {
	return runclient.NewClient(o.server)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, red("Error: "+err.Error()))
		os.Exit(1)
	}
}
