package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xiaot623/agentflow/internal/adapter/runclient"
	"github.com/xiaot623/agentflow/internal/domain"
)

func newRunCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <query>",
		Short: "Start a run and follow its progress",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.client()
			query := strings.Join(args, " ")

			runID, err := client.Start(cmd.Context(), query)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), gray("run "+runID))

			return follow(cmd, opts, client, runID)
		},
	}
}

func newStreamCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stream <run_id>",
		Short: "Follow the events of a running run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return follow(cmd, opts, opts.client(), args[0])
		},
	}
}

func newResultCommand(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "result <run_id>",
		Short: "Print the stored result of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := opts.client().Result(cmd.Context(), args[0])
			if errors.Is(err, runclient.ErrInProgress) {
				fmt.Fprintln(cmd.OutOrStdout(), yellow("Run still in progress"))
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatReport(result))
			return nil
		},
	}
}

// follow prints events until the run ends. An error event becomes the
// command's error.
func follow(cmd *cobra.Command, opts *cliOptions, client *runclient.Client, runID string) error {
	var runErr error
	handler := func(ev domain.Event) error {
		fmt.Fprintln(cmd.OutOrStdout(), formatEvent(ev))
		if failed, ok := ev.(domain.RunFailed); ok {
			runErr = fmt.Errorf("run %s failed: %s", runID, failed.Message)
		}
		return nil
	}

	var err error
	if opts.useSSE {
		err = client.StreamSSE(cmd.Context(), runID, handler)
	} else {
		err = client.StreamWS(cmd.Context(), runID, handler)
	}
	if err != nil {
		return err
	}
	return runErr
}
