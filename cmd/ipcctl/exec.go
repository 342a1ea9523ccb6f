package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wagiedev/ipclink-go"
)

// execResult is the structured output of the exec command.
type execResult struct {
	Command  string   `json:"command" yaml:"command"`
	Args     []string `json:"args,omitempty" yaml:"args,omitempty"`
	State    string   `json:"state" yaml:"state"`
	ExitCode int      `json:"exit_code" yaml:"exit_code"`
	Stdout   string   `json:"stdout" yaml:"stdout"`
	Stderr   string   `json:"stderr,omitempty" yaml:"stderr,omitempty"`
	Error    string   `json:"error,omitempty" yaml:"error,omitempty"`
}

func newExecCmd(a *app) *cobra.Command {
	var forwardStdin bool

	cmd := &cobra.Command{
		Use:   "exec [flags] -- command [args...]",
		Short: "Run a command to completion and report its output",
		Long: `Run a command and wait for it to exit.

By default the child's stdin is closed as soon as it starts. With --stdin the
child reads this command's stdin instead. In text format the child's stdout
and stderr are copied through and ipcctl exits with the child's status.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(a.cfg.Format); err != nil {
				return err
			}

			res, err := runExec(a, args[0], args[1:], forwardStdin, cmd.InOrStdin())
			if err != nil && a.cfg.Format == formatText {
				return err
			}

			if a.cfg.Format != formatText {
				if writeErr := writeStructured(cmd.OutOrStdout(), a.cfg.Format, res); writeErr != nil {
					return writeErr
				}

				return err
			}

			if _, err := io.WriteString(cmd.OutOrStdout(), res.Stdout); err != nil {
				return err
			}

			if _, err := io.WriteString(cmd.ErrOrStderr(), res.Stderr); err != nil {
				return err
			}

			if res.ExitCode != 0 {
				return &exitCodeError{code: res.ExitCode}
			}

			return nil
		},
	}

	cmd.Flags().String("format", formatText, "Output format: text, json or yaml")
	cmd.Flags().String("dir", "", "Working directory for the command")
	cmd.Flags().Int("pipe-read-buffer-size", 0, "Bytes per pipe read (0 for the default)")
	cmd.Flags().BoolVar(&forwardStdin, "stdin", false, "Forward stdin to the command")

	return cmd
}

// runExec runs one command. The returned result is filled in even when
// the command could not be spawned.
func runExec(a *app, command string, args []string, forwardStdin bool, stdin io.Reader) (*execResult, error) {
	res := &execResult{Command: command, Args: args}

	proc := ipclink.NewProcess(a.options()...)
	defer func() { _ = proc.Close() }()

	if forwardStdin {
		if err := proc.Start(command, args, nil); err != nil {
			res.State, res.Error = ipclink.Error.String(), err.Error()

			return res, err
		}

		if _, err := io.Copy(proc, stdin); err != nil {
			a.log.Debug("Forwarding stdin stopped", "error", err)
		}

		if err := proc.CloseStdin(); err != nil {
			a.log.Debug("Closing stdin failed", "error", err)
		}

		if err := proc.Close(); err != nil {
			a.log.Debug("Releasing pipes failed", "error", err)
		}

		res.State = ipclink.Done.String()
	} else {
		state, err := proc.Exec(command, args, 0, ipclink.NoExecFlags)
		res.State = state.String()

		if err != nil {
			res.Error = err.Error()

			return res, fmt.Errorf("exec %s: %w", command, err)
		}
	}

	res.ExitCode, _ = proc.ExitCode()
	res.Stdout = string(proc.Stdout())
	res.Stderr = string(proc.Stderr())

	return res, nil
}
