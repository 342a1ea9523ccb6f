package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/wagiedev/ipclink-go"
)

// app carries the resolved configuration into subcommands.
type app struct {
	configFile string
	cfg        *Config
	log        *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "ipcctl",
		Short: "Run processes and exchange framed messages over sockets",
		Long: `ipcctl drives the ipclink transport from the command line.

It runs child processes and reports their output, listens on and sends to
unix or tcp sockets using length-prefixed frames, and serves process
execution as an MCP tool over stdio.

Configure with ipcctl.yaml or IPCCTL_* environment variables.`,
		Example: `  ipcctl exec -- git status              # Run a command, print its output
  ipcctl exec --format yaml -- ls -l      # Print the result as YAML
  ipcctl listen --socket /tmp/a.sock      # Print every message received
  ipcctl send --socket /tmp/a.sock hello  # Send one text message`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(viper.New(), cmd, a.configFile)
			if err != nil {
				return err
			}

			log, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}

			a.cfg, a.log = cfg, log

			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "Config file (default ./ipcctl.yaml)")
	flags.String("log-level", "warn", "Log level: debug, info, warn, error")
	flags.String("network", "unix", "Socket family: unix or tcp")
	flags.String("socket", defaultSocketPath(), "Socket path, or host:port for tcp")

	root.CompletionOptions.HiddenDefaultCmd = true

	root.AddCommand(
		newExecCmd(a),
		newListenCmd(a),
		newSendCmd(a),
		newMCPCmd(a),
	)

	return root
}

// options converts the configuration into ipclink options.
func (a *app) options() []ipclink.Option {
	return []ipclink.Option{
		ipclink.WithLogger(a.log),
		ipclink.WithNetwork(ipclink.Network(a.cfg.Network)),
		ipclink.WithReadBufferSize(a.cfg.ReadBufferSize),
		ipclink.WithPipeReadBufferSize(a.cfg.PipeReadBufferSize),
		ipclink.WithDir(a.cfg.Dir),
	}
}
