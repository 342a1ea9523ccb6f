package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wagiedev/ipclink-go"
)

func newSendCmd(a *app) *cobra.Command {
	var (
		id     uint32
		status int
	)

	cmd := &cobra.Command{
		Use:   "send [flags] payload...",
		Short: "Send one message to a listening socket",
		Long: `Connect to a socket, send one message and finish.

The payload words are joined with spaces. With the default id the payload is
a text response; any other id sends the bytes as-is. With --status a finish
message carrying the status follows the payload.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd.Context(), a, id, strings.Join(args, " "), status, cmd.Flags().Changed("status"))
		},
	}

	cmd.Flags().Uint32Var(&id, "id", ipclink.ResponseID, "Message id")
	cmd.Flags().IntVar(&status, "status", 0, "Send a finish message with this status")
	cmd.Flags().Int("read-buffer-size", 0, "Bytes per socket read (0 for the default)")

	return cmd
}

func runSend(ctx context.Context, a *app, id uint32, payload string, status int, withStatus bool) error {
	loop := ipclink.NewLoop(ipclink.WithLogger(a.log))

	conn, err := ipclink.Dial(ctx, loop, a.cfg.Socket, a.options()...)
	if err != nil {
		return err
	}

	var sendErr error

	conn.Destroyed().Connect(func(*ipclink.Connection) { loop.Quit() })

	// A lost peer never acknowledges the rest of the message, so the
	// connection would not be destroyed.
	conn.Disconnected().Connect(func(c *ipclink.Connection) {
		if pending := c.PendingWrite(); pending > 0 && sendErr == nil {
			sendErr = fmt.Errorf("send message %d: peer disconnected with %d bytes unacknowledged: %w",
				id, pending, ipclink.ErrNotConnected)
		}

		loop.Quit()
	})

	loop.CallLater(func() {
		if !conn.Send(id, []byte(payload)) {
			sendErr = fmt.Errorf("send message %d: %w", id, ipclink.ErrNotConnected)
		}

		if withStatus {
			conn.FinishWithStatus(status)
		} else {
			conn.Finish()
		}
	})

	runErr := loop.Run(ctx)
	if sendErr != nil {
		return sendErr
	}

	if errors.Is(runErr, ipclink.ErrLoopStopped) {
		return nil
	}

	return runErr
}
