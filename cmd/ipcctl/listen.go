package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/wagiedev/ipclink-go"
)

// receivedMessage is the structured form of one decoded frame.
type receivedMessage struct {
	Connection string `json:"connection" yaml:"connection"`
	ID         uint32 `json:"id" yaml:"id"`
	Type       string `json:"type" yaml:"type"`
	Text       string `json:"text,omitempty" yaml:"text,omitempty"`
	Status     *int   `json:"status,omitempty" yaml:"status,omitempty"`
	Payload    string `json:"payload,omitempty" yaml:"payload,omitempty"`
}

func describe(d ipclink.Delivery) receivedMessage {
	rm := receivedMessage{Connection: d.Conn.ID(), ID: d.Message.MessageID()}

	switch m := d.Message.(type) {
	case *ipclink.Response:
		rm.Type, rm.Text = "response", m.Text
	case *ipclink.Finish:
		status := m.Status
		rm.Type, rm.Status = "finish", &status
	case *ipclink.Raw:
		rm.Type, rm.Payload = "raw", hex.EncodeToString(m.Payload)
	default:
		rm.Type = fmt.Sprintf("%T", m)
	}

	return rm
}

func (rm receivedMessage) String() string {
	switch rm.Type {
	case "response":
		return fmt.Sprintf("%s response: %s", rm.Connection, rm.Text)
	case "finish":
		return fmt.Sprintf("%s finish: status %d", rm.Connection, *rm.Status)
	default:
		return fmt.Sprintf("%s %s id=%d: %s", rm.Connection, rm.Type, rm.ID, rm.Payload)
	}
}

func newListenCmd(a *app) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Listen on a socket and print every message received",
		Long: `Listen on a socket and print every decoded message.

Frames with an unknown message id are printed as hex. With --once the
command exits after its first peer disconnects.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateFormat(a.cfg.Format); err != nil {
				return err
			}

			return runListen(cmd.Context(), a, cmd.OutOrStdout(), once)
		},
	}

	cmd.Flags().String("format", formatText, "Output format: text, json or yaml")
	cmd.Flags().Int("read-buffer-size", 0, "Bytes per socket read (0 for the default)")
	cmd.Flags().BoolVar(&once, "once", false, "Exit after the first peer disconnects")

	return cmd
}

func runListen(ctx context.Context, a *app, out io.Writer, once bool) error {
	loop := ipclink.NewLoop(ipclink.WithLogger(a.log))

	registry := ipclink.NewRegistry(ipclink.WithLogger(a.log))
	registry.AllowUnknown(true)

	server, err := ipclink.Listen(loop, a.cfg.Socket, append(a.options(), ipclink.WithRegistry(registry))...)
	if err != nil {
		return err
	}

	defer server.Close()

	var writeErr error

	// One writer for the whole session keeps YAML output a valid stream.
	sw := newStructuredWriter(out, a.cfg.Format)

	server.NewConnection().Connect(func(conn *ipclink.Connection) {
		a.log.Info("Peer connected", "connection_id", conn.ID())

		conn.NewMessage().Connect(func(d ipclink.Delivery) {
			rm := describe(d)

			var err error
			if a.cfg.Format == formatText {
				_, err = fmt.Fprintln(out, rm.String())
			} else {
				err = sw.Write(rm)
			}

			if err != nil && writeErr == nil {
				writeErr = err
				loop.Quit()
			}
		})

		conn.Disconnected().Connect(func(c *ipclink.Connection) {
			a.log.Info("Peer disconnected", "connection_id", c.ID())
			loop.DeleteLater(c)

			if once {
				loop.Quit()
			}
		})
	})

	runErr := loop.Run(ctx)
	if err := sw.Close(); err != nil && writeErr == nil {
		writeErr = err
	}

	if writeErr != nil {
		return writeErr
	}

	if errors.Is(runErr, ipclink.ErrLoopStopped) || errors.Is(runErr, context.Canceled) {
		return nil
	}

	return runErr
}
