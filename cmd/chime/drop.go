package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/chime-player/chime/pkg/wire"
)

func dropCommand() *cobra.Command {
	var mime string

	cmd := &cobra.Command{
		Use:   "drop [data]",
		Short: "Send a payload to a node for classification",
		Long:  "Sends text or a structured payload to a node the way a drag-and-drop or paste would. Reads from stdin when data is omitted or '-'.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)

			data := ""
			if len(args) == 1 && args[0] != "-" {
				data = args[0]
			} else {
				raw, err := io.ReadAll(os.Stdin)
				if err != nil {
					return err
				}
				data = string(raw)
			}

			body := wire.PayloadDropBody{Parts: []wire.PayloadPart{{Mime: mime, Data: data}}}
			reply, err := app.send(wire.CmdPayloadDrop, body)
			if err != nil {
				return err
			}
			return app.printReply(reply)
		},
	}

	cmd.Flags().StringVar(&mime, "mime", "text/plain", "payload mime type")

	return cmd
}
