package main

import (
	"github.com/spf13/cobra"

	"github.com/chime-player/chime/pkg/wire"
)

func openCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "open <link>",
		Short: "Send an action link to a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			reply, err := app.send(wire.CmdLinkOpen, wire.LinkOpenBody{Link: args[0]})
			if err != nil {
				return err
			}
			return app.printReply(reply)
		},
	}
}
