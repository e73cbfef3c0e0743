package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func lsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ls",
		Short: "List reachable nodes",
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), app.timeout)
			defer cancel()

			nodes, err := app.client.ListPresence(ctx)
			if err != nil {
				return err
			}

			if app.json {
				payload, err := json.MarshalIndent(nodes, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(payload))
				return nil
			}

			rows := pterm.TableData{{"NAME", "KIND", "NODE_ID"}}
			for _, node := range nodes {
				rows = append(rows, []string{node.Name, node.Kind, node.NodeID})
			}
			return pterm.DefaultTable.WithHasHeader().WithData(rows).Render()
		},
	}
}
