package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/chime-player/chime/pkg/wire"
)

func shareCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "share",
		Short: "Produce shareable links",
	}
	cmd.AddCommand(shareTrackCommand())
	cmd.AddCommand(shareStationCommand())
	return cmd
}

func shareTrackCommand() *cobra.Command {
	var (
		artist string
		title  string
		album  string
		copyIt bool
	)

	cmd := &cobra.Command{
		Use:   "track",
		Short: "Build a web link for a track",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" {
				return errors.New("--title is required")
			}
			app := fromContext(cmd)
			reply, err := app.send(wire.CmdShareTrack, wire.ShareTrackBody{
				Artist: artist,
				Title:  title,
				Album:  album,
			})
			if err != nil {
				return err
			}
			return printShareReply(app, reply, copyIt)
		},
	}

	cmd.Flags().StringVar(&artist, "artist", "", "track artist")
	cmd.Flags().StringVar(&title, "title", "", "track title")
	cmd.Flags().StringVar(&album, "album", "", "track album")
	cmd.Flags().BoolVar(&copyIt, "copy", false, "copy the link to the clipboard")

	return cmd
}

func shareStationCommand() *cobra.Command {
	var copyIt bool

	cmd := &cobra.Command{
		Use:   "station <playlist-id>",
		Short: "Build a web link that recreates a station",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := fromContext(cmd)
			reply, err := app.send(wire.CmdShareStation, wire.ShareStationBody{PlaylistID: args[0]})
			if err != nil {
				return err
			}
			return printShareReply(app, reply, copyIt)
		},
	}

	cmd.Flags().BoolVar(&copyIt, "copy", false, "copy the link to the clipboard")

	return cmd
}

func printShareReply(app *app, reply wire.ReplyEnvelope, copyIt bool) error {
	var body wire.ShareReplyBody
	if err := json.Unmarshal(reply.Body, &body); err != nil {
		return fmt.Errorf("unexpected reply body: %w", err)
	}
	if copyIt {
		if err := clipboard.WriteAll(body.Link); err != nil {
			return fmt.Errorf("clipboard: %w", err)
		}
	}
	if app.json {
		payload, err := json.MarshalIndent(body, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(payload))
		return nil
	}
	pterm.Success.Println(body.Link)
	return nil
}
