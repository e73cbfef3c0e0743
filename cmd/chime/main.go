package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/user"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/chime-player/chime/internal/adapters/mqtt"
	"github.com/chime-player/chime/pkg/wire"
)

type app struct {
	client   *mqtt.Client
	identity string
	node     string
	timeout  time.Duration
	json     bool
}

func main() {
	root := &cobra.Command{
		Use:   "chime",
		Short: "Chime action link CLI",
	}

	var (
		broker    string
		topicBase string
		identity  string
		node      string
		timeout   time.Duration
		jsonOut   bool
		userOpt   string
		passOpt   string
	)

	root.PersistentFlags().StringVarP(&broker, "broker", "b", "mqtt://127.0.0.1:1883", "MQTT broker URL")
	root.PersistentFlags().StringVar(&topicBase, "topic-base", wire.BaseTopic, "MQTT topic base")
	root.PersistentFlags().StringVarP(&identity, "identity", "i", "", "controller identity")
	root.PersistentFlags().StringVarP(&node, "node", "n", "", "target node id")
	root.PersistentFlags().DurationVarP(&timeout, "timeout", "t", 2*time.Second, "command timeout")
	root.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output json")
	root.PersistentFlags().StringVar(&userOpt, "user", "", "MQTT username")
	root.PersistentFlags().StringVar(&passOpt, "pass", "", "MQTT password")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		identity = defaultIdentity(identity)

		client, err := mqtt.NewClient(mqtt.Options{
			BrokerURL: broker,
			ClientID:  fmt.Sprintf("chime-%d", time.Now().UnixNano()),
			Username:  userOpt,
			Password:  passOpt,
			TopicBase: topicBase,
			Timeout:   timeout,
		})
		if err != nil {
			return err
		}

		cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, &app{
			client:   client,
			identity: identity,
			node:     node,
			timeout:  timeout,
			json:     jsonOut,
		}))
		return nil
	}

	root.AddCommand(lsCommand())
	root.AddCommand(openCommand())
	root.AddCommand(dropCommand())
	root.AddCommand(shareCommand())

	if err := root.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

type appKey struct{}

func fromContext(cmd *cobra.Command) *app {
	val := cmd.Context().Value(appKey{})
	if val == nil {
		return nil
	}
	return val.(*app)
}

// send publishes a command to the target node and waits for its reply. A
// transported error reply is surfaced as a regular error.
func (a *app) send(cmdType string, body any) (wire.ReplyEnvelope, error) {
	if a.node == "" {
		return wire.ReplyEnvelope{}, errors.New("target node is required (set --node)")
	}

	cmd, err := wire.NewCommand(cmdType, body)
	if err != nil {
		return wire.ReplyEnvelope{}, err
	}
	cmd.ID = newID()
	cmd.TS = time.Now().Unix()
	cmd.From = a.identity
	cmd.ReplyTo = a.client.ReplyTopic()

	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	reply, err := a.client.PublishCommand(ctx, a.node, cmd)
	if err != nil {
		return wire.ReplyEnvelope{}, err
	}
	if !reply.OK {
		if reply.Err != nil {
			return reply, fmt.Errorf("%s: %s", reply.Err.Code, reply.Err.Message)
		}
		return reply, errors.New("command rejected")
	}
	return reply, nil
}

func (a *app) printReply(reply wire.ReplyEnvelope) error {
	if a.json {
		payload, err := json.MarshalIndent(reply, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(payload))
		return nil
	}
	pterm.Success.Println("ok")
	return nil
}

func defaultIdentity(flagVal string) string {
	if flagVal != "" {
		return flagVal
	}
	usr, _ := user.Current()
	host, _ := os.Hostname()
	if usr != nil && host != "" {
		return fmt.Sprintf("%s@%s", usr.Username, host)
	}
	if host != "" {
		return host
	}
	return "chime-unknown"
}

func newID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b[:])
}
