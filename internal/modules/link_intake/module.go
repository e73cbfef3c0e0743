package linkintake

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/chime-player/chime/internal/adapters/mqtt"
	"github.com/chime-player/chime/internal/intake"
	"github.com/chime-player/chime/internal/playlist"
	"github.com/chime-player/chime/pkg/wire"
)

// LinkHandler dispatches raw action links.
type LinkHandler interface {
	HandleText(text string) bool
}

// PayloadHandler classifies dropped payload parts.
type PayloadHandler interface {
	HandlePayload(p intake.Payload) bool
}

// Sharer produces outbound links.
type Sharer interface {
	TrackLink(artist, title, album string) string
	StationLink(pl playlist.Playlist) (string, bool)
}

// Playlists looks up stored playlists for sharing.
type Playlists interface {
	Get(id string) (playlist.Playlist, error)
}

// Config configures the link intake module.
type Config struct {
	NodeID    string
	TopicBase string
	Name      string
}

// Module receives action links and payloads over MQTT and feeds them to
// the router and classifier. It also answers share requests.
type Module struct {
	log       *zap.Logger
	client    *mqtt.Client
	config    Config
	cmdTopic  string
	links     LinkHandler
	payloads  PayloadHandler
	sharer    Sharer
	playlists Playlists
}

// NewModule creates a link intake module.
func NewModule(log *zap.Logger, client *mqtt.Client, cfg Config, links LinkHandler, payloads PayloadHandler, sharer Sharer, playlists Playlists) (*Module, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if strings.TrimSpace(cfg.NodeID) == "" {
		return nil, errors.New("node_id required")
	}
	if strings.TrimSpace(cfg.TopicBase) == "" {
		cfg.TopicBase = wire.BaseTopic
	}
	if strings.TrimSpace(cfg.Name) == "" {
		cfg.Name = "Link Intake"
	}

	return &Module{
		log:       log,
		client:    client,
		config:    cfg,
		cmdTopic:  wire.TopicCommands(cfg.TopicBase, cfg.NodeID),
		links:     links,
		payloads:  payloads,
		sharer:    sharer,
		playlists: playlists,
	}, nil
}

// Run starts the module.
func (m *Module) Run(ctx context.Context) error {
	if err := m.publishPresence(); err != nil {
		return err
	}

	handler := func(_ paho.Client, msg paho.Message) {
		m.handleMessage(msg)
	}
	if err := m.client.Subscribe(m.cmdTopic, 1, handler); err != nil {
		return err
	}
	defer m.client.Unsubscribe(m.cmdTopic)

	<-ctx.Done()
	return nil
}

func (m *Module) publishPresence() error {
	presence := wire.Presence{
		NodeID: m.config.NodeID,
		Kind:   "intake",
		Name:   m.config.Name,
		Caps: map[string]any{
			"linkOpen":    true,
			"payloadDrop": true,
			"share":       true,
		},
		TS: time.Now().Unix(),
	}
	payload, err := json.Marshal(presence)
	if err != nil {
		return err
	}
	return m.client.Publish(wire.TopicPresence(m.config.TopicBase, m.config.NodeID), 1, true, payload)
}

func (m *Module) handleMessage(msg paho.Message) {
	var cmd wire.CommandEnvelope
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		m.log.Warn("invalid command", zap.Error(err))
		return
	}
	if err := wire.ValidateCommandEnvelope(cmd); err != nil {
		m.log.Warn("malformed command envelope", zap.Error(err))
		return
	}
	reply := m.dispatch(cmd)
	if cmd.ReplyTo == "" {
		return
	}
	payload, err := json.Marshal(reply)
	if err != nil {
		m.log.Error("marshal reply", zap.Error(err))
		return
	}
	if err := m.client.Publish(cmd.ReplyTo, 1, false, payload); err != nil {
		m.log.Error("publish reply", zap.Error(err))
	}
}

func (m *Module) dispatch(cmd wire.CommandEnvelope) wire.ReplyEnvelope {
	reply := wire.ReplyEnvelope{
		ID:   cmd.ID,
		Type: "ack",
		OK:   true,
		TS:   time.Now().Unix(),
	}
	switch cmd.Type {
	case wire.CmdLinkOpen:
		return m.linkOpen(cmd, reply)
	case wire.CmdPayloadDrop:
		return m.payloadDrop(cmd, reply)
	case wire.CmdShareTrack:
		return m.shareTrack(cmd, reply)
	case wire.CmdShareStation:
		return m.shareStation(cmd, reply)
	default:
		return errorReply(cmd, "INVALID", "unsupported command")
	}
}

func (m *Module) linkOpen(cmd wire.CommandEnvelope, reply wire.ReplyEnvelope) wire.ReplyEnvelope {
	var body wire.LinkOpenBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, "INVALID", "invalid body")
	}
	if !m.links.HandleText(body.Link) {
		return errorReply(cmd, "REJECTED", "link rejected")
	}
	return reply
}

func (m *Module) payloadDrop(cmd wire.CommandEnvelope, reply wire.ReplyEnvelope) wire.ReplyEnvelope {
	var body wire.PayloadDropBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, "INVALID", "invalid body")
	}
	accepted := false
	for _, part := range body.Parts {
		if m.payloads.HandlePayload(intake.Payload{Mime: part.Mime, Data: part.Data}) {
			accepted = true
		}
	}
	if !accepted {
		return errorReply(cmd, "REJECTED", "no recognizable payload part")
	}
	return reply
}

func (m *Module) shareTrack(cmd wire.CommandEnvelope, reply wire.ReplyEnvelope) wire.ReplyEnvelope {
	var body wire.ShareTrackBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, "INVALID", "invalid body")
	}
	if strings.TrimSpace(body.Title) == "" {
		return errorReply(cmd, "INVALID", "title required")
	}
	link := m.sharer.TrackLink(body.Artist, body.Title, body.Album)
	payload, _ := json.Marshal(wire.ShareReplyBody{Link: link})
	reply.Body = payload
	return reply
}

func (m *Module) shareStation(cmd wire.CommandEnvelope, reply wire.ReplyEnvelope) wire.ReplyEnvelope {
	var body wire.ShareStationBody
	if err := json.Unmarshal(cmd.Body, &body); err != nil {
		return errorReply(cmd, "INVALID", "invalid body")
	}
	pl, err := m.playlists.Get(body.PlaylistID)
	if err != nil {
		return errorReply(cmd, "NOT_FOUND", "playlist not found")
	}
	link, ok := m.sharer.StationLink(pl)
	if !ok {
		return errorReply(cmd, "UNSHAREABLE", "station is not link-shareable")
	}
	payload, _ := json.Marshal(wire.ShareReplyBody{Link: link})
	reply.Body = payload
	return reply
}

func errorReply(cmd wire.CommandEnvelope, code string, message string) wire.ReplyEnvelope {
	return wire.ReplyEnvelope{
		ID:   cmd.ID,
		Type: "error",
		OK:   false,
		TS:   time.Now().Unix(),
		Err:  &wire.ReplyError{Code: code, Message: message},
	}
}
