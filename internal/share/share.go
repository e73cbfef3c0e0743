package share

import (
	"go.uber.org/zap"

	"github.com/chime-player/chime/internal/playlist"
	"github.com/chime-player/chime/pkg/actionlink"
)

// SupportedGeneratorType is the only station generator whose filter
// vocabulary round-trips through link parameters. Stations built by other
// generators cannot be expressed as a link and are not shareable.
const SupportedGeneratorType = "harmonic"

// Clipboard is the system clipboard surface.
type Clipboard interface {
	Write(text string) error
}

// Codec produces shareable links for tracks and stations.
type Codec struct {
	log       *zap.Logger
	clipboard Clipboard
}

// New wires a share codec to the clipboard.
func New(log *zap.Logger, clipboard Clipboard) *Codec {
	if log == nil {
		log = zap.NewNop()
	}
	return &Codec{log: log, clipboard: clipboard}
}

// TrackLink builds the web form of an open-track link.
func (c *Codec) TrackLink(artist, title, album string) string {
	params := actionlink.Params{}
	if title != "" {
		params = append(params, actionlink.Param{Key: "title", Value: title})
	}
	if artist != "" {
		params = append(params, actionlink.Param{Key: "artist", Value: artist})
	}
	if album != "" {
		params = append(params, actionlink.Param{Key: "album", Value: album})
	}
	return actionlink.EncodeWeb(actionlink.CategoryOpen, []string{"track"}, params)
}

// CopyTrack writes a track link to the clipboard.
func (c *Codec) CopyTrack(artist, title, album string) error {
	return c.clipboard.Write(c.TrackLink(artist, title, album))
}

// StationLink builds the web form of a station-create link. It reports
// false for playlists that are not link-shareable; that is a documented
// no-op, not an error.
func (c *Codec) StationLink(pl playlist.Playlist) (string, bool) {
	if !pl.IsStation() {
		c.log.Info("playlist is not a station, not shareable", zap.String("playlist", pl.PlaylistID))
		return "", false
	}
	if pl.GeneratorType != SupportedGeneratorType {
		c.log.Info("station generator not link-shareable",
			zap.String("playlist", pl.PlaylistID),
			zap.String("generator", pl.GeneratorType),
		)
		return "", false
	}

	params := actionlink.Params{
		{Key: "title", Value: pl.Title},
		{Key: "type", Value: pl.GeneratorType},
	}
	params = append(params, actionlink.EncodeControls(pl.Controls)...)
	return actionlink.EncodeWeb(actionlink.CategoryStation, []string{"create"}, params), true
}

// CopyStation writes a station link to the clipboard when the station is
// shareable.
func (c *Codec) CopyStation(pl playlist.Playlist) bool {
	link, ok := c.StationLink(pl)
	if !ok {
		return false
	}
	if err := c.clipboard.Write(link); err != nil {
		c.log.Warn("clipboard write failed", zap.Error(err))
		return false
	}
	return true
}
