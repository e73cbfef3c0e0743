package share

import (
	"strings"
	"testing"

	"github.com/chime-player/chime/internal/playlist"
	"github.com/chime-player/chime/pkg/actionlink"
)

type memClipboard struct {
	text string
}

func (c *memClipboard) Write(text string) error {
	c.text = text
	return nil
}

func TestTrackLinkEncodesAndEscapes(t *testing.T) {
	codec := New(nil, &memClipboard{})

	link := codec.TrackLink("Queen", "Don't Stop Me Now", "Jazz")
	if !strings.HasPrefix(link, actionlink.ShareOrigin+"/open/track/") {
		t.Fatalf("unexpected link %s", link)
	}
	if strings.ContainsRune(link, '\'') {
		t.Fatalf("link contains a literal quote: %s", link)
	}
}

func TestCopyTrackWritesClipboard(t *testing.T) {
	clip := &memClipboard{}
	codec := New(nil, clip)

	if err := codec.CopyTrack("Muse", "Uprising", ""); err != nil {
		t.Fatalf("copy: %v", err)
	}
	if !strings.Contains(clip.text, "artist=Muse") {
		t.Fatalf("clipboard = %q", clip.text)
	}
}

func TestStationLinkRoundTrips(t *testing.T) {
	codec := New(nil, &memClipboard{})
	pl := playlist.Playlist{
		PlaylistID:    "pl-1",
		Title:         "Late Night",
		GeneratorType: SupportedGeneratorType,
		Controls: []actionlink.RadioControl{
			{Attribute: actionlink.AttrArtist, Bound: actionlink.BoundExact, Value: "Muse"},
			{Attribute: actionlink.AttrTempo, Bound: actionlink.BoundUpper, Value: "120"},
		},
	}

	link, ok := codec.StationLink(pl)
	if !ok {
		t.Fatalf("station should be shareable")
	}

	parsed, err := actionlink.Parse(strings.Replace(link, actionlink.ShareOrigin+"/", actionlink.Scheme, 1))
	if err != nil {
		t.Fatalf("parse shared link: %v", err)
	}
	if parsed.Category != actionlink.CategoryStation {
		t.Fatalf("category %q", parsed.Category)
	}
	controls := actionlink.BuildControls(parsed.Params)
	if len(controls) != 2 || controls[1].Bound != actionlink.BoundUpper {
		t.Fatalf("controls did not round trip: %+v", controls)
	}
}

func TestStationLinkUnsupportedGenerator(t *testing.T) {
	clip := &memClipboard{}
	codec := New(nil, clip)

	pl := playlist.Playlist{PlaylistID: "pl-2", Title: "Odd", GeneratorType: "thirdparty"}
	if ok := codec.CopyStation(pl); ok {
		t.Fatalf("unsupported generator must not be shareable")
	}
	if clip.text != "" {
		t.Fatalf("clipboard written for unsupported station: %q", clip.text)
	}

	plain := playlist.Playlist{PlaylistID: "pl-3", Title: "Plain"}
	if _, ok := codec.StationLink(plain); ok {
		t.Fatalf("plain playlist must not be shareable as station")
	}
}
