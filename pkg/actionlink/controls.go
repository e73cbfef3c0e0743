package actionlink

import "strings"

// Attribute names one station filter dimension.
type Attribute string

// Known filter attributes.
const (
	AttrArtist            Attribute = "artist"
	AttrArtistLimit       Attribute = "artist-limit"
	AttrArtistDescription Attribute = "artist-description"
	AttrVariety           Attribute = "variety"
	AttrTempo             Attribute = "tempo"
	AttrDuration          Attribute = "duration"
	AttrLoudness          Attribute = "loudness"
	AttrDanceability      Attribute = "danceability"
	AttrEnergy            Attribute = "energy"
	AttrArtistFamiliarity Attribute = "artist-familiarity"
	AttrArtistHotttnesss  Attribute = "artist-hotttnesss"
	AttrSongHotttnesss    Attribute = "song-hotttnesss"
	AttrLongitude         Attribute = "longitude"
	AttrLatitude          Attribute = "latitude"
	AttrKey               Attribute = "key"
	AttrMode              Attribute = "mode"
	AttrMood              Attribute = "mood"
	AttrStyle             Attribute = "style"
	AttrSong              Attribute = "song"
)

// Bound tells how a control's value constrains its attribute.
type Bound int

const (
	BoundExact Bound = iota
	BoundLower
	BoundUpper
)

func (b Bound) String() string {
	switch b {
	case BoundLower:
		return "lower"
	case BoundUpper:
		return "upper"
	default:
		return "exact"
	}
}

// RadioControl is one parametrized station filter.
type RadioControl struct {
	Attribute Attribute `json:"attribute"`
	Bound     Bound     `json:"bound"`
	Value     string    `json:"value"`
}

// StationMode selects how a station playlist materializes its tracks.
type StationMode int

const (
	// StationStatic generates and fixes the entry set once at creation.
	StationStatic StationMode = iota
	// StationOnDemand generates tracks lazily and never fixes entries.
	StationOnDemand
)

// StationDraft accumulates controls while a link is decoded. It is
// committed as a playlist revision exactly once, after decoding finishes.
type StationDraft struct {
	Title         string
	GeneratorType string
	Mode          StationMode
	Controls      []RadioControl
}

// Append adds controls to the draft, preserving encounter order.
func (d *StationDraft) Append(controls ...RadioControl) {
	d.Controls = append(d.Controls, controls...)
}

// Categorical parameters translate to an exact-match control.
var exactParams = map[string]Attribute{
	"artist":         AttrArtist,
	"artist_limitto": AttrArtistLimit,
	"description":    AttrArtistDescription,
	"variety":        AttrVariety,
	"key":            AttrKey,
	"mode":           AttrMode,
	"mood":           AttrMood,
	"style":          AttrStyle,
	"song":           AttrSong,
}

// Ranged parameters are matched by prefix; a _max suffix flips the bound.
// The inverted entries inherit the upstream radio API's reversed parameter
// polarity: their _max form is the lower bound and the bare form the upper.
// Published links depend on this, so it must not be "fixed".
var rangedParams = []struct {
	prefix   string
	attr     Attribute
	inverted bool
}{
	{"tempo", AttrTempo, false},
	{"duration", AttrDuration, false},
	{"loudness", AttrLoudness, false},
	{"danceability", AttrDanceability, true},
	{"energy", AttrEnergy, true},
	{"artist_familiarity", AttrArtistFamiliarity, false},
	{"artist_hotttnesss", AttrArtistHotttnesss, false},
	{"song_hotttnesss", AttrSongHotttnesss, false},
	{"longitude", AttrLongitude, true},
	{"latitude", AttrLatitude, true},
}

// BuildControls converts link parameters to controls in encounter order.
// The identity parameters title and type are skipped, and unknown parameter
// names are silently ignored so newer links keep working on older builds.
func BuildControls(params Params) []RadioControl {
	controls := make([]RadioControl, 0, len(params))
	for _, param := range params {
		if param.Key == "title" || param.Key == "type" {
			continue
		}
		if attr, ok := exactParams[param.Key]; ok {
			controls = append(controls, RadioControl{Attribute: attr, Bound: BoundExact, Value: param.Value})
			continue
		}
		for _, ranged := range rangedParams {
			if !strings.HasPrefix(param.Key, ranged.prefix) {
				continue
			}
			controls = append(controls, RadioControl{
				Attribute: ranged.attr,
				Bound:     rangedBound(strings.HasSuffix(param.Key, "_max"), ranged.inverted),
				Value:     param.Value,
			})
			break
		}
	}
	return controls
}

// EncodeControls is the inverse mapping, used for outbound sharing.
func EncodeControls(controls []RadioControl) Params {
	params := make(Params, 0, len(controls))
	for _, control := range controls {
		if key, ok := exactParamName(control.Attribute); ok {
			params = append(params, Param{Key: key, Value: control.Value})
			continue
		}
		for _, ranged := range rangedParams {
			if ranged.attr != control.Attribute {
				continue
			}
			key := ranged.prefix
			if maxSuffix(control.Bound, ranged.inverted) {
				key += "_max"
			}
			params = append(params, Param{Key: key, Value: control.Value})
			break
		}
	}
	return params
}

func rangedBound(hasMax bool, inverted bool) Bound {
	if inverted {
		if hasMax {
			return BoundLower
		}
		return BoundUpper
	}
	if hasMax {
		return BoundUpper
	}
	return BoundLower
}

func maxSuffix(bound Bound, inverted bool) bool {
	if inverted {
		return bound == BoundLower
	}
	return bound == BoundUpper
}

func exactParamName(attr Attribute) (string, bool) {
	for key, candidate := range exactParams {
		if candidate == attr {
			return key, true
		}
	}
	return "", false
}
