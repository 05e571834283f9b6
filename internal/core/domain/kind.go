package domain

import (
	"fmt"
	"strings"
)

// Kind is the result-type filter applied to a catalog search.
type Kind string

const (
	KindTrack  Kind = "track"
	KindAlbum  Kind = "album"
	KindArtist Kind = "artist"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{KindTrack, KindAlbum, KindArtist}

// ParseKind accepts the catalog selector ("track") as well as the plural
// collection names used by the mobile client ("songs", "albums", "artists").
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "track", "tracks", "song", "songs":
		return KindTrack, nil
	case "album", "albums":
		return KindAlbum, nil
	case "artist", "artists":
		return KindArtist, nil
	}
	return "", &ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown kind %q", raw)}
}

// Valid reports whether k is one of the supported kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindTrack, KindAlbum, KindArtist:
		return true
	}
	return false
}

// Collection returns the per-user collection name for reactions of this kind.
func (k Kind) Collection() string {
	switch k {
	case KindTrack:
		return "songs"
	case KindAlbum:
		return "albums"
	case KindArtist:
		return "artists"
	}
	return ""
}

func (k Kind) String() string { return string(k) }
