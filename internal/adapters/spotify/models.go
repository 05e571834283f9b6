package spotify

import "encoding/json"

// spotifyImage is one entry of an images array; the first is the largest.
type spotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height,omitempty"`
	Width  int    `json:"width,omitempty"`
}

type spotifyArtistRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type spotifyAlbumRef struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []spotifyImage `json:"images"`
}

// spotifyTrack represents a track object from the search and tracks endpoints.
type spotifyTrack struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Artists    []spotifyArtistRef `json:"artists"`
	Album      *spotifyAlbumRef   `json:"album"`
	PreviewURL *string            `json:"preview_url"`
}

// spotifyAlbum represents a simplified album object.
type spotifyAlbum struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Artists []spotifyArtistRef `json:"artists"`
	Images  []spotifyImage     `json:"images"`
}

// spotifyArtist represents a full artist object.
type spotifyArtist struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []spotifyImage `json:"images"`
}

// pagingObject keeps items raw so that one malformed entry cannot fail the page.
type pagingObject struct {
	Items  []json.RawMessage `json:"items"`
	Limit  int               `json:"limit"`
	Offset int               `json:"offset"`
	Total  int               `json:"total"`
}

type searchResponse struct {
	Tracks  *pagingObject `json:"tracks"`
	Albums  *pagingObject `json:"albums"`
	Artists *pagingObject `json:"artists"`
}
