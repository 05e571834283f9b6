package domain

// SearchResultItem is one normalized catalog entry.
// AlbumName equals Name for albums and is empty for artists. ArtistName is
// the primary artist, or the artist itself for artist results. ImageURL and
// PreviewURL are empty when the catalog did not provide them; only tracks
// ever carry a PreviewURL.
type SearchResultItem struct {
	Kind       Kind   `json:"kind"`
	ID         string `json:"id"`
	Name       string `json:"name"`
	ArtistName string `json:"artist"`
	AlbumName  string `json:"album"`
	ImageURL   string `json:"image_url,omitempty"`
	PreviewURL string `json:"preview_url,omitempty"`
}

// HasPreview reports whether the item carries an audio preview.
func (i SearchResultItem) HasPreview() bool {
	return i.Kind == KindTrack && i.PreviewURL != ""
}

// Page is one normalized page from the catalog.
// Returned counts the raw entries the catalog sent before malformed ones
// were dropped, so len(Items) <= Returned.
type Page struct {
	Items    []SearchResultItem
	Returned int
}
