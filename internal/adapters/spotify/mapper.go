package spotify

import (
	"encoding/json"

	"github.com/ewilliams-labs/beatbuddies/internal/core/domain"
)

// normalizeEntries maps raw entries of one kind. Entries that fail to decode
// or lack a required field are skipped and counted in dropped.
func normalizeEntries(kind domain.Kind, raw []json.RawMessage) (items []domain.SearchResultItem, dropped int) {
	items = make([]domain.SearchResultItem, 0, len(raw))
	for _, entry := range raw {
		item, ok := normalizeEntry(kind, entry)
		if !ok {
			dropped++
			continue
		}
		items = append(items, item)
	}
	return items, dropped
}

func normalizeEntry(kind domain.Kind, raw json.RawMessage) (domain.SearchResultItem, bool) {
	switch kind {
	case domain.KindTrack:
		var st spotifyTrack
		if err := json.Unmarshal(raw, &st); err != nil {
			return domain.SearchResultItem{}, false
		}
		return mapTrack(st)
	case domain.KindAlbum:
		var sa spotifyAlbum
		if err := json.Unmarshal(raw, &sa); err != nil {
			return domain.SearchResultItem{}, false
		}
		return mapAlbum(sa)
	case domain.KindArtist:
		var sa spotifyArtist
		if err := json.Unmarshal(raw, &sa); err != nil {
			return domain.SearchResultItem{}, false
		}
		return mapArtist(sa)
	}
	return domain.SearchResultItem{}, false
}

// mapTrack requires an id, a name, a named first artist and an album.
func mapTrack(st spotifyTrack) (domain.SearchResultItem, bool) {
	artist, ok := primaryArtist(st.Artists)
	if st.ID == "" || st.Name == "" || !ok || st.Album == nil {
		return domain.SearchResultItem{}, false
	}

	item := domain.SearchResultItem{
		Kind:       domain.KindTrack,
		ID:         st.ID,
		Name:       st.Name,
		ArtistName: artist,
		AlbumName:  st.Album.Name,
		ImageURL:   firstImage(st.Album.Images),
	}
	if st.PreviewURL != nil {
		item.PreviewURL = *st.PreviewURL
	}
	return item, true
}

// mapAlbum requires an id, a name and a named first artist.
func mapAlbum(sa spotifyAlbum) (domain.SearchResultItem, bool) {
	artist, ok := primaryArtist(sa.Artists)
	if sa.ID == "" || sa.Name == "" || !ok {
		return domain.SearchResultItem{}, false
	}
	return domain.SearchResultItem{
		Kind:       domain.KindAlbum,
		ID:         sa.ID,
		Name:       sa.Name,
		ArtistName: artist,
		AlbumName:  sa.Name,
		ImageURL:   firstImage(sa.Images),
	}, true
}

// mapArtist requires an id and a name.
func mapArtist(sa spotifyArtist) (domain.SearchResultItem, bool) {
	if sa.ID == "" || sa.Name == "" {
		return domain.SearchResultItem{}, false
	}
	return domain.SearchResultItem{
		Kind:       domain.KindArtist,
		ID:         sa.ID,
		Name:       sa.Name,
		ArtistName: sa.Name,
		ImageURL:   firstImage(sa.Images),
	}, true
}

func primaryArtist(artists []spotifyArtistRef) (string, bool) {
	if len(artists) == 0 || artists[0].Name == "" {
		return "", false
	}
	return artists[0].Name, true
}

func firstImage(images []spotifyImage) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
