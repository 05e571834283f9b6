package domain

import (
	"errors"
	"reflect"
	"testing"
)

func TestList_AddItem(t *testing.T) {
	tests := []struct {
		name         string
		initialItems []ListItem
		toAdd        ListItem
		wantErr      error
		wantLen      int
	}{
		{
			name:         "adds new item successfully",
			initialItems: []ListItem{},
			toAdd:        ListItem{Kind: KindAlbum, ItemID: "al-1", Name: "Discovery", ArtistName: "Daft Punk"},
			wantErr:      nil,
			wantLen:      1,
		},
		{
			name: "fails when adding the same item twice",
			initialItems: []ListItem{
				{Kind: KindAlbum, ItemID: "al-1", Name: "Discovery", ArtistName: "Daft Punk"},
			},
			toAdd:   ListItem{Kind: KindAlbum, ItemID: "al-1", Name: "Discovery", ArtistName: "Daft Punk"},
			wantErr: ErrDuplicateItem,
			wantLen: 1,
		},
		{
			name: "same id with different kind is a different item",
			initialItems: []ListItem{
				{Kind: KindAlbum, ItemID: "x-1"},
			},
			toAdd:   ListItem{Kind: KindTrack, ItemID: "x-1"},
			wantErr: nil,
			wantLen: 2,
		},
		{
			name:         "rejects missing item id",
			initialItems: []ListItem{},
			toAdd:        ListItem{Kind: KindTrack},
			wantErr:      ErrValidation,
			wantLen:      0,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			l, err := NewList("l-1", "u-1", "Summer", "songs for july", "")
			if err != nil {
				t.Fatalf("failed to create list: %v", err)
			}
			l.Items = append(l.Items, tc.initialItems...)

			err = l.AddItem(tc.toAdd)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got: %v", err)
				}
			} else if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected error %v, got %v", tc.wantErr, err)
			}

			if got := len(l.Items); got != tc.wantLen {
				t.Fatalf("expected %d items, got %d", tc.wantLen, got)
			}

			if tc.wantErr == nil {
				last := l.Items[len(l.Items)-1]
				if !reflect.DeepEqual(last, tc.toAdd) {
					t.Fatalf("last item mismatch: want %+v, got %+v", tc.toAdd, last)
				}
			}
		})
	}
}

func TestNewList_Validation(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		wantField   string
	}{
		{name: "blank title", title: "   ", description: "d", wantField: "title"},
		{name: "blank description", title: "t", description: "", wantField: "description"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewList("l-1", "u-1", tc.title, tc.description, "")
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tc.wantField {
				t.Fatalf("field: got %q, want %q", verr.Field, tc.wantField)
			}
		})
	}
}
