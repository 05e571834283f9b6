package domain

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateRating(t *testing.T) {
	tests := []struct {
		rating  float64
		wantErr bool
	}{
		{rating: 0},
		{rating: 0.5},
		{rating: 4.5},
		{rating: 5},
		{rating: -0.5, wantErr: true},
		{rating: 5.5, wantErr: true},
		{rating: 3.25, wantErr: true},
	}

	for _, tc := range tests {
		err := ValidateRating(tc.rating)
		if (err != nil) != tc.wantErr {
			t.Errorf("ValidateRating(%v): got err %v, wantErr %v", tc.rating, err, tc.wantErr)
		}
		if err != nil && !errors.Is(err, ErrValidation) {
			t.Errorf("ValidateRating(%v): error %v does not match ErrValidation", tc.rating, err)
		}
	}
}

func TestNewReaction(t *testing.T) {
	r, err := NewReaction("u-1", KindAlbum, "al-1", 4.5, "  great record  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Review != "great record" {
		t.Fatalf("review not trimmed: %q", r.Review)
	}

	_, err = NewReaction("u-1", KindAlbum, "al-1", 3, strings.Repeat("x", MaxReviewLength+1))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for long review, got %v", err)
	}

	_, err = NewReaction("", KindAlbum, "al-1", 3, "")
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for missing user, got %v", err)
	}
}

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{
		"track":   KindTrack,
		"songs":   KindTrack,
		"Album":   KindAlbum,
		"artists": KindArtist,
	}
	for raw, want := range tests {
		got, err := ParseKind(raw)
		if err != nil {
			t.Fatalf("ParseKind(%q): %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseKind(%q) = %q, want %q", raw, got, want)
		}
	}

	if _, err := ParseKind("playlist"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
