package cue

import (
	"errors"
	"reflect"
	"testing"
)

func discWith(title string, tracks ...*Track) *Disc {
	return &Disc{Title: title, Tracks: tracks}
}

func TestDefaultTemplate(t *testing.T) {
	tests := []struct {
		name   string
		tracks []*Track
		want   string
	}{
		{
			name:   "all titled with a performer",
			tracks: []*Track{{Number: 1, Title: "Intro"}, {Number: 2, Title: "Stage", Performer: "Band"}},
			want:   "{no}. {ta} - {tt}",
		},
		{
			name:   "all titled",
			tracks: []*Track{{Number: 1, Title: "Intro"}, {Number: 2, Title: "Stage"}},
			want:   "{no}. {tt}",
		},
		{
			name:   "some untitled",
			tracks: []*Track{{Number: 1, Title: "Intro"}, {Number: 2, Performer: "Band"}},
			want:   "{cdt} - Track {no}",
		},
		{
			name:   "no tracks",
			tracks: nil,
			want:   "{cdt} - Track {no}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultTemplate(discWith("Disc", tt.tracks...)); got != tt.want {
				t.Fatalf("DefaultTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrackNames(t *testing.T) {
	tests := []struct {
		name     string
		disc     *Disc
		template string
		want     []string
	}{
		{
			name: "default with performers",
			disc: discWith("Disc",
				&Track{Number: 1, Title: "Intro", Performer: "Band"},
				&Track{Number: 2, Title: "Stage 1"},
			),
			want: []string{"01. Band - Intro", "02. unknown artist - Stage 1"},
		},
		{
			name: "default fallback uses disc title",
			disc: discWith("Sonic: Special",
				&Track{Number: 1},
				&Track{Number: 2, Title: "Green Hill"},
			),
			want: []string{"Sonic- Special - Track 01", "Sonic- Special - Track 02"},
		},
		{
			name:     "custom template with every tag",
			disc:     &Disc{Title: "Disc", Performer: "Studio", Tracks: []*Track{{Number: 7}}},
			template: "{cda} {cdt} {no} {tt} {ta}",
			want:     []string{"Studio Disc 07 untitled unknown artist"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TrackNames(tt.disc, tt.template)
			if err != nil {
				t.Fatalf("TrackNames: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("TrackNames() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrackNamesRejectsCollisions(t *testing.T) {
	tests := []struct {
		name     string
		tracks   []*Track
		template string
	}{
		{
			name:     "identical titles",
			tracks:   []*Track{{Number: 1, Title: "Theme"}, {Number: 2, Title: "Theme"}},
			template: "{tt}",
		},
		{
			name:     "differ only by sanitized characters",
			tracks:   []*Track{{Number: 1, Title: "What?"}, {Number: 2, Title: "What"}},
			template: "{tt}",
		},
		{
			name:     "differ only by case",
			tracks:   []*Track{{Number: 1, Title: "boss"}, {Number: 2, Title: "BOSS"}},
			template: "{tt}",
		},
		{
			name:     "template without track tags",
			tracks:   []*Track{{Number: 1}, {Number: 2}},
			template: "{cdt}",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TrackNames(discWith("Disc", tt.tracks...), tt.template)
			if !errors.Is(err, ErrDuplicateName) {
				t.Fatalf("expected ErrDuplicateName, got %v", err)
			}
		})
	}
}

func TestTrackNamesRejectsEmptyNames(t *testing.T) {
	_, err := TrackNames(discWith("", &Track{Number: 1}), "{cdt}")
	if err == nil || errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected empty name error, got %v", err)
	}
}
