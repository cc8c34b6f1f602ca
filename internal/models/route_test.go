package models

import (
	"reflect"
	"testing"
)

func TestEncodeDecodeModes(t *testing.T) {
	modes := []string{ModeBus, ModeKeke}

	raw := EncodeModes(modes)
	if got := DecodeModes(raw); !reflect.DeepEqual(got, modes) {
		t.Errorf("round trip = %v, want %v", got, modes)
	}

	if EncodeModes(nil) != "[]" {
		t.Errorf("EncodeModes(nil) = %q, want []", EncodeModes(nil))
	}
	if DecodeModes("") != nil {
		t.Error("DecodeModes of empty string should be nil")
	}
	if DecodeModes("not json") != nil {
		t.Error("DecodeModes of garbage should be nil")
	}
}

func TestModesOverlap(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want bool
	}{
		{"shared mode", []string{ModeBus, ModeKeke}, []string{ModeKeke}, true},
		{"disjoint", []string{ModeBus}, []string{ModeOkada}, false},
		{"walking bridges left", []string{ModeWalking}, []string{ModeOkada}, true},
		{"walking bridges right", []string{ModeBus}, []string{ModeWalking}, true},
		{"both empty", nil, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModesOverlap(tt.a, tt.b); got != tt.want {
				t.Errorf("ModesOverlap(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestLocationQuery(t *testing.T) {
	lat, lng := 6.45, 3.39

	if (LocationQuery{}).HasCoordinates() {
		t.Error("empty query should not report coordinates")
	}
	if !(LocationQuery{Latitude: &lat, Longitude: &lng}).HasCoordinates() {
		t.Error("coordinate query should report coordinates")
	}
	if !(LocationQuery{}).IsEmpty() {
		t.Error("empty query should be empty")
	}
	if (LocationQuery{Text: "Oshodi"}).IsEmpty() {
		t.Error("text query should not be empty")
	}
}
