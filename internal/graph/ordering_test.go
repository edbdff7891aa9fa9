package graph

import (
	"errors"
	"testing"
)

func TestParseOrdering(t *testing.T) {
	tests := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "", want: ""},
		{raw: "-end_date,start_date", want: "-end_date,start_date"},
		{raw: " -start_date , ", want: "-start_date"},
		{raw: "password", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseOrdering(tt.raw, EducationOrderFields)
		if tt.wantErr {
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Fields["ordering"] == "" {
				t.Fatalf("%q: expected ordering validation error, got %v", tt.raw, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: unexpected error %v", tt.raw, err)
		}
		if got.String() != tt.want {
			t.Fatalf("%q: want %q, got %q", tt.raw, tt.want, got.String())
		}
	}
}

func TestOrderingIDTiebreak(t *testing.T) {
	got := DefaultMatchOrdering.withIDTiebreak().String()
	if got != "-match_score,id" {
		t.Fatalf("unexpected tiebreak ordering %q", got)
	}
	if got := (Ordering{{Name: "id", Desc: true}}).withIDTiebreak().String(); got != "-id" {
		t.Fatalf("id ordering must not gain a second id key, got %q", got)
	}
}
