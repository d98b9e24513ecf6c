package shared

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
)

func TestCanonicalID(t *testing.T) {
	tc := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{
			name: "lowercase passes through",
			in:   "0f8fad5b-d9cb-469f-a165-70867728950e",
			want: "0f8fad5b-d9cb-469f-a165-70867728950e",
		},
		{
			name: "uppercase is folded",
			in:   "0F8FAD5B-D9CB-469F-A165-70867728950E",
			want: "0f8fad5b-d9cb-469f-a165-70867728950e",
		},
		{
			name: "surrounding whitespace",
			in:   "  0f8fad5b-d9cb-469f-a165-70867728950e\n",
			want: "0f8fad5b-d9cb-469f-a165-70867728950e",
		},
		{
			name:    "not a uuid",
			in:      "playlist-1",
			wantErr: true,
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalID(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidID) {
					t.Errorf("expected ErrInvalidID, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("CanonicalID() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	if got := ParseLogLevel("DEBUG"); got != log.DebugLevel {
		t.Errorf("expected debug level, got %v", got)
	}
	if got := ParseLogLevel("nonsense"); got != log.InfoLevel {
		t.Errorf("expected info fallback, got %v", got)
	}
}

func TestExpandHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	if got := ExpandHome("~/.linkreel/group"); got != filepath.Join("/home/tester", ".linkreel/group") {
		t.Errorf("unexpected expansion: %s", got)
	}
	if got := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Errorf("absolute path should not change, got %s", got)
	}
}
