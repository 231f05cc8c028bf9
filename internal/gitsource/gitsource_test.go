package gitsource

import (
	"path/filepath"
	"testing"
)

func TestLocalPath(t *testing.T) {
	testCases := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "https url",
			url:  "https://github.com/someone/decks.git",
			want: filepath.Join("repos", "github.com", "someone", "decks"),
		},
		{
			name: "https url without suffix",
			url:  "https://gitlab.com/team/study-decks",
			want: filepath.Join("repos", "gitlab.com", "team", "study-decks"),
		},
		{
			name: "scp style ssh address",
			url:  "git@github.com:someone/decks.git",
			want: filepath.Join("repos", "github.com", "someone", "decks"),
		},
		{
			name:    "garbage",
			url:     "not a url at all",
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LocalPath("repos", tc.url)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("LocalPath() error: %v", err)
			}
			if got != tc.want {
				t.Errorf("LocalPath() = %q, want %q", got, tc.want)
			}
		})
	}
}
