package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchCallback(t *testing.T) {
	const callback = "http://127.0.0.1:51123/profile"

	tests := []struct {
		name     string
		url      string
		fragment string
		want     string
		ok       bool
	}{
		{"fragment reported separately", "http://127.0.0.1:51123/profile", "#session_id=xyz", "xyz", true},
		{"fragment without hash", "http://127.0.0.1:51123/profile?state=1", "session_id=xyz", "xyz", true},
		{"fragment inside url", "http://127.0.0.1:51123/profile/#session_id=abc", "", "abc", true},
		{"other host", "http://evil.example.org/profile", "#session_id=xyz", "", false},
		{"other path", "http://127.0.0.1:51123/", "#session_id=xyz", "", false},
		{"no fragment", "http://127.0.0.1:51123/profile", "", "", false},
		{"fragment without id", "http://127.0.0.1:51123/profile", "#token=1", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := MatchCallback(tt.url, tt.fragment, callback)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, id)
		})
	}
}
