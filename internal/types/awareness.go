package types

import "strings"

// AwarenessPost is an editorial article shown on the awareness page.
type AwarenessPost struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ImageBase64 string    `json:"image_base64,omitempty"`
	VideoBase64 string    `json:"video_base64,omitempty"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	CreatedAt   Timestamp `json:"created_at"`
	IsPublished bool      `json:"is_published"`
}

// Paragraphs splits the content on newlines, dropping blank lines.
func (p AwarenessPost) Paragraphs() []string {
	var out []string
	for _, line := range strings.Split(p.Content, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// Profile is the user materialized by the backend after login.
type Profile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Picture   string    `json:"picture,omitempty"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt Timestamp `json:"created_at"`
}
