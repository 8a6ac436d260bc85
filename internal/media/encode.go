// Package media turns local files into data URIs for report attachments.
// There is no size limit, compression or type validation.
package media

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Kind classifies an attachment.
type Kind int

const (
	KindOther Kind = iota
	KindImage
	KindVideo
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindVideo:
		return "video"
	default:
		return "other"
	}
}

// Attachment is an encoded file.
type Attachment struct {
	Name    string
	MIME    string
	Kind    Kind
	DataURI string
}

// EncodeFile reads path and returns it as data:<mime>;base64,<payload>.
func EncodeFile(path string) (string, error) {
	a, err := Load(path)
	if err != nil {
		return "", err
	}
	return a.DataURI, nil
}

// Load reads and encodes path.
func Load(path string) (*Attachment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read attachment: %w", err)
	}
	mimeType := DetectMIME(path, data)
	return &Attachment{
		Name:    filepath.Base(path),
		MIME:    mimeType,
		Kind:    kindOf(mimeType),
		DataURI: DataURI(mimeType, data),
	}, nil
}

// DataURI formats data as a base64 data URI.
func DataURI(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// videoTypes covers extensions missing from Go's builtin table on hosts
// without /etc/mime.types.
var videoTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
}

func typeByExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := videoTypes[ext]; ok {
		return t
	}
	return mime.TypeByExtension(ext)
}

// DetectMIME picks the type from the extension, then from the content.
func DetectMIME(path string, data []byte) string {
	if byExt := typeByExtension(path); byExt != "" {
		// Drop parameters such as "; charset=utf-8".
		if i := strings.Index(byExt, ";"); i >= 0 {
			byExt = strings.TrimSpace(byExt[:i])
		}
		return byExt
	}
	if len(data) > 0 {
		sniffed := http.DetectContentType(data)
		if i := strings.Index(sniffed, ";"); i >= 0 {
			sniffed = strings.TrimSpace(sniffed[:i])
		}
		return sniffed
	}
	return "application/octet-stream"
}

// KindOf classifies path by its extension alone, without reading it.
func KindOf(path string) Kind {
	return kindOf(typeByExtension(path))
}

func kindOf(mimeType string) Kind {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return KindImage
	case strings.HasPrefix(mimeType, "video/"):
		return KindVideo
	default:
		return KindOther
	}
}

// ImageExtensions and VideoExtensions feed the file picker filters.
var (
	ImageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}
	VideoExtensions = []string{".mp4", ".webm", ".mov", ".avi"}
)
