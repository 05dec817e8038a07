// Package importer turns files and web pages into snippet drafts.
package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/bmatcuk/doublestar/v4"
)

var (
	ErrUnsupported = errors.New("unsupported file type")
	ErrNoContent   = errors.New("no text content found")
)

// Draft is imported text not yet saved as a snippet.
type Draft struct {
	Title   string
	Content string
	Tags    []string
	Source  string
}

// Extensions lists the file types FromFile understands.
var Extensions = []string{".md", ".markdown", ".txt", ".html", ".htm", ".pdf", ".xlsx"}

// FromFile reads path and converts it to Markdown-ish text. The lowercase
// extension (without the dot) becomes the draft's only tag.
func FromFile(path string) (Draft, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var (
		text string
		err  error
	)
	switch ext {
	case ".md", ".markdown", ".txt":
		var b []byte
		b, err = os.ReadFile(path)
		text = string(b)
	case ".html", ".htm":
		text, err = parseHTML(path)
	case ".pdf":
		text, err = parsePDF(path)
	case ".xlsx":
		text, err = parseExcel(path)
	default:
		return Draft{}, fmt.Errorf("%s: %w", path, ErrUnsupported)
	}
	if err != nil {
		return Draft{}, fmt.Errorf("read %s: %w", path, err)
	}

	text = cleanText(text)
	if text == "" {
		return Draft{}, fmt.Errorf("%s: %w", path, ErrNoContent)
	}
	return Draft{
		Title:   strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)),
		Content: text,
		Tags:    []string{strings.TrimPrefix(ext, ".")},
		Source:  path,
	}, nil
}

// Glob expands a doublestar pattern (such as notes/**/*.md) and keeps only
// the files FromFile can read.
func Glob(pattern string) ([]string, error) {
	matches, err := doublestar.FilepathGlob(pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	out := matches[:0]
	for _, m := range matches {
		if Supported(m) {
			out = append(out, m)
		}
	}
	return out, nil
}

// Supported reports whether FromFile handles path's extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

func parseHTML(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return md.NewConverter("", true, nil).ConvertString(string(b))
}

// cleanText normalizes line endings and strips artifacts common in PDF
// extraction.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\x00", "")
	return strings.TrimSpace(text)
}
