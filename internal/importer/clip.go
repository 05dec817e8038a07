package importer

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/go-shiori/go-readability"
)

const userAgent = "Mozilla/5.0 (compatible; zenmap/1.0)"

// Clipper fetches web pages and keeps only their main article.
type Clipper struct {
	Client  *http.Client
	Timeout time.Duration
}

func NewClipper() *Clipper {
	return &Clipper{Client: http.DefaultClient, Timeout: 30 * time.Second}
}

// Clip downloads rawURL, extracts the article with readability and
// converts it to Markdown. The draft is tagged "web" plus the host name.
func (c *Clipper) Clip(ctx context.Context, rawURL string) (Draft, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return Draft{}, fmt.Errorf("invalid url %q", rawURL)
	}
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Draft{}, err
	}
	req.Header.Set("User-Agent", userAgent)

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return Draft{}, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Draft{}, fmt.Errorf("fetch page: HTTP %d", resp.StatusCode)
	}

	article, err := readability.FromReader(resp.Body, u)
	if err != nil {
		return Draft{}, fmt.Errorf("extract article: %w", err)
	}

	body, err := md.NewConverter(u.Host, true, nil).ConvertString(article.Content)
	if err != nil {
		body = article.TextContent
	}
	body = cleanText(body)
	if body == "" {
		return Draft{}, fmt.Errorf("%s: %w", rawURL, ErrNoContent)
	}

	var sb strings.Builder
	if article.Title != "" {
		fmt.Fprintf(&sb, "# %s\n\n", article.Title)
	}
	fmt.Fprintf(&sb, "Source: %s\n", rawURL)
	if article.Byline != "" {
		fmt.Fprintf(&sb, "Author: %s\n", article.Byline)
	}
	sb.WriteString("\n" + body)

	return Draft{
		Title:   article.Title,
		Content: sb.String(),
		Tags:    []string{"web", u.Hostname()},
		Source:  rawURL,
	}, nil
}
