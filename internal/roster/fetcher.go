package roster

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Entry is one member row as published by the external roster page.
// LastSeen is a hint only: the stored value is locally authoritative and a
// fresh hint seeds newly observed members at most.
type Entry struct {
	Nickname string
	Level    int
	LastSeen time.Time
}

// Page is the parsed external roster.
type Page struct {
	GuildName string
	Entries   []Entry
}

// Fetcher retrieves and parses the external roster page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// HTTPFetcher fetches the roster over HTTP and parses the member table.
type HTTPFetcher struct {
	client *http.Client
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{client: &http.Client{Timeout: timeout}}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("build roster request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("roster fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("roster fetch returned status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("roster parse failed: %w", err)
	}

	page := &Page{
		GuildName: strings.TrimSpace(doc.Find(".guild-name, h1").First().Text()),
	}

	doc.Find("table.members tr, table tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 2 {
			return true // header or filler row
		}
		nick := strings.TrimSpace(cells.Eq(0).Text())
		if nick == "" {
			return true
		}
		level, err := strconv.Atoi(strings.TrimSpace(cells.Eq(1).Text()))
		if err != nil || level < 0 {
			return true
		}
		entry := Entry{Nickname: nick, Level: level}
		if cells.Length() >= 3 {
			entry.LastSeen = parseLastSeen(strings.TrimSpace(cells.Eq(2).Text()))
		}
		page.Entries = append(page.Entries, entry)
		return true
	})

	return page, nil
}

// parseLastSeen handles the formats the page has been observed to use.
// Unparseable hints come back as the zero time and are ignored upstream.
func parseLastSeen(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02", "02.01.2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	lower := strings.ToLower(s)
	if strings.Contains(lower, "online") || strings.Contains(lower, "now") {
		return time.Now()
	}
	if n, ok := leadingInt(lower); ok {
		switch {
		case strings.Contains(lower, "min"):
			return time.Now().Add(-time.Duration(n) * time.Minute)
		case strings.Contains(lower, "hour"):
			return time.Now().Add(-time.Duration(n) * time.Hour)
		case strings.Contains(lower, "day"):
			return time.Now().AddDate(0, 0, -n)
		}
	}
	return time.Time{}
}

func leadingInt(s string) (int, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, false
	}
	return n, true
}
