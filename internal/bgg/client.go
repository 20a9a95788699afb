// Package bgg talks to the BoardGameGeek XML API2 and caches game
// thumbnails on local disk.
package bgg

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the public XML API2 endpoint.
const DefaultBaseURL = "https://boardgamegeek.com/xmlapi2"

// SearchResult is one hit of a catalog search.
type SearchResult struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	YearPublished int    `json:"year_published,omitempty"`
}

// Thing is the subset of a BGG thing record the app cares about.
type Thing struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	YearPublished int    `json:"year_published,omitempty"`
	MinPlayers    int    `json:"min_players,omitempty"`
	MaxPlayers    int    `json:"max_players,omitempty"`
	Thumbnail     string `json:"thumbnail,omitempty"`
	Image         string `json:"image,omitempty"`
}

// Client is a thin HTTP client for the XML API2.  Timeouts are left
// to the injected http.Client; the app imposes no extra layer.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{BaseURL: baseURL, HTTP: &http.Client{Timeout: 15 * time.Second}}
}

// xmlItems mirrors the API2 response envelope for /search and /thing.
type xmlItems struct {
	Items []xmlItem `xml:"item"`
}

type xmlItem struct {
	ID        uint64     `xml:"id,attr"`
	Names     []xmlValue `xml:"name"`
	Year      xmlValue   `xml:"yearpublished"`
	MinPl     xmlValue   `xml:"minplayers"`
	MaxPl     xmlValue   `xml:"maxplayers"`
	Thumbnail string     `xml:"thumbnail"`
	Image     string     `xml:"image"`
}

type xmlValue struct {
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
}

// Search queries the catalog for board games matching query.
func (c *Client) Search(ctx context.Context, query string) ([]SearchResult, error) {
	u := fmt.Sprintf("%s/search?type=boardgame&query=%s", c.BaseURL, url.QueryEscape(query))
	var items xmlItems
	if err := c.getXML(ctx, u, &items); err != nil {
		return nil, err
	}
	out := make([]SearchResult, 0, len(items.Items))
	for _, it := range items.Items {
		out = append(out, SearchResult{
			ID:            it.ID,
			Name:          primaryName(it.Names),
			YearPublished: atoi(it.Year.Value),
		})
	}
	return out, nil
}

// Thing fetches one catalog record by numeric id.  Returns nil when
// the id does not exist upstream.
func (c *Client) Thing(ctx context.Context, id uint64) (*Thing, error) {
	u := fmt.Sprintf("%s/thing?id=%d", c.BaseURL, id)
	var items xmlItems
	if err := c.getXML(ctx, u, &items); err != nil {
		return nil, err
	}
	if len(items.Items) == 0 {
		return nil, nil
	}
	it := items.Items[0]
	return &Thing{
		ID:            it.ID,
		Name:          primaryName(it.Names),
		YearPublished: atoi(it.Year.Value),
		MinPlayers:    atoi(it.MinPl.Value),
		MaxPlayers:    atoi(it.MaxPl.Value),
		Thumbnail:     it.Thumbnail,
		Image:         it.Image,
	}, nil
}

func (c *Client) getXML(ctx context.Context, u string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bgg: unexpected status %d for %s", resp.StatusCode, u)
	}
	return xml.NewDecoder(resp.Body).Decode(dst)
}

// primaryName prefers the name tagged "primary"; search results carry
// untyped names, so fall back to the first one.
func primaryName(names []xmlValue) string {
	for _, n := range names {
		if n.Type == "primary" {
			return n.Value
		}
	}
	if len(names) > 0 {
		return names[0].Value
	}
	return ""
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
