package bgg

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchXML = `<?xml version="1.0" encoding="utf-8"?>
<items total="2">
  <item type="boardgame" id="13">
    <name type="primary" value="Catan"/>
    <yearpublished value="1995"/>
  </item>
  <item type="boardgame" id="278295">
    <name value="Catan: Starfarers"/>
    <yearpublished value="2019"/>
  </item>
</items>`

const thingXML = `<?xml version="1.0" encoding="utf-8"?>
<items>
  <item type="boardgame" id="13">
    <thumbnail>https://cf.geekdo-images.com/thumb/13.jpg</thumbnail>
    <image>https://cf.geekdo-images.com/original/13.jpg</image>
    <name type="alternate" value="Die Siedler von Catan"/>
    <name type="primary" value="Catan"/>
    <yearpublished value="1995"/>
    <minplayers value="3"/>
    <maxplayers value="4"/>
  </item>
</items>`

const emptyXML = `<?xml version="1.0" encoding="utf-8"?><items total="0"></items>`

func newTestServer(t *testing.T) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/search":
			assert.Equal(t, "boardgame", r.URL.Query().Get("type"))
			_, _ = w.Write([]byte(searchXML))
		case "/thing":
			if r.URL.Query().Get("id") == "13" {
				_, _ = w.Write([]byte(thingXML))
			} else {
				_, _ = w.Write([]byte(emptyXML))
			}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL)
}

func TestSearch(t *testing.T) {
	_, c := newTestServer(t)

	results, err := c.Search(context.Background(), "catan")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, SearchResult{ID: 13, Name: "Catan", YearPublished: 1995}, results[0])
	assert.Equal(t, SearchResult{ID: 278295, Name: "Catan: Starfarers", YearPublished: 2019}, results[1])
}

func TestThing(t *testing.T) {
	_, c := newTestServer(t)

	thing, err := c.Thing(context.Background(), 13)
	require.NoError(t, err)
	require.NotNil(t, thing)
	assert.Equal(t, uint64(13), thing.ID)
	assert.Equal(t, "Catan", thing.Name, "primary name wins over alternates")
	assert.Equal(t, 1995, thing.YearPublished)
	assert.Equal(t, 3, thing.MinPlayers)
	assert.Equal(t, 4, thing.MaxPlayers)
	assert.Equal(t, "https://cf.geekdo-images.com/thumb/13.jpg", thing.Thumbnail)
}

func TestThingUnknownIDReturnsNil(t *testing.T) {
	_, c := newTestServer(t)

	thing, err := c.Thing(context.Background(), 999999)
	require.NoError(t, err)
	assert.Nil(t, thing)
}

func TestClientPropagatesHTTPErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	_, err := c.Search(context.Background(), "catan")
	assert.Error(t, err)
}
