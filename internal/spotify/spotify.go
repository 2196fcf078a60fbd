// Spotify Web API client for artist catalog retrieval.
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"rightscan/internal/shared"
)

const defaultBaseURL = "https://api.spotify.com/v1"

// PageLimit is the maximum page size accepted by the paginated endpoints.
const PageLimit = 50

// MaxBatchSize is the maximum number of ids accepted by the several-tracks endpoint.
const MaxBatchSize = 50

// DefaultRequestInterval is the mandatory minimum delay between remote calls.
// Dropping it risks server-side throttling.
const DefaultRequestInterval = 100 * time.Millisecond

type followers struct {
	Total int `json:"total"`
}

// Artist represents a Spotify artist with the fields the analysis consumes.
type Artist struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Followers  followers `json:"followers"`
	Genres     []string  `json:"genres"`
	Popularity int       `json:"popularity"`
}

// Album represents a simplified album object from the artist-albums listing.
type Album struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	AlbumType   string `json:"album_type"`
	ReleaseDate string `json:"release_date"`
	TotalTracks int    `json:"total_tracks"`
}

// AlbumTrack represents a simplified track object from the album-tracks listing.
type AlbumTrack struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	TrackNumber int    `json:"track_number"`
	DurationMS  int    `json:"duration_ms"`
}

type externalIDs struct {
	ISRC string `json:"isrc"`
}

// TrackDetail represents a full track object from the several-tracks endpoint.
type TrackDetail struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Explicit    bool        `json:"explicit"`
	Popularity  int         `json:"popularity"`
	ExternalIDs externalIDs `json:"external_ids"`
}

// ISRC returns the track's ISRC, or the empty string when Spotify carries none.
func (d *TrackDetail) ISRC() string {
	return d.ExternalIDs.ISRC
}

type albumPage struct {
	Items []Album `json:"items"`
	Next  *string `json:"next"`
}

type trackPage struct {
	Items []AlbumTrack `json:"items"`
	Next  *string      `json:"next"`
}

type searchResponse struct {
	Artists struct {
		Items []Artist `json:"items"`
	} `json:"artists"`
}

type severalTracksResponse struct {
	Tracks []*TrackDetail `json:"tracks"`
}

// Client performs authenticated requests against the Spotify Web API.
//
// Every remote call waits on a shared [rate.Limiter] before it is issued.
type Client struct {
	baseURL    string
	tokens     *TokenProvider
	httpClient *http.Client
	limiter    *rate.Limiter
	market     string
	logger     *log.Logger
}

// ClientOpts contains optional configuration for creating a Client.
type ClientOpts struct {
	BaseURL         string        // API base URL (default: the public endpoint)
	HTTPClient      *http.Client  // HTTP transport (default: http.DefaultClient)
	Market          string        // Market code for all requests (default: US)
	RequestInterval time.Duration // Minimum average delay between calls (default: 100ms)
	Burst           int           // Limiter burst, raised for concurrent fetches (default: 1)
	Logger          *log.Logger   // Logger (default: shared.NewLogger)
}

// NewClient creates a Client backed by the given TokenProvider.
func NewClient(tokens *TokenProvider, opts ClientOpts) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}
	if opts.Market == "" {
		opts.Market = "US"
	}
	if opts.RequestInterval <= 0 {
		opts.RequestInterval = DefaultRequestInterval
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Client{
		baseURL:    opts.BaseURL,
		tokens:     tokens,
		httpClient: opts.HTTPClient,
		limiter:    rate.NewLimiter(rate.Every(opts.RequestInterval), opts.Burst),
		market:     opts.Market,
		logger:     opts.Logger,
	}
}

// get performs an authenticated GET against an absolute URL and decodes the JSON response.
func (c *Client) get(ctx context.Context, fullURL string, result any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRemoteRequest, err)
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrRemoteRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d for %s", shared.ErrRemoteRequest, resp.StatusCode, req.URL.Path)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// endpoint builds an absolute URL for the given path and query parameters.
func (c *Client) endpoint(path string, params url.Values) string {
	if len(params) == 0 {
		return c.baseURL + path
	}
	return c.baseURL + path + "?" + params.Encode()
}

// SearchArtist resolves an artist by name using a single-result search.
//
// A search with zero hits returns (nil, nil): not found is a normal outcome,
// not an error.
func (c *Client) SearchArtist(ctx context.Context, name string) (*Artist, error) {
	params := url.Values{
		"q":     {name},
		"type":  {"artist"},
		"limit": {"1"},
	}

	var response searchResponse
	if err := c.get(ctx, c.endpoint("/search", params), &response); err != nil {
		return nil, err
	}

	if len(response.Artists.Items) == 0 {
		return nil, nil
	}

	artist := response.Artists.Items[0]
	return &artist, nil
}

// AlbumPager lazily walks the paginated album listing for an artist.
//
// Pages are fetched on demand; the pager is exhausted when the server stops
// providing a next link.
type AlbumPager struct {
	client *Client
	next   *string
}

// Albums returns a pager over the artist's albums, singles, and compilations.
func (c *Client) Albums(artistID string) *AlbumPager {
	params := url.Values{
		"include_groups": {"album,single,compilation"},
		"limit":          {fmt.Sprint(PageLimit)},
		"market":         {c.market},
	}
	first := c.endpoint("/artists/"+artistID+"/albums", params)
	return &AlbumPager{client: c, next: &first}
}

// Next fetches the next page of albums. ok is false once the listing is exhausted.
func (p *AlbumPager) Next(ctx context.Context) (items []Album, ok bool, err error) {
	if p.next == nil {
		return nil, false, nil
	}

	var page albumPage
	if err := p.client.get(ctx, *p.next, &page); err != nil {
		return nil, false, err
	}

	p.next = page.Next
	return page.Items, true, nil
}

// AllAlbums folds the album pager into a single slice.
func (c *Client) AllAlbums(ctx context.Context, artistID string) ([]Album, error) {
	var albums []Album
	pager := c.Albums(artistID)
	for {
		items, ok, err := pager.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return albums, nil
		}
		albums = append(albums, items...)
	}
}

// TrackPager lazily walks the paginated track listing for an album.
type TrackPager struct {
	client *Client
	next   *string
}

// Tracks returns a pager over an album's tracks.
func (c *Client) Tracks(albumID string) *TrackPager {
	params := url.Values{
		"limit":  {fmt.Sprint(PageLimit)},
		"market": {c.market},
	}
	first := c.endpoint("/albums/"+albumID+"/tracks", params)
	return &TrackPager{client: c, next: &first}
}

// Next fetches the next page of tracks. ok is false once the listing is exhausted.
func (p *TrackPager) Next(ctx context.Context) (items []AlbumTrack, ok bool, err error) {
	if p.next == nil {
		return nil, false, nil
	}

	var page trackPage
	if err := p.client.get(ctx, *p.next, &page); err != nil {
		return nil, false, err
	}

	p.next = page.Next
	return page.Items, true, nil
}

// AllTracks folds the track pager into a single slice.
func (c *Client) AllTracks(ctx context.Context, albumID string) ([]AlbumTrack, error) {
	var tracks []AlbumTrack
	pager := c.Tracks(albumID)
	for {
		items, ok, err := pager.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return tracks, nil
		}
		tracks = append(tracks, items...)
	}
}

// TrackDetails fetches full track objects for up to [MaxBatchSize] ids.
//
// The returned slice has the same ordinality as the request: entry i is the
// detail for ids[i], or nil when the server could not resolve that id. A
// response whose length differs from the request is rejected with
// [shared.ErrAlignment], since silent misalignment would corrupt downstream
// matching.
func (c *Client) TrackDetails(ctx context.Context, ids []string) ([]*TrackDetail, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no track ids provided", shared.ErrInvalidInput)
	}
	if len(ids) > MaxBatchSize {
		return nil, fmt.Errorf("%w: at most %d track ids per batch", shared.ErrInvalidInput, MaxBatchSize)
	}

	params := url.Values{
		"ids":    {strings.Join(ids, ",")},
		"market": {c.market},
	}

	var response severalTracksResponse
	if err := c.get(ctx, c.endpoint("/tracks", params), &response); err != nil {
		return nil, err
	}

	if len(response.Tracks) != len(ids) {
		return nil, fmt.Errorf("%w: requested %d ids, got %d entries", shared.ErrAlignment, len(ids), len(response.Tracks))
	}

	return response.Tracks, nil
}
