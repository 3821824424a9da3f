package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	types "github.com/yungbote/wandergraph-backend/internal/domain"
	"github.com/yungbote/wandergraph-backend/internal/platform/logger"
)

// Providers share one lookup contract: Search resolves a place name to a
// provider-local id ("" means no match, which is a normal outcome and not an
// error), Details fetches the record for an id (nil means gone).

type PlacesProvider interface {
	Search(ctx context.Context, name string, lat, lon float64) (string, error)
	Details(ctx context.Context, id string) (*types.PlaceDetails, error)
}

type EncyclopediaProvider interface {
	Search(ctx context.Context, name string, lat, lon float64) (string, error)
	Details(ctx context.Context, id string) (*types.ArticleDetails, error)
}

type GeodataProvider interface {
	Search(ctx context.Context, name string, lat, lon float64) (string, error)
	Details(ctx context.Context, id string) (*types.GeoDetails, error)
}

type providerHTTPError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *providerHTTPError) Error() string {
	return fmt.Sprintf("%s http %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *providerHTTPError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

// -------------------- Places API --------------------

type placesClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewPlacesProvider(log *logger.Logger) (PlacesProvider, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	apiKey := strings.TrimSpace(os.Getenv("PLACES_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing PLACES_API_KEY")
	}
	baseURL := strings.TrimSpace(os.Getenv("PLACES_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com/maps/api/place"
	}
	return &placesClient{
		log:        log.With("provider", SourcePlaces),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (p *placesClient) Search(ctx context.Context, name string, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("input", name)
	q.Set("inputtype", "textquery")
	q.Set("fields", "place_id")
	q.Set("key", p.apiKey)
	if lat != 0 || lon != 0 {
		q.Set("locationbias", fmt.Sprintf("point:%f,%f", lat, lon))
	}

	var resp struct {
		Candidates []struct {
			PlaceID string `json:"place_id"`
		} `json:"candidates"`
		Status string `json:"status"`
	}
	if err := getJSON(ctx, p.httpClient, SourcePlaces, p.baseURL+"/findplacefromtext/json?"+q.Encode(), &resp); err != nil {
		return "", err
	}
	if resp.Status == "ZERO_RESULTS" || len(resp.Candidates) == 0 {
		return "", nil
	}
	return resp.Candidates[0].PlaceID, nil
}

func (p *placesClient) Details(ctx context.Context, id string) (*types.PlaceDetails, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	q := url.Values{}
	q.Set("place_id", id)
	q.Set("fields", "name,editorial_summary,rating,user_ratings_total,price_level,website,formatted_phone_number,opening_hours,photos,reviews,types")
	q.Set("key", p.apiKey)

	var resp struct {
		Result *struct {
			Name             string `json:"name"`
			EditorialSummary struct {
				Overview string `json:"overview"`
			} `json:"editorial_summary"`
			Rating           *float64 `json:"rating"`
			UserRatingsTotal *int     `json:"user_ratings_total"`
			PriceLevel       *int     `json:"price_level"`
			Website          string   `json:"website"`
			Phone            string   `json:"formatted_phone_number"`
			OpeningHours     struct {
				WeekdayText []string `json:"weekday_text"`
			} `json:"opening_hours"`
			Photos []struct {
				PhotoReference string `json:"photo_reference"`
			} `json:"photos"`
			Reviews []struct {
				Text string `json:"text"`
			} `json:"reviews"`
			Types []string `json:"types"`
		} `json:"result"`
		Status string `json:"status"`
	}
	if err := getJSON(ctx, p.httpClient, SourcePlaces, p.baseURL+"/details/json?"+q.Encode(), &resp); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, nil
	}

	r := resp.Result
	out := &types.PlaceDetails{
		Name:             r.Name,
		Summary:          r.EditorialSummary.Overview,
		Rating:           r.Rating,
		UserRatingsTotal: r.UserRatingsTotal,
		PriceLevel:       r.PriceLevel,
		Website:          r.Website,
		Phone:            r.Phone,
		OpeningHours:     r.OpeningHours.WeekdayText,
		Types:            r.Types,
	}
	for _, ph := range r.Photos {
		if ph.PhotoReference != "" {
			out.Photos = append(out.Photos, ph.PhotoReference)
		}
	}
	for _, rv := range r.Reviews {
		if strings.TrimSpace(rv.Text) != "" {
			out.Reviews = append(out.Reviews, rv.Text)
		}
	}
	return out, nil
}

// -------------------- Encyclopedia API --------------------

type encyclopediaClient struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
}

func NewEncyclopediaProvider(log *logger.Logger) (EncyclopediaProvider, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	baseURL := strings.TrimSpace(os.Getenv("ENCYCLOPEDIA_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://en.wikipedia.org/api/rest_v1"
	}
	return &encyclopediaClient{
		log:        log.With("provider", SourceEncyclopedia),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

// Search resolves a name to an article title; the title doubles as the id.
func (e *encyclopediaClient) Search(ctx context.Context, name string, lat, lon float64) (string, error) {
	endpoint := e.baseURL + "/page/summary/" + url.PathEscape(strings.ReplaceAll(name, " ", "_"))
	var resp struct {
		Title string `json:"title"`
		Type  string `json:"type"`
	}
	err := getJSON(ctx, e.httpClient, SourceEncyclopedia, endpoint, &resp)
	if err != nil {
		var httpErr *providerHTTPError
		if isNotFound(err, &httpErr) {
			return "", nil
		}
		return "", err
	}
	if resp.Type == "disambiguation" || strings.TrimSpace(resp.Title) == "" {
		return "", nil
	}
	return resp.Title, nil
}

func (e *encyclopediaClient) Details(ctx context.Context, id string) (*types.ArticleDetails, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	endpoint := e.baseURL + "/page/summary/" + url.PathEscape(strings.ReplaceAll(id, " ", "_"))
	var resp struct {
		Title   string `json:"title"`
		Extract string `json:"extract"`
		Content struct {
			Desktop struct {
				Page string `json:"page"`
			} `json:"desktop"`
		} `json:"content_urls"`
		Thumbnail struct {
			Source string `json:"source"`
		} `json:"thumbnail"`
	}
	err := getJSON(ctx, e.httpClient, SourceEncyclopedia, endpoint, &resp)
	if err != nil {
		var httpErr *providerHTTPError
		if isNotFound(err, &httpErr) {
			return nil, nil
		}
		return nil, err
	}

	out := &types.ArticleDetails{
		Title:   resp.Title,
		Extract: resp.Extract,
		URL:     resp.Content.Desktop.Page,
	}
	if resp.Thumbnail.Source != "" {
		out.Images = append(out.Images, resp.Thumbnail.Source)
	}
	return out, nil
}

// -------------------- Geodata API --------------------

type geodataClient struct {
	log        *logger.Logger
	baseURL    string
	httpClient *http.Client
}

func NewGeodataProvider(log *logger.Logger) (GeodataProvider, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	baseURL := strings.TrimSpace(os.Getenv("GEODATA_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://nominatim.openstreetmap.org"
	}
	return &geodataClient{
		log:        log.With("provider", SourceGeodata),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

func (g *geodataClient) Search(ctx context.Context, name string, lat, lon float64) (string, error) {
	q := url.Values{}
	q.Set("q", name)
	q.Set("format", "jsonv2")
	q.Set("limit", "1")

	var resp []struct {
		OsmType string `json:"osm_type"`
		OsmID   int64  `json:"osm_id"`
	}
	if err := getJSON(ctx, g.httpClient, SourceGeodata, g.baseURL+"/search?"+q.Encode(), &resp); err != nil {
		return "", err
	}
	if len(resp) == 0 {
		return "", nil
	}
	return fmt.Sprintf("%s/%d", resp[0].OsmType, resp[0].OsmID), nil
}

func (g *geodataClient) Details(ctx context.Context, id string) (*types.GeoDetails, error) {
	parts := strings.SplitN(strings.TrimSpace(id), "/", 2)
	if len(parts) != 2 {
		return nil, nil
	}

	q := url.Values{}
	q.Set("osmtype", osmTypeLetter(parts[0]))
	q.Set("osmid", parts[1])
	q.Set("format", "json")

	var resp struct {
		Extratags map[string]string `json:"extratags"`
	}
	err := getJSON(ctx, g.httpClient, SourceGeodata, g.baseURL+"/details?"+q.Encode(), &resp)
	if err != nil {
		var httpErr *providerHTTPError
		if isNotFound(err, &httpErr) {
			return nil, nil
		}
		return nil, err
	}
	if len(resp.Extratags) == 0 {
		return nil, nil
	}

	tags := resp.Extratags
	out := &types.GeoDetails{
		Website:        firstTag(tags, "website", "contact:website"),
		Phone:          firstTag(tags, "phone", "contact:phone"),
		Cuisine:        splitTag(tags["cuisine"]),
		Amenities:      splitTag(tags["amenity"]),
		DietOptions:    prefixedTags(tags, "diet:"),
		PaymentMethods: prefixedTags(tags, "payment:"),
	}
	if v := strings.TrimSpace(tags["opening_hours"]); v != "" {
		out.OpeningHours = []string{v}
	}
	if v, ok := tags["outdoor_seating"]; ok {
		b := tagYes(v)
		out.OutdoorSeating = &b
	}
	if v, ok := tags["wheelchair"]; ok {
		b := tagYes(v)
		out.Wheelchair = &b
	}
	if v := strings.TrimSpace(tags["capacity"]); v != "" {
		var capVal int
		if _, err := fmt.Sscanf(v, "%d", &capVal); err == nil && capVal > 0 {
			out.Capacity = &capVal
		}
	}
	return out, nil
}

func osmTypeLetter(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case "node":
		return "N"
	case "way":
		return "W"
	case "relation":
		return "R"
	default:
		return strings.ToUpper(t)
	}
}

func firstTag(tags map[string]string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(tags[k]); v != "" {
			return v
		}
	}
	return ""
}

func splitTag(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func prefixedTags(tags map[string]string, prefix string) []string {
	var out []string
	for k, v := range tags {
		if strings.HasPrefix(k, prefix) && tagYes(v) {
			out = append(out, strings.TrimPrefix(k, prefix))
		}
	}
	sort.Strings(out)
	return dedupe(out)
}

func tagYes(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "1", "only", "limited":
		return true
	default:
		return false
	}
}

// -------------------- shared HTTP plumbing --------------------

func getJSON(ctx context.Context, client *http.Client, provider, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &providerHTTPError{Provider: provider, StatusCode: resp.StatusCode, Body: truncateBody(raw)}
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func truncateBody(raw []byte) string {
	s := string(raw)
	if len(s) > 300 {
		return s[:300]
	}
	return s
}

func isNotFound(err error, target **providerHTTPError) bool {
	if err == nil {
		return false
	}
	if he, ok := err.(*providerHTTPError); ok {
		*target = he
		return he.StatusCode == http.StatusNotFound
	}
	return false
}
