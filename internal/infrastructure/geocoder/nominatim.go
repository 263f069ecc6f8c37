package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Nominatim resolves coordinates through an OpenStreetMap Nominatim server.
type Nominatim struct {
	baseURL   string
	userAgent string
	language  string
	client    *http.Client
}

func NewNominatim(cfg Config) *Nominatim {
	return &Nominatim{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		language:  cfg.Language,
		client:    &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Millisecond},
	}
}

type reverseResponse struct {
	Error   string  `json:"error"`
	Name    string  `json:"name"`
	Address Address `json:"address"`
}

type Address struct {
	Road          string `json:"road"`
	Neighbourhood string `json:"neighbourhood"`
	City          string `json:"city"`
	Town          string `json:"town"`
	Village       string `json:"village"`
	State         string `json:"state"`
	Country       string `json:"country"`
}

func (a Address) locality() string {
	for _, v := range []string{a.City, a.Town, a.Village} {
		if v != "" {
			return v
		}
	}

	return ""
}

func (n *Nominatim) Reverse(ctx context.Context, latitude, longitude float64) (string, error) {
	q := url.Values{}
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(longitude, 'f', -1, 64))
	q.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/reverse?"+q.Encode(), http.NoBody)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", n.userAgent)
	if n.language != "" {
		req.Header.Set("Accept-Language", n.language)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocoding failed with status %d", resp.StatusCode)
	}

	var body reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}

	if body.Error != "" {
		return "", nil
	}

	return Label(body.Name, body.Address), nil
}

// Label picks the most specific readable name: a place name that is not just
// the street, then "road, city", then the first non-empty of city, state and country.
func Label(name string, a Address) string {
	locality := a.locality()

	switch {
	case name != "" && name != a.Road:
		return name
	case a.Road != "" && locality != "":
		return a.Road + ", " + locality
	case locality != "":
		return locality
	case a.State != "":
		return a.State
	case a.Country != "":
		return a.Country
	default:
		return ""
	}
}
