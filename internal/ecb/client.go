// Package ecb fetches daily EUR reference exchange rates from the ECB data
// portal and keeps the catalog's rate table current.
package ecb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/qhuube/vatreport/internal/core"
)

const defaultBaseURL = "https://data-api.ecb.europa.eu/service/data/EXR"

// Client reads the ECB SDMX data API. Rates are quoted as foreign currency
// units per EUR, the same orientation the rate table stores.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client. An empty baseURL selects the public ECB
// endpoint.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// sdmxResponse is the subset of the SDMX JSON layout the client reads: one
// series of observations indexed by position into the time-period dimension.
type sdmxResponse struct {
	DataSets []struct {
		Series map[string]struct {
			Observations map[string][]*float64 `json:"observations"`
		} `json:"series"`
	} `json:"dataSets"`
	Structure struct {
		Dimensions struct {
			Observation []struct {
				ID     string `json:"id"`
				Values []struct {
					ID string `json:"id"`
				} `json:"values"`
			} `json:"observation"`
		} `json:"dimensions"`
	} `json:"structure"`
}

// FetchRates returns the daily observations for one currency over the given
// inclusive date window, sorted by date. Days the ECB did not publish (TARGET
// holidays, weekends) are simply absent.
func (c *Client) FetchRates(ctx context.Context, currency string, start, end time.Time) ([]core.RateObservation, error) {
	url := fmt.Sprintf("%s/D.%s.EUR.SP00.A?startPeriod=%s&endPeriod=%s&format=jsondata",
		c.baseURL, currency, start.Format("2006-01-02"), end.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build rate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates for %s: %w", currency, err)
	}
	defer func() { _ = resp.Body.Close() }()

	// No data in the window comes back as 404 from the SDMX API.
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("rate API returned status %d for %s: %s", resp.StatusCode, currency, body)
	}

	var parsed sdmxResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode rate response for %s: %w", currency, err)
	}
	return observationsFromSDMX(&parsed, currency)
}

func observationsFromSDMX(parsed *sdmxResponse, currency string) ([]core.RateObservation, error) {
	var dates []string
	for _, dim := range parsed.Structure.Dimensions.Observation {
		if dim.ID != "TIME_PERIOD" {
			continue
		}
		for _, v := range dim.Values {
			dates = append(dates, v.ID)
		}
	}
	if len(dates) == 0 || len(parsed.DataSets) == 0 {
		return nil, nil
	}

	observations := make([]core.RateObservation, 0, len(dates))
	for _, series := range parsed.DataSets[0].Series {
		for key, values := range series.Observations {
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(dates) {
				return nil, fmt.Errorf("rate response for %s has observation key %q outside the time dimension", currency, key)
			}
			if len(values) == 0 || values[0] == nil {
				continue
			}
			observations = append(observations, core.RateObservation{
				Date:     dates[idx],
				Currency: currency,
				Rate:     *values[0],
			})
		}
	}

	sort.Slice(observations, func(i, j int) bool { return observations[i].Date < observations[j].Date })
	return observations, nil
}
