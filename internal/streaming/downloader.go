package streaming

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/pezzottify/catalog-server/internal/logging"
	"github.com/pezzottify/catalog-server/internal/metrics"
)

// FetchRequest asks the external downloader service to fetch one track's
// audio. The downloader's own acquisition logic is outside this server's
// scope; only its HTTP contract and failure behavior are modeled here.
type FetchRequest struct {
	TrackID string `json:"track_id"`
}

// FetchResult is the downloader's acknowledgement.
type FetchResult struct {
	State string `json:"state"` // "queued", "fetching", "already_available"
}

// DownloaderClient triggers on-demand audio fetches through a circuit
// breaker, so a slow or down downloader fails fast instead of piling up
// goroutines against it. It uses gobreaker's generic form, typed to the
// one result this client returns.
type DownloaderClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker[*FetchResult]
	name       string
}

func NewDownloaderClient(baseURL string, timeout time.Duration) *DownloaderClient {
	const name = "downloader-fetch"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[*FetchResult](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("downloader circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &DownloaderClient{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		cb:         cb,
		name:       name,
	}
}

// TriggerFetch asks the downloader to fetch trackID's audio.
func (d *DownloaderClient) TriggerFetch(ctx context.Context, trackID string) (*FetchResult, error) {
	result, err := d.cb.Execute(func() (*FetchResult, error) {
		return d.doFetch(ctx, trackID)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			metrics.CircuitBreakerRequests.WithLabelValues(d.name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(d.name, "failure").Inc()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(d.name).Set(float64(d.cb.Counts().ConsecutiveFailures))
		}
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(d.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(d.name).Set(0)
	return result, nil
}

func (d *DownloaderClient) doFetch(ctx context.Context, trackID string) (*FetchResult, error) {
	body, err := json.Marshal(FetchRequest{TrackID: trackID})
	if err != nil {
		return nil, fmt.Errorf("marshal fetch request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/fetch", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloader request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("downloader returned status %d", resp.StatusCode)
	}

	var result FetchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode downloader response: %w", err)
	}
	return &result, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
