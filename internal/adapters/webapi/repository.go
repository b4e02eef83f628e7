package webapi

import (
	"context"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/crossword/internal/domain"
	"github.com/pkg/errors"
)

const (
	clientTimeout       = 5 * time.Second
	healthCheckEndpoint = "/health"
	matchesEndpoint     = "/matches"
)

// repository reads the JSON status endpoints of a running server.
type repository struct {
	cli  *http.Client
	addr string
}

func New(addr string) repository {
	return repository{
		cli:  &http.Client{Timeout: clientTimeout},
		addr: addr,
	}
}

func (r repository) HealthCheck(ctx context.Context) (*domain.HealthCheckResponse, error) {
	result := new(domain.HealthCheckResponse)
	if err := r.get(ctx, healthCheckEndpoint, result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r repository) AvailableMatches(ctx context.Context) ([]domain.MatchInfo, error) {
	var result []domain.MatchInfo
	if err := r.get(ctx, matchesEndpoint, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (r repository) get(ctx context.Context, endpoint string, v any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, r.addr+endpoint, nil)
	if err != nil {
		return errors.WithMessage(err, "new get request")
	}
	resp, err := r.cli.Do(request)
	if err != nil {
		return errors.WithMessagef(err, "call http endpoint '%s'", endpoint)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("unexpected response status '%s'", resp.Status)
	}
	if err := jsoniter.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.WithMessage(err, "decode json response body")
	}
	return nil
}
