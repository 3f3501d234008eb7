package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"eagler-tiers/internal/config"
	"eagler-tiers/internal/constants"
	"eagler-tiers/internal/domain"

	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

// TiersClient talks to the registry HTTP API.
type TiersClient struct {
	baseURL string
	client  *fasthttp.Client
	limiter *rate.Limiter
}

// APIError carries the registry's error message verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fasthttp.StatusMessage(e.StatusCode)
}

type successResponse struct {
	Success bool `json:"success"`
}

type removeResponse struct {
	Success bool `json:"success"`
	Removed int  `json:"removed"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewTiersClient(cfg *config.Config) *TiersClient {
	return &TiersClient{
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     16,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.APIRateLimit), constants.ClientBurst),
	}
}

func (c *TiersClient) GetTiers(ctx context.Context) (domain.Tiers, error) {
	tiers, err := doRequest[domain.Tiers](ctx, c, fasthttp.MethodGet, "/tiers", nil)
	if err != nil {
		return nil, err
	}
	return *tiers, nil
}

func (c *TiersClient) SetTier(ctx context.Context, req domain.SetTierRequest) error {
	resp, err := doRequest[successResponse](ctx, c, fasthttp.MethodPost, "/setTier", req)
	if err != nil {
		return err
	}
	if !resp.Success {
		return fmt.Errorf("setTier was not acknowledged")
	}
	return nil
}

func (c *TiersClient) RemoveTier(ctx context.Context, req domain.RemoveTierRequest) (domain.RemoveResult, error) {
	resp, err := doRequest[removeResponse](ctx, c, fasthttp.MethodPost, "/removeTier", req)
	if err != nil {
		return domain.RemoveResult{}, err
	}
	if !resp.Success {
		return domain.RemoveResult{}, fmt.Errorf("removeTier was not acknowledged")
	}
	return domain.RemoveResult{Removed: resp.Removed}, nil
}

func doRequest[T any](ctx context.Context, client *TiersClient, method, path string, body any) (*T, error) {
	if err := client.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(client.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		req.Header.SetContentType("application/json")
		req.SetBody(payload)
	}

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.DoTimeout(req, resp, constants.ExternalAPITimeout); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		var apiErr errorResponse
		_ = json.Unmarshal(resp.Body(), &apiErr)
		return nil, &APIError{StatusCode: resp.StatusCode(), Message: apiErr.Error}
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}
