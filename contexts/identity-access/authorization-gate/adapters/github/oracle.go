package githubadapter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainerrors "gatekeeper/contexts/identity-access/authorization-gate/domain/errors"
	"gatekeeper/contexts/identity-access/authorization-gate/ports"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	DefaultBaseURL = "https://api.github.com"
	apiVersion     = "2022-11-28"
)

// Config controls the GitHub membership client.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
	Logger       *slog.Logger
}

// Oracle answers organization membership via the GitHub REST API
// (GET /orgs/{org}/members/{username}) using the caller's own access token.
type Oracle struct {
	client  *retryablehttp.Client
	baseURL string
	logger  *slog.Logger
}

func NewOracle(cfg Config) *Oracle {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := retryablehttp.NewClient()
	client.Logger = logger
	client.RetryMax = cfg.RetryMax
	if cfg.RetryWaitMin > 0 {
		client.RetryWaitMin = cfg.RetryWaitMin
	}
	if cfg.RetryWaitMax > 0 {
		client.RetryWaitMax = cfg.RetryWaitMax
	}
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.HTTPClient.Timeout = timeout
	// GitHub answers 302 when the token owner cannot see the member list.
	client.HTTPClient.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &Oracle{
		client:  client,
		baseURL: baseURL,
		logger:  logger,
	}
}

func (o *Oracle) CheckMembership(ctx context.Context, credential string, identity string, organization string) (bool, error) {
	endpoint := fmt.Sprintf("%s/orgs/%s/members/%s",
		o.baseURL,
		url.PathEscape(strings.TrimSpace(organization)),
		url.PathEscape(strings.TrimSpace(identity)),
	)
	req, err := retryablehttp.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("%w: build request: %v", domainerrors.ErrUpstreamUnavailable, err)
	}
	req = req.WithContext(ctx)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if strings.TrimSpace(credential) != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := o.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, fmt.Errorf("%w: %v", domainerrors.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	switch resp.StatusCode {
	case http.StatusNoContent:
		return true, nil
	case http.StatusNotFound, http.StatusFound:
		return false, nil
	default:
		o.logger.Warn("github membership lookup returned unexpected status",
			"event", "gate_github_unexpected_status",
			"module", "identity-access/authorization-gate",
			"layer", "adapter",
			"organization", organization,
			"identity", identity,
			"status", resp.StatusCode,
		)
		return false, fmt.Errorf("%w: github responded %d", domainerrors.ErrUpstreamUnavailable, resp.StatusCode)
	}
}

var _ ports.MembershipOracle = (*Oracle)(nil)
