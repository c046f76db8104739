package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const maxGitHubBody = 4 << 20

// GitHubClient is a thin, rate-limited client for the GitHub REST API.
type GitHubClient struct {
	base    string
	token   string
	owner   string
	repo    string
	http    *http.Client
	limiter *rate.Limiter
}

type GitHubOptions struct {
	BaseURL           string
	Token             string
	Owner             string
	Repo              string
	RequestsPerSecond float64
	Timeout           time.Duration
}

func NewGitHubClient(opts GitHubOptions) *GitHubClient {
	base := opts.BaseURL
	if base == "" {
		base = "https://api.github.com"
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	return &GitHubClient{
		base:    strings.TrimRight(base, "/"),
		token:   opts.Token,
		owner:   opts.Owner,
		repo:    opts.Repo,
		http:    &http.Client{Timeout: opts.Timeout},
		limiter: rate.NewLimiter(limit, 1),
	}
}

// GitHubError is returned for responses with status >= 400.
type GitHubError struct {
	Status  int
	Message string
}

func (e *GitHubError) Error() string {
	return fmt.Sprintf("github API error %d: %s", e.Status, e.Message)
}

// Do calls endpoint (a path such as /repos/{owner}/{repo}/pulls) and
// returns the decoded JSON body, or the raw text when it is not JSON.
// {owner} and {repo} are filled from the client defaults.
func (c *GitHubClient) Do(ctx context.Context, method, endpoint string, data any) (any, error) {
	endpoint = c.expand(endpoint)
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	var body io.Reader
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	req.Header.Set("User-Agent", "stepwise")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxGitHubBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var decoded any
	isJSON := len(bytes.TrimSpace(raw)) > 0 && json.Unmarshal(raw, &decoded) == nil

	if resp.StatusCode >= 400 {
		msg := resp.Status
		if m, ok := decoded.(map[string]any); ok {
			if s, ok := m["message"].(string); ok && s != "" {
				msg = s
			}
		}
		return nil, &GitHubError{Status: resp.StatusCode, Message: msg}
	}
	if !isJSON {
		return string(raw), nil
	}
	return decoded, nil
}

func (c *GitHubClient) expand(endpoint string) string {
	if c.owner != "" {
		endpoint = strings.ReplaceAll(endpoint, "{owner}", c.owner)
	}
	if c.repo != "" {
		endpoint = strings.ReplaceAll(endpoint, "{repo}", c.repo)
	}
	return endpoint
}

type githubInput struct {
	Method   string `json:"method"`
	Endpoint string `json:"endpoint"`
	Data     any    `json:"data"`
}

func callGitHubAPI(ctx context.Context, env *Env, input json.RawMessage) Result {
	if env.GitHub == nil {
		return errorf("Error: GitHub client is not configured")
	}

	var in githubInput
	if err := json.Unmarshal(input, &in); err != nil {
		// A bare string is taken as a GET endpoint.
		endpoint, ok := stringArg(input, "endpoint")
		if !ok {
			return errorf("Error: call_github_api requires {\"method\", \"endpoint\"}")
		}
		in.Endpoint = endpoint
	}
	if in.Endpoint == "" {
		return errorf("Error: call_github_api requires an endpoint")
	}
	method := strings.ToUpper(in.Method)
	if method == "" {
		method = http.MethodGet
	}

	out, err := env.GitHub.Do(ctx, method, in.Endpoint, in.Data)
	if err != nil {
		return errorf("%v", err)
	}
	return Result{Output: out}
}
