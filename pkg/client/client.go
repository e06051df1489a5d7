package client

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/kurihiro0119/github-org-repo-access/internal/domain"
)

// Client is the API client for github-org-repo-access
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			// enumerating a large organization takes a while
			Timeout: 10 * time.Minute,
		},
	}
}

// AccessOptions mirrors the enumeration query parameters
type AccessOptions struct {
	IncludeMaintainers bool
	SkipProfiles       bool
	ContinueOnError    bool
}

// Failure is an organization the server could not enumerate
type Failure struct {
	Org   string `json:"org"`
	Error string `json:"error"`
}

// AccessReport is the response of the access endpoints
type AccessReport struct {
	Data     domain.ResultSet `json:"data"`
	Failures []Failure        `json:"failures"`
}

// APIError is returned for non-200 responses
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("API error: %d %s - %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("API error: %d - %s", e.StatusCode, e.Message)
}

// GetOrgAccess retrieves the access report of one organization
func (c *Client) GetOrgAccess(org string, opts AccessOptions) (*AccessReport, error) {
	path := fmt.Sprintf("/api/v1/orgs/%s/access", url.PathEscape(org))

	var report AccessReport
	if err := c.get(path, c.buildParams(opts), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// GetAccess retrieves the access report of several organizations
func (c *Client) GetAccess(orgs []string, opts AccessOptions) (*AccessReport, error) {
	params := c.buildParams(opts)
	for _, org := range orgs {
		params.Add("org", org)
	}

	var report AccessReport
	if err := c.get("/api/v1/access", params, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// HealthCheck checks if the API is healthy
func (c *Client) HealthCheck() error {
	var response struct {
		Status string `json:"status"`
	}
	if err := c.get("/health", nil, &response); err != nil {
		return err
	}
	if response.Status != "ok" {
		return fmt.Errorf("unhealthy status: %s", response.Status)
	}
	return nil
}

func (c *Client) buildParams(opts AccessOptions) url.Values {
	params := url.Values{}
	if opts.IncludeMaintainers {
		params.Set("maintainers", strconv.FormatBool(true))
	}
	if opts.SkipProfiles {
		params.Set("profiles", strconv.FormatBool(false))
	}
	if opts.ContinueOnError {
		params.Set("continue_on_error", strconv.FormatBool(true))
	}
	return params
}

func (c *Client) get(path string, params url.Values, result interface{}) error {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return err
	}
	if params != nil {
		u.RawQuery = params.Encode()
	}

	resp, err := c.httpClient.Get(u.String())
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: string(body)}
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &envelope) == nil && envelope.Error.Code != "" {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
		}
		return apiErr
	}

	return json.NewDecoder(resp.Body).Decode(result)
}
