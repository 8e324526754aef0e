package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spacesedan/contentflow/internal/models"
)

const (
	DEFAULT_BASE_URL     = "http://localhost:8000"
	DEFAULT_HTTP_TIMEOUT = 30 * time.Second
	maxErrorBodyBytes    = 64 << 10
)

// Client talks to the ContentFlow job API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DEFAULT_BASE_URL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: DEFAULT_HTTP_TIMEOUT},
	}
}

// GenerateScript submits req once. The request is sent as given; the server
// fills in defaults and validates.
func (c *Client) GenerateScript(ctx context.Context, req models.GenerationRequest) (models.Job, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return models.Job{}, fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/generate-script", bytes.NewReader(body))
	if err != nil {
		return models.Job{}, &TransportError{Msg: DEFAULT_SUBMIT_ERROR, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return models.Job{}, &TransportError{Msg: DEFAULT_SUBMIT_ERROR, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{StatusCode: res.StatusCode, Detail: DEFAULT_SUBMIT_ERROR}
		var payload models.ErrorResponse
		if err := json.NewDecoder(io.LimitReader(res.Body, maxErrorBodyBytes)).Decode(&payload); err == nil && payload.Detail != "" {
			apiErr.Detail = payload.Detail
		}
		slog.Warn("[ContentFlowClient] Script submission rejected",
			slog.Int("status", res.StatusCode),
			slog.String("detail", apiErr.Detail))
		return models.Job{}, apiErr
	}

	var created models.CreateJobResponse
	if err := json.NewDecoder(res.Body).Decode(&created); err != nil {
		return models.Job{}, &TransportError{Msg: DEFAULT_SUBMIT_ERROR, Err: err}
	}
	if created.Status == "" {
		created.Status = models.JobStatusSubmitted
	}

	slog.Info("[ContentFlowClient] Job submitted", slog.String("job_id", created.JobID))
	return models.Job{ID: created.JobID, Status: created.Status}, nil
}

// GetJobStatus reads the job once. 404 maps to ErrJobNotFound; any other
// failure is a *TransportError.
func (c *Client) GetJobStatus(ctx context.Context, jobID string) (models.JobStatusResponse, error) {
	var status models.JobStatusResponse

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/job/"+url.PathEscape(jobID), nil)
	if err != nil {
		return status, &TransportError{Msg: DEFAULT_STATUS_ERROR, Err: err}
	}

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return status, &TransportError{Msg: DEFAULT_STATUS_ERROR, Err: err}
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusNotFound:
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxErrorBodyBytes))
		return status, ErrJobNotFound
	case res.StatusCode < 200 || res.StatusCode > 299:
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxErrorBodyBytes))
		return status, &TransportError{Msg: DEFAULT_STATUS_ERROR, StatusCode: res.StatusCode}
	}

	if err := json.NewDecoder(res.Body).Decode(&status); err != nil {
		return status, &TransportError{Msg: DEFAULT_STATUS_ERROR, Err: err}
	}
	return status, nil
}

// VideoStyles lists the styles the server accepts with their descriptions.
func (c *Client) VideoStyles(ctx context.Context) (map[string]string, error) {
	var out struct {
		Styles map[string]string `json:"styles"`
	}
	if err := c.getJSON(ctx, "/config/video-styles", &out); err != nil {
		return nil, err
	}
	return out.Styles, nil
}

type CredentialStatus struct {
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

func (c *Client) CheckCredentials(ctx context.Context) (CredentialStatus, error) {
	var out CredentialStatus
	err := c.getJSON(ctx, "/check-credentials", &out)
	return out, err
}

// Promo asks the server for a caption and hashtags for a completed job.
// imageNotes is optional. Non-2xx answers are *APIError carrying the
// server's detail.
func (c *Client) Promo(ctx context.Context, jobID, imageNotes string) (models.Promo, error) {
	var promo models.Promo
	body, err := json.Marshal(models.PromoRequest{ImageDescriptions: imageNotes})
	if err != nil {
		return promo, fmt.Errorf("encode request: %w", err)
	}

	path := "/job/" + url.PathEscape(jobID) + "/promo"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return promo, &TransportError{Msg: DEFAULT_PROMO_ERROR, Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return promo, &TransportError{Msg: DEFAULT_PROMO_ERROR, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxErrorBodyBytes))
		return promo, ErrJobNotFound
	}
	if res.StatusCode < 200 || res.StatusCode > 299 {
		apiErr := &APIError{StatusCode: res.StatusCode, Detail: DEFAULT_PROMO_ERROR}
		var payload models.ErrorResponse
		if err := json.NewDecoder(io.LimitReader(res.Body, maxErrorBodyBytes)).Decode(&payload); err == nil && payload.Detail != "" {
			apiErr.Detail = payload.Detail
		}
		return promo, apiErr
	}

	if err := json.NewDecoder(res.Body).Decode(&promo); err != nil {
		return promo, &TransportError{Msg: DEFAULT_PROMO_ERROR, Err: err}
	}
	return promo, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return &TransportError{Msg: "Failed to reach " + path, Err: err}
	}
	res, err := c.HTTP.Do(httpReq)
	if err != nil {
		return &TransportError{Msg: "Failed to reach " + path, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return &TransportError{Msg: "Failed to reach " + path, StatusCode: res.StatusCode}
	}
	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		return &TransportError{Msg: "Failed to reach " + path, Err: err}
	}
	return nil
}
