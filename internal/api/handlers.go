package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/spacesedan/contentflow/config"
	"github.com/spacesedan/contentflow/internal/jobs"
	"github.com/spacesedan/contentflow/internal/models"
	"github.com/spacesedan/contentflow/internal/processing"
	"github.com/spacesedan/contentflow/internal/script"
)

const (
	MIN_CONTENT_LIMIT = 1
	MAX_CONTENT_LIMIT = 10
)

type JobService interface {
	Submit(ctx context.Context, req models.GenerationRequest) (models.Job, error)
	Get(ctx context.Context, id string) (models.Job, error)
}

type PromoService interface {
	Write(ctx context.Context, transcript, imageNotes string) (models.Promo, error)
}

type APIHandler struct {
	Jobs        JobService
	Credentials config.Credentials
	// Healthy is flipped by the store health monitor. Nil means always healthy.
	Healthy *atomic.Bool
	// Promo is optional; without it the promo route answers 503.
	Promo PromoService
}

// generateScriptPayload distinguishes a missing field (nil, default applies)
// from an explicit empty value.
type generateScriptPayload struct {
	Subreddits   *[]string `json:"subreddits"`
	NewsTopics   *[]string `json:"news_topics"`
	VideoStyle   *string   `json:"video_style"`
	ContentLimit *int      `json:"content_limit"`
}

func (p generateScriptPayload) toRequest() (models.GenerationRequest, error) {
	req := models.GenerationRequest{
		Subreddits:   append([]string(nil), models.DefaultSubreddits...),
		NewsTopics:   append([]string(nil), models.DefaultNewsTopics...),
		VideoStyle:   processing.DEFAULT_VIDEO_STYLE,
		ContentLimit: models.DEFAULT_CONTENT_LIMIT,
	}
	if p.Subreddits != nil {
		req.Subreddits = *p.Subreddits
	}
	if p.NewsTopics != nil {
		req.NewsTopics = *p.NewsTopics
	}
	if p.VideoStyle != nil {
		req.VideoStyle = *p.VideoStyle
	}
	if p.ContentLimit != nil {
		req.ContentLimit = *p.ContentLimit
	}

	if req.ContentLimit < MIN_CONTENT_LIMIT || req.ContentLimit > MAX_CONTENT_LIMIT {
		return req, fmt.Errorf("content_limit must be between %d and %d", MIN_CONTENT_LIMIT, MAX_CONTENT_LIMIT)
	}
	return req, nil
}

func RegisterHandlers(r *gin.Engine, h *APIHandler) {
	r.GET("/", h.root)
	r.GET("/health", h.health)
	r.GET("/config/video-styles", h.videoStyles)
	r.GET("/check-credentials", h.checkCredentials)

	r.POST("/generate-script", h.generateScript)
	r.GET("/job/:id", h.getJob)
	r.GET("/job/:id/segments", h.getSegments)
	r.GET("/job/:id/html", h.getHTML)
	r.POST("/job/:id/promo", h.createPromo)
}

func (h *APIHandler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    "Trending Content Video Script Generator API",
		"version": "1.0.0",
		"endpoints": []string{
			"/generate-script (POST): Generate a video script from trending content",
			"/job/{job_id} (GET): Check the status of a script generation job",
			"/job/{job_id}/segments (GET): Get the script split into segments",
			"/job/{job_id}/html (GET): Get the script rendered as HTML",
			"/job/{job_id}/promo (POST): Generate a caption and hashtags for the script",
			"/config/video-styles (GET): List the available video styles",
			"/check-credentials (GET): Check which API credentials are configured",
			"/health (GET): Check API health",
		},
	})
}

func (h *APIHandler) health(c *gin.Context) {
	if h.Healthy != nil && !h.Healthy.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (h *APIHandler) videoStyles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"styles": processing.StyleDescriptions()})
}

func (h *APIHandler) checkCredentials(c *gin.Context) {
	missing := h.Credentials.Missing()
	if len(missing) > 0 {
		c.JSON(http.StatusOK, gin.H{"status": "incomplete", "missing": missing})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "complete", "message": "All required credentials are set"})
}

func (h *APIHandler) generateScript(c *gin.Context) {
	if missing := h.Credentials.Missing(); len(missing) > 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Detail: "Missing required credentials: " + strings.Join(missing, ", "),
		})
		return
	}

	var payload generateScriptPayload
	if err := c.ShouldBindJSON(&payload); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Detail: "Invalid request body"})
		return
	}
	req, err := payload.toRequest()
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Detail: err.Error()})
		return
	}

	job, err := h.Jobs.Submit(c.Request.Context(), req)
	switch {
	case errors.Is(err, jobs.ErrShuttingDown):
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Detail: err.Error()})
		return
	case err != nil:
		slog.Error("[API] Failed to create job", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "Failed to create job"})
		return
	}

	c.JSON(http.StatusOK, models.CreateJobResponse{JobID: job.ID, Status: job.Status})
}

func (h *APIHandler) getJob(c *gin.Context) {
	job, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, models.JobStatusResponse{
		Status: job.Status,
		Result: job.Result,
		Error:  job.Error,
	})
}

func (h *APIHandler) getSegments(c *gin.Context) {
	job, ok := h.completed(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"title":    job.Result.Title,
		"segments": script.ParseSegments(job.Result.Script),
	})
}

func (h *APIHandler) getHTML(c *gin.Context) {
	job, ok := h.completed(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8",
		[]byte(script.RenderHTML(job.Result.Title, job.Result.Script)))
}

func (h *APIHandler) createPromo(c *gin.Context) {
	if h.Credentials.OpenAIAPIKey == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Detail: "Missing required credentials: OPENAI_API_KEY"})
		return
	}
	if h.Promo == nil {
		c.JSON(http.StatusServiceUnavailable, models.ErrorResponse{Detail: "Promo generation is not configured"})
		return
	}

	var req models.PromoRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusUnprocessableEntity, models.ErrorResponse{Detail: "Invalid request body"})
		return
	}

	job, ok := h.completed(c)
	if !ok {
		return
	}

	promo, err := h.Promo.Write(c.Request.Context(), job.Result.Script, req.ImageDescriptions)
	if err != nil {
		slog.Error("[API] Failed to generate promo", slog.String("job_id", job.ID), slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, models.ErrorResponse{Detail: "Failed to generate promo"})
		return
	}
	c.JSON(http.StatusOK, promo)
}

func (h *APIHandler) lookup(c *gin.Context) (models.Job, bool) {
	id := c.Param("id")
	job, err := h.Jobs.Get(c.Request.Context(), id)
	switch {
	case errors.Is(err, jobs.ErrJobNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Detail: "Job not found"})
		return job, false
	case err != nil:
		slog.Error("[API] Failed to read job", slog.String("job_id", id), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Detail: "Failed to read job"})
		return job, false
	}
	return job, true
}

func (h *APIHandler) completed(c *gin.Context) (models.Job, bool) {
	job, ok := h.lookup(c)
	if !ok {
		return job, false
	}
	if job.Status != models.JobStatusCompleted || job.Result == nil {
		c.JSON(http.StatusConflict, models.ErrorResponse{
			Detail: fmt.Sprintf("Job is %s, not completed", job.Status),
		})
		return job, false
	}
	return job, true
}
