// Package vision wraps the remote suitability-scoring endpoint. The
// client never fails: any transport error, timeout or bad payload is
// converted into a synthetic placeholder result, keeping the funnel
// experience uniform when the service is down.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/agencyscout/scout-funnel/internal/entity"
	"github.com/agencyscout/scout-funnel/internal/metrics"
)

type Client struct {
	baseURL       string
	http          *http.Client
	fallbackDelay time.Duration
	logger        *slog.Logger
}

// NewClient builds a scoring client. timeout is the inner per-request
// bound that governs the fallback decision; fallbackDelay is the
// artificial minimum wait before a synthetic result is handed back.
func NewClient(baseURL string, timeout, fallbackDelay time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:       baseURL,
		http:          &http.Client{Timeout: timeout},
		fallbackDelay: fallbackDelay,
		logger:        logger,
	}
}

// Analyze submits the encoded portrait for scoring. Single attempt, no
// retry. Never returns an error: failures come back as a synthetic
// result with Synthetic set.
func (c *Client) Analyze(ctx context.Context, encodedImage []byte) *entity.AnalysisResult {
	result, err := c.call(ctx, encodedImage)
	if err != nil {
		c.logger.Warn("vision call failed, synthesizing placeholder", "error", err)
		metrics.RecordSyntheticAnalysis()
		c.wait(ctx)
		return SyntheticResult()
	}
	return result
}

func (c *Client) call(ctx context.Context, encodedImage []byte) (*entity.AnalysisResult, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "portrait.jpg")
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(encodedImage); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/api/analyze", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("User-Agent", "ScoutFunnel/1.0")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("vision request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("vision rejected (status %d): %s", resp.StatusCode, string(raw))
	}

	var payload analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("vision decode: %w", err)
	}

	return payload.toEntity(), nil
}

// Health pings the scoring service. Used by the health endpoint only.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var payload healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return err
	}
	if payload.Status != "ok" {
		return fmt.Errorf("vision unhealthy: %s", payload.Status)
	}
	return nil
}

// wait honors the artificial fallback delay but gives up early if the
// attempt's context is gone (a reset discards the result anyway).
func (c *Client) wait(ctx context.Context) {
	select {
	case <-time.After(c.fallbackDelay):
	case <-ctx.Done():
	}
}

// SyntheticResult is the fully populated placeholder used when the
// remote service is unreachable or too slow.
func SyntheticResult() *entity.AnalysisResult {
	return &entity.AnalysisResult{
		SuitabilityScore: 88,
		Category: entity.MarketCategorization{
			Primary:   "Editorial",
			Rationale: "Balanced features with broad mature-market appeal.",
		},
		FaceGeometry: entity.FaceGeometry{
			PrimaryShape:      "Oval",
			JawlineDefinition: "High",
			StructuralNote:    "Symmetric proportions with high cheekbone placement.",
		},
		Audit: entity.AestheticAudit{
			LightingQuality:       "Natural",
			ProfessionalReadiness: "Semi-Pro",
			TechnicalFlaw:         "None detected",
		},
		ScoutFeedback: "Strong editorial potential with versatile features.",
		Synthetic:     true,
	}
}
