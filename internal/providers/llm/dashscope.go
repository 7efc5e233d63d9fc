package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/lvji-app/lvji/internal/metrics"
	"github.com/lvji-app/lvji/internal/models"
	"github.com/lvji-app/lvji/internal/utils"
)

const (
	dashscopeEndpoint = "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation"
	dashscopeModel    = "qwen-plus"

	// maxAttempts bounds regeneration when the model returns output that is
	// empty, not JSON, or fails itinerary validation. Transport and HTTP
	// errors are never retried.
	maxAttempts = 5
)

type DashScope struct {
	APIKey   string
	Endpoint string
	Client   *http.Client
	Metrics  *metrics.Metrics
	Logger   *logrus.Logger
}

func NewDashScope(apiKey string, m *metrics.Metrics, l *logrus.Logger) *DashScope {
	return &DashScope{
		APIKey:   apiKey,
		Endpoint: dashscopeEndpoint,
		Client:   &http.Client{Timeout: 20 * time.Second},
		Metrics:  m,
		Logger:   l,
	}
}

type dashscopeRequest struct {
	Model string `json:"model"`
	Input struct {
		Prompt string `json:"prompt"`
	} `json:"input"`
	Parameters struct {
		ResultFormat    string `json:"result_format"`
		MaxOutputTokens int    `json:"max_output_tokens"`
	} `json:"parameters"`
}

type dashscopeResponse struct {
	Output struct {
		Text    string `json:"text"`
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (d *DashScope) GenerateItinerary(ctx context.Context, prompt string) (*models.Itinerary, error) {
	const op = "llm.DashScope.GenerateItinerary"

	if d.APIKey == "" {
		return nil, utils.E(utils.CodeConfig, op, "DASHSCOPE_API_KEY is not configured", nil)
	}

	if d.Metrics != nil {
		d.Metrics.ItineraryRequests.Inc()
	}

	var lastFormatErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		raw, err := d.call(ctx, prompt)
		if err != nil {
			// Transport / HTTP failure: no point regenerating.
			return nil, utils.E(utils.CodeUnavailable, op, "dashscope request failed", err)
		}

		itinerary, ferr := decodeItinerary(raw)
		if ferr == nil {
			return itinerary, nil
		}

		lastFormatErr = ferr
		if d.Logger != nil {
			d.Logger.WithFields(logrus.Fields{
				"attempt": attempt,
				"error":   ferr.Error(),
			}).Warn("itinerary output rejected, regenerating")
		}
		if d.Metrics != nil && attempt < maxAttempts {
			d.Metrics.ItineraryRetries.Inc()
		}
	}

	if d.Metrics != nil {
		d.Metrics.ItineraryFailures.Inc()
	}
	return nil, utils.E(utils.CodeUnavailable, op,
		fmt.Sprintf("model returned no valid itinerary after %d attempts", maxAttempts), lastFormatErr)
}

// call performs one generation request and returns the raw model output.
func (d *DashScope) call(ctx context.Context, prompt string) (string, error) {
	var reqBody dashscopeRequest
	reqBody.Model = dashscopeModel
	reqBody.Input.Prompt = prompt
	reqBody.Parameters.ResultFormat = "json"
	reqBody.Parameters.MaxOutputTokens = 1024

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+d.APIKey)

	resp, err := d.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dashscope returned %d: %s", resp.StatusCode, truncate(string(body), 300))
	}

	var out dashscopeResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("undecodable dashscope response: %w", err)
	}

	if out.Output.Text != "" {
		return out.Output.Text, nil
	}
	if len(out.Output.Choices) > 0 {
		return out.Output.Choices[0].Message.Content, nil
	}
	return "", nil
}

// decodeItinerary parses and validates one model output. Failures here are
// format errors and eligible for regeneration.
func decodeItinerary(raw string) (*models.Itinerary, error) {
	if raw == "" {
		return nil, fmt.Errorf("model output is empty")
	}

	var itinerary models.Itinerary
	if err := json.Unmarshal([]byte(raw), &itinerary); err != nil {
		return nil, fmt.Errorf("model output is not valid JSON: %w", err)
	}
	if err := itinerary.Validate(); err != nil {
		return nil, fmt.Errorf("itinerary failed validation: %w", err)
	}
	return &itinerary, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
