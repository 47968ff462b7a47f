package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"analytics-service/internal/models"
	"github.com/sirupsen/logrus"
)

// RankingClient delegates candidate scoring to an OpenAI-compatible chat
// completions endpoint. Every failure path returns ok=false so the caller can
// fall back to heuristic scoring; the client never surfaces errors.
type RankingClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     *logrus.Entry
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	MaxTokens      int           `json:"max_tokens"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type rankingPayload struct {
	Recommendations []models.RankedItem `json:"recommendations"`
}

// NewRankingClient creates a ranking client against the configured endpoint
func NewRankingClient(baseURL, apiKey, model string, timeout time.Duration, logger *logrus.Logger) *RankingClient {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	return &RankingClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.WithField("component", "ranking_client"),
	}
}

// Rank scores the request's candidates via the chat completions endpoint
func (c *RankingClient) Rank(ctx context.Context, req models.RankingRequest) ([]models.RankedItem, bool) {
	if len(req.Candidates) == 0 {
		return nil, false
	}

	prompt, err := buildRankingPrompt(req)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to build ranking prompt")
		return nil, false
	}

	chatReq := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{
				Role:    "system",
				Content: "You are a product recommendation engine for a clothing store. Respond only with valid JSON.",
			},
			{
				Role:    "user",
				Content: prompt,
			},
		},
		MaxTokens:   2000,
		Temperature: 0.3,
	}
	chatReq.ResponseFormat.Type = "json_object"

	body, err := json.Marshal(chatReq)
	if err != nil {
		c.logger.WithError(err).Warn("Failed to marshal ranking request")
		return nil, false
	}

	url := fmt.Sprintf("%s/chat/completions", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		c.logger.WithError(err).Warn("Failed to create ranking request")
		return nil, false
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.WithError(err).Warn("Ranking request failed")
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.WithFields(logrus.Fields{
			"status": resp.StatusCode,
			"body":   string(respBody),
		}).Warn("Ranking endpoint returned non-200 status")
		return nil, false
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		c.logger.WithError(err).Warn("Failed to decode ranking response")
		return nil, false
	}
	if len(chatResp.Choices) == 0 {
		c.logger.Warn("Ranking response contained no choices")
		return nil, false
	}

	var payload rankingPayload
	if err := json.Unmarshal([]byte(chatResp.Choices[0].Message.Content), &payload); err != nil {
		c.logger.WithError(err).Warn("Ranking response content is not valid JSON")
		return nil, false
	}
	if len(payload.Recommendations) == 0 {
		c.logger.Warn("Ranking response contained no recommendations")
		return nil, false
	}

	return payload.Recommendations, true
}

// buildRankingPrompt serializes the candidates plus the strategy-specific
// scoring criteria into the user message
func buildRankingPrompt(req models.RankingRequest) (string, error) {
	candidates, err := json.Marshal(req.Candidates)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Rank the following %d candidate products and return the best %d.\n\n", len(req.Candidates), req.Limit))

	switch req.Strategy {
	case models.RecommendationSimilar:
		if req.BaseProduct != nil {
			base, err := json.Marshal(req.BaseProduct)
			if err != nil {
				return "", err
			}
			sb.WriteString("The customer is viewing this product:\n")
			sb.Write(base)
			sb.WriteString("\n\n")
		}
		sb.WriteString("Scoring criteria and weights:\n")
		sb.WriteString("- Same category: 40%\n")
		sb.WriteString("- Price proximity to the viewed product: 25%\n")
		sb.WriteString("- Shared colors: 15%\n")
		sb.WriteString("- Shared sizes: 10%\n")
		sb.WriteString("- Same subcategory: 10%\n")
	default:
		if req.Profile != nil {
			profile, err := json.Marshal(req.Profile)
			if err != nil {
				return "", err
			}
			sb.WriteString("Customer behavior profile:\n")
			sb.Write(profile)
			sb.WriteString("\n\n")
		}
		sb.WriteString("Scoring criteria and weights:\n")
		sb.WriteString("- Match with preferred categories: 30%\n")
		sb.WriteString("- Match with price preference: 25%\n")
		sb.WriteString("- Match with frequent colors: 20%\n")
		sb.WriteString("- Match with frequent sizes: 15%\n")
		sb.WriteString("- Alignment with purchase frequency: 10%\n")
	}

	sb.WriteString(fmt.Sprintf("\nOnly include products with confidence above %.2f.\n\n", req.MinConfidence))
	sb.WriteString("Candidate products:\n")
	sb.Write(candidates)
	sb.WriteString("\n\nRespond with JSON in exactly this shape:\n")
	sb.WriteString(`{"recommendations":[{"productId":"...","score":0.95,"reason":"...","confidence":0.9}]}`)

	return sb.String(), nil
}
