// Package gemini wraps the Google Gemini generateContent endpoint for
// financial-data extraction from PDF bytes.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/roknskapar/pdf-processor/internal/core/domain"
)

const (
	defaultBaseURL     = "https://generativelanguage.googleapis.com"
	defaultModel       = "gemini-2.0-flash-lite"
	defaultHTTPTimeout = 2 * time.Minute

	pdfMimeType = "application/pdf"
	userPrompt  = "Please analyze this PDF and extract the financial data in JSON format."
)

// Config carries the settings for the Gemini client.
type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the production endpoint, mainly for tests.
	BaseURL string
	// InstructionsPath points at the system-instructions file, loaded once
	// at construction.
	InstructionsPath string
}

type Client struct {
	apiKey       string
	model        string
	baseURL      string
	instructions string
	http         *http.Client
	log          zerolog.Logger
}

// NewClient builds a Client and loads the system instructions. A missing or
// blank instructions file is a configuration error.
func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	raw, err := os.ReadFile(cfg.InstructionsPath)
	if err != nil {
		return nil, fmt.Errorf("gemini: read system instructions: %w", err)
	}
	instructions := strings.TrimSpace(string(raw))
	if instructions == "" {
		return nil, fmt.Errorf("gemini: system instructions file %s is blank", cfg.InstructionsPath)
	}

	return &Client{
		apiKey:       cfg.APIKey,
		model:        cfg.Model,
		baseURL:      cfg.BaseURL,
		instructions: instructions,
		http:         &http.Client{Timeout: defaultHTTPTimeout},
		log:          log,
	}, nil
}

// --- wire types for the generateContent API ---

type generateRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (r *generateResponse) firstText() string {
	for _, c := range r.Candidates {
		for _, p := range c.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

// Extract sends the PDF bytes to the model with deterministic sampling and
// parses the textual reply into a FinancialRecord. One attempt, no retry.
func (c *Client) Extract(ctx context.Context, pdf []byte) (*domain.FinancialRecord, error) {
	if len(pdf) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	payload := generateRequest{
		SystemInstruction: &content{Parts: []part{{Text: c.instructions}}},
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{Text: userPrompt},
				{InlineData: &inlineData{
					MimeType: pdfMimeType,
					Data:     base64.StdEncoding.EncodeToString(pdf),
				}},
			},
		}},
		GenerationConfig: generationConfig{
			Temperature:     0,
			TopP:            0.95,
			TopK:            40,
			MaxOutputTokens: 8192,
		},
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	c.log.Info().Str("model", c.model).Msg("sending request to Gemini API")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gemini: generateContent status %d", resp.StatusCode)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("gemini: decode response: %w", err)
	}

	text := out.firstText()
	if text == "" {
		return nil, errors.New("gemini: empty reply from model")
	}
	return domain.ParseFinancialReply(text, c.log)
}
