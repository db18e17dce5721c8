// Package gemini provides an AI service adapter using the Gemini REST API.
// It implements every capability the core consumes: embedding, summary,
// tag generation, and context-grounded answering.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/teamhub/internal/core/domain"
	"github.com/custodia-labs/teamhub/internal/core/ports/driven"
)

// Ensure Service implements the interface.
var _ driven.AIService = (*Service)(nil)

// Default configuration values.
const (
	DefaultBaseURL     = "https://generativelanguage.googleapis.com/v1beta"
	DefaultEmbedModel  = "text-embedding-004"
	DefaultTextModel   = "gemini-1.5-flash"
	DefaultAnswerModel = "gemini-1.5-pro"
	DefaultTimeout     = 60 * time.Second
)

// Prompts sent with the generative calls. The answer prompt constrains the
// model to the supplied context and asks it to admit missing information.
const (
	summarizePrompt = "Summarize the document briefly (3-5 sentences).\n\nDOC:\n%s"

	tagsPrompt = "Read the document and output 5-10 short, lowercase tags as a " +
		"comma-separated list (no extra words).\n\nDOC:\n%s"

	answerPrompt = `You are a helpful assistant answering questions using ONLY the provided context from team documents.
If the answer isn't in the context, say you don't have enough information.
Return concise, factual answers.

QUESTION:
%s

CONTEXT:
%s`
)

// Config holds configuration for the Gemini service.
type Config struct {
	// APIKey is the Gemini API key (required).
	APIKey string

	// BaseURL is the API base URL (default: the public Gemini endpoint).
	BaseURL string

	// EmbedModel is the embedding model (default: text-embedding-004).
	EmbedModel string

	// TextModel handles summaries and tags (default: gemini-1.5-flash).
	TextModel string

	// AnswerModel handles question answering (default: gemini-1.5-pro).
	AnswerModel string

	// Timeout is the per-request timeout (default: 60s).
	Timeout time.Duration
}

// Service calls the Gemini REST API.
type Service struct {
	client      *http.Client
	baseURL     string
	apiKey      string
	embedModel  string
	textModel   string
	answerModel string
}

// Request and response shapes for the two Gemini endpoints used.
type contentPart struct {
	Text string `json:"text"`
}

type content struct {
	Parts []contentPart `json:"parts"`
}

type embedRequest struct {
	Model   string  `json:"model"`
	Content content `json:"content"`
}

type embedResponse struct {
	Embedding struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
	Error *apiError `json:"error,omitempty"`
}

func (r *embedResponse) apiErr() *apiError { return r.Error }

type generateRequest struct {
	Contents []content `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error,omitempty"`
}

func (r *generateResponse) apiErr() *apiError { return r.Error }

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

// errorCarrier lets post surface a structured API error on non-200
// responses without knowing the concrete response type.
type errorCarrier interface {
	apiErr() *apiError
}

// NewService creates a new Gemini service.
func NewService(cfg Config) (*Service, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.EmbedModel == "" {
		cfg.EmbedModel = DefaultEmbedModel
	}
	if cfg.TextModel == "" {
		cfg.TextModel = DefaultTextModel
	}
	if cfg.AnswerModel == "" {
		cfg.AnswerModel = DefaultAnswerModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Service{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		embedModel:  cfg.EmbedModel,
		textModel:   cfg.TextModel,
		answerModel: cfg.AnswerModel,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	reqBody := embedRequest{
		Model:   "models/" + s.embedModel,
		Content: content{Parts: []contentPart{{Text: text}}},
	}

	var embedResp embedResponse
	url := fmt.Sprintf("%s/models/%s:embedContent", s.baseURL, s.embedModel)
	if err := s.post(ctx, url, reqBody, &embedResp); err != nil {
		return nil, unavailable("embed", err)
	}
	if embedResp.Error != nil {
		return nil, unavailable("embed", fmt.Errorf("gemini error: %s", embedResp.Error.Message))
	}
	if len(embedResp.Embedding.Values) == 0 {
		return nil, unavailable("embed", fmt.Errorf("no embedding returned"))
	}
	return embedResp.Embedding.Values, nil
}

// Summarize returns a brief prose summary of the text.
func (s *Service) Summarize(ctx context.Context, text string) (string, error) {
	out, err := s.generate(ctx, s.textModel, fmt.Sprintf(summarizePrompt, text))
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// GenerateTags returns short lowercase tags describing the text. The model
// is asked for a comma-separated list, which is split, trimmed, lowercased,
// and stripped of empties.
func (s *Service) GenerateTags(ctx context.Context, text string) ([]string, error) {
	raw, err := s.generate(ctx, s.textModel, fmt.Sprintf(tagsPrompt, text))
	if err != nil {
		return nil, fmt.Errorf("generate tags: %w", err)
	}

	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		tag := strings.ToLower(strings.TrimSpace(p))
		if tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

// Answer responds to the question using only the supplied context.
func (s *Service) Answer(ctx context.Context, question, docContext string) (string, error) {
	out, err := s.generate(ctx, s.answerModel, fmt.Sprintf(answerPrompt, question, docContext))
	if err != nil {
		return "", fmt.Errorf("answer: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// generate runs a single generateContent call and returns the first
// candidate's text.
func (s *Service) generate(ctx context.Context, model, prompt string) (string, error) {
	reqBody := generateRequest{
		Contents: []content{{Parts: []contentPart{{Text: prompt}}}},
	}

	var genResp generateResponse
	url := fmt.Sprintf("%s/models/%s:generateContent", s.baseURL, model)
	if err := s.post(ctx, url, reqBody, &genResp); err != nil {
		return "", unavailable("generate", err)
	}
	if genResp.Error != nil {
		return "", unavailable("generate", fmt.Errorf("gemini error: %s", genResp.Error.Message))
	}
	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", unavailable("generate", fmt.Errorf("no candidates returned"))
	}

	var b strings.Builder
	for _, part := range genResp.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	return b.String(), nil
}

// unavailable marks a provider failure so the HTTP boundary can map it to
// a gateway error while keeping the underlying cause inspectable.
func unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrServiceUnavailable, err)
}

// post sends a JSON request with the API key header and decodes the
// response into out.
func (s *Service) post(ctx context.Context, url string, in, out any) error {
	jsonBody, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(body))
		}
		return fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if ec, ok := out.(errorCarrier); ok && ec.apiErr() != nil {
			return fmt.Errorf("gemini error: %s", ec.apiErr().Message)
		}
		return fmt.Errorf("gemini error (status %d): %s", resp.StatusCode, string(body))
	}
	return nil
}
