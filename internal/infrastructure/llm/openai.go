// Package llm implements the generative collaborators on top of an
// OpenAI-compatible HTTP API: topic classification, digest narration, title
// derivation, and best-effort illustration.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"NewsPulse/internal/config"
	"NewsPulse/internal/domain"
	"NewsPulse/internal/ports"
)

const classifySystemPrompt = "You classify news articles into exactly one topic " +
	"from a fixed list, or none. Answer with a JSON object " +
	`{"topic": <slug or null>, "confidence": <0..1>, "rationale": <string>}` +
	" and nothing else."

// Client talks to an OpenAI-compatible API for all generative calls.
type Client struct {
	endpoint   string
	apiKey     string
	chatModel  string
	imageModel string
	httpClient *http.Client
}

var _ ports.TagClassifier = (*Client)(nil)
var _ ports.Summarizer = (*Client)(nil)
var _ ports.Illustrator = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.AIConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint:   strings.TrimSuffix(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		chatModel:  cfg.ChatModel,
		imageModel: cfg.ImageModel,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ClassifyTopic asks the chat model to place an article within the taxonomy.
func (c *Client) ClassifyTopic(ctx context.Context, topics []domain.TopicOption, title, description string) (domain.AITag, error) {
	var prompt strings.Builder
	prompt.WriteString("Topics:\n")
	for _, topic := range topics {
		fmt.Fprintf(&prompt, "- %s: %s\n", topic.Slug, topic.Name)
	}
	fmt.Fprintf(&prompt, "\nTitle: %s\n", title)
	if description != "" {
		fmt.Fprintf(&prompt, "Description: %s\n", description)
	}

	content, err := c.chat(ctx, classifySystemPrompt, prompt.String())
	if err != nil {
		return domain.AITag{}, err
	}

	var decoded struct {
		Topic      *string `json:"topic"`
		Confidence float64 `json:"confidence"`
		Rationale  string  `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(stripFences(content)), &decoded); err != nil {
		return domain.AITag{}, fmt.Errorf("malformed classification answer: %w", err)
	}

	tag := domain.AITag{Confidence: clamp01(decoded.Confidence), Rationale: decoded.Rationale}
	if decoded.Topic != nil {
		tag.Slug = strings.TrimSpace(*decoded.Topic)
	}
	return tag, nil
}

// Summarize turns the windowed items into one narrative for the scope.
func (c *Client) Summarize(ctx context.Context, items []domain.DigestItem, scopeLabel string, date time.Time) (string, error) {
	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Write a short narrative news digest for %q covering %s. ", scopeLabel, date.Format("January 2, 2006"))
	prompt.WriteString("Weave the stories into flowing prose, not a headline list.\n\nStories:\n")
	for _, item := range items {
		fmt.Fprintf(&prompt, "- %s (%s)", item.Title, item.Publisher)
		if item.Description != "" {
			fmt.Fprintf(&prompt, ": %s", item.Description)
		}
		prompt.WriteString("\n")
	}

	narrative, err := c.chat(ctx, "You are a concise news editor.", prompt.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(narrative), nil
}

// TitleFor derives a short headline from a finished narrative.
func (c *Client) TitleFor(ctx context.Context, narrative string) (string, error) {
	title, err := c.chat(ctx,
		"You write one short headline, at most ten words, plain text.",
		narrative)
	if err != nil {
		return "", err
	}
	return strings.Trim(strings.TrimSpace(title), `"`), nil
}

// Illustrate requests one image for the digest and returns its URL.
func (c *Client) Illustrate(ctx context.Context, narrative, scopeLabel string) (string, error) {
	if c.imageModel == "" {
		return "", fmt.Errorf("image model not configured")
	}

	prompt := fmt.Sprintf("Editorial illustration for a news digest about %s: %s", scopeLabel, firstSentence(narrative))
	body := map[string]any{
		"model":  c.imageModel,
		"prompt": prompt,
		"n":      1,
		"size":   "1024x1024",
	}

	var decoded struct {
		Data []struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := c.post(ctx, "/images/generations", body, &decoded); err != nil {
		return "", err
	}
	if len(decoded.Data) == 0 || decoded.Data[0].URL == "" {
		return "", fmt.Errorf("image response carried no url")
	}
	return decoded.Data[0].URL, nil
}

func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.chatModel == "" {
		return "", fmt.Errorf("llm client misconfigured")
	}

	body := map[string]any{
		"model": c.chatModel,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}

	var decoded struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := c.post(ctx, "/chat/completions", body, &decoded); err != nil {
		return "", err
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("chat response carried no choices")
	}
	return decoded.Choices[0].Message.Content, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, v any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("llm api error %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}

	if v == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func stripFences(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.IndexAny(text, ".!?"); idx > 0 {
		return text[:idx+1]
	}
	if len(text) > 200 {
		return text[:200]
	}
	return text
}
