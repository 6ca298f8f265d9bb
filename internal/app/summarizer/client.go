/*
Package summarizer asks an OpenAI-compatible chat-completions endpoint for a
short handoff summary.

Each Summarize call makes exactly one HTTP request bounded by the configured
timeout. There are no retries; every failure comes back as a *Failure with a
Kind the caller can report.
*/
package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"warmtransfer/internal/pkg/logx"
)

const (
	// DefaultTimeout bounds one provider call when no timeout is configured.
	DefaultTimeout = 15 * time.Second

	// MaxTranscriptRunes keeps the prompt bounded; longer transcripts keep their tail.
	MaxTranscriptRunes = 12000

	maxResponseBytes = 1 << 20
	maxSummaryTokens = 256

	systemPrompt = "You write handoff notes for support agents taking over a live call. " +
		"Reply with two to four plain sentences: who the caller is, their issue, what was already tried, and the next step."
)

// Request is the context available for one summary.
type Request struct {
	Room         string
	FromIdentity string
	ToIdentity   string

	// Transcript is the call so far, one "speaker: text" line per utterance. Optional.
	Transcript string
}

// Summarizer produces a summary or a *Failure.
type Summarizer interface {
	Summarize(ctx context.Context, req Request) (string, error)
}

// Config configures a Client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client is a Summarizer backed by a chat-completions HTTP API.
type Client struct {
	apiKey   string
	endpoint string
	model    string
	timeout  time.Duration
	http     *http.Client
	logger   zerolog.Logger
}

// NewClient returns a Client. It does not contact the provider.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}

	return &Client{
		apiKey:   cfg.APIKey,
		endpoint: strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		model:    cfg.Model,
		timeout:  cfg.Timeout,
		http:     cfg.HTTPClient,
		logger:   logx.Component("summarizer"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type providerError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// BuildPrompt returns the user message for req.
func BuildPrompt(req Request) string {
	transcript := strings.TrimSpace(req.Transcript)
	if transcript == "" {
		return fmt.Sprintf(
			"Agent %s is handing a call in room %s over to agent %s. No transcript is available. "+
				"Write a brief note telling %s that the call is being transferred from %s and that they should confirm the caller's issue.",
			req.FromIdentity, req.Room, req.ToIdentity, req.ToIdentity, req.FromIdentity,
		)
	}

	if runes := []rune(transcript); len(runes) > MaxTranscriptRunes {
		transcript = "...\n" + string(runes[len(runes)-MaxTranscriptRunes:])
	}

	return fmt.Sprintf(
		"Agent %s is handing this call over to agent %s. Summarize the conversation so far for %s.\n\nTranscript:\n%s",
		req.FromIdentity, req.ToIdentity, req.ToIdentity, transcript,
	)
}

// Summarize implements Summarizer.
func (c *Client) Summarize(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: BuildPrompt(req)},
		},
		MaxTokens:   maxSummaryTokens,
		Temperature: 0.3,
	})
	if err != nil {
		return "", &Failure{Kind: KindParse, Message: "could not encode provider request", Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &Failure{Kind: KindNetwork, Message: "invalid provider endpoint", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	res, err := c.http.Do(httpReq)
	if err != nil {
		return "", c.fail(classifyTransportError(err), req, start)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return "", c.fail(classifyTransportError(err), req, start)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return "", c.fail(&Failure{
			Kind:       classifyStatus(res.StatusCode),
			StatusCode: res.StatusCode,
			Message:    providerMessage(raw, res.Status),
		}, req, start)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", c.fail(&Failure{
			Kind:       KindParse,
			StatusCode: res.StatusCode,
			Message:    "provider returned malformed JSON",
			Err:        err,
		}, req, start)
	}

	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", c.fail(&Failure{
			Kind:       KindEmpty,
			StatusCode: res.StatusCode,
			Message:    "provider returned no summary text",
		}, req, start)
	}

	c.logger.Debug().
		Str("room", req.Room).
		Dur("latency", time.Since(start)).
		Msg("Summary generated")

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func (c *Client) fail(f *Failure, req Request, start time.Time) *Failure {
	c.logger.Warn().
		Err(f.Err).
		Str("room", req.Room).
		Str("kind", string(f.Kind)).
		Int("provider_status", f.StatusCode).
		Dur("latency", time.Since(start)).
		Msg(f.Message)
	return f
}

// providerMessage extracts error.message from an OpenAI-style error body.
func providerMessage(raw []byte, fallback string) string {
	var pe providerError
	if err := json.Unmarshal(raw, &pe); err == nil && pe.Error.Message != "" {
		msg := pe.Error.Message
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return msg
	}
	return "provider responded " + fallback
}
