// Package qstash publishes turn-completed events to Upstash QStash so
// downstream collaborators (analytics, transcript archival) can react without
// sitting in the turn's critical path.
package qstash

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/wanderplan/wanderplan/agent/contract"
)

type Config struct {
	URL      string        `split_words:"true" required:"true"`
	Token    string        `split_words:"true" required:"true"`
	TopicURL string        `split_words:"true" required:"true"`
	Timeout  time.Duration `split_words:"true" default:"10s"`
}

type Publisher struct {
	baseURL    string
	token      string
	topicURL   string
	httpClient *http.Client
}

func NewPublisher(cfg Config) (*Publisher, error) {
	baseURL := strings.TrimSpace(cfg.URL)
	if baseURL == "" {
		return nil, errors.New("qstash url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, err
	}

	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("qstash token is required")
	}

	topicURL := strings.TrimSpace(cfg.TopicURL)
	if topicURL == "" {
		return nil, errors.New("qstash topic url is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Publisher{
		baseURL:  strings.TrimRight(baseURL, "/"),
		token:    token,
		topicURL: topicURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

func MustNew(cfg Config) *Publisher {
	publisher, err := NewPublisher(cfg)
	if err != nil {
		panic(err)
	}
	return publisher
}

// PublishTurn implements the router's EventPublisher contract.
func (p *Publisher) PublishTurn(ctx context.Context, event contractx.TurnEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal turn event: %w", err)
	}

	endpoint := p.baseURL + "/v2/publish/" + url.PathEscape(p.topicURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build qstash request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute qstash request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("qstash http status=%d body=%s", resp.StatusCode, string(body))
	}
	return nil
}
