package state

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const defaultMemoryKeyPrefix = "wander:memory:"

// UpstashMemoryStore keeps the long-term traveler summary in Upstash Redis,
// one key per traveler. It satisfies the router's MemoryStore contract.
type UpstashMemoryStore struct {
	rest      *restClient
	keyPrefix string
	ttl       time.Duration
}

func NewUpstashMemoryStore(cfg UpstashRedisConfig) (*UpstashMemoryStore, error) {
	rest, err := newRESTClient(cfg)
	if err != nil {
		return nil, err
	}
	return &UpstashMemoryStore{
		rest:      rest,
		keyPrefix: defaultMemoryKeyPrefix,
	}, nil
}

func (m *UpstashMemoryStore) ReadSummary(ctx context.Context, travelerID string) (string, error) {
	key, err := m.memoryKey(travelerID)
	if err != nil {
		return "", err
	}

	resp, err := m.rest.exec(ctx, []any{"GET", key})
	if err != nil {
		return "", err
	}

	result := bytes.TrimSpace(resp.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return "", nil
	}

	var summary string
	if err := json.Unmarshal(result, &summary); err != nil {
		return "", fmt.Errorf("decode memory payload: %w", err)
	}
	return summary, nil
}

func (m *UpstashMemoryStore) WriteSummary(ctx context.Context, travelerID string, update string) error {
	if strings.TrimSpace(update) == "" {
		return nil
	}
	key, err := m.memoryKey(travelerID)
	if err != nil {
		return err
	}

	cmd := []any{"SET", key, update}
	if m.ttl > 0 {
		cmd = append(cmd, "EX", ttlSeconds(m.ttl))
	}
	_, err = m.rest.exec(ctx, cmd)
	return err
}

func (m *UpstashMemoryStore) memoryKey(travelerID string) (string, error) {
	if strings.TrimSpace(travelerID) == "" {
		return "", ErrInvalidTraveler
	}
	prefix := strings.TrimSpace(m.keyPrefix)
	if prefix == "" {
		prefix = defaultMemoryKeyPrefix
	}
	return prefix + travelerID, nil
}
