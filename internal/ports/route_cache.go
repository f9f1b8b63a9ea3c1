package ports

import (
	"context"
	"time"
)

// Port: a best-effort cache for encoded route responses.
type RouteCache interface {
	// Return the cached value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Port: notification of sequenced routes to downstream consumers.
type RoutePublisher interface {
	PublishRoute(ctx context.Context, event RouteEvent) error
}

type RouteEvent struct {
	RequestID    string    `json:"requestId"`
	Mode         string    `json:"mode"`
	StopIDs      []string  `json:"stopIds"`
	TotalKm      float64   `json:"totalKm"`
	TotalMinutes float64   `json:"totalMinutes"`
	ModelVersion string    `json:"modelVersion,omitempty"`
	SequencedAt  time.Time `json:"sequencedAt"`
}
