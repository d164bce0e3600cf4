// Package feed carries attendance events from admissions to professors
// watching a class live.
package feed

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/uniattend/attendance-backend/internal/config"
	"github.com/uniattend/attendance-backend/internal/model"
)

// Feed publishes and subscribes to per-class attendance channels.
type Feed struct {
	broker Broker
}

// New creates a Feed over broker.
func New(broker Broker) *Feed {
	return &Feed{broker: broker}
}

// Publish sends event to everyone watching event.ClassCode.
func (f *Feed) Publish(ctx context.Context, event model.AttendanceEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal attendance event: %w", err)
	}
	return f.broker.Publish(ctx, config.CacheKey.AttendanceFeedChannel(event.ClassCode), payload)
}

// Subscribe starts watching a class. Payloads are JSON-encoded
// model.AttendanceEvent values.
func (f *Feed) Subscribe(ctx context.Context, classCode string) (Subscription, error) {
	return f.broker.Subscribe(ctx, config.CacheKey.AttendanceFeedChannel(classCode))
}
