package counter

import (
	"context"
	"fmt"

	"github.com/tuanngo/coursecart/internal/pkg/cache"
)

const webhookCounterKeyPrefix = "webhook:counters:"

// AddWebhookOutcome increments the counter for a provider/outcome pair in
// Redis. Best effort; callers ignore the error.
func AddWebhookOutcome(provider, outcome string) error {
	ctx := context.Background()
	key := webhookCounterKeyPrefix + provider
	return cache.GetClient().HIncrBy(ctx, key, outcome, 1).Err()
}

// Snapshot returns the current per-outcome counts for a provider.
func Snapshot(provider string) (map[string]string, error) {
	ctx := context.Background()
	key := webhookCounterKeyPrefix + provider
	counts, err := cache.GetClient().HGetAll(ctx, key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read webhook counters for %s: %w", provider, err)
	}
	return counts, nil
}
