package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/safety"
)

const keyPrefix = "safety:assessment"

// AssessmentCache stores engine results in redis keyed by product and
// restriction fingerprint. A cache built without a client never hits.
type AssessmentCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAssessmentCache(client *redis.Client, ttl time.Duration) *AssessmentCache {
	return &AssessmentCache{client: client, ttl: ttl}
}

// Enabled reports whether the cache is backed by redis.
func (c *AssessmentCache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

func key(productID uuid.UUID, fingerprint string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, productID, fingerprint)
}

// Get returns the cached assessment, if any.
func (c *AssessmentCache) Get(ctx context.Context, productID uuid.UUID, fingerprint string) (*safety.SafetyAssessment, bool, error) {
	if !c.Enabled() {
		return nil, false, nil
	}
	data, err := c.client.Get(ctx, key(productID, fingerprint)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached assessment: %w", err)
	}
	var a safety.SafetyAssessment
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached assessment: %w", err)
	}
	return &a, true, nil
}

func (c *AssessmentCache) Set(ctx context.Context, productID uuid.UUID, fingerprint string, a *safety.SafetyAssessment) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode assessment: %w", err)
	}
	return c.client.Set(ctx, key(productID, fingerprint), data, c.ttl).Err()
}

// Purge drops every cached assessment, e.g. after reference data changes.
func (c *AssessmentCache) Purge(ctx context.Context) (int, error) {
	if !c.Enabled() {
		return 0, nil
	}
	removed := 0
	iter := c.client.Scan(ctx, 0, keyPrefix+":*", 500).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, iter.Err()
}

// Fingerprint identifies a restriction set together with the product
// revision and the revision of the reference ratings it was evaluated
// against. Order of restrictions does not matter.
func Fingerprint(restrictions []safety.UserRestriction, productRevision time.Time, ratingsRevision string) string {
	parts := make([]string, 0, len(restrictions)+2)
	for _, r := range restrictions {
		parts = append(parts, r.RestrictionID.String()+"="+r.Severity.String())
	}
	sort.Strings(parts)
	parts = append(parts, strconv.FormatInt(productRevision.UnixNano(), 10), "ratings="+ratingsRevision)

	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
