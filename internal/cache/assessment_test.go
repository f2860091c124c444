package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steven-d-pennington/restricted-diet-app/backend/internal/safety"
)

func TestFingerprintIgnoresOrder(t *testing.T) {
	a := safety.UserRestriction{RestrictionID: uuid.New(), Severity: safety.Severe, Active: true}
	b := safety.UserRestriction{RestrictionID: uuid.New(), Severity: safety.Mild, Active: true}
	rev := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, Fingerprint([]safety.UserRestriction{a, b}, rev, "r1"), Fingerprint([]safety.UserRestriction{b, a}, rev, "r1"))
	assert.Len(t, Fingerprint(nil, rev, ""), 64)
}

func TestFingerprintChangesWithSeverityAndRevisions(t *testing.T) {
	id := uuid.New()
	rev := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mild := []safety.UserRestriction{{RestrictionID: id, Severity: safety.Mild, Active: true}}
	severe := []safety.UserRestriction{{RestrictionID: id, Severity: safety.Severe, Active: true}}

	assert.NotEqual(t, Fingerprint(mild, rev, "r1"), Fingerprint(severe, rev, "r1"))
	assert.NotEqual(t, Fingerprint(mild, rev, "r1"), Fingerprint(mild, rev.Add(time.Second), "r1"))
	assert.NotEqual(t, Fingerprint(mild, rev, "3@2026-03-01"), Fingerprint(mild, rev, "3@2026-03-02"))
}

func TestDisabledCacheNeverHits(t *testing.T) {
	ctx := context.Background()
	c := NewAssessmentCache(nil, time.Minute)
	assert.False(t, c.Enabled())

	require.NoError(t, c.Set(ctx, uuid.New(), "fp", &safety.SafetyAssessment{}))
	got, ok, err := c.Get(ctx, uuid.New(), "fp")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)

	n, err := c.Purge(ctx)
	assert.NoError(t, err)
	assert.Zero(t, n)

	var nilCache *AssessmentCache
	assert.False(t, nilCache.Enabled())
}
