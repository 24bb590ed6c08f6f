package identifier

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizintel/pkg/domain"
	dErrors "bizintel/pkg/domain-errors"
)

func TestIssuer_IssuedIDsValidate(t *testing.T) {
	issuer := NewIssuer(NewInMemorySequenceStore())
	ctx := context.Background()

	dates := []time.Time{
		time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, time.February, 29, 12, 0, 0, 0, time.UTC),
		time.Date(2025, time.December, 31, 23, 59, 0, 0, time.UTC),
	}

	for _, d := range dates {
		id, err := issuer.Issue(ctx, d)
		require.NoError(t, err)
		assert.True(t, Validate(id.String()).Valid, "issued ID must validate: %s", id)

		issued, err := id.IssuedOn()
		require.NoError(t, err)
		assert.Equal(t, d.Format("20060102"), issued.Format("20060102"))
	}
}

func TestIssuer_SequencesAreDistinctPerDay(t *testing.T) {
	issuer := NewIssuer(NewInMemorySequenceStore())
	ctx := context.Background()
	day := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	seen := make(map[domain.BIID]bool)
	for i := 0; i < 100; i++ {
		id, err := issuer.Issue(ctx, day)
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate BI ID issued: %s", id)
		seen[id] = true
	}

	// A different day restarts the token space without touching the first.
	otherDay := day.AddDate(0, 0, 1)
	id, err := issuer.Issue(ctx, otherDay)
	require.NoError(t, err)
	assert.Equal(t, domain.BIID("BIZ-TZ-20240602-0001"), id)
}

func TestIssuer_Concurrent_NoCollisions(t *testing.T) {
	issuer := NewIssuer(NewInMemorySequenceStore())
	ctx := context.Background()
	day := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	const goroutines = 50
	const perGoroutine = 20

	var mu sync.Mutex
	seen := make(map[domain.BIID]bool)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				id, err := issuer.Issue(ctx, day)
				assert.NoError(t, err)
				mu.Lock()
				assert.False(t, seen[id], "duplicate under concurrency: %s", id)
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*perGoroutine)
}

func TestIssuer_Exhaustion(t *testing.T) {
	store := NewInMemorySequenceStore()
	issuer := NewIssuer(store)
	ctx := context.Background()
	day := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	// Pre-burn all but one token.
	store.mu.Lock()
	store.issued[day.Format("20060102")] = domain.MaxDailySequence - 1
	store.mu.Unlock()

	id, err := issuer.Issue(ctx, day)
	require.NoError(t, err)
	assert.Equal(t, domain.BIID("BIZ-TZ-20240601-9999"), id)

	_, err = issuer.Issue(ctx, day)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeExhausted))

	// Exhaustion is fatal for the attempt, not for the sequence state:
	// repeated attempts keep failing cleanly instead of wrapping around.
	_, err = issuer.Issue(ctx, day)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeExhausted))
}

func TestValidate_ReasonsDistinguishShapes(t *testing.T) {
	assert.True(t, Validate("BIZ-TZ-20240101-0001").Valid)

	res := Validate("BIZ-TZ-20241341-0001")
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Reason)

	res = Validate("nonsense")
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Reason)
}
