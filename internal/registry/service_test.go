package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizintel/internal/identifier"
	"bizintel/pkg/domain"
	dErrors "bizintel/pkg/domain-errors"
)

func newTestService() *Service {
	issuer := identifier.NewIssuer(identifier.NewInMemorySequenceStore())
	return NewService(NewInMemoryStore(), issuer, nil)
}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }
func boolPtr(v bool) *bool    { return &v }

func TestService_Create(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	t.Run("assigns id and BI ID, starts unclaimed", func(t *testing.T) {
		b, err := svc.Create(ctx, CreateParams{Name: "Mwanza Fish Market", Region: "Mwanza", Sector: "Trade"})
		require.NoError(t, err)

		assert.False(t, b.ID.IsNil())
		_, err = domain.ParseBIID(b.BIID.String())
		assert.NoError(t, err, "issued BI ID must be syntactically valid")
		assert.False(t, b.Claimed)
		assert.False(t, b.Verified)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateParams{Name: "   "})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects out-of-range score", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateParams{Name: "X", DigitalScore: intPtr(101)})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("BI IDs are unique across creations", func(t *testing.T) {
		a, err := svc.Create(ctx, CreateParams{Name: "A"})
		require.NoError(t, err)
		b, err := svc.Create(ctx, CreateParams{Name: "B"})
		require.NoError(t, err)
		assert.NotEqual(t, a.BIID, b.BIID)
	})
}

func TestService_Update(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateParams{Name: "Original", Region: "Arusha", DigitalScore: intPtr(50)})
	require.NoError(t, err)

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		updated, err := svc.Update(ctx, b.ID, UpdateParams{DigitalScore: intPtr(85)})
		require.NoError(t, err)
		assert.Equal(t, 85, *updated.DigitalScore)
		assert.Equal(t, "Original", updated.Name)
		assert.Equal(t, "Arusha", updated.Region)
		assert.Equal(t, b.BIID, updated.BIID, "BI ID is immutable")
	})

	t.Run("unknown business is NotFound", func(t *testing.T) {
		_, err := svc.Update(ctx, domain.NewBusinessID(), UpdateParams{Name: strPtr("nope")})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

// claimDuringReadStore approves the business right after Update's read, so
// the edit's write lands on a record whose claim flags have moved underneath it.
type claimDuringReadStore struct {
	Store
}

func (s *claimDuringReadStore) Get(ctx context.Context, id domain.BusinessID) (*Business, error) {
	b, err := s.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.Claimed {
		if _, err := s.Store.MarkClaimed(ctx, id); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func TestService_UpdateDoesNotRevertClaimApproval(t *testing.T) {
	issuer := identifier.NewIssuer(identifier.NewInMemorySequenceStore())
	svc := NewService(&claimDuringReadStore{Store: NewInMemoryStore()}, issuer, nil)
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateParams{Name: "Makutano Hardware", Region: "Dodoma"})
	require.NoError(t, err)

	// The wrapped store interleaves a claim approval between Update's read
	// and its write.
	updated, err := svc.Update(ctx, b.ID, UpdateParams{Region: strPtr("Singida")})
	require.NoError(t, err)
	assert.Equal(t, "Singida", updated.Region)
	assert.True(t, updated.Claimed, "update result must carry the stored claim state")
	assert.True(t, updated.Verified)

	got, err := svc.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.Claimed, "claim approval must not be reverted by a concurrent field edit")
	assert.True(t, got.Verified)
}

func TestService_MarkClaimed(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateParams{Name: "Claimable"})
	require.NoError(t, err)

	t.Run("first transition succeeds and verifies", func(t *testing.T) {
		claimed, err := svc.MarkClaimed(ctx, b.ID)
		require.NoError(t, err)
		assert.True(t, claimed.Claimed)
		assert.True(t, claimed.Verified, "verified implies claimed must hold after approval")
	})

	t.Run("second transition conflicts", func(t *testing.T) {
		_, err := svc.MarkClaimed(ctx, b.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("unknown business is NotFound, not Conflict", func(t *testing.T) {
		_, err := svc.MarkClaimed(ctx, domain.NewBusinessID())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestService_Search(t *testing.T) {
	svc := newTestService().WithClock(stepClock())
	ctx := context.Background()

	mk := func(p CreateParams) *Business {
		b, err := svc.Create(ctx, p)
		require.NoError(t, err)
		return b
	}

	plain := mk(CreateParams{Name: "Plain Shop", Region: "Mwanza", Sector: "Trade", DigitalScore: intPtr(40)})
	premium := mk(CreateParams{Name: "Premium Shop", Region: "Mwanza", Sector: "Trade", DigitalScore: intPtr(70), Premium: true})
	verified := mk(CreateParams{Name: "Verified Shop", Region: "Arusha", Sector: "Tourism", DigitalScore: intPtr(90)})
	_, err := svc.MarkClaimed(ctx, verified.ID)
	require.NoError(t, err)

	t.Run("premium sorts before verified before the rest", func(t *testing.T) {
		results, err := svc.Search(ctx, SearchFilter{})
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, premium.ID, results[0].ID)
		assert.Equal(t, verified.ID, results[1].ID)
		assert.Equal(t, plain.ID, results[2].ID)
	})

	t.Run("name filter is case-insensitive substring", func(t *testing.T) {
		results, err := svc.Search(ctx, SearchFilter{Query: "premium"})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, premium.ID, results[0].ID)
	})

	t.Run("min score treats unrated as zero", func(t *testing.T) {
		results, err := svc.Search(ctx, SearchFilter{MinScore: intPtr(60)})
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("BI ID filter is exact", func(t *testing.T) {
		results, err := svc.Search(ctx, SearchFilter{BIID: plain.BIID.String()})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, plain.ID, results[0].ID)
	})

	t.Run("verified filter", func(t *testing.T) {
		results, err := svc.Search(ctx, SearchFilter{Verified: boolPtr(true)})
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, verified.ID, results[0].ID)
	})
}

func TestService_Delete(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	b, err := svc.Create(ctx, CreateParams{Name: "Ephemeral"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, b.ID))

	_, err = svc.Get(ctx, b.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	// The BI ID stays burned: it no longer resolves but is not reissued.
	_, err = svc.GetByBIID(ctx, b.BIID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	next, err := svc.Create(ctx, CreateParams{Name: "Successor"})
	require.NoError(t, err)
	assert.NotEqual(t, b.BIID, next.BIID)
}

// stepClock returns a clock that advances one second per call so creation
// order is observable in sorts.
func stepClock() func() time.Time {
	base := time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	return func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Second)
	}
}
