//go:build integration

package claims_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bizintel/internal/claims"
	"bizintel/pkg/domain"
	"bizintel/pkg/platform/sentinel"
	"bizintel/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *claims.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T(), "../../migrations")
	s.store = claims.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "claims")
	s.Require().NoError(err)
}

func newTestClaim(businessID domain.BusinessID, owner string, submittedAt time.Time) *claims.Claim {
	return &claims.Claim{
		ID:          domain.NewClaimID(),
		BusinessID:  businessID,
		OwnerName:   owner,
		Contact:     "+255 700 000 001",
		SubmittedAt: submittedAt,
	}
}

func (s *PostgresStoreSuite) TestSaveAndGet() {
	ctx := context.Background()
	c := newTestClaim(domain.NewBusinessID(), "Asha Mrema", time.Now().UTC().Truncate(time.Microsecond))

	s.Require().NoError(s.store.Save(ctx, c))

	got, err := s.store.Get(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.BusinessID, got.BusinessID)
	s.Equal("Asha Mrema", got.OwnerName)
	s.False(got.Approved)
	s.Nil(got.ApprovedAt)

	_, err = s.store.Get(ctx, domain.NewClaimID())
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestMarkApproved() {
	ctx := context.Background()
	c := newTestClaim(domain.NewBusinessID(), "Juma Kessy", time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(s.store.Save(ctx, c))

	at := time.Now().UTC().Truncate(time.Microsecond)
	s.Require().NoError(s.store.MarkApproved(ctx, c.ID, at))

	got, err := s.store.Get(ctx, c.ID)
	s.Require().NoError(err)
	s.True(got.Approved)
	s.Require().NotNil(got.ApprovedAt)
	s.WithinDuration(at, *got.ApprovedAt, time.Millisecond)

	s.Require().ErrorIs(s.store.MarkApproved(ctx, domain.NewClaimID(), at), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListOrdersBySubmission() {
	ctx := context.Background()
	businessID := domain.NewBusinessID()
	base := time.Now().UTC().Truncate(time.Microsecond)

	second := newTestClaim(businessID, "Second", base.Add(time.Minute))
	first := newTestClaim(businessID, "First", base)
	other := newTestClaim(domain.NewBusinessID(), "Elsewhere", base.Add(2*time.Minute))
	for _, c := range []*claims.Claim{second, first, other} {
		s.Require().NoError(s.store.Save(ctx, c))
	}

	all, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("First", all[0].OwnerName)
	s.Equal("Second", all[1].OwnerName)

	forBusiness, err := s.store.ListByBusiness(ctx, businessID)
	s.Require().NoError(err)
	s.Require().Len(forBusiness, 2)
	s.Equal("First", forBusiness[0].OwnerName)
}

// Claims are soft references: they persist even when nothing in the
// businesses table matches their business_id.
func (s *PostgresStoreSuite) TestClaimSurvivesMissingBusiness() {
	ctx := context.Background()
	c := newTestClaim(domain.NewBusinessID(), "Orphan Owner", time.Now().UTC().Truncate(time.Microsecond))
	s.Require().NoError(s.store.Save(ctx, c))

	got, err := s.store.Get(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.ID, got.ID)
}
