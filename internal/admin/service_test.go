package admin

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bizintel/internal/claims"
	"bizintel/internal/identifier"
	"bizintel/internal/leads"
	"bizintel/internal/registry"
	dErrors "bizintel/pkg/domain-errors"
)

func newFixture(t *testing.T) (*Service, *registry.Service, *claims.Service, *leads.Service) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.MinCost)
	require.NoError(t, err)

	reg := registry.NewService(registry.NewInMemoryStore(),
		identifier.NewIssuer(identifier.NewInMemorySequenceStore()), nil)
	claimSvc := claims.NewService(claims.NewInMemoryStore(), reg, nil)
	leadSvc := leads.NewService(leads.NewInMemoryStore())
	tokens := NewTokenService("test-signing-key", time.Hour)
	return NewService("admin", string(hash), tokens, reg, claimSvc, leadSvc), reg, claimSvc, leadSvc
}

func TestLogin(t *testing.T) {
	svc, _, _, _ := newFixture(t)
	ctx := context.Background()

	t.Run("valid credentials issue a bearer token", func(t *testing.T) {
		res, err := svc.Login(ctx, "admin", "admin")
		require.NoError(t, err)
		assert.Equal(t, "Bearer", res.TokenType)
		assert.NotEmpty(t, res.AccessToken)

		claims, err := svc.tokens.ValidateToken(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "admin", claims.Username)
		assert.Equal(t, "admin", claims.Role)
	})

	t.Run("wrong password and wrong username look identical", func(t *testing.T) {
		_, errPass := svc.Login(ctx, "admin", "nope")
		_, errUser := svc.Login(ctx, "nobody", "admin")
		assert.True(t, dErrors.HasCode(errPass, dErrors.CodeUnauthorized))
		assert.True(t, dErrors.HasCode(errUser, dErrors.CodeUnauthorized))
		assert.Equal(t, errPass.Error(), errUser.Error())
	})
}

func TestTokenService_RejectsForgedAndExpired(t *testing.T) {
	tokens := NewTokenService("real-key", time.Hour)

	t.Run("token signed with a different key", func(t *testing.T) {
		forged, err := NewTokenService("other-key", time.Hour).Generate("admin")
		require.NoError(t, err)
		_, err = tokens.ValidateToken(forged)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})

	t.Run("expired token", func(t *testing.T) {
		expired, err := NewTokenService("real-key", -time.Minute).Generate("admin")
		require.NoError(t, err)
		_, err = tokens.ValidateToken(expired)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := tokens.ValidateToken("not.a.jwt")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
	})
}

func TestDashboardStats(t *testing.T) {
	svc, reg, claimSvc, leadSvc := newFixture(t)
	ctx := context.Background()

	a, err := reg.Create(ctx, registry.CreateParams{Name: "A"})
	require.NoError(t, err)
	b, err := reg.Create(ctx, registry.CreateParams{Name: "B"})
	require.NoError(t, err)
	_, err = reg.Create(ctx, registry.CreateParams{Name: "C"})
	require.NoError(t, err)

	winner, err := claimSvc.Submit(ctx, a.ID, "Owner A", "a@example.com")
	require.NoError(t, err)
	_, err = claimSvc.Submit(ctx, b.ID, "Owner B", "b@example.com")
	require.NoError(t, err)
	_, err = claimSvc.Approve(ctx, winner.ID)
	require.NoError(t, err)

	_, err = leadSvc.Create(ctx, b.ID, "Buyer", "buyer@example.com", "interested")
	require.NoError(t, err)

	stats, err := svc.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalBusinesses)
	assert.Equal(t, 1, stats.VerifiedBusinesses)
	assert.Equal(t, 2, stats.TotalClaims)
	assert.Equal(t, 1, stats.PendingClaims)
	assert.Equal(t, 1, stats.Leads)
}
