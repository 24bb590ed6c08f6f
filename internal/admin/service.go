// Package admin covers the operator surface: login, token issuance and the
// dashboard stats.
package admin

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bizintel/internal/claims"
	"bizintel/internal/leads"
	"bizintel/internal/registry"
	dErrors "bizintel/pkg/domain-errors"
)

// Stats is the dashboard aggregate.
type Stats struct {
	TotalBusinesses    int
	VerifiedBusinesses int
	TotalClaims        int
	PendingClaims      int
	Leads              int
}

// BusinessLister is the registry slice the dashboard reads.
type BusinessLister interface {
	List(ctx context.Context) ([]*registry.Business, error)
}

// ClaimLister is the claim-workflow slice the dashboard reads.
type ClaimLister interface {
	List(ctx context.Context) ([]*claims.Claim, error)
}

// LeadLister is the leads slice the dashboard reads.
type LeadLister interface {
	List(ctx context.Context) ([]*leads.Lead, error)
}

// Service authenticates the operator and aggregates dashboard stats.
type Service struct {
	username     string
	passwordHash string
	tokens       *TokenService

	businesses BusinessLister
	claims     ClaimLister
	leads      LeadLister
}

func NewService(username, passwordHash string, tokens *TokenService, businesses BusinessLister, claimLister ClaimLister, leadLister LeadLister) *Service {
	return &Service{
		username:     username,
		passwordHash: passwordHash,
		tokens:       tokens,
		businesses:   businesses,
		claims:       claimLister,
		leads:        leadLister,
	}
}

// LoginResult carries the issued token.
type LoginResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   time.Duration
}

// Login checks the operator credentials against the configured bcrypt hash
// and issues an access token. Wrong username and wrong password are
// indistinguishable to the caller.
func (s *Service) Login(_ context.Context, username, password string) (*LoginResult, error) {
	if username != s.username {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")
	}
	token, err := s.tokens.Generate(username)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "sign token", err)
	}
	return &LoginResult{AccessToken: token, TokenType: "Bearer", ExpiresIn: s.tokens.ttl}, nil
}

// DashboardStats aggregates the operator overview.
func (s *Service) DashboardStats(ctx context.Context) (*Stats, error) {
	businesses, err := s.businesses.List(ctx)
	if err != nil {
		return nil, err
	}
	allClaims, err := s.claims.List(ctx)
	if err != nil {
		return nil, err
	}
	allLeads, err := s.leads.List(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		TotalBusinesses: len(businesses),
		TotalClaims:     len(allClaims),
		Leads:           len(allLeads),
	}
	for _, b := range businesses {
		if b.Verified {
			stats.VerifiedBusinesses++
		}
	}
	for _, c := range allClaims {
		if !c.Approved {
			stats.PendingClaims++
		}
	}
	return stats, nil
}
