package httptransport

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bizintel/internal/admin"
	"bizintel/internal/claims"
	"bizintel/internal/engagement"
	"bizintel/internal/identifier"
	"bizintel/internal/leads"
	"bizintel/internal/monitor"
	"bizintel/internal/platform/logger"
	"bizintel/internal/registry"
	"bizintel/internal/reviews"
	"bizintel/internal/verification"
)

type testServer struct {
	router  http.Handler
	monitor *monitor.Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	log := logger.New("test")
	reg := registry.NewService(registry.NewInMemoryStore(),
		identifier.NewIssuer(identifier.NewInMemorySequenceStore()), nil)
	claimSvc := claims.NewService(claims.NewInMemoryStore(), reg, nil)
	verifySvc := verification.NewService(reg, verification.NewInMemoryRequestStore(), nil)
	tracker := engagement.NewTracker(engagement.NewInMemoryCounterStore(), reg, nil, log)
	monitorSvc := monitor.NewService(reg, monitor.NewInMemoryEventStore(),
		monitor.NewInMemoryAlertStore(), monitor.NewInMemorySubscriptionStore(), 40, nil, log)
	leadSvc := leads.NewService(leads.NewInMemoryStore())
	reviewSvc := reviews.NewService(reviews.NewInMemoryStore())

	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.MinCost)
	require.NoError(t, err)
	tokens := admin.NewTokenService("test-signing-key", time.Hour)
	adminSvc := admin.NewService("admin", string(hash), tokens, reg, claimSvc, leadSvc)

	router := NewRouter(log, Services{
		Registry:     reg,
		Claims:       claimSvc,
		Verification: verifySvc,
		Engagement:   tracker,
		Monitor:      monitorSvc,
		Leads:        leadSvc,
		Reviews:      reviewSvc,
		Admin:        adminSvc,
	}, admin.NewTokenServiceAdapter(tokens), nil)

	return &testServer{router: router, monitor: monitorSvc}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func (s *testServer) login(t *testing.T) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/token", "", map[string]string{
		"username": "admin", "password": "admin",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	return decodeBody[loginResponse](t, rec).AccessToken
}

func (s *testServer) createBusiness(t *testing.T, body map[string]any) businessResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/business", "", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeBody[businessResponse](t, rec)
}

func TestBusinessLifecycle(t *testing.T) {
	s := newTestServer(t)

	b := s.createBusiness(t, map[string]any{
		"name": "Kariakoo Electronics", "region": "Dar es Salaam", "sector": "Retail",
		"formality": "Informal", "digital_score": 55,
	})
	assert.Regexp(t, `^BIZ-TZ-\d{8}-\d{4}$`, b.BIID)
	assert.False(t, b.Claimed)

	t.Run("profile returns the record and counts the view", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/profile/"+b.ID, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		profile := decodeBody[profileResponse](t, rec)
		assert.Equal(t, b.BIID, profile.BIID)

		rec = s.do(t, http.MethodGet, "/profile/"+b.ID, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		profile = decodeBody[profileResponse](t, rec)
		assert.Equal(t, int64(1), profile.Views, "first view is visible on the second read")
	})

	t.Run("update edits fields but never the BI ID", func(t *testing.T) {
		rec := s.do(t, http.MethodPut, "/business/"+b.ID, "", map[string]any{
			"name": "Kariakoo Electronics Ltd", "digital_score": 70,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		updated := decodeBody[businessResponse](t, rec)
		assert.Equal(t, "Kariakoo Electronics Ltd", updated.Name)
		assert.Equal(t, b.BIID, updated.BIID)
	})

	t.Run("invalid body is a 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/business", bytes.NewBufferString("{not json"))
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("missing name is a 400", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/business", "", map[string]any{"region": "Mwanza"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("unknown profile is a 404", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/profile/00000000-0000-0000-0000-000000000001", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("delete requires the operator token", func(t *testing.T) {
		rec := s.do(t, http.MethodDelete, "/business/"+b.ID, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		token := s.login(t)
		rec = s.do(t, http.MethodDelete, "/business/"+b.ID, token, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = s.do(t, http.MethodGet, "/profile/"+b.ID, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestSearchRanking(t *testing.T) {
	s := newTestServer(t)

	plain := s.createBusiness(t, map[string]any{"name": "Plain Shop", "region": "Arusha"})
	premium := s.createBusiness(t, map[string]any{"name": "Premium Shop", "region": "Arusha", "premium": true})
	_ = s.createBusiness(t, map[string]any{"name": "Elsewhere", "region": "Mbeya"})

	rec := s.do(t, http.MethodGet, "/search?region=Arusha", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[searchResponse](t, rec)
	require.Equal(t, 2, res.Count)
	assert.Equal(t, premium.ID, res.Results[0].ID, "premium listings rank first")
	assert.Equal(t, plain.ID, res.Results[1].ID)

	rec = s.do(t, http.MethodGet, "/search?min_score=not-a-number", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestVerificationEndpoints(t *testing.T) {
	s := newTestServer(t)
	b := s.createBusiness(t, map[string]any{"name": "Verify Me"})

	t.Run("valid BI ID", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/verify-bi/"+b.BIID, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		res := decodeBody[verifyResponse](t, rec)
		assert.True(t, res.Valid)
		assert.Equal(t, "registered", res.Status)
	})

	t.Run("malformed BI ID still answers 200", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/verify-bi/garbage", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		res := decodeBody[verifyResponse](t, rec)
		assert.False(t, res.Valid)
		assert.Equal(t, "malformed", res.Reason)
	})

	t.Run("detailed verification request is accepted", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/request-verification", "", map[string]any{
			"bi_id": b.BIID, "requester_name": "CRDB", "requester_contact": "kyc@crdb.example",
			"purpose": "loan due diligence",
		})
		require.Equal(t, http.StatusAccepted, rec.Code)
		res := decodeBody[detailedVerificationResponse](t, rec)
		assert.Equal(t, "Verify Me", res.BusinessName)
	})
}

func TestClaimFlow(t *testing.T) {
	s := newTestServer(t)
	b := s.createBusiness(t, map[string]any{"name": "Claim Target"})
	token := s.login(t)

	rec := s.do(t, http.MethodPost, "/claim", "", map[string]any{
		"business_id": b.ID, "owner_name": "Asha", "contact": "asha@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	claim := decodeBody[claimResponse](t, rec)
	assert.False(t, claim.Approved)

	t.Run("claims list is operator-only", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/claims", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = s.do(t, http.MethodGet, "/claims", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("approval verifies the business", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/claims/"+claim.ID+"/approve", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		approved := decodeBody[businessResponse](t, rec)
		assert.True(t, approved.Claimed)
		assert.True(t, approved.Verified)
	})

	t.Run("second claim on a claimed business conflicts", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/claim", "", map[string]any{
			"business_id": b.ID, "owner_name": "Juma", "contact": "juma@example.com",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestEngagementEndpoints(t *testing.T) {
	s := newTestServer(t)
	b := s.createBusiness(t, map[string]any{"name": "Tracked Shop"})

	for i := 0; i < 3; i++ {
		rec := s.do(t, http.MethodPost, "/track", "", map[string]any{
			"business_id": b.ID, "action": "view",
		})
		require.Equal(t, http.StatusAccepted, rec.Code)
	}
	rec := s.do(t, http.MethodPost, "/track", "", map[string]any{
		"business_id": b.ID, "action": "click",
	})
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = s.do(t, http.MethodPost, "/track", "", map[string]any{
		"business_id": b.ID, "action": "hover",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unknown actions are rejected up front")

	rec = s.do(t, http.MethodGet, "/analytics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[analyticsResponse](t, rec)
	assert.Equal(t, int64(3), res.TotalViews)
	assert.Equal(t, int64(1), res.TotalClicks)
	require.Len(t, res.Businesses, 1)
	assert.InDelta(t, 1.0/3.0, res.Businesses[0].EngagementRate, 0.0001)
}

func TestChangesEndpoints(t *testing.T) {
	s := newTestServer(t)
	ctx := httptest.NewRequest(http.MethodGet, "/", nil).Context()

	b := s.createBusiness(t, map[string]any{"name": "Watched Shop", "digital_score": 50})
	_, err := s.monitor.Sweep(ctx)
	require.NoError(t, err)

	rec := s.do(t, http.MethodPut, "/business/"+b.ID, "", map[string]any{"digital_score": 85})
	require.Equal(t, http.StatusOK, rec.Code)
	_, err = s.monitor.Sweep(ctx)
	require.NoError(t, err)

	rec = s.do(t, http.MethodGet, "/changes", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[changesResponse](t, rec)
	require.NotEmpty(t, res.RecentChanges)
	assert.Equal(t, "digital_score", res.RecentChanges[0].ChangeType)
	assert.Equal(t, "high", res.RecentChanges[0].Severity)
	require.Len(t, res.Alerts, 1)

	t.Run("subscribe and unsubscribe", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/changes/subscribe", "", map[string]any{
			"business_id": b.ID, "contact": "watcher@example.com",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		sub := decodeBody[subscribeResponse](t, rec)

		rec = s.do(t, http.MethodDelete, "/changes/subscribe/"+sub.ID, "", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		rec = s.do(t, http.MethodDelete, "/changes/subscribe/"+sub.ID, "", nil)
		assert.Equal(t, http.StatusNoContent, rec.Code, "unsubscribe is idempotent")
	})
}

func TestCommunityEndpoints(t *testing.T) {
	s := newTestServer(t)
	b := s.createBusiness(t, map[string]any{"name": "Reviewed Shop"})

	rec := s.do(t, http.MethodPost, "/review", "", map[string]any{
		"business_id": b.ID, "author": "Neema", "rating": 5, "comment": "excellent",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = s.do(t, http.MethodPost, "/review", "", map[string]any{
		"business_id": b.ID, "author": "Juma", "rating": 3,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = s.do(t, http.MethodPost, "/review", "", map[string]any{
		"business_id": b.ID, "author": "Bad", "rating": 9,
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/reviews/"+b.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	res := decodeBody[reviewsListResponse](t, rec)
	assert.Equal(t, 2, res.Count)
	assert.InDelta(t, 4.0, res.AverageRating, 0.0001)

	t.Run("leads are written publicly, read by operators", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/lead", "", map[string]any{
			"business_id": b.ID, "name": "Buyer", "contact": "buyer@example.com", "message": "bulk order",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = s.do(t, http.MethodGet, "/leads", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec = s.do(t, http.MethodGet, "/leads", s.login(t), nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestAdminEndpoints(t *testing.T) {
	s := newTestServer(t)
	b := s.createBusiness(t, map[string]any{"name": "Featured Soon"})

	t.Run("bad credentials are 401", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/token", "", map[string]string{
			"username": "admin", "password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	token := s.login(t)

	t.Run("dashboard aggregates", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/admin", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		stats := decodeBody[dashboardResponse](t, rec)
		assert.Equal(t, 1, stats.TotalBusinesses)
	})

	t.Run("feature flips premium", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/admin/feature", token, map[string]any{"business_id": b.ID})
		require.Equal(t, http.StatusOK, rec.Code)
		featured := decodeBody[businessResponse](t, rec)
		assert.True(t, featured.Premium)
	})

	t.Run("forged token is rejected", func(t *testing.T) {
		forged, err := admin.NewTokenService("other-key", time.Hour).Generate("admin")
		require.NoError(t, err)
		rec := s.do(t, http.MethodGet, "/admin", forged, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequestIDEcho(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))

	rec2 := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.NotEmpty(t, rec2.Header().Get("X-Request-ID"))
}

func TestExhaustionSurfacesAs429(t *testing.T) {
	// Pre-burning the day's sequence space forces issuance to fail with the
	// exhausted code, which the transport maps to 429.
	seq := identifier.NewInMemorySequenceStore()
	reg := registry.NewService(registry.NewInMemoryStore(), identifier.NewIssuer(seq), nil)

	log := logger.New("test")
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.MinCost)
	require.NoError(t, err)
	tokens := admin.NewTokenService("k", time.Hour)
	claimSvc := claims.NewService(claims.NewInMemoryStore(), reg, nil)
	leadSvc := leads.NewService(leads.NewInMemoryStore())
	reviewSvc := reviews.NewService(reviews.NewInMemoryStore())
	tracker := engagement.NewTracker(engagement.NewInMemoryCounterStore(), reg, nil, log)
	router := NewRouter(log, Services{
		Registry:     reg,
		Claims:       claimSvc,
		Verification: verification.NewService(reg, verification.NewInMemoryRequestStore(), nil),
		Engagement:   tracker,
		Monitor: monitor.NewService(reg, monitor.NewInMemoryEventStore(),
			monitor.NewInMemoryAlertStore(), monitor.NewInMemorySubscriptionStore(), 40, nil, log),
		Leads:   leadSvc,
		Reviews: reviewSvc,
		Admin:   admin.NewService("admin", string(hash), tokens, reg, claimSvc, leadSvc),
	}, admin.NewTokenServiceAdapter(tokens), nil)

	dateKey := time.Now().Format("20060102")
	for i := 0; i < 9999; i++ {
		_, err := seq.Next(httptest.NewRequest(http.MethodGet, "/", nil).Context(), dateKey)
		require.NoError(t, err)
	}

	body, _ := json.Marshal(map[string]any{"name": "One Too Many"})
	req := httptest.NewRequest(http.MethodPost, "/business", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code, fmt.Sprintf("body: %s", rec.Body.String()))
}
