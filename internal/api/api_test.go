// Assesslink - Pay-per-use Assessment Link Platform
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/assesslink

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/assesslink/internal/accounts"
	"github.com/tomtom215/assesslink/internal/auth"
	"github.com/tomtom215/assesslink/internal/authz"
	"github.com/tomtom215/assesslink/internal/catalog"
	"github.com/tomtom215/assesslink/internal/config"
	"github.com/tomtom215/assesslink/internal/database"
	"github.com/tomtom215/assesslink/internal/lifecycle"
	"github.com/tomtom215/assesslink/internal/logging"
	"github.com/tomtom215/assesslink/internal/models"
	"github.com/tomtom215/assesslink/internal/notify"
	"github.com/tomtom215/assesslink/internal/payment"
	"github.com/tomtom215/assesslink/internal/quota"
	"github.com/tomtom215/assesslink/internal/websocket"
	"github.com/tomtom215/assesslink/internal/zpay"
)

const (
	testPassword = "Tr1cky-Otter"
	merchantKey  = "Zk93LmQpR7sT2vWx"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t       *testing.T
	handler http.Handler
	db      *database.DB
	svc     Services
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWith(t, nil)
}

func newTestServerWith(t *testing.T, adjust func(*config.Config)) *testServer {
	t.Helper()

	cfg := &config.Config{
		Server:  config.ServerConfig{PublicBaseURL: "https://assess.example.org"},
		Storage: config.StorageConfig{Backend: "memory"},
		Payment: config.PaymentConfig{
			Enabled:    true,
			GatewayURL: "https://pay.example.org/submit.php",
			PID:        "1001",
			Key:        merchantKey,
			NotifyURL:  "https://assess.example.org/api/payment/notify",
			ReturnURL:  "https://assess.example.org/paid",
		},
		Security: config.SecurityConfig{
			JWTSecret:         "a-test-secret-that-is-long-enough-for-hs256",
			TokenTTL:          time.Hour,
			RateLimitDisabled: true,
		},
		Links: config.LinksConfig{MaxBatch: 50},
	}
	if adjust != nil {
		adjust(cfg)
	}

	db := database.NewMemory()
	t.Cleanup(func() { _ = db.Close() })

	tokens, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		t.Fatal(err)
	}
	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(enforcer.Close)

	ledger := quota.NewLedger(db, 0)
	lockout := auth.NewLockoutManager(auth.LockoutConfig{MaxAttempts: 2, LockoutDuration: time.Minute})
	hub := websocket.NewHub([]string{"*"})
	go func() { _ = hub.Run(t.Context()) }()
	notifications := notify.NewService(db)
	notifications.SetPusher(hub)
	svc := Services{
		Accounts:      accounts.NewService(db, ledger, auth.NewPasswordHasher(4), tokens, lockout),
		Catalog:       catalog.NewService(db),
		Links:         lifecycle.NewService(db, ledger, nil, lifecycle.OptionsFrom(&cfg.Server, &cfg.Links)),
		Notifications: notifications,
		Payments:      payment.NewReconciler(db, nil, payment.OptionsFrom(cfg)),
		Hub:           hub,
	}

	router := NewRouter(
		NewHandler(cfg, db, svc),
		auth.NewMiddleware(tokens, WriteError),
		authz.NewMiddleware(enforcer, WriteError),
		NewChiMiddleware(ChiMiddlewareConfigFrom(&cfg.Security)),
	)
	return &testServer{t: t, handler: router.Setup(), db: db, svc: svc}
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			s.t.Fatal(err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.RemoteAddr = "203.0.113.7:4242"
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

// call performs a request, checks the status, and decodes data into out.
func (s *testServer) call(method, path, token string, body any, wantStatus int, out any) envelope {
	s.t.Helper()
	w := s.do(method, path, token, body)
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		s.t.Fatalf("%s %s: decode envelope: %v (body %q)", method, path, err, w.Body.String())
	}
	if w.Code != wantStatus {
		s.t.Fatalf("%s %s: status = %d, want %d (body %s)", method, path, w.Code, wantStatus, w.Body.String())
	}
	if env.Code != w.Code {
		s.t.Errorf("%s %s: envelope code = %d, want %d", method, path, env.Code, w.Code)
	}
	if env.Success != (wantStatus < 400) {
		s.t.Errorf("%s %s: success = %v", method, path, env.Success)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			s.t.Fatalf("%s %s: decode data: %v", method, path, err)
		}
	}
	return env
}

func (s *testServer) register(username string) accountJSON {
	s.t.Helper()
	var a accountJSON
	s.call(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": username,
		"email":    username + "@example.org",
		"password": testPassword,
	}, http.StatusCreated, &a)
	return a
}

func (s *testServer) login(username string) string {
	s.t.Helper()
	var session struct {
		Token     string `json:"token"`
		ExpiresIn int64  `json:"expiresIn"`
	}
	s.call(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": username,
		"password": testPassword,
	}, http.StatusOK, &session)
	if session.Token == "" || session.ExpiresIn <= 0 {
		s.t.Fatalf("login %s: empty session %+v", username, session)
	}
	return session.Token
}

type accountJSON struct {
	ID             string `json:"id"`
	Role           string `json:"role"`
	Status         string `json:"status"`
	RemainingQuota int    `json:"remainingQuota"`
}

// setupUser returns an admin token and an approved user with quota.
func (s *testServer) setupUser(quota int) (adminToken, userToken, userID string) {
	s.t.Helper()
	s.register("admin1")
	adminToken = s.login("admin1")

	u := s.register("alice")
	s.call(http.MethodPatch, "/api/users/"+u.ID+"/status", adminToken,
		map[string]string{"status": "active"}, http.StatusOK, nil)
	if quota > 0 {
		s.call(http.MethodPost, "/api/users/"+u.ID+"/quota", adminToken,
			map[string]int{"amount": quota}, http.StatusOK, nil)
	}
	return adminToken, s.login("alice"), u.ID
}

func (s *testServer) importQuestionnaire(adminToken, qType string) {
	s.t.Helper()
	s.call(http.MethodPost, "/api/questionnaires/import", adminToken, map[string]any{
		"type": qType,
		"questions": map[string]any{
			"title": "Personality",
			"questions": []map[string]any{
				{"text": "I enjoy parties", "options": []map[string]any{{"value": 1, "label": "Yes"}, {"value": 0, "label": "No"}}},
				{"text": "I plan ahead", "options": []map[string]any{{"value": "a", "label": "Always"}}},
			},
		},
	}, http.StatusCreated, nil)
	s.call(http.MethodPatch, "/api/questionnaires/"+qType+"/publish-status", adminToken,
		map[string]bool{"isPublished": true}, http.StatusOK, nil)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	s.call(http.MethodGet, "/api/health/live", "", nil, http.StatusOK, nil)

	var ready struct {
		Status string `json:"status"`
	}
	s.call(http.MethodGet, "/api/health/ready", "", nil, http.StatusOK, &ready)
	if ready.Status != "ready" {
		t.Errorf("ready status = %q", ready.Status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.do(http.MethodGet, "/api/health/live", "", nil)
	w := s.do(http.MethodGet, "/metrics", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "assesslink_api_requests_total") {
		t.Error("metrics output lacks assesslink_api_requests_total")
	}
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)

	first := s.register("admin1")
	if first.Role != "admin" || first.Status != "active" {
		t.Fatalf("first account = %+v, want active admin", first)
	}
	second := s.register("bob")
	if second.Role != "user" || second.Status != "pending" {
		t.Fatalf("second account = %+v, want pending user", second)
	}

	// Pending accounts cannot sign in.
	s.call(http.MethodPost, "/api/auth/login", "", map[string]string{
		"username": "bob", "password": testPassword,
	}, http.StatusForbidden, nil)

	token := s.login("admin1")
	var me accountJSON
	s.call(http.MethodGet, "/api/auth/me", token, nil, http.StatusOK, &me)
	if me.ID != first.ID {
		t.Errorf("me = %s, want %s", me.ID, first.ID)
	}

	s.call(http.MethodPost, "/api/auth/refresh", token, nil, http.StatusOK, nil)
	s.call(http.MethodPost, "/api/auth/change-password", token, map[string]string{
		"currentPassword": "wrong-one",
		"newPassword":     "N3w-Secret-Phrase",
	}, http.StatusBadRequest, nil)

	// Duplicate username.
	s.call(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "Bob", "email": "other@example.org", "password": testPassword,
	}, http.StatusConflict, nil)
}

func TestLogout(t *testing.T) {
	s := newTestServer(t)
	s.register("admin1")
	token := s.login("admin1")
	other := s.login("admin1")

	s.call(http.MethodPost, "/api/auth/logout", token, nil, http.StatusOK, nil)
	s.call(http.MethodGet, "/api/auth/me", token, nil, http.StatusUnauthorized, nil)
	s.call(http.MethodGet, "/api/auth/me", other, nil, http.StatusOK, nil)

	// Signing out without a session still succeeds.
	env := s.call(http.MethodPost, "/api/auth/logout", "", nil, http.StatusOK, nil)
	if !env.Success {
		t.Errorf("anonymous logout envelope = %+v", env)
	}
}

func TestRegister_ValidationDetails(t *testing.T) {
	s := newTestServer(t)
	var apiErr struct {
		Code    string         `json:"code"`
		Details map[string]any `json:"details"`
	}
	s.call(http.MethodPost, "/api/auth/register", "", map[string]string{
		"username": "carol", "email": "not-an-email", "password": testPassword,
	}, http.StatusBadRequest, &apiErr)
	if apiErr.Code != ErrCodeValidationFailed {
		t.Errorf("code = %q, want %q", apiErr.Code, ErrCodeValidationFailed)
	}
	if apiErr.Details["field"] != "email" {
		t.Errorf("details = %v, want field email", apiErr.Details)
	}

	w := s.do(http.MethodPost, "/api/auth/register", "", nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("empty body status = %d, want 400", w.Code)
	}
}

func TestLogin_LockoutReturns429(t *testing.T) {
	s := newTestServer(t)
	s.register("admin1")

	var last *httptest.ResponseRecorder
	for range 3 {
		last = s.do(http.MethodPost, "/api/auth/login", "", map[string]string{
			"username": "admin1", "password": "not-the-password",
		})
		if last.Code == http.StatusTooManyRequests {
			break
		}
		if last.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401 before lockout", last.Code)
		}
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", last.Code)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("Retry-After header missing")
	}
}

func TestAuthorization(t *testing.T) {
	s := newTestServer(t)
	adminToken, userToken, userID := s.setupUser(0)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"anonymous links", http.MethodGet, "/api/links", "", http.StatusUnauthorized},
		{"anonymous users", http.MethodGet, "/api/users", "", http.StatusUnauthorized},
		{"user lists users", http.MethodGet, "/api/users", userToken, http.StatusForbidden},
		{"user verifies indexes", http.MethodGet, "/api/admin/indexes/verify", userToken, http.StatusForbidden},
		{"user lists links", http.MethodGet, "/api/links", userToken, http.StatusOK},
		{"admin lists users", http.MethodGet, "/api/users?role=user", adminToken, http.StatusOK},
		{"admin gets user", http.MethodGet, "/api/users/" + userID, adminToken, http.StatusOK},
		{"garbage token", http.MethodGet, "/api/questionnaires/available", "garbage", http.StatusUnauthorized},
		{"public catalog", http.MethodGet, "/api/questionnaires/available", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s.call(tt.method, tt.path, tt.token, nil, tt.want, nil)
		})
	}
}

func TestLinkLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	adminToken, userToken, userID := s.setupUser(2)
	s.importQuestionnaire(adminToken, "mbti")

	// Over quota.
	s.call(http.MethodPost, "/api/links/generate", userToken, map[string]any{
		"questionnaireType": "mbti", "quantity": 3,
	}, http.StatusPaymentRequired, nil)

	var issued struct {
		Links []struct {
			ID  string `json:"id"`
			URL string `json:"url"`
		} `json:"links"`
		Total int `json:"total"`
	}
	s.call(http.MethodPost, "/api/links/generate", userToken, map[string]any{
		"questionnaireType": "mbti", "quantity": 2,
	}, http.StatusCreated, &issued)
	if issued.Total != 2 || len(issued.Links) != 2 {
		t.Fatalf("issued = %+v", issued)
	}
	linkID := issued.Links[0].ID
	if issued.Links[0].URL != "https://assess.example.org/test/"+linkID {
		t.Errorf("url = %q", issued.Links[0].URL)
	}

	var me accountJSON
	s.call(http.MethodGet, "/api/users/"+userID, adminToken, nil, http.StatusOK, &me)
	if me.RemainingQuota != 0 {
		t.Errorf("remaining quota = %d, want 0", me.RemainingQuota)
	}

	var listed struct {
		Total    int `json:"total"`
		Page     int `json:"page"`
		PageSize int `json:"pageSize"`
	}
	s.call(http.MethodGet, "/api/links?status=unused", userToken, nil, http.StatusOK, &listed)
	if listed.Total != 2 || listed.Page != 1 {
		t.Errorf("listing = %+v", listed)
	}

	// Test taker opens and submits.
	var session struct {
		QuestionnaireType string `json:"questionnaireType"`
		Questionnaire     struct {
			Questions []struct {
				ID string `json:"id"`
			} `json:"questions"`
		} `json:"questionnaire"`
	}
	s.call(http.MethodGet, "/api/test/"+linkID, "", nil, http.StatusOK, &session)
	if session.QuestionnaireType != "mbti" || len(session.Questionnaire.Questions) != 2 {
		t.Errorf("session = %+v", session)
	}
	s.call(http.MethodPost, "/api/test/"+linkID+"/submit", "", map[string]string{"reportId": "r-1"}, http.StatusOK, nil)
	s.call(http.MethodPost, "/api/test/"+linkID+"/submit", "", map[string]string{"reportId": "r-2"}, http.StatusConflict, nil)
	s.call(http.MethodGet, "/api/test/"+linkID, "", nil, http.StatusConflict, nil)
	s.call(http.MethodGet, "/api/test/missing", "", nil, http.StatusNotFound, nil)

	var stats struct {
		TotalCompletions int `json:"totalCompletions"`
	}
	s.call(http.MethodGet, "/api/links/"+linkID+"/stats", userToken, nil, http.StatusOK, &stats)
	if stats.TotalCompletions != 1 {
		t.Errorf("completions = %d, want 1", stats.TotalCompletions)
	}

	// Users cannot force a status; admins can.
	other := issued.Links[1].ID
	s.call(http.MethodPost, "/api/links/"+other+"/force-status", userToken,
		map[string]string{"status": "used"}, http.StatusForbidden, nil)
	s.call(http.MethodPatch, "/api/links/"+other+"/status", userToken,
		map[string]string{"status": "disabled"}, http.StatusOK, nil)
	s.call(http.MethodPost, "/api/links/"+other+"/force-status", adminToken,
		map[string]string{"status": "expired"}, http.StatusOK, nil)

	var dash struct {
		TotalLinks int `json:"totalLinks"`
	}
	s.call(http.MethodGet, "/api/dashboard/stats", userToken, nil, http.StatusOK, &dash)
	if dash.TotalLinks != 2 {
		t.Errorf("dashboard total = %d, want 2", dash.TotalLinks)
	}
	s.call(http.MethodGet, "/api/dashboard/chart?period=15d", userToken, nil, http.StatusOK, nil)
	s.call(http.MethodGet, "/api/dashboard/chart?period=2d", userToken, nil, http.StatusBadRequest, nil)

	var batch struct {
		Succeeded []string `json:"succeeded"`
	}
	s.call(http.MethodPost, "/api/links/batch-delete", userToken,
		map[string][]string{"linkIds": {linkID, other}}, http.StatusOK, &batch)
	if len(batch.Succeeded) != 2 {
		t.Errorf("batch delete = %+v", batch)
	}
}

func TestNotificationsOverHTTP(t *testing.T) {
	s := newTestServer(t)
	_, userToken, _ := s.setupUser(0)

	var count struct {
		Count int `json:"count"`
	}
	s.call(http.MethodGet, "/api/notifications/unread-count", userToken, nil, http.StatusOK, &count)
	if count.Count != 0 {
		t.Errorf("unread = %d, want 0", count.Count)
	}

	var listing struct {
		Notifications []any `json:"notifications"`
		UnreadCount   int   `json:"unreadCount"`
	}
	s.call(http.MethodGet, "/api/notifications?read=false", userToken, nil, http.StatusOK, &listing)
	s.call(http.MethodGet, "/api/notifications?read=maybe", userToken, nil, http.StatusBadRequest, nil)
	s.call(http.MethodPatch, "/api/notifications/nope/read", userToken, nil, http.StatusNotFound, nil)

	var marked struct {
		MarkedCount int `json:"markedCount"`
	}
	s.call(http.MethodPost, "/api/notifications/mark-all-read", userToken, nil, http.StatusOK, &marked)
	if marked.MarkedCount != 0 {
		t.Errorf("marked = %d, want 0", marked.MarkedCount)
	}
}

func TestNotificationsBulkBodies(t *testing.T) {
	s := newTestServer(t)
	_, userToken, userID := s.setupUser(0)
	for _, id := range []string{"ntf-1", "ntf-2", "ntf-3", "ntf-4"} {
		if err := s.svc.Notifications.Create(t.Context(), &models.Notification{
			ID: id, UserID: userID, Type: models.NotificationSystemUpdate, Title: "t", Message: "m",
		}); err != nil {
			t.Fatal(err)
		}
	}

	var marked struct {
		MarkedCount int `json:"markedCount"`
	}
	s.call(http.MethodPatch, "/api/notifications/mark-read", userToken,
		map[string][]string{"notificationIds": {"ntf-1", "ntf-2", "missing"}}, http.StatusOK, &marked)
	if marked.MarkedCount != 2 {
		t.Errorf("PATCH marked = %d, want 2", marked.MarkedCount)
	}
	s.call(http.MethodPost, "/api/notifications/mark-read", userToken,
		map[string][]string{"ids": {"ntf-3"}}, http.StatusOK, &marked)
	if marked.MarkedCount != 1 {
		t.Errorf("POST marked = %d, want 1", marked.MarkedCount)
	}
	s.call(http.MethodPatch, "/api/notifications/mark-read", userToken,
		map[string][]string{"notificationIds": {}}, http.StatusBadRequest, nil)

	var deleted struct {
		DeletedCount int `json:"deletedCount"`
	}
	s.call(http.MethodPost, "/api/notifications/batch-delete", userToken,
		map[string][]string{"notificationIds": {"ntf-1", "ntf-4"}}, http.StatusOK, &deleted)
	if deleted.DeletedCount != 2 {
		t.Errorf("deleted = %d, want 2", deleted.DeletedCount)
	}

	var count struct {
		Count int `json:"count"`
	}
	s.call(http.MethodGet, "/api/notifications/unread-count", userToken, nil, http.StatusOK, &count)
	if count.Count != 0 {
		t.Errorf("unread = %d, want 0", count.Count)
	}
}

func signedNotification(outTradeNo, status, key string) url.Values {
	p := zpay.Params{
		"pid":          "1001",
		"trade_no":     "2026030109000001",
		"out_trade_no": outTradeNo,
		"type":         "alipay",
		"name":         "MBTI",
		"money":        "9.90",
		"trade_status": status,
	}
	p[zpay.FieldSign] = zpay.Sign(p, key)
	p[zpay.FieldSignType] = zpay.SignTypeMD5
	v := url.Values{}
	for k, val := range p {
		v.Set(k, val)
	}
	return v
}

func (s *testServer) notify(v url.Values) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.do(http.MethodGet, "/api/payment/notify?"+v.Encode(), "", nil)
}

func TestPaymentOverHTTP(t *testing.T) {
	s := newTestServer(t)
	adminToken, userToken, _ := s.setupUser(0)
	s.importQuestionnaire(adminToken, "mbti")

	var checkout struct {
		Order struct {
			OutTradeNo string `json:"outTradeNo"`
			Status     string `json:"status"`
		} `json:"order"`
		PayURL string `json:"payUrl"`
	}
	s.call(http.MethodPost, "/api/payment/create", userToken, map[string]string{
		"name": "MBTI", "money": "9.90", "questionnaireType": "mbti", "type": "alipay",
	}, http.StatusCreated, &checkout)
	if checkout.Order.Status != "pending" || !strings.HasPrefix(checkout.PayURL, "https://pay.example.org/submit.php?") {
		t.Fatalf("checkout = %+v", checkout)
	}
	tradeNo := checkout.Order.OutTradeNo

	tests := []struct {
		name       string
		params     url.Values
		wantStatus int
		wantBody   string
		wantHeader string
	}{
		{"bad signature", signedNotification(tradeNo, zpay.TradeSuccess, "wrong-key-0000000"), http.StatusBadRequest, "invalid sign", ""},
		{"not yet paid", signedNotification(tradeNo, "WAIT_BUYER_PAY", merchantKey), http.StatusOK, "ignored", ""},
		{"processed", signedNotification(tradeNo, zpay.TradeSuccess, merchantKey), http.StatusOK, "success", "processed"},
		{"replay", signedNotification(tradeNo, zpay.TradeSuccess, merchantKey), http.StatusOK, "success", "already_paid"},
		{"unknown order", signedNotification("NOPE", zpay.TradeSuccess, merchantKey), http.StatusOK, "success", "unknown_order"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.notify(tt.params)
			if w.Code != tt.wantStatus || w.Body.String() != tt.wantBody {
				t.Fatalf("got %d %q, want %d %q", w.Code, w.Body.String(), tt.wantStatus, tt.wantBody)
			}
			if got := w.Header().Get(ReconcileOutcomeHeader); got != tt.wantHeader {
				t.Errorf("%s = %q, want %q", ReconcileOutcomeHeader, got, tt.wantHeader)
			}
		})
	}

	var view struct {
		Status string  `json:"status"`
		LinkID *string `json:"linkId"`
	}
	s.call(http.MethodGet, "/api/payment/order-status?out_trade_no="+tradeNo, "", nil, http.StatusOK, &view)
	if view.Status != "paid" || view.LinkID == nil {
		t.Fatalf("order status = %+v", view)
	}
	s.call(http.MethodGet, "/api/payment/order-status", "", nil, http.StatusBadRequest, nil)
	s.call(http.MethodGet, "/api/payment/order-status?out_trade_no=missing", "", nil, http.StatusNotFound, nil)

	// The paid link belongs to the buyer.
	s.call(http.MethodGet, "/api/links/"+*view.LinkID, userToken, nil, http.StatusOK, nil)
}

func TestPaymentNotify_FailureLoggedOnce(t *testing.T) {
	var buf bytes.Buffer
	logging.Init(logging.Config{Level: "debug", Format: "json", Output: &buf})
	defer logging.Init(logging.DefaultConfig())

	s := newTestServerWith(t, func(c *config.Config) { c.Payment.Key = "your-key" })
	rec := s.notify(signedNotification("T-cfg", zpay.TradeSuccess, "your-key"))
	if rec.Code != http.StatusInternalServerError || rec.Body.String() != "fail" {
		t.Fatalf("notify = %d %q, want 500 fail", rec.Code, rec.Body.String())
	}
	if n := strings.Count(buf.String(), "payment_config_error"); n != 1 {
		t.Errorf("config error logged %d times, want 1:\n%s", n, buf.String())
	}
}

func TestAdminIndexes(t *testing.T) {
	s := newTestServer(t)
	s.register("admin1")
	token := s.login("admin1")

	var summary struct {
		Clean bool `json:"clean"`
	}
	s.call(http.MethodGet, "/api/admin/indexes/verify", token, nil, http.StatusOK, &summary)
	if !summary.Clean {
		t.Error("fresh store reported index drift")
	}
	s.call(http.MethodPost, "/api/admin/indexes/repair", token, nil, http.StatusOK, nil)
}

func TestNotFoundRoute(t *testing.T) {
	s := newTestServer(t)
	s.register("admin1")
	token := s.login("admin1")
	s.call(http.MethodGet, "/api/nothing-here", token, nil, http.StatusNotFound, nil)
}
