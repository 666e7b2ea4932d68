package contract

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/daniiyalw/ai-icap-exam/internal/adapters/evaluator"
	httpadapter "github.com/daniiyalw/ai-icap-exam/internal/adapters/http"
	"github.com/daniiyalw/ai-icap-exam/internal/adapters/security"
	"github.com/daniiyalw/ai-icap-exam/internal/application"
	"github.com/daniiyalw/ai-icap-exam/internal/contracts"
	"github.com/daniiyalw/ai-icap-exam/internal/domain"
	"github.com/daniiyalw/ai-icap-exam/internal/ports"
)

func newRouter(t *testing.T) (http.Handler, *application.Service) {
	t.Helper()

	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			AdminUsername: "admin",
			AdminPassword: "operator-secret",
			TokenTTL:      time.Hour,
			AdminTokenTTL: time.Hour,
		},
		Users:       newMemUserRepo(),
		Chapters:    newMemChapterRepo(),
		Outbox:      &memOutbox{},
		Tokens:      newMemTokenStore(),
		AdminTokens: newMemAdminTokenStore(),
		Hasher:      security.NewBcryptHasher(4),
		Fallback:    evaluator.NewRulesEvaluator(),
	})
	return httpadapter.NewRouter(httpadapter.NewHandler(svc)), svc
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestVerifyContractDemoMode(t *testing.T) {
	t.Parallel()

	router, _ := newRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/verify", map[string]any{"token": nil, "chapter": 1}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res contracts.VerifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.Valid || res.Mode != "demo" {
		t.Fatalf("expected flat demo grant, got %s", rec.Body.String())
	}

	// The valid field must sit at the response root, not inside an envelope.
	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("decode raw response: %v", err)
	}
	if _, ok := raw["valid"]; !ok {
		t.Fatalf("expected top-level valid field, got %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/verify", map[string]any{"token": nil, "chapter": 4}, nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Valid {
		t.Fatalf("demo mode must deny chapter 4, got %s", rec.Body.String())
	}
}

func TestVerifyContractInvalidToken(t *testing.T) {
	t.Parallel()

	router, _ := newRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/verify", map[string]any{"token": uuid.NewString(), "chapter": 1}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var res contracts.VerifyResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Valid || res.Mode != "invalid" {
		t.Fatalf("expected invalid-mode denial, got %s", rec.Body.String())
	}
}

func TestLoginContract(t *testing.T) {
	t.Parallel()

	router, svc := newRouter(t)
	if _, err := svc.AddUser(context.Background(), application.AddUserRequest{Username: "fatima", Password: "pass-123"}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	rec := doJSON(t, router, http.MethodPost, "/login", contracts.LoginRequest{Username: "fatima", Password: "pass-123"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res contracts.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !res.Success || res.Token == "" || res.Username != "fatima" {
		t.Fatalf("unexpected login response: %s", rec.Body.String())
	}

	// The issued token opens every chapter.
	verifyRec := doJSON(t, router, http.MethodPost, "/verify", map[string]any{"token": res.Token, "chapter": 9}, nil)
	var verifyRes contracts.VerifyResponse
	if err := json.Unmarshal(verifyRec.Body.Bytes(), &verifyRes); err != nil {
		t.Fatalf("decode verify response: %v", err)
	}
	if !verifyRes.Valid || verifyRes.Mode != "full" || verifyRes.Username != "fatima" {
		t.Fatalf("expected full-mode grant, got %s", verifyRec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/login", contracts.LoginRequest{Username: "fatima", Password: "wrong"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	res = contracts.LoginResponse{}
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Success || res.Token != "" {
		t.Fatalf("failed login must not issue a token: %s", rec.Body.String())
	}
}

func TestAdminEndpointsRequireToken(t *testing.T) {
	t.Parallel()

	router, _ := newRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/admin/add-user", contracts.AddUserRequest{Username: "x", Password: "y"}, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without Admin-Token, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/admin/add-user", contracts.AddUserRequest{Username: "x", Password: "y"},
		map[string]string{"Admin-Token": "bogus"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 with bogus Admin-Token, got %d", rec.Code)
	}
}

func TestAdminFlowContract(t *testing.T) {
	t.Parallel()

	router, _ := newRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/admin/login", contracts.LoginRequest{Username: "admin", Password: "wrong"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong admin password, got %d", rec.Code)
	}

	rec = doJSON(t, router, http.MethodPost, "/admin/login", contracts.LoginRequest{Username: "admin", Password: "operator-secret"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin login, got %d: %s", rec.Code, rec.Body.String())
	}
	var loginRes contracts.AdminLoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &loginRes); err != nil {
		t.Fatalf("decode admin login: %v", err)
	}
	if !loginRes.Success || loginRes.AdminToken == "" {
		t.Fatalf("unexpected admin login response: %s", rec.Body.String())
	}
	auth := map[string]string{"Admin-Token": loginRes.AdminToken}

	rec = doJSON(t, router, http.MethodPost, "/admin/check-token", nil, auth)
	var checkRes contracts.AdminTokenCheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &checkRes); err != nil {
		t.Fatalf("decode token check: %v", err)
	}
	if !checkRes.TokenProvided || !checkRes.TokenValid {
		t.Fatalf("expected valid token check, got %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/admin/add-user", contracts.AddUserRequest{Username: "zara", Password: "pass-123"}, auth)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 for add-user, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodPost, "/admin/update-chapter", contracts.UpsertChapterRequest{
		Number: 2,
		Name:   "Contract Act 1872",
		Questions: []domain.Question{
			{ID: "q1", Text: "Define consideration.", Marks: 5},
		},
	}, auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for update-chapter, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/admin/chapters", nil, auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for list chapters, got %d", rec.Code)
	}
	var listEnvelope struct {
		Status string `json:"status"`
		Data   struct {
			Chapters []contracts.ChapterPayload `json:"chapters"`
			Count    int                        `json:"count"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listEnvelope); err != nil {
		t.Fatalf("decode chapter list: %v", err)
	}
	if listEnvelope.Status != "success" || listEnvelope.Data.Count != 1 {
		t.Fatalf("unexpected chapter list: %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/chapter/2", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for public chapter read, got %d", rec.Code)
	}
	var chapter contracts.ChapterPayload
	if err := json.Unmarshal(rec.Body.Bytes(), &chapter); err != nil {
		t.Fatalf("decode chapter: %v", err)
	}
	if chapter.Number != 2 || chapter.Name != "Contract Act 1872" || len(chapter.Questions) != 1 {
		t.Fatalf("unexpected chapter payload: %s", rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodDelete, "/admin/delete-chapter/2", nil, auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for delete-chapter, got %d: %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, router, http.MethodGet, "/chapter/2", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestCheckAnswerContract(t *testing.T) {
	t.Parallel()

	router, _ := newRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/check-answer", contracts.CheckAnswerRequest{
		Chapter: 2,
		Answer:  "A valid contract under the Contract Act requires offer, acceptance and lawful consideration enforceable in court.",
	}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var res contracts.CheckAnswerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Status != "success" || res.Chapter != 2 || res.Timestamp == "" {
		t.Fatalf("unexpected check-answer response: %s", rec.Body.String())
	}
	if !strings.Contains(res.Result, "FINAL SCORE:") {
		t.Fatalf("expected a marking report, got: %s", res.Result)
	}

	rec = doJSON(t, router, http.MethodPost, "/check-answer", contracts.CheckAnswerRequest{Chapter: 2, Answer: "   "}, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty answer, got %d", rec.Code)
	}
}

func TestHealthEnvelope(t *testing.T) {
	t.Parallel()

	router, _ := newRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var envelope struct {
		Status string            `json:"status"`
		Data   map[string]string `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode health response: %v", err)
	}
	if envelope.Status != "success" || envelope.Data["status"] != "ok" {
		t.Fatalf("unexpected health response: %s", rec.Body.String())
	}
	if cc := rec.Header().Get("Cache-Control"); !strings.Contains(cc, "no-store") {
		t.Fatalf("expected no-store cache header, got %q", cc)
	}
}

// In-memory port implementations shared by the contract tests.

type memUserRepo struct {
	mu     sync.Mutex
	byName map[string]domain.User
}

func newMemUserRepo() *memUserRepo { return &memUserRepo{byName: map[string]domain.User{}} }

func (r *memUserRepo) CreateWithOutboxTx(_ context.Context, params ports.CreateUserParams, _ ports.OutboxEvent) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[params.Username]; exists {
		return domain.User{}, domain.ErrConflict
	}
	user := domain.User{
		UserID:       uuid.New(),
		Username:     params.Username,
		PasswordHash: params.PasswordHash,
		CreatedAt:    params.CreatedAtUTC,
		UpdatedAt:    params.CreatedAtUTC,
	}
	r.byName[params.Username] = user
	return user, nil
}

func (r *memUserRepo) GetByUsername(_ context.Context, username string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byName[username]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return user, nil
}

func (r *memUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	users := make([]domain.User, 0, len(r.byName))
	for _, u := range r.byName {
		users = append(users, u)
	}
	return users, nil
}

type memChapterRepo struct {
	mu       sync.Mutex
	byNumber map[int]domain.Chapter
}

func newMemChapterRepo() *memChapterRepo { return &memChapterRepo{byNumber: map[int]domain.Chapter{}} }

func (r *memChapterRepo) UpsertWithOutboxTx(_ context.Context, chapter domain.Chapter, _ ports.OutboxEvent) (domain.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byNumber[chapter.Number] = chapter
	return chapter, nil
}

func (r *memChapterRepo) GetByNumber(_ context.Context, number int) (domain.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chapter, ok := r.byNumber[number]
	if !ok {
		return domain.Chapter{}, domain.ErrNotFound
	}
	return chapter, nil
}

func (r *memChapterRepo) List(_ context.Context) ([]domain.Chapter, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	chapters := make([]domain.Chapter, 0, len(r.byNumber))
	for _, c := range r.byNumber {
		chapters = append(chapters, c)
	}
	return chapters, nil
}

func (r *memChapterRepo) DeleteWithOutboxTx(_ context.Context, number int, _ ports.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byNumber[number]; !ok {
		return domain.ErrNotFound
	}
	delete(r.byNumber, number)
	return nil
}

type memOutbox struct {
	mu     sync.Mutex
	events []ports.OutboxEvent
}

func (o *memOutbox) Enqueue(_ context.Context, event ports.OutboxEvent) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, event)
	return nil
}

func (o *memOutbox) ClaimUnpublished(context.Context, int, string, time.Time) ([]ports.OutboxRecord, error) {
	return nil, nil
}

func (o *memOutbox) MarkPublished(context.Context, uuid.UUID, string, time.Time) error { return nil }

func (o *memOutbox) MarkFailed(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

func (o *memOutbox) MarkDeadLettered(context.Context, uuid.UUID, string, string, time.Time) error {
	return nil
}

type memTokenStore struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemTokenStore() *memTokenStore { return &memTokenStore{values: map[string]string{}} }

func (s *memTokenStore) Put(_ context.Context, token, username string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[token] = username
	return nil
}

func (s *memTokenStore) Lookup(_ context.Context, token string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	username, ok := s.values[token]
	return username, ok, nil
}

func (s *memTokenStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, token)
	return nil
}

type memAdminTokenStore struct {
	mu     sync.Mutex
	values map[string]bool
}

func newMemAdminTokenStore() *memAdminTokenStore {
	return &memAdminTokenStore{values: map[string]bool{}}
}

func (s *memAdminTokenStore) Put(_ context.Context, token string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[token] = true
	return nil
}

func (s *memAdminTokenStore) Validate(_ context.Context, token string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.values[token], nil
}
