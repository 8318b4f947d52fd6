package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"foodshare/internal/auth"
	"foodshare/internal/db"
	"foodshare/internal/metrics"
	"foodshare/internal/models"
	"foodshare/mocks"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T, store db.Store) http.Handler {
	t.Helper()

	reg := prometheus.NewRegistry()
	s := NewServer(
		store,
		auth.NewTokenService(testSecret, time.Hour),
		metrics.NewCollector(reg),
		zap.NewNop(),
		Options{
			AllowedOrigins: []string{"http://localhost:5173"},
			CookieSecure:   true,
			Gatherer:       reg,
		},
	)
	return s.RegisterRoutes()
}

// newMockServer wires a server to gomock collections. Any call without a
// matching EXPECT fails the test.
func newMockServer(t *testing.T) (http.Handler, *mocks.MockCollection, *mocks.MockCollection) {
	t.Helper()

	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	foods := mocks.NewMockCollection(ctrl)
	requests := mocks.NewMockCollection(ctrl)

	store.EXPECT().Collection(models.FoodsCollection).Return(foods)
	store.EXPECT().Collection(models.FoodRequestsCollection).Return(requests)

	return newTestServer(t, store), foods, requests
}

func do(t *testing.T, h http.Handler, method, target string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func tokenCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("token cookie not set")
	return nil
}

func login(t *testing.T, h http.Handler, email string) *http.Cookie {
	t.Helper()
	w := do(t, h, http.MethodPost, "/jwt", map[string]any{"email": email})
	require.Equal(t, http.StatusOK, w.Code)
	return tokenCookie(t, w)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestProtectedRoutesRejectWithoutQueryingStore(t *testing.T) {
	h, _, _ := newMockServer(t)

	otherSecret, err := auth.NewTokenService("another-secret", time.Hour).Issue(models.Identity{Email: "u@x.com"})
	require.NoError(t, err)
	expired, err := auth.NewTokenService(testSecret, -time.Minute).Issue(models.Identity{Email: "u@x.com"})
	require.NoError(t, err)
	valid := login(t, h, "u@x.com")

	id := primitive.NewObjectID().Hex()

	tests := []struct {
		name       string
		target     string
		cookie     *http.Cookie
		wantStatus int
		wantBody   string
	}{
		{
			name:       "list without cookie",
			target:     "/foodRequest?email=u@x.com",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"message":"unauthorized access"}`,
		},
		{
			name:       "get by id without cookie",
			target:     "/foodRequest/" + id + "?email=u@x.com",
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"message":"unauthorized access"}`,
		},
		{
			name:       "token signed with another secret",
			target:     "/foodRequest?email=u@x.com",
			cookie:     &http.Cookie{Name: auth.CookieName, Value: otherSecret},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"message":"unauthorized access"}`,
		},
		{
			name:       "expired token",
			target:     "/foodRequest?email=u@x.com",
			cookie:     &http.Cookie{Name: auth.CookieName, Value: expired},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"message":"unauthorized access"}`,
		},
		{
			name:       "someone else's requests",
			target:     "/foodRequest?email=v@x.com",
			cookie:     valid,
			wantStatus: http.StatusForbidden,
			wantBody:   `{"message":"forbidden access"}`,
		},
		{
			name:       "email differs only in case",
			target:     "/foodRequest/" + id + "?email=U@X.COM",
			cookie:     valid,
			wantStatus: http.StatusForbidden,
			wantBody:   `{"message":"forbidden access"}`,
		},
		{
			name:       "missing email parameter",
			target:     "/foodRequest",
			cookie:     valid,
			wantStatus: http.StatusForbidden,
			wantBody:   `{"message":"forbidden access"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var cookies []*http.Cookie
			if tt.cookie != nil {
				cookies = append(cookies, tt.cookie)
			}

			w := do(t, h, http.MethodGet, tt.target, nil, cookies...)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestTokenWithoutStringEmailIsForbidden(t *testing.T) {
	h, _, _ := newMockServer(t)

	issue := func(body string) *http.Cookie {
		w := do(t, h, http.MethodPost, "/jwt", body)
		require.Equal(t, http.StatusOK, w.Code)
		return tokenCookie(t, w)
	}
	numeric := issue(`{"email":5}`)
	nameOnly := issue(`{"name":"x"}`)

	tests := []struct {
		name   string
		target string
		cookie *http.Cookie
	}{
		{name: "numeric email, no parameter", target: "/foodRequest", cookie: numeric},
		{name: "numeric email, matching text", target: "/foodRequest?email=5", cookie: numeric},
		{name: "no email claim, empty parameter", target: "/foodRequest?email=", cookie: nameOnly},
		{name: "no email claim, by id with empty parameter", target: "/foodRequest/" + primitive.NewObjectID().Hex() + "?email=", cookie: nameOnly},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, http.MethodGet, tt.target, nil, tt.cookie)

			assert.Equal(t, http.StatusForbidden, w.Code)
			assert.JSONEq(t, `{"message":"forbidden access"}`, w.Body.String())
		})
	}
}

func TestTokenWithoutEmailListsAllWithoutParameter(t *testing.T) {
	h, _, requests := newMockServer(t)

	w := do(t, h, http.MethodPost, "/jwt", `{"name":"x"}`)
	require.Equal(t, http.StatusOK, w.Code)

	requests.EXPECT().Find(gomock.Any(), db.Filter{}).Return([]models.Document{}, nil)

	w = do(t, h, http.MethodGet, "/foodRequest", nil, tokenCookie(t, w))
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

func TestListFoodRequestsFiltersByOwner(t *testing.T) {
	h, _, requests := newMockServer(t)
	cookie := login(t, h, "u@x.com")

	requests.EXPECT().
		Find(gomock.Any(), db.Filter{"userEmail": "u@x.com"}).
		Return([]models.Document{{"foodId": "f1", "userEmail": "u@x.com"}}, nil)

	w := do(t, h, http.MethodGet, "/foodRequest?email=u@x.com", nil, cookie)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"foodId":"f1","userEmail":"u@x.com"}]`, w.Body.String())
}

func TestStoreFailureIsInternalError(t *testing.T) {
	h, foods, _ := newMockServer(t)

	foods.EXPECT().Find(gomock.Any(), db.Filter{}).Return(nil, errors.New("connection reset"))
	foods.EXPECT().EstimatedCount(gomock.Any()).Return(int64(0), db.ErrUnavailable)

	for _, target := range []string{"/foods", "/foodsCount"} {
		w := do(t, h, http.MethodGet, target, nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code, target)
		assert.JSONEq(t, `{"message":"internal server error"}`, w.Body.String())
	}

	w := do(t, h, http.MethodGet, "/metrics", nil)
	assert.Contains(t, w.Body.String(), `foodshare_store_errors_total{collection="foods",operation="find"} 1`)
}

func TestUpdateSendsOnlyAllowListedFields(t *testing.T) {
	h, foods, requests := newMockServer(t)
	id := primitive.NewObjectID().Hex()

	foods.EXPECT().
		UpsertByID(gomock.Any(), id, models.Document{
			"name": "Rice", "image": nil, "location": nil, "time": nil, "notes": nil,
		}).
		Return(&models.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: id}, nil)
	requests.EXPECT().
		UpsertByID(gomock.Any(), id, models.Document{"status": "accepted"}).
		Return(&models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: 1}, nil)

	w := do(t, h, http.MethodPut, "/food/"+id, map[string]any{"name": "Rice", "donor": "ignored"})
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPut, "/foodRequest/"+id, map[string]any{"status": "accepted", "userEmail": "ignored"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"acknowledged":true,"matchedCount":1,"modifiedCount":1,"upsertedCount":0,"upsertedId":null}`,
		w.Body.String())
}

func TestFoodRequestOwnerSeesOnlyOwnRequests(t *testing.T) {
	h := newTestServer(t, db.NewMemory())
	cookie := login(t, h, "u@x.com")

	for _, email := range []string{"u@x.com", "v@x.com", "u@x.com"} {
		w := do(t, h, http.MethodPost, "/foodRequest", map[string]any{"foodId": "f1", "userEmail": email, "status": "pending"})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := do(t, h, http.MethodGet, "/foodRequest?email=u@x.com", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)

	docs := decode[[]map[string]any](t, w)
	require.Len(t, docs, 2)
	for _, d := range docs {
		assert.Equal(t, "u@x.com", d["userEmail"])
	}

	id, ok := docs[0]["_id"].(string)
	require.True(t, ok)
	w = do(t, h, http.MethodGet, "/foodRequest/"+id+"?email=u@x.com", nil, cookie)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, id, decode[map[string]any](t, w)["_id"])
}

func TestUpsertCreatesMissingFood(t *testing.T) {
	h := newTestServer(t, db.NewMemory())
	id := primitive.NewObjectID().Hex()

	w := do(t, h, http.MethodPut, "/food/"+id, map[string]any{"name": "Rice"})
	require.Equal(t, http.StatusOK, w.Code)

	res := decode[map[string]any](t, w)
	assert.Equal(t, float64(1), res["upsertedCount"])
	assert.Equal(t, id, res["upsertedId"])

	w = do(t, h, http.MethodGet, "/food/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)

	food := decode[map[string]any](t, w)
	assert.Equal(t, "Rice", food["name"])
	assert.Equal(t, id, food["_id"])
	for _, f := range []string{"image", "location", "time", "notes"} {
		assert.Contains(t, food, f)
		assert.Nil(t, food[f])
	}
}

func TestFoodLifecycle(t *testing.T) {
	h := newTestServer(t, db.NewMemory())

	w := do(t, h, http.MethodPost, "/foods", map[string]any{"name": "Bread", "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	inserted := decode[map[string]any](t, w)
	assert.Equal(t, true, inserted["acknowledged"])
	id, ok := inserted["insertedId"].(string)
	require.True(t, ok)

	w = do(t, h, http.MethodGet, "/foodsCount", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/foods", nil)
	require.Equal(t, http.StatusOK, w.Code)
	foods := decode[[]map[string]any](t, w)
	require.Len(t, foods, 1)
	assert.Equal(t, float64(3), foods[0]["quantity"])

	w = do(t, h, http.MethodDelete, "/foods/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"acknowledged":true,"deletedCount":1}`, w.Body.String())

	w = do(t, h, http.MethodGet, "/food/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", strings.TrimSpace(w.Body.String()))
}

func TestDeleteMissingDocumentReportsZero(t *testing.T) {
	h := newTestServer(t, db.NewMemory())
	id := primitive.NewObjectID().Hex()

	for _, target := range []string{"/foods/" + id, "/foodRequest/" + id} {
		w := do(t, h, http.MethodDelete, target, nil)
		require.Equal(t, http.StatusOK, w.Code, target)
		assert.JSONEq(t, `{"acknowledged":true,"deletedCount":0}`, w.Body.String())
	}
}

func TestMalformedInput(t *testing.T) {
	h := newTestServer(t, db.NewMemory())

	tests := []struct {
		name       string
		method     string
		target     string
		body       any
		wantStatus int
		wantBody   string
	}{
		{
			name:       "malformed id lookup",
			method:     http.MethodGet,
			target:     "/food/not-an-id",
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"message":"internal server error"}`,
		},
		{
			name:       "malformed id delete",
			method:     http.MethodDelete,
			target:     "/foodRequest/123",
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"message":"internal server error"}`,
		},
		{
			name:       "broken json",
			method:     http.MethodPost,
			target:     "/foods",
			body:       `{"name":`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"invalid request body"}`,
		},
		{
			name:       "json array",
			method:     http.MethodPost,
			target:     "/foodRequest",
			body:       `[{"name":"Rice"}]`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"invalid request body"}`,
		},
		{
			name:       "json null",
			method:     http.MethodPut,
			target:     "/food/" + primitive.NewObjectID().Hex(),
			body:       `null`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"message":"invalid request body"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.target, tt.body)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestIssueToken(t *testing.T) {
	h := newTestServer(t, db.NewMemory())

	w := do(t, h, http.MethodPost, "/jwt", map[string]any{"email": "u@x.com", "name": "U"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	c := tokenCookie(t, w)
	assert.True(t, c.HttpOnly)
	assert.True(t, c.Secure)
	assert.Equal(t, http.SameSiteNoneMode, c.SameSite)
	assert.Equal(t, int(time.Hour.Seconds()), c.MaxAge)

	identity, err := auth.NewTokenService(testSecret, time.Hour).Verify(c.Value)
	require.NoError(t, err)
	assert.Equal(t, "u@x.com", identity.Email)
	assert.Equal(t, "U", identity.Claims["name"])
}

func TestLogout(t *testing.T) {
	h := newTestServer(t, db.NewMemory())

	w := do(t, h, http.MethodPost, "/logout", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())

	c := tokenCookie(t, w)
	assert.Empty(t, c.Value)
	assert.Equal(t, -1, c.MaxAge)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestRoot(t *testing.T) {
	h := newTestServer(t, db.NewMemory())

	w := do(t, h, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Food sharing Server is running", w.Body.String())
}

func TestHealthz(t *testing.T) {
	tests := []struct {
		name       string
		store      db.Store
		wantStatus int
		wantBody   string
	}{
		{
			name:       "reachable store",
			store:      db.NewMemory(),
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
		{
			name:       "unavailable store",
			store:      db.Unavailable(errors.New("dial tcp: i/o timeout")),
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"unavailable"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, newTestServer(t, tt.store), http.MethodGet, "/healthz", nil)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	h := newTestServer(t, db.NewMemory())

	req := httptest.NewRequest(http.MethodOptions, "/foodRequest", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestStartStopsOnCancel(t *testing.T) {
	s := NewServer(
		db.NewMemory(),
		auth.NewTokenService(testSecret, time.Hour),
		metrics.NewCollector(prometheus.NewRegistry()),
		zap.NewNop(),
		Options{},
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Start(ctx, "127.0.0.1:0", time.Second) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
