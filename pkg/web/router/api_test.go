package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"car-catalog/pkg/common/config"
	"car-catalog/pkg/core/blob"
	"car-catalog/pkg/core/blob/blobtest"
	carmodel "car-catalog/pkg/core/car/model"
	carimpl "car-catalog/pkg/core/car/repository/dao/impl"
	carservice "car-catalog/pkg/core/car/service"
	usermodel "car-catalog/pkg/core/user/model"
	userimpl "car-catalog/pkg/core/user/repository/dao/impl"
	userservice "car-catalog/pkg/core/user/service"
	"car-catalog/pkg/web/handler"
	"car-catalog/pkg/web/router"
)

type testServer struct {
	h     *server.Hertz
	blobs *blobtest.MemoryStore
}

func newTestServer(t *testing.T, probes ...handler.Probe) *testServer {
	t.Helper()
	return newTestServerWith(t, func(cfg *config.Config) { cfg.Middleware.RateLimit.Rate = 0 }, probes...)
}

func newTestServerWith(t *testing.T, configure func(*config.Config), probes ...handler.Probe) *testServer {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, usermodel.AutoMigrate(db))
	require.NoError(t, carmodel.AutoMigrate(db))

	cfg := config.Default()
	cfg.Middleware.JWT.Secret = "test-secret"
	if configure != nil {
		configure(cfg)
	}

	blobs := blobtest.NewMemoryStore()
	svc := router.Services{
		Users:    userservice.NewUserService(userimpl.NewGormUserRepository(db), userservice.WithHashCost(bcrypt.MinCost)),
		Cars:     carservice.NewCarService(carimpl.NewGormCarRepository(db), blobs),
		Uploader: blob.NewUploader(blobs, cfg.Store.CallTimeout),
		Probes:   probes,
	}

	h := server.New()
	require.NoError(t, router.RegisterAPIs(h, cfg, svc))
	return &testServer{h: h, blobs: blobs}
}

type result struct {
	status int
	body   map[string]any
	raw    []byte
	header func(string) string
}

func (s *testServer) do(t *testing.T, method, path string, payload any, token string) result {
	t.Helper()
	var data []byte
	switch v := payload.(type) {
	case nil:
	case []byte:
		data = v
	default:
		var err error
		data, err = json.Marshal(v)
		require.NoError(t, err)
	}

	headers := []ut.Header{
		{Key: "User-Agent", Value: "car-catalog-test"},
		{Key: "Content-Type", Value: "application/json"},
	}
	if token != "" {
		headers = append(headers, ut.Header{Key: "Authorization", Value: "Bearer " + token})
	}

	var body *ut.Body
	if data != nil {
		body = &ut.Body{Body: bytes.NewReader(data), Len: len(data)}
	}
	resp := ut.PerformRequest(s.h.Engine, method, path, body, headers...).Result()

	res := result{
		status: resp.StatusCode(),
		raw:    append([]byte(nil), resp.Body()...),
		header: func(k string) string { return string(resp.Header.Peek(k)) },
	}
	if strings.HasPrefix(string(resp.Header.ContentType()), "application/json") {
		require.NoError(t, json.Unmarshal(res.raw, &res.body), string(res.raw))
	}
	return res
}

func (s *testServer) signIn(t *testing.T, email, password string) string {
	t.Helper()
	r := s.do(t, "POST", "/sign-in", map[string]string{"identifier": email, "password": password}, "")
	require.Equal(t, 200, r.status, string(r.raw))
	token, _ := r.body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthCheckRoute(t *testing.T) {
	s := newTestServer(t)

	r := s.do(t, "GET", "/health", nil, "")
	assert.Equal(t, 200, r.status)
	assert.Equal(t, true, r.body["success"])
	assert.Equal(t, "healthy", r.body["message"])
}

func TestHealthCheckFailsWhenCoreProbeFails(t *testing.T) {
	s := newTestServer(t, handler.Probe{
		Name:   "database",
		IsCore: true,
		Check:  func(context.Context) error { return assert.AnError },
	})

	r := s.do(t, "GET", "/health", nil, "")
	assert.Equal(t, 500, r.status)
	assert.Equal(t, false, r.body["success"])
}

func TestCarLifecycleScenario(t *testing.T) {
	s := newTestServer(t)

	ana := map[string]string{"name": "Ana", "email": "ana@x.com", "password": "secret1"}
	r := s.do(t, "POST", "/sign-up", ana, "")
	require.Equal(t, 201, r.status, string(r.raw))
	assert.Equal(t, true, r.body["success"])

	r = s.do(t, "POST", "/sign-up", ana, "")
	assert.Equal(t, 400, r.status)
	assert.Contains(t, r.body["message"], "already exists")

	r = s.do(t, "POST", "/sign-in", map[string]string{"identifier": "ana@x.com", "password": "wrong-pass"}, "")
	assert.Equal(t, 401, r.status)
	assert.Equal(t, "Invalid email or password.", r.body["message"])

	r = s.do(t, "POST", "/sign-up", map[string]string{"name": "Bob", "email": "bob@x.com", "password": "secret2"}, "")
	require.Equal(t, 201, r.status)

	anaToken := s.signIn(t, "ana@x.com", "secret1")
	bobToken := s.signIn(t, "bob@x.com", "secret2")

	r = s.do(t, "POST", "/cars", map[string]any{
		"title":       "Civic",
		"description": "2020 model",
		"tags":        []string{"sedan", "used"},
		"images":      []string{},
	}, anaToken)
	require.Equal(t, 201, r.status, string(r.raw))
	car := r.body["car"].(map[string]any)
	id := car["_id"].(string)
	assert.Equal(t, []any{"sedan", "used"}, car["tags"])
	assert.Equal(t, []any{}, car["images"])

	r = s.do(t, "GET", "/cars", nil, anaToken)
	require.Equal(t, 200, r.status)
	cars := r.body["cars"].([]any)
	require.Len(t, cars, 1)
	assert.Equal(t, id, cars[0].(map[string]any)["_id"])

	r = s.do(t, "GET", "/cars", nil, bobToken)
	require.Equal(t, 200, r.status)
	assert.Empty(t, r.body["cars"])

	r = s.do(t, "DELETE", "/cars/"+id, nil, bobToken)
	assert.Equal(t, 403, r.status)
	assert.Equal(t, "Unauthorized.", r.body["message"])

	r = s.do(t, "DELETE", "/cars/"+id, nil, anaToken)
	assert.Equal(t, 200, r.status)
	assert.Equal(t, "Car deleted successfully.", r.body["message"])

	r = s.do(t, "DELETE", "/cars/"+id, nil, anaToken)
	assert.Equal(t, 404, r.status)
	assert.Equal(t, false, r.body["success"])
	assert.Equal(t, "Car not found.", r.body["message"])
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{"GET", "/cars"},
		{"POST", "/cars"},
		{"DELETE", "/cars/abc"},
		{"POST", "/upload?filename=a.png"},
		{"GET", "/me"},
		{"GET", "/list-cars"},
	} {
		r := s.do(t, tc.method, tc.path, nil, "")
		assert.Equal(t, 401, r.status, tc.path)
		assert.Equal(t, false, r.body["success"], tc.path)
	}

	r := s.do(t, "GET", "/cars", nil, "not-a-token")
	assert.Equal(t, 401, r.status)
}

func TestCreateValidationMessage(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, 201, s.do(t, "POST", "/sign-up", map[string]string{"name": "Ana", "email": "ana@x.com", "password": "secret1"}, "").status)
	token := s.signIn(t, "ana@x.com", "secret1")

	images := make([]string, 11)
	for i := range images {
		images[i] = blobtest.BaseURL + "/cars/" + strings.Repeat("x", i+1) + ".png"
	}
	r := s.do(t, "POST", "/cars", map[string]any{"title": "", "description": "d", "images": images}, token)
	assert.Equal(t, 400, r.status)
	assert.Equal(t, "Title is required, Maximum of 10 images allowed", r.body["message"])

	r = s.do(t, "GET", "/cars", nil, token)
	assert.Empty(t, r.body["cars"])
}

func TestSignUpValidation(t *testing.T) {
	s := newTestServer(t)

	r := s.do(t, "POST", "/sign-up", map[string]string{"name": "", "email": "nope", "password": "123"}, "")
	assert.Equal(t, 400, r.status)
	assert.Equal(t, "Name is required, Invalid email address, Password must be at least 6 characters", r.body["message"])
}

func TestUploadAndMe(t *testing.T) {
	s := newTestServer(t)
	require.Equal(t, 201, s.do(t, "POST", "/sign-up", map[string]string{"name": "Ana", "email": "ana@x.com", "password": "secret1"}, "").status)
	token := s.signIn(t, "ana@x.com", "secret1")

	r := s.do(t, "POST", "/upload?filename=civic.png", []byte("png-bytes"), token)
	require.Equal(t, 200, r.status, string(r.raw))
	url := r.body["url"].(string)
	assert.True(t, strings.HasPrefix(url, blobtest.BaseURL+"/cars/"))
	assert.True(t, s.blobs.Has(url))
	assert.Equal(t, "image/png", r.body["contentType"])

	r = s.do(t, "POST", "/upload", []byte("png-bytes"), token)
	assert.Equal(t, 400, r.status)
	assert.Equal(t, "Filename is required.", r.body["message"])

	r = s.do(t, "POST", "/upload?filename=.", []byte("png-bytes"), token)
	assert.Equal(t, 400, r.status)
	assert.Equal(t, "Filename is required.", r.body["message"])

	r = s.do(t, "POST", "/upload?filename=empty.png", nil, token)
	assert.Equal(t, 400, r.status)
	assert.Equal(t, "No file provided.", r.body["message"])

	r = s.do(t, "GET", "/me", nil, token)
	require.Equal(t, 200, r.status)
	assert.Equal(t, "Ana", r.body["name"])
	assert.Equal(t, "ana@x.com", r.body["email"])
}

func TestPublishWithTenImagesUnderDefaultRateLimit(t *testing.T) {
	s := newTestServerWith(t, nil)

	r := s.do(t, "POST", "/sign-up", map[string]string{"name": "Ana", "email": "ana@x.com", "password": "secret1"}, "")
	require.Equal(t, 201, r.status, string(r.raw))
	token := s.signIn(t, "ana@x.com", "secret1")

	images := make([]string, 0, 10)
	for i := 0; i < 10; i++ {
		r = s.do(t, "POST", fmt.Sprintf("/upload?filename=photo-%d.png", i), []byte("png-bytes"), token)
		require.Equal(t, 200, r.status, "upload %d: %s", i, r.raw)
		images = append(images, r.body["url"].(string))
	}

	r = s.do(t, "POST", "/cars", map[string]any{
		"title":       "Civic",
		"description": "2020 model",
		"tags":        []string{"sedan"},
		"images":      images,
	}, token)
	require.Equal(t, 201, r.status, string(r.raw))
	assert.Len(t, r.body["car"].(map[string]any)["images"], 10)
}

func TestPageGating(t *testing.T) {
	s := newTestServer(t)

	r := s.do(t, "GET", "/dashboard", nil, "")
	assert.Equal(t, 302, r.status)
	assert.True(t, strings.HasSuffix(r.header("Location"), "/signin"), r.header("Location"))

	r = s.do(t, "GET", "/signin", nil, "")
	assert.Equal(t, 200, r.status)

	require.Equal(t, 201, s.do(t, "POST", "/sign-up", map[string]string{"name": "Ana", "email": "ana@x.com", "password": "secret1"}, "").status)
	token := s.signIn(t, "ana@x.com", "secret1")

	r = s.do(t, "GET", "/signup", nil, token)
	assert.Equal(t, 302, r.status)
	assert.True(t, strings.HasSuffix(r.header("Location"), "/dashboard"), r.header("Location"))

	r = s.do(t, "GET", "/dashboard", nil, token)
	assert.Equal(t, 200, r.status)
	assert.Contains(t, string(r.raw), "Dashboard")
}

func TestSecurityRejectsMissingUserAgent(t *testing.T) {
	s := newTestServer(t)

	resp := ut.PerformRequest(s.h.Engine, "GET", "/health", nil).Result()
	assert.Equal(t, 400, resp.StatusCode())
}

func TestMetricsExposed(t *testing.T) {
	s := newTestServer(t)
	s.do(t, "GET", "/health", nil, "")

	r := s.do(t, "GET", "/metrics", nil, "")
	assert.Equal(t, 200, r.status)
	assert.Contains(t, string(r.raw), "http_requests_total")
}
