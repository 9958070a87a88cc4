package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/scentdesk/usage-backend/internal/apperrors"
	"github.com/scentdesk/usage-backend/internal/middleware"
	"github.com/scentdesk/usage-backend/internal/models"
	"github.com/scentdesk/usage-backend/internal/services"
	"github.com/scentdesk/usage-backend/web"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

const goodToken = "good-token"

var testCookie = middleware.SessionCookie{Name: "sessionid"}

type fakeAuth struct {
	mu         sync.Mutex
	principal  *models.Principal
	password   string
	staff      *models.Staff
	registered []models.RegisterInput
	registerFn func(models.RegisterInput) error
	loggedOut  []string
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{
		principal: &models.Principal{UserID: uuid.New(), Username: "alice", SessionID: uuid.New()},
		password:  "s3cret!",
	}
}

func (f *fakeAuth) Authenticate(ctx context.Context, token string) (*models.Principal, error) {
	if token == goodToken {
		return f.principal, nil
	}
	return nil, apperrors.Authentication("Your session has expired. Please log in again.")
}

func (f *fakeAuth) Login(ctx context.Context, username, password string, client models.ClientInfo) (*services.LoginResult, error) {
	if username != f.principal.Username || password != f.password {
		return nil, apperrors.Authentication("Invalid username or password.")
	}
	return &services.LoginResult{
		Token:     goodToken,
		ExpiresAt: time.Now().Add(time.Hour),
		User:      &models.User{ID: f.principal.UserID, Username: username},
	}, nil
}

func (f *fakeAuth) Register(ctx context.Context, input models.RegisterInput) (*models.User, error) {
	if f.registerFn != nil {
		if err := f.registerFn(input); err != nil {
			return nil, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.registered = append(f.registered, input)
	return &models.User{ID: uuid.New(), Username: input.Username, Email: input.Email}, nil
}

func (f *fakeAuth) Logout(ctx context.Context, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedOut = append(f.loggedOut, token)
}

func (f *fakeAuth) ResolveStaff(ctx context.Context, principal *models.Principal) (*models.Staff, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.staff != nil {
		return f.staff, false, nil
	}
	f.staff = &models.Staff{ID: uuid.New(), Name: principal.Username, UserID: uuid.NullUUID{UUID: principal.UserID, Valid: true}}
	return f.staff, true, nil
}

func (f *fakeAuth) SessionTTL() time.Duration {
	return time.Hour
}

type fakeCatalog struct {
	mu       sync.Mutex
	perfumes []*models.Perfume
}

func (f *fakeCatalog) find(id uuid.UUID) (int, *models.Perfume) {
	for i, p := range f.perfumes {
		if p.ID == id {
			return i, p
		}
	}
	return -1, nil
}

func (f *fakeCatalog) List(ctx context.Context, order models.PerfumeOrder) ([]models.Perfume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Perfume, 0, len(f.perfumes))
	for _, p := range f.perfumes {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeCatalog) Get(ctx context.Context, id uuid.UUID) (*models.Perfume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, p := f.find(id); p != nil {
		return p, nil
	}
	return nil, apperrors.NotFound("Perfume not found.")
}

func (f *fakeCatalog) Add(ctx context.Context, form models.PerfumeForm) (*models.Perfume, error) {
	input, err := form.ToInput()
	if err != nil {
		return nil, err
	}
	p := &models.Perfume{ID: uuid.New(), Brand: input.Brand, Name: input.Name, CapacityML: input.CapacityML, CreatedAt: time.Now()}
	f.mu.Lock()
	f.perfumes = append(f.perfumes, p)
	f.mu.Unlock()
	return p, nil
}

func (f *fakeCatalog) Update(ctx context.Context, id uuid.UUID, form models.PerfumeForm) (*models.Perfume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, p := f.find(id)
	if p == nil {
		return nil, apperrors.NotFound("Perfume not found.")
	}
	input, err := form.ToInput()
	if err != nil {
		return nil, err
	}
	p.Brand, p.Name, p.CapacityML = input.Brand, input.Name, input.CapacityML
	return p, nil
}

func (f *fakeCatalog) Delete(ctx context.Context, id uuid.UUID) (*models.Perfume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i, p := f.find(id)
	if p == nil {
		return nil, apperrors.NotFound("Perfume not found.")
	}
	f.perfumes = append(f.perfumes[:i], f.perfumes[i+1:]...)
	return p, nil
}

type fakeUsage struct {
	mu      sync.Mutex
	catalog *fakeCatalog
	auth    *fakeAuth
	logs    []models.UsageLog
	filters []models.UsageLogFilter

	recordErr error
}

func (f *fakeUsage) RecordUsage(ctx context.Context, principal *models.Principal, gender, perfumeID string) (*services.RecordResult, error) {
	g, err := models.ParseGender(gender)
	if err != nil {
		return nil, err
	}
	if perfumeID == "" {
		return nil, apperrors.Validation("perfume", "Please select a perfume.")
	}
	id, err := uuid.Parse(perfumeID)
	if err != nil {
		return nil, apperrors.MissingReference("perfume", "Perfume not found.")
	}
	perfume, err := f.catalog.Get(ctx, id)
	if err != nil {
		return nil, apperrors.MissingReference("perfume", "Perfume not found.")
	}
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	staff, created, err := f.auth.ResolveStaff(ctx, principal)
	if err != nil {
		return nil, err
	}

	log := models.UsageLog{
		ID:           uuid.New(),
		Gender:       g,
		PerfumeID:    perfume.ID,
		StaffID:      staff.ID,
		UsedAt:       time.Now(),
		PerfumeBrand: perfume.Brand,
		PerfumeName:  perfume.Name,
		StaffName:    staff.Name,
	}
	f.mu.Lock()
	f.logs = append(f.logs, log)
	f.mu.Unlock()
	return &services.RecordResult{Log: &log, Perfume: perfume, Staff: staff, StaffCreated: created}, nil
}

func (f *fakeUsage) Today(ctx context.Context) (*services.DailySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return &services.DailySummary{
		Date:      models.StartOfDay(time.Now(), time.UTC),
		Logs:      f.logs,
		ByGender:  models.GenderBreakdown(models.AggregateByGender(f.logs)),
		ByPerfume: models.AggregateByPerfume(f.logs),
	}, nil
}

func (f *fakeUsage) Logs(ctx context.Context, filter models.UsageLogFilter) ([]models.UsageLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.filters = append(f.filters, filter)
	return f.logs, nil
}

func (f *fakeUsage) Location() *time.Location {
	return time.UTC
}

type testApp struct {
	router  *gin.Engine
	auth    *fakeAuth
	catalog *fakeCatalog
	usage   *fakeUsage
	sauvage *models.Perfume
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	sauvage := &models.Perfume{ID: uuid.New(), Brand: "Dior", Name: "Sauvage", CapacityML: 100}
	app := &testApp{
		auth:    newFakeAuth(),
		catalog: &fakeCatalog{perfumes: []*models.Perfume{sauvage}},
		sauvage: sauvage,
	}
	app.usage = &fakeUsage{catalog: app.catalog, auth: app.auth}

	tmpl, err := web.Templates(time.UTC)
	require.NoError(t, err)

	router := gin.New()
	router.SetHTMLTemplate(tmpl)
	router.Use(middleware.LoadSession(app.auth, testCookie, logger))

	Routes{
		Auth:     NewAuthHandler(app.auth, testCookie, logger),
		Usage:    NewUsageHandler(app.usage, app.catalog, app.auth, logger),
		Perfumes: NewPerfumeHandler(app.catalog, logger),
	}.RegisterRoutes(router)

	app.router = router
	return app
}

// do performs a request; POSTs carry form as an urlencoded body
func (a *testApp) do(method, target string, form url.Values, loggedIn bool, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if method == http.MethodPost {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if loggedIn {
		req.AddCookie(&http.Cookie{Name: testCookie.Name, Value: goodToken})
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// responseCookie returns the last Set-Cookie named name
func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}

// flashesOf decodes the flash cookie set by a response
func flashesOf(w *httptest.ResponseRecorder) []Flash {
	c := responseCookie(w, flashCookieName)
	if c == nil || c.Value == "" {
		return nil
	}
	return decodeFlashes(c.Value)
}
