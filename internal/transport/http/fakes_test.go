package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"github.com/iamasit07/soundboard-dashboard/internal/backend"
	"github.com/iamasit07/soundboard-dashboard/internal/domain"
	"github.com/iamasit07/soundboard-dashboard/internal/logging"
	"github.com/iamasit07/soundboard-dashboard/internal/transport/http/middleware"
	"github.com/iamasit07/soundboard-dashboard/pkg/auth"
	"github.com/iamasit07/soundboard-dashboard/pkg/httputil"
)

// fakeSessions stands in for the backend auth and profile routes.
type fakeSessions struct {
	mu         sync.Mutex
	refreshErr error
	refreshes  int
	profiles   int
	revoked    chan string
}

func (f *fakeSessions) Refresh(_ context.Context, refreshToken string) (*oauth2.Token, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &oauth2.Token{AccessToken: "fresh-access", RefreshToken: "fresh-refresh", ExpiresIn: 604800}, nil
}

func (f *fakeSessions) Revoke(_ context.Context, accessToken string) error {
	if f.revoked != nil {
		f.revoked <- accessToken
	}
	return nil
}

func (f *fakeSessions) Profile(_ context.Context, accessToken string) (*domain.User, error) {
	f.mu.Lock()
	f.profiles++
	f.mu.Unlock()
	return &domain.User{ID: "u1", Username: "bob", Discriminator: "0"}, nil
}

func (f *fakeSessions) Guilds(_ context.Context, accessToken string) ([]domain.Guild, error) {
	return []domain.Guild{{ID: "g1", Name: "Guild One"}}, nil
}

func (f *fakeSessions) refreshCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refreshes
}

func (f *fakeSessions) profileCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles
}

type controlCall struct {
	token   string
	action  backend.Action
	guildID string
	fileID  string
}

type fakeAPI struct {
	mu          sync.Mutex
	callbackErr error
	filesErr    error
	controlErr  error
	controls    []controlCall
	uploaded    string
	removed     string
}

func (f *fakeAPI) InitURL() string { return "https://backend.test/v1/auth/init" }

func (f *fakeAPI) Callback(_ context.Context, code, state string) (*oauth2.Token, error) {
	if f.callbackErr != nil {
		return nil, f.callbackErr
	}
	return &oauth2.Token{AccessToken: "access-" + code, RefreshToken: "refresh-" + code, ExpiresIn: 604800}, nil
}

func (f *fakeAPI) Files(_ context.Context, token string) ([]domain.File, error) {
	if f.filesErr != nil {
		return nil, f.filesErr
	}
	return []domain.File{{ID: "f1", Name: "airhorn.mp3"}}, nil
}

func (f *fakeAPI) EnabledFiles(_ context.Context, token, guildID string) ([]string, error) {
	return nil, nil
}

func (f *fakeAPI) GuildSounds(_ context.Context, token, guildID string) ([]domain.File, error) {
	return []domain.File{{ID: "f1", Name: "airhorn.mp3"}}, nil
}

func (f *fakeAPI) AddSound(_ context.Context, token, guildID, fileID string) error { return nil }

func (f *fakeAPI) RemoveSound(_ context.Context, token, guildID, fileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = guildID + "/" + fileID
	return nil
}

func (f *fakeAPI) Control(_ context.Context, token string, action backend.Action, guildID, fileID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.controls = append(f.controls, controlCall{token, action, guildID, fileID})
	return f.controlErr
}

func (f *fakeAPI) Upload(_ context.Context, token, filename string, content io.Reader) (*domain.File, error) {
	data, err := io.ReadAll(content)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	f.uploaded = string(data)
	f.mu.Unlock()
	return &domain.File{ID: "new", Name: filename}, nil
}

type fakeLogins struct {
	mu          sync.Mutex
	recorded    []string
	deactivated chan string
	history     []domain.LoginRecord
}

func (f *fakeLogins) RecordLogin(_ context.Context, userID, sessionID, deviceInfo, ipAddress string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recorded = append(f.recorded, userID+"|"+sessionID)
	return nil
}

func (f *fakeLogins) DeactivateLogin(_ context.Context, sessionID string) error {
	if f.deactivated != nil {
		f.deactivated <- sessionID
	}
	return nil
}

func (f *fakeLogins) History(_ context.Context, userID string, limit int) ([]domain.LoginRecord, error) {
	return f.history, nil
}

type harness struct {
	router   *gin.Engine
	api      *fakeAPI
	sessions *fakeSessions
	logins   *fakeLogins
	signer   *auth.StateSigner
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &harness{
		api:      &fakeAPI{},
		sessions: &fakeSessions{revoked: make(chan string, 1)},
		logins:   &fakeLogins{deactivated: make(chan string, 1)},
		signer:   auth.NewStateSigner("test-secret"),
	}

	logger := logging.Discard()
	factory := &middleware.SessionFactory{Backend: h.sessions, Logger: logger}
	routes := Routes{
		OAuth:     NewOAuthHandler(h.api, factory, h.signer, h.logins, "", false, logger),
		Auth:      NewAuthHandler(h.logins, false, logger),
		Dashboard: NewDashboardHandler(h.api, logger),
		History:   NewHistoryHandler(h.logins, logger),
		Sessions:  factory,
		Logger:    logger,
	}
	h.router = gin.New()
	routes.Register(h.router)
	return h
}

// serve sends req the way the dashboard frontend does.
func (h *harness) serve(req *http.Request) *httptest.ResponseRecorder {
	if req.Header.Get(middleware.RequestedWithHeader) == "" {
		req.Header.Set(middleware.RequestedWithHeader, "XMLHttpRequest")
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

// withSession attaches a session cookie triple expiring after ttl.
func withSession(req *http.Request, ttl time.Duration) *http.Request {
	req.AddCookie(&http.Cookie{Name: httputil.AccessTokenCookie, Value: "access"})
	req.AddCookie(&http.Cookie{Name: httputil.RefreshTokenCookie, Value: "refresh"})
	req.AddCookie(&http.Cookie{
		Name:  httputil.ExpiresCookie,
		Value: strconv.FormatInt(time.Now().Add(ttl).UnixMilli(), 10),
	})
	return req
}

func responseCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}
