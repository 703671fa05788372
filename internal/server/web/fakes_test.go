package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/tasktracker/internal/common"
	"github.com/dmitrijs2005/tasktracker/internal/logging"
	"github.com/dmitrijs2005/tasktracker/internal/server/models"
	"github.com/dmitrijs2005/tasktracker/internal/server/services"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeAccounts struct {
	users map[int64]*models.User

	loginUser *models.User
	loginErr  error
	loginArgs []string

	registerErr error
	registered  []string
}

func (f *fakeAccounts) Register(_ context.Context, username, email, password string) (*models.User, error) {
	if f.registerErr != nil {
		return nil, f.registerErr
	}
	f.registered = append(f.registered, username)
	return &models.User{ID: 99, Username: username}, nil
}

func (f *fakeAccounts) Login(_ context.Context, email, password string) (*models.User, error) {
	f.loginArgs = append(f.loginArgs, email)
	return f.loginUser, f.loginErr
}

func (f *fakeAccounts) GetUser(_ context.Context, id int64) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type fakeTasks struct {
	categories []models.Category
	tasks      map[int64]*models.Task

	listFilter models.TaskFilter
	listUser   int64

	createErr error
	created   []models.TaskInput
	updateErr error
	updated   []models.TaskInput
	deleted   []int64
	toggled   []int64
	err       error
}

func (f *fakeTasks) owned(id, userID int64) (*models.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	t, ok := f.tasks[id]
	if !ok || t.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return t, nil
}

func (f *fakeTasks) Categories(context.Context) ([]models.Category, error) {
	return f.categories, nil
}

func (f *fakeTasks) List(_ context.Context, userID int64, filter models.TaskFilter) ([]models.Task, error) {
	f.listUser, f.listFilter = userID, filter
	var out []models.Task
	for _, t := range f.tasks {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	return out, f.err
}

func (f *fakeTasks) Get(_ context.Context, id, userID int64) (*models.Task, error) {
	return f.owned(id, userID)
}

func (f *fakeTasks) Create(_ context.Context, userID int64, in models.TaskInput) (*models.Task, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, in)
	return &models.Task{ID: 100, UserID: userID, Name: in.Name}, nil
}

func (f *fakeTasks) Update(_ context.Context, id, userID int64, in models.TaskInput) (*models.Task, error) {
	t, err := f.owned(id, userID)
	if err != nil {
		return nil, err
	}
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updated = append(f.updated, in)
	return t, nil
}

func (f *fakeTasks) Delete(_ context.Context, id, userID int64) error {
	if _, err := f.owned(id, userID); err != nil {
		return err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeTasks) ToggleComplete(_ context.Context, id, userID int64) (*models.Task, error) {
	t, err := f.owned(id, userID)
	if err != nil {
		return nil, err
	}
	f.toggled = append(f.toggled, id)
	t.Completed = !t.Completed
	return t, nil
}

// fakeSessions accepts access tokens of the form "access-<id>" and refresh
// tokens listed in refresh.
type fakeSessions struct {
	refresh map[string]int64
	revoked []string
}

func (f *fakeSessions) Issue(_ context.Context, userID int64) (*services.TokenPair, error) {
	return &services.TokenPair{UserID: userID, AccessToken: fmt.Sprintf("access-%d", userID), RefreshToken: fmt.Sprintf("refresh-%d", userID)}, nil
}

func (f *fakeSessions) Authenticate(token string) (int64, error) {
	var id int64
	if _, err := fmt.Sscanf(token, "access-%d", &id); err != nil {
		return 0, common.ErrInvalidToken
	}
	return id, nil
}

func (f *fakeSessions) Refresh(_ context.Context, token string) (*services.TokenPair, error) {
	id, ok := f.refresh[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	delete(f.refresh, token)
	return &services.TokenPair{UserID: id, AccessToken: fmt.Sprintf("access-%d", id), RefreshToken: "rotated"}, nil
}

func (f *fakeSessions) Revoke(_ context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	return nil
}

type harness struct {
	handler  http.Handler
	accounts *fakeAccounts
	tasks    *fakeTasks
	sessions *fakeSessions
}

const aliceID = int64(1)

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		accounts: &fakeAccounts{users: map[int64]*models.User{
			aliceID: {ID: aliceID, Username: "alice", EmailHint: "a***@example.com", EmailHash: "secret-hash"},
			2:       {ID: 2, Username: "bob"},
		}},
		tasks: &fakeTasks{
			categories: []models.Category{{ID: 1, Name: "Personal"}, {ID: 2, Name: "Work"}},
			tasks: map[int64]*models.Task{
				5: {ID: 5, UserID: aliceID, CategoryID: 2, CategoryName: "Work", Name: "Write report"},
				6: {ID: 6, UserID: 2, CategoryID: 1, CategoryName: "Personal", Name: "Bob's task"},
			},
		},
		sessions: &fakeSessions{refresh: map[string]int64{}},
	}

	s, err := NewServer(":0", logging.Nop{}, h.accounts, h.tasks, h.sessions, Options{
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	})
	require.NoError(t, err)
	s.now = func() time.Time { return testNow }
	h.handler = s.Handler()
	return h
}

func (h *harness) do(req *http.Request) *http.Response {
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec.Result()
}

func get(path string, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func post(path string, form url.Values, cookies ...*http.Cookie) *http.Request {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	return req
}

func asAlice() *http.Cookie {
	return &http.Cookie{Name: common.AccessTokenCookieName, Value: fmt.Sprintf("access-%d", aliceID)}
}

// responseCookie returns the last cookie set under name, the one a browser
// would keep.
func responseCookie(resp *http.Response, name string) *http.Cookie {
	var found *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == name {
			found = c
		}
	}
	return found
}

func responseFlashes(resp *http.Response) []Flash {
	c := responseCookie(resp, common.FlashCookieName)
	if c == nil {
		return nil
	}
	return decodeFlashes(c.Value)
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	var sb strings.Builder
	_, err := io.Copy(&sb, resp.Body)
	require.NoError(t, err)
	return sb.String()
}

var errBoom = errors.New("boom")
