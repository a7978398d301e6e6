package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"microblog/cache"
	"microblog/handlers"
	"microblog/middleware"
	"microblog/models"
	"microblog/routes"
	"microblog/storage"
	"microblog/uploads"
)

type app struct {
	store  *storage.Memory
	pages  *cache.Memory
	auth   *middleware.Authenticator
	router *gin.Engine
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemory()
	pages := cache.NewMemory()
	auth := middleware.NewAuthenticator("test-secret")

	uploader, err := uploads.NewDir(t.TempDir())
	require.NoError(t, err)

	h := handlers.New(store, pages, uploader, auth, nil)
	h.CacheTTL = time.Minute

	return &app{
		store:  store,
		pages:  pages,
		auth:   auth,
		router: routes.SetupRouter(h),
	}
}

func (a *app) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
	}
	require.NoError(t, a.store.CreateUser(context.Background(), user))
	return user
}

func (a *app) createGroup(t *testing.T, slug, title string) *models.Group {
	t.Helper()
	group := &models.Group{Title: title, Slug: slug, Description: "About " + title}
	require.NoError(t, a.store.CreateGroup(context.Background(), group))
	return group
}

func (a *app) createPost(t *testing.T, author *models.User, text string) *models.Post {
	t.Helper()
	post := &models.Post{AuthorID: author.ID, Text: text}
	require.NoError(t, a.store.CreatePost(context.Background(), post))
	return post
}

func (a *app) session(t *testing.T, user *models.User) *http.Cookie {
	t.Helper()
	token, err := a.auth.IssueToken(user.ID.Hex())
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.SessionCookie, Value: token}
}

func (a *app) get(t *testing.T, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *app) postForm(t *testing.T, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// postMultipart submits a multipart form with an optional image part,
// the way a browser submits the post form.
func (a *app) postMultipart(t *testing.T, path string, fields map[string]string, image []byte, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, value := range fields {
		require.NoError(t, mw.WriteField(name, value))
	}
	if image != nil {
		part, err := mw.CreateFormFile("image", "image.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *app) postJSON(t *testing.T, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// pageResponse is the shape of every listing endpoint.
type pageResponse struct {
	Page      []models.Post      `json:"page"`
	Paginator storage.Pagination `json:"paginator"`
}

func decodePage(t *testing.T, w *httptest.ResponseRecorder) pageResponse {
	t.Helper()
	var resp pageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func (a *app) totalPosts(t *testing.T) int64 {
	t.Helper()
	_, pg, err := a.store.Posts(context.Background(), "1")
	require.NoError(t, err)
	return pg.Total
}
