package handlers_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microblog/middleware"
)

func TestSignupAndLogin(t *testing.T) {
	a := newApp(t)

	w := a.postJSON(t, "/auth/signup/",
		`{"firstName":"Leo","lastName":"K","username":"leo","email":"leo@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var signup struct {
		Token  string `json:"token"`
		UserID string `json:"userId"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &signup))
	assert.NotEmpty(t, signup.Token)
	assert.NotEmpty(t, signup.UserID)

	// The token works against a protected endpoint.
	resp := a.get(t, "/new/", &http.Cookie{Name: middleware.SessionCookie, Value: signup.Token})
	assert.Equal(t, http.StatusOK, resp.Code)

	w = a.postJSON(t, "/auth/login/", `{"email":"leo@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	found := false
	for _, c := range cookies {
		if c.Name == middleware.SessionCookie && c.Value != "" {
			found = true
		}
	}
	assert.True(t, found, "login should set the session cookie")
}

func TestSignupDuplicate(t *testing.T) {
	a := newApp(t)
	a.createUser(t, "leo")

	w := a.postJSON(t, "/auth/signup/",
		`{"username":"leo","email":"other@example.com","password":"hunter22"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.postJSON(t, "/auth/signup/",
		`{"username":"other","email":"leo@example.com","password":"hunter22"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	a := newApp(t)

	w := a.postJSON(t, "/auth/signup/",
		`{"username":"leo","email":"leo@example.com","password":"hunter22"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = a.postJSON(t, "/auth/login/", `{"email":"leo@example.com","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.postJSON(t, "/auth/login/", `{"email":"nobody@example.com","password":"hunter22"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginFormEchoesNext(t *testing.T) {
	a := newApp(t)

	w := a.get(t, "/auth/login/?next=/new/")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Next string `json:"next"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "/new/", resp.Next)
}

func TestBadTokenRedirectsToLogin(t *testing.T) {
	a := newApp(t)

	w := a.get(t, "/new/", &http.Cookie{Name: middleware.SessionCookie, Value: "garbage"})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/new/", w.Header().Get("Location"))
}
