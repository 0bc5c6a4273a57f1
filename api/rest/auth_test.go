package rest_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRegister(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username":         "frodo",
		"email":            "frodo@shire.me",
		"password":         testPassword,
		"confirm_password": testPassword,
		"first_name":       "Frodo",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Token string `json:"token"`
		User  struct {
			ID       int64  `json:"id"`
			Username string `json:"username"`
			Password string `json:"password_hash"`
		} `json:"user"`
	}
	env := decodeData(t, w, &data)
	assert.True(t, env.Success)
	assert.Equal(t, "user registered", env.Message)
	assert.NotEmpty(t, data.Token)
	assert.Equal(t, "frodo", data.User.Username)
	assert.Empty(t, data.User.Password, "hash never leaves the server")
}

func TestRegister_ValidationEnvelope(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodPost, "/api/auth/register", map[string]string{
		"username": "fr", "email": "nope", "password": "123", "confirm_password": "321",
	}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)

	env := decode(t, w)
	assert.False(t, env.Success)
	assert.Equal(t, "VALIDATION_FAILED", env.Code)
	for _, f := range []string{"username", "email", "password", "confirm_password"} {
		assert.Contains(t, env.Errors, f)
	}
}

func TestRegister_MalformedBody(t *testing.T) {
	h := newHarness(t)
	w := h.do(http.MethodPost, "/api/auth/register", map[string]any{"username": 42}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
	env := decode(t, w)
	assert.Contains(t, env.Errors, "username")
}

func TestLoginLogout(t *testing.T) {
	h := newHarness(t)
	first := h.signUp(t, "samwise")

	w := h.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "samwise", "password": testPassword}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var data struct {
		Token string `json:"token"`
	}
	decodeData(t, w, &data)
	assert.Equal(t, first, data.Token, "live session is reused")

	w = h.do(http.MethodPost, "/api/auth/logout", nil, data.Token)
	require.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodGet, "/api/auth/profile", nil, data.Token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogout_Idempotent(t *testing.T) {
	h := newHarness(t)
	tok := h.signUp(t, "rosie")

	for i := range 2 {
		w := h.do(http.MethodPost, "/api/auth/logout", nil, tok)
		require.Equal(t, http.StatusOK, w.Code, "logout %d: %s", i+1, w.Body.String())
		assert.True(t, decode(t, w).Success)
	}

	w := h.do(http.MethodPost, "/api/auth/logout", nil, "")
	assert.Equal(t, http.StatusOK, w.Code, "no credential is already logged out")

	w = h.do(http.MethodGet, "/api/auth/profile", nil, tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogin_WrongPassword(t *testing.T) {
	h := newHarness(t)
	h.signUp(t, "pippin")

	w := h.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "pippin", "password": "second-breakfast"}, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)
	env := decode(t, w)
	assert.Equal(t, "UNAUTHENTICATED", env.Code)
	assert.Equal(t, "invalid username or password", env.Message)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	h := newHarness(t)
	for _, path := range []string{
		"/api/auth/profile", "/api/characters", "/api/characters/statistics",
		"/api/races", "/api/races/elf", "/api/classes", "/api/classes/mage",
	} {
		w := h.do(http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestProfile(t *testing.T) {
	h := newHarness(t)
	tok := h.signUp(t, "merry")
	h.createCharacter(t, tok, "Meriadoc")

	bio := "Esquire of Rohan"
	w := h.do(http.MethodPatch, "/api/auth/profile", map[string]any{"bio": bio}, tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(http.MethodGet, "/api/auth/profile", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	var view struct {
		Profile struct {
			Bio string `json:"bio"`
		} `json:"profile"`
		TotalCharacters int64 `json:"total_characters"`
		HighestLevel    int   `json:"highest_level"`
	}
	decodeData(t, w, &view)
	assert.Equal(t, bio, view.Profile.Bio)
	assert.Equal(t, int64(1), view.TotalCharacters)
	assert.Equal(t, 1, view.HighestLevel)
}

func TestChangePassword_EndsSessions(t *testing.T) {
	h := newHarness(t)
	tok := h.signUp(t, "eowyn")
	next := "Shieldmaiden#Rohan7"

	w := h.do(http.MethodPost, "/api/auth/change-password", map[string]string{
		"current_password": testPassword, "new_password": next, "confirm_new_password": next,
	}, tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(http.MethodGet, "/api/auth/profile", nil, tok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "eowyn", "password": next}, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDeleteAccount(t *testing.T) {
	h := newHarness(t)
	tok := h.signUp(t, "gollum")

	w := h.do(http.MethodDelete, "/api/auth/account", map[string]string{}, tok)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w).Errors, "password")

	w = h.do(http.MethodDelete, "/api/auth/account", map[string]string{"password": testPassword}, tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = h.do(http.MethodPost, "/api/auth/login", map[string]string{"username": "gollum", "password": testPassword}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
