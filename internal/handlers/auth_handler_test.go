package handlers_test

import (
	"net/http"
	"testing"

	"taskdesk/internal/auth"
	"taskdesk/internal/models"

	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	srv, _, _ := newAPI(t)
	anon := &apiClient{t: t, srv: srv}

	resp := anon.do(http.MethodPost, "/auth/register", models.RegisterRequest{
		Email: "Bob@Example.com", Password: "hunter22", FirstName: "Bob", LastName: "Brown",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	reg := decode[models.AuthResponse](t, resp)
	require.NotEmpty(t, reg.Token)
	require.Equal(t, "bob@example.com", reg.Email)
	require.Equal(t, models.RoleMember, reg.Role)

	claims, err := auth.ValidateToken(reg.Token)
	require.NoError(t, err)
	require.Equal(t, reg.ID, claims.UserID)

	resp = anon.do(http.MethodPost, "/auth/login", models.LoginRequest{Email: "bob@example.com", Password: "hunter22"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	login := decode[models.AuthResponse](t, resp)
	require.Equal(t, reg.ID, login.ID)
	require.Equal(t, "Bob", login.FirstName)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	srv, _, _ := newAPI(t)
	anon := &apiClient{t: t, srv: srv}

	resp := anon.do(http.MethodPost, "/auth/register", models.RegisterRequest{
		Email: "alice@example.com", Password: "whatever", FirstName: "A", LastName: "B",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decode[errorBody](t, resp)
	require.Equal(t, "Email already exists", body.Error)
	require.Equal(t, http.StatusBadRequest, body.Status)
}

func TestLogin_WrongPassword(t *testing.T) {
	srv, _, _ := newAPI(t)
	anon := &apiClient{t: t, srv: srv}

	resp := anon.do(http.MethodPost, "/auth/login", models.LoginRequest{Email: "alice@example.com", Password: "nope"})
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Invalid email or password", decode[errorBody](t, resp).Error)
}
