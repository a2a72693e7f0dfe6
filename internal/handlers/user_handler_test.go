package handlers_test

import (
	"net/http"
	"testing"

	"taskdesk/internal/models"

	"github.com/stretchr/testify/require"
)

func TestGetAllUsers(t *testing.T) {
	srv, alice, api := newAPI(t)
	bob := srv.CreateUser(t, "bob@example.com", "secret1", "Bob", "Brown")

	resp := api.do(http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	users := decode[[]models.User](t, resp)
	require.Equal(t, []models.User{
		{ID: alice.ID, Name: "Alice Adams", Email: "alice@example.com"},
		{ID: bob.ID, Name: "Bob Brown", Email: "bob@example.com"},
	}, users)
}

func TestGetAllUsers_RequiresToken(t *testing.T) {
	srv, _, _ := newAPI(t)
	anon := &apiClient{t: t, srv: srv}
	resp := anon.do(http.MethodGet, "/users", nil)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
