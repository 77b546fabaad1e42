package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"authenticated":false}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.AuthStatus(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth, "no token installed yet")

	c.SetToken("abc123")
	_, err = c.AuthStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc123", gotAuth)

	c.ClearToken()
	_, err = c.AuthStatus(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestClient_DecodesServerErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"unauthorized","message":"invalid email or password"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).Login(context.Background(), Credentials{Email: "a@b.c", Password: "nope"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "invalid email or password", apiErr.Message)
}

func TestClient_SynthesizesMessageForNonJSONErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("<html>upstream broke</html>"))
	}))
	defer srv.Close()

	_, err := New(srv.URL).AdminDashboard(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "HTTP 502 Bad Gateway", apiErr.Message)
	assert.Equal(t, "HTTP 502 Bad Gateway", apiErr.Error())
}

func TestClient_ListPDIs_BuildsQuery(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"pdis":[{"id":3,"title":"Plano","collaborator_id":2,"status":"planned","goals":[]}]}`))
	}))
	defer srv.Close()

	collaboratorID := int64(2)
	status := "planned"
	pdis, err := New(srv.URL).ListPDIs(context.Background(), PDIListOptions{
		CollaboratorID: &collaboratorID,
		Status:         &status,
		Limit:          10,
	})

	require.NoError(t, err)
	require.Len(t, pdis, 1)
	assert.Equal(t, int64(3), pdis[0].ID)
	assert.Equal(t, "collaborator_id=2&limit=10&status=planned", gotQuery)
}

func TestClient_NetworkErrorIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	_, err := New(srv.URL).AuthStatus(context.Background())

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr), "transport failures are not APIErrors")
}
