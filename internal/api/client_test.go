package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/juancollazo-ch/autoreturn/internal/errors"
	"github.com/juancollazo-ch/autoreturn/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func fetch(t *testing.T, url string) (models.Settings, error) {
	t.Helper()
	c, err := NewSettingsClient(url, time.Second, zap.NewNop())
	require.NoError(t, err)
	return c.FetchSettings(context.Background())
}

func TestFetchSettings(t *testing.T) {
	srv := serve(t, http.StatusOK, `{
		"connectionString": "Server=db;Database=shop;Uid=u;Pwd=p;",
		"apiUrl": "https://shop.example.com/admin/order/refund",
		"token": "abc123",
		"extra": true
	}`)

	settings, err := fetch(t, srv.URL)
	require.NoError(t, err)
	assert.Equal(t, models.Settings{
		ConnectionString: "Server=db;Database=shop;Uid=u;Pwd=p;",
		APIURL:           "https://shop.example.com/admin/order/refund",
		Token:            "abc123",
	}, settings)
}

func TestFetchSettings_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, "oops"},
		{"not found", http.StatusNotFound, ""},
		{"invalid json", http.StatusOK, "{"},
		{"null document", http.StatusOK, "null"},
		{"missing token", http.StatusOK, `{"connectionString":"x","apiUrl":"https://a.b/c"}`},
		{"bad api url", http.StatusOK, `{"connectionString":"x","apiUrl":"ftp://a.b/c","token":"t"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, tt.status, tt.body)

			_, err := fetch(t, srv.URL)
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeSettings, apperrors.GetCode(err))
		})
	}
}

func TestFetchSettings_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := fetch(t, url)
	assert.Equal(t, apperrors.CodeSettings, apperrors.GetCode(err))
}

func TestNewSettingsClient_RequiresURL(t *testing.T) {
	_, err := NewSettingsClient("", time.Second, nil)
	assert.Error(t, err)
}
