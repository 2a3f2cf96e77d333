package alpharun

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/outstaffer/candidate-summary-api/internal/summary"
)

func TestInterview(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/job-openings/jo_7/interviews/iv_9", r.URL.Path)
		require.Equal(t, "Bearer ar-key", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":{
			"id":"iv_9",
			"contact":{"first_name":"Grace","last_name":"Hopper"},
			"analysis":{"summary":"strong"}
		}}`))
	}))
	defer srv.Close()

	client := New(Options{BaseURL: srv.URL, APIKey: "ar-key"})
	iv, err := client.Interview(context.Background(), "jo_7", "iv_9")
	require.NoError(t, err)
	require.Equal(t, "Grace Hopper", iv.ContactName())
	require.NotNil(t, iv.Raw["analysis"])
}

func TestInterviewFlatContactFields(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"contact_first_name":"Ada","contact_last_name":"Lovelace"}`))
	}))
	defer srv.Close()

	client := New(Options{BaseURL: srv.URL, APIKey: "k"})
	iv, err := client.Interview(context.Background(), "jo", "iv")
	require.NoError(t, err)
	require.Equal(t, "Ada Lovelace", iv.ContactName())
}

func TestInterviewNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer srv.Close()

	client := New(Options{BaseURL: srv.URL, APIKey: "k"})
	_, err := client.Interview(context.Background(), "jo", "nope")
	require.Error(t, err)
	require.True(t, errors.Is(err, summary.ErrNotFound))
}
