package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ops-tools/run-sentinel/pkg/models/api"
	storemodels "github.com/ops-tools/run-sentinel/pkg/models/store"
)

type mockReviewStore struct {
	mock.Mock
}

func (m *mockReviewStore) Add(ctx context.Context, record storemodels.ReviewRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockReviewStore) List(ctx context.Context, limit int) ([]storemodels.ReviewRecord, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]storemodels.ReviewRecord), args.Error(1)
}

func TestWebAPI_Endpoints(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(nil))

	store := new(mockReviewStore)
	store.On("Add", mock.Anything, mock.Anything).Return(nil)
	store.On("List", mock.Anything, mock.Anything).Return([]storemodels.ReviewRecord{}, nil)

	router := ConfigureRouter(Config{
		Addr:            ":8080",
		ShutdownTimeout: 10 * time.Second,
		Dependencies: Dependencies{
			ReviewStore: store,
			Logger:      logger,
		},
	})
	testServer := httptest.NewServer(router)
	defer testServer.Close()

	t.Run("review endpoint", func(t *testing.T) {
		body, err := json.Marshal(api.ReviewRequest{
			Text: "#!/usr/bin/env bash\ngcloud run deploy x --allow-unauthenticated\n",
		})
		require.NoError(t, err)

		resp, err := http.Post(testServer.URL+"/api/v1/reviews", "application/json", bytes.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var review api.ReviewResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&review))
		assert.Equal(t, "NO-GO", review.Decision)
	})

	t.Run("history endpoint", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/api/v1/reviews")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("templates endpoint", func(t *testing.T) {
		resp, err := http.Post(testServer.URL+"/api/v1/templates", "application/json", bytes.NewReader([]byte(`{}`)))
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)

		var generated api.GenerateResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&generated))
		assert.Len(t, generated.Files, 3)
	})

	t.Run("unknown route", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/api/v1/nope")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}
