package review

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListReviewsReturnsNewestFirst(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()
	_, err := store.Insert(ctx, Review{ContactNumber: "+1555", UserName: "Dana", ProductName: "Coffee Maker", Body: "Great product!"})
	require.NoError(t, err)
	_, err = store.Insert(ctx, Review{ContactNumber: "+1666", UserName: "Sam", ProductName: "Kettle", Body: "Does the job."})
	require.NoError(t, err)

	handler := NewHandler(store, nil)
	rec := httptest.NewRecorder()
	handler.ListReviews(rec, httptest.NewRequest(http.MethodGet, "/api/reviews", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var listed []Review
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "Kettle", listed[0].ProductName)
	assert.Equal(t, "Coffee Maker", listed[1].ProductName)
}

func TestListReviewsEmptyIsJSONArray(t *testing.T) {
	handler := NewHandler(NewInMemoryStore(), nil)
	rec := httptest.NewRecorder()
	handler.ListReviews(rec, httptest.NewRequest(http.MethodGet, "/api/reviews", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

type failingStore struct{}

func (failingStore) Insert(ctx context.Context, rec Review) (Review, error) {
	return Review{}, errors.New("unreachable")
}

func (failingStore) ListAll(ctx context.Context) ([]Review, error) {
	return nil, errors.New("connection refused")
}

func TestListReviewsStoreFailure(t *testing.T) {
	handler := NewHandler(failingStore{}, nil)
	rec := httptest.NewRecorder()
	handler.ListReviews(rec, httptest.NewRequest(http.MethodGet, "/api/reviews", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused", "internal errors must not leak")
}
