package httpapi

import (
	"context"
	"net/http"
	"testing"

	"courseaca-backend-go/internal/config"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouterExposesPublicCatalog(t *testing.T) {
	server := NewServer(nil, config.Config{}, nil, nil, nil)
	mux, ok := server.Router(context.Background()).(*chi.Mux)
	require.True(t, ok)

	paths := []string{
		"/api/public/categories",
		"/api/public/courses/popular",
		"/api/public/teachers/t1/courses",
		"/api/public/courses/c1",
		"/api/public/courses/c1/sections",
		"/api/public/sections/s1/items",
		"/api/public/items/i1/content",
	}
	for _, path := range paths {
		rctx := chi.NewRouteContext()
		assert.True(t, mux.Match(rctx, http.MethodGet, path), "path %s", path)
	}
}
