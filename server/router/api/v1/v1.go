// Package v1 exposes the JSON API of the service.
package v1

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/rogally/allychat/internal/metrics"
	"github.com/rogally/allychat/internal/profile"
	"github.com/rogally/allychat/store"
)

// Retriever retrieves the passages most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) ([]*store.RetrievedPassage, error)
}

// Composer composes a grounded answer from a query and retrieved passages.
type Composer interface {
	Compose(ctx context.Context, query string, passages []*store.RetrievedPassage) string
}

// APIV1Service handles the chat API.
type APIV1Service struct {
	Profile   *profile.Profile
	Retriever Retriever
	Composer  Composer
	Metrics   *metrics.Exporter
}

// NewAPIV1Service creates a new APIV1Service.
func NewAPIV1Service(
	profile *profile.Profile,
	retriever Retriever,
	composer Composer,
	exporter *metrics.Exporter,
) *APIV1Service {
	return &APIV1Service{
		Profile:   profile,
		Retriever: retriever,
		Composer:  composer,
		Metrics:   exporter,
	}
}

// RegisterRoutes registers the API routes on the echo server.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	e.POST("/chat", s.handleChat)
}
