package v1

import (
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rogally/allychat/internal/metrics"
	"github.com/rogally/allychat/internal/strutil"
)

// insufficientInfoAnswer is returned when retrieval finds nothing; the
// completion service is never invoked in that case.
const insufficientInfoAnswer = "I don't have enough information to answer your question. The Xbox ROG Ally data needs to be available in the database."

// sourceContentMaxLen caps the passage excerpt echoed back in the source list.
const sourceContentMaxLen = 200

// ChatRequest is the user's question.
type ChatRequest struct {
	Message string `json:"message"`
}

// SourceRef attributes part of the answer to a retrieved passage.
type SourceRef struct {
	Content    string  `json:"content"`
	Similarity float64 `json:"similarity"`
}

// ChatResponse is the grounded answer plus its sources.
type ChatResponse struct {
	Answer  string      `json:"answer"`
	Sources []SourceRef `json:"sources"`
}

func (s *APIV1Service) handleChat(c echo.Context) error {
	ctx := c.Request().Context()
	startTime := time.Now()

	var req ChatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
	}

	passages, err := s.Retriever.Retrieve(ctx, req.Message, s.Profile.RetrievalTopK)
	if err != nil {
		s.Metrics.ObserveChat(metrics.StatusError, time.Since(startTime))
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("Search failed: %v", err))
	}

	if len(passages) == 0 {
		s.Metrics.ObserveChat(metrics.StatusNoContext, time.Since(startTime))
		return c.JSON(http.StatusOK, &ChatResponse{
			Answer:  insufficientInfoAnswer,
			Sources: []SourceRef{},
		})
	}

	answer := s.Composer.Compose(ctx, req.Message, passages)

	sources := make([]SourceRef, 0, len(passages))
	for _, passage := range passages {
		sources = append(sources, SourceRef{
			Content:    strutil.Truncate(passage.Text, sourceContentMaxLen),
			Similarity: roundSimilarity(passage.Similarity),
		})
	}

	s.Metrics.ObserveChat(metrics.StatusOK, time.Since(startTime))
	return c.JSON(http.StatusOK, &ChatResponse{
		Answer:  answer,
		Sources: sources,
	})
}

// roundSimilarity rounds to exactly 3 decimal places.
func roundSimilarity(v float64) float64 {
	return math.Round(v*1000) / 1000
}
