package v1

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rogally/allychat/internal/profile"
	"github.com/rogally/allychat/store"
)

type stubRetriever struct {
	passages []*store.RetrievedPassage
	err      error

	lastQuery string
	lastTopK  int
}

func (s *stubRetriever) Retrieve(_ context.Context, query string, topK int) ([]*store.RetrievedPassage, error) {
	s.lastQuery = query
	s.lastTopK = topK
	if s.err != nil {
		return nil, s.err
	}
	return s.passages, nil
}

type stubComposer struct {
	answer string
	calls  int
}

func (s *stubComposer) Compose(_ context.Context, _ string, _ []*store.RetrievedPassage) string {
	s.calls++
	return s.answer
}

func newTestService(retriever *stubRetriever, composer *stubComposer) *APIV1Service {
	return NewAPIV1Service(&profile.Profile{RetrievalTopK: 5}, retriever, composer, nil)
}

func postChat(t *testing.T, s *APIV1Service, body string) (*httptest.ResponseRecorder, error) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return rec, s.handleChat(c)
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) ChatResponse {
	t.Helper()
	var resp ChatResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandleChat(t *testing.T) {
	retriever := &stubRetriever{
		passages: []*store.RetrievedPassage{
			{Text: "The ROG Ally has a 7-inch display.", Similarity: 0.91234},
			{Text: "Battery capacity is 80Wh.", Similarity: 0.8555},
		},
	}
	composer := &stubComposer{answer: "It has a 7-inch display."}
	s := newTestService(retriever, composer)

	rec, err := postChat(t, s, `{"message": "How big is the screen?"}`)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, "It has a 7-inch display.", resp.Answer)
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, "The ROG Ally has a 7-inch display.", resp.Sources[0].Content)
	assert.Equal(t, 0.912, resp.Sources[0].Similarity)
	assert.Equal(t, 0.856, resp.Sources[1].Similarity)

	assert.Equal(t, "How big is the screen?", retriever.lastQuery)
	assert.Equal(t, 5, retriever.lastTopK)
	assert.Equal(t, 1, composer.calls)
}

func TestHandleChatTruncatesLongSources(t *testing.T) {
	longText := strings.Repeat("a", 450)
	retriever := &stubRetriever{
		passages: []*store.RetrievedPassage{{Text: longText, Similarity: 0.9}},
	}
	s := newTestService(retriever, &stubComposer{answer: "ok"})

	rec, err := postChat(t, s, `{"message": "q"}`)
	require.NoError(t, err)

	resp := decodeResponse(t, rec)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, strings.Repeat("a", 200)+"...", resp.Sources[0].Content)
}

func TestHandleChatEmptyRetrieval(t *testing.T) {
	composer := &stubComposer{answer: "should not be used"}
	s := newTestService(&stubRetriever{passages: nil}, composer)

	rec, err := postChat(t, s, `{"message": "anything"}`)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeResponse(t, rec)
	assert.Equal(t, insufficientInfoAnswer, resp.Answer)
	assert.NotNil(t, resp.Sources)
	assert.Empty(t, resp.Sources)

	// Composition is skipped entirely when there is nothing to ground on.
	assert.Equal(t, 0, composer.calls)
}

func TestHandleChatRetrievalFailure(t *testing.T) {
	retriever := &stubRetriever{err: errors.New("all retrieval tiers failed: connection refused")}
	s := newTestService(retriever, &stubComposer{})

	_, err := postChat(t, s, `{"message": "q"}`)
	require.Error(t, err)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
	assert.Contains(t, httpErr.Message, "Search failed:")
}

func TestHandleChatMalformedBody(t *testing.T) {
	s := newTestService(&stubRetriever{}, &stubComposer{})

	_, err := postChat(t, s, `{"message": `)
	require.Error(t, err)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.Code)
}

func TestRoundSimilarity(t *testing.T) {
	assert.Equal(t, 0.123, roundSimilarity(0.1234))
	assert.Equal(t, 0.679, roundSimilarity(0.6789))
	assert.Equal(t, 0.5, roundSimilarity(0.5))
	assert.Equal(t, 1.0, roundSimilarity(0.9999))
}
