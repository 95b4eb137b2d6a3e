// Package answer composes grounded answers from retrieved passages.
package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rogally/allychat/ai"
	"github.com/rogally/allychat/store"
)

// answerPrompt is the single-turn grounding template. It frames the
// assistant's role, restricts it to the supplied context, and embeds the
// context block followed by the literal user question.
const answerPrompt = `You are a helpful assistant answering questions about the Xbox ROG Ally handheld device.
Use the following information to answer the user's question. If you don't know the answer based on the provided information, say so.

Context:
%s

User Question: %s

Answer:`

// Composer turns a query plus retrieved passages into a natural-language
// answer via the LLM service.
type Composer struct {
	llm    ai.LLMService
	logger *slog.Logger
}

// NewComposer creates a new Composer.
func NewComposer(llm ai.LLMService, logger *slog.Logger) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{llm: llm, logger: logger}
}

// Compose builds the grounding prompt from the passages (preserving the
// retriever's ordering) and invokes the completion service once.
//
// A completion failure is never propagated: the returned string embeds the
// error detail so the caller always has a displayable answer. Callers that
// need a stricter policy should wrap this boundary rather than the LLM
// service itself.
func (c *Composer) Compose(ctx context.Context, query string, passages []*store.RetrievedPassage) string {
	prompt := fmt.Sprintf(answerPrompt, buildContext(passages), query)

	content, err := c.llm.Chat(ctx, []ai.Message{ai.UserMessage(prompt)})
	if err != nil {
		c.logger.ErrorContext(ctx, "answer generation failed",
			"error", err,
			"passage_count", len(passages),
		)
		return fmt.Sprintf("Sorry, I encountered an error generating the answer: %v", err)
	}

	return strings.TrimSpace(content)
}

// buildContext concatenates passage texts into labeled source blocks.
func buildContext(passages []*store.RetrievedPassage) string {
	blocks := make([]string, len(passages))
	for i, passage := range passages {
		blocks[i] = fmt.Sprintf("Source %d: %s", i+1, passage.Text)
	}
	return strings.Join(blocks, "\n\n")
}
