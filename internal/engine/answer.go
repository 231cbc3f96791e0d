package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ahvonen/notesmith/internal/llm"
)

// ErrNoProvider is returned by answer operations when no chat provider is
// configured.
var ErrNoProvider = errors.New("no chat provider configured")

// chatHistoryLimit caps how many trailing messages of a conversation are
// sent to the model alongside the retrieved notes.
const chatHistoryLimit = 5

const answerSystemPrompt = `You are a personal knowledge assistant. Answer the question using ONLY the provided notes.

Rules:
- Base every claim on the notes below. If the notes do not contain the answer, say so.
- Cite notes inline with their markers, e.g. 【Source 2】, wherever you use them.
- Be concise and direct.
- Never invent facts that are not in the notes.`

const summarySystemPrompt = `You are a personal knowledge assistant. Write a short summary of what the provided notes say about the topic.

Rules:
- Summarize ONLY the provided notes; do not add outside knowledge.
- Cite notes inline with their markers, e.g. 【Source 2】.
- Organize by theme, not by note.`

// Answer retrieves the notes most relevant to the question and asks the
// chat provider to synthesize a cited answer.
func (e *Engine) Answer(ctx context.Context, question string, topK int) (*Answer, error) {
	if topK <= 0 {
		topK = 5
	}
	return e.generate(ctx, answerSystemPrompt, question, nil, topK)
}

// Chat answers the latest message of a conversation, keeping the trailing
// messages as context. Retrieval uses the latest user message.
func (e *Engine) Chat(ctx context.Context, messages []llm.Message, topK int) (*Answer, error) {
	if topK <= 0 {
		topK = 5
	}

	var question string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == llm.RoleUser {
			question = messages[i].Content
			break
		}
	}
	if question == "" {
		return nil, &QueryError{Reason: "conversation has no user message"}
	}

	if len(messages) > chatHistoryLimit {
		messages = messages[len(messages)-chatHistoryLimit:]
	}
	return e.generate(ctx, answerSystemPrompt, question, messages, topK)
}

// Summarize produces a topic summary over the most relevant notes. It
// retrieves a wider pool than Answer since summaries benefit from breadth.
func (e *Engine) Summarize(ctx context.Context, topic string, topK int) (*Answer, error) {
	if topK <= 0 {
		topK = 8
	}
	return e.generate(ctx, summarySystemPrompt, topic, nil, topK)
}

func (e *Engine) generate(ctx context.Context, systemPrompt, question string, history []llm.Message, topK int) (*Answer, error) {
	if e.provider == nil {
		return nil, ErrNoProvider
	}

	results, err := e.Search(ctx, SearchRequest{Query: question, TopK: topK})
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &Answer{Content: "I couldn't find any notes relevant to that."}, nil
	}

	sources := make([]Source, len(results))
	var sb strings.Builder
	for i, r := range results {
		n := i + 1
		sources[i] = Source{
			Index:   n,
			DocID:   r.DocID,
			Title:   r.Title,
			Path:    r.Path,
			Excerpt: r.Excerpt,
			Score:   r.Score,
		}
		fmt.Fprintf(&sb, "【Source %d】 %s (%s)\n%s\n\n", n, r.Title, r.Path, r.Excerpt)
	}

	messages := []llm.Message{{Role: llm.RoleSystem, Content: systemPrompt}}
	for _, m := range history {
		// The final user message is replaced with the augmented prompt.
		if m.Content == question && m.Role == llm.RoleUser {
			continue
		}
		messages = append(messages, m)
	}
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf("Notes:\n\n%s---\n\n%s", sb.String(), question),
	})

	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model:       e.chatModel,
		Messages:    messages,
		Temperature: 0.3,
	})
	if err != nil {
		return nil, fmt.Errorf("engine: completion: %w", err)
	}

	return &Answer{
		Content: resp.Content,
		Sources: sources,
		Model:   resp.Model,
	}, nil
}
