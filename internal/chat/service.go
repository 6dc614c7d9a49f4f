package chat

import (
	"context"
	"strings"

	wl "github.com/abadojack/whatlanggo"

	"github.com/mueblesrd/support-rag/internal/domain"
	"github.com/mueblesrd/support-rag/internal/llm"
	"github.com/mueblesrd/support-rag/internal/policy"
)

// TextModel generates a plain-text completion.
type TextModel interface {
	GenerateText(ctx context.Context, system, user string) (string, error)
}

// Request is the body of POST /api/chat.
type Request struct {
	Query string `json:"query"`
}

// Response carries the generated answer and the policy sections used.
type Response struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Service answers free-form policy questions from store agents.
type Service struct {
	retriever *policy.Retriever
	model     TextModel
	prompts   *llm.Prompts
}

func NewService(retriever *policy.Retriever, model TextModel, prompts *llm.Prompts) *Service {
	return &Service{retriever: retriever, model: model, prompts: prompts}
}

func (s *Service) Ask(ctx context.Context, req Request) (*Response, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, domain.NewValidationError("query is required")
	}

	chunks, err := s.retriever.Retrieve(ctx, query, policy.DefaultTopK)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		return &Response{
			Answer:  "I could not find anything in the indexed policy documentation for this question.",
			Sources: []string{},
		}, nil
	}

	system := llm.RenderTemplate(s.prompts.ChatSystem, map[string]string{
		"language": answerLanguage(query),
	})

	user := "Question:\n" + query + "\n\nRelevant policy excerpts:\n" + policy.Serialize(chunks)

	answer, err := s.model.GenerateText(ctx, system, user)
	if err != nil {
		return nil, domain.NewModelError("answer generation failed", err)
	}

	return &Response{
		Answer:  answer,
		Sources: policy.Sources(chunks),
	}, nil
}

// answerLanguage picks the response language from the question text.
// MueblesRD agents write in French, English or Spanish; French is the
// default for anything else.
func answerLanguage(s string) string {
	info := wl.Detect(s)
	switch wl.LangToString(info.Lang) {
	case "Eng":
		return "English"
	case "Spa":
		return "Spanish"
	case "Fra":
		return "French"
	default:
		return "French"
	}
}
