package claims

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mueblesrd/support-rag/internal/domain"
	"github.com/mueblesrd/support-rag/internal/llm"
	"github.com/mueblesrd/support-rag/internal/policy"
)

// analyzeToneFallback is returned when the tone call fails or its
// output does not parse.
func analyzeToneFallback() ToneAnalysis {
	return ToneAnalysis{Tone: "neutral", Confidence: 0.5, Indicators: []string{}}
}

// AnalyzeTone classifies a customer message as neutral, kind or
// aggressive. Best effort: any failure yields the neutral fallback.
func (s *Service) AnalyzeTone(ctx context.Context, message string) ToneAnalysis {
	prompt := llm.RenderTemplate(s.prompts.ToneUser, map[string]string{
		"message": message,
	})

	raw, err := s.model.GenerateJSON(ctx, "", prompt)
	if err != nil {
		slog.WarnContext(ctx, "tone analysis failed", "error", err)
		return analyzeToneFallback()
	}

	var tone ToneAnalysis
	if err := json.Unmarshal([]byte(raw), &tone); err != nil {
		slog.WarnContext(ctx, "tone analysis unparseable", "error", err)
		return analyzeToneFallback()
	}
	if tone.Indicators == nil {
		tone.Indicators = []string{}
	}
	return tone
}

// analyzeModelOutput is the JSON shape the claim-analysis call must
// return.
type analyzeModelOutput struct {
	PolicyRecommendations        []PolicyRecommendation       `json:"policy_recommendations"`
	CommunicationRecommendations CommunicationRecommendations `json:"communication_recommendations"`
	NextSteps                    []string                     `json:"next_steps"`
}

func analyzeFallback() analyzeModelOutput {
	return analyzeModelOutput{
		PolicyRecommendations: []PolicyRecommendation{},
		CommunicationRecommendations: CommunicationRecommendations{
			Approach:         "standard",
			Tips:             []string{},
			SuggestedOpening: "",
		},
		NextSteps: []string{},
	}
}

// Analyze runs the claim-analysis pipeline: tone classification,
// bounded policy retrieval, one structured model call, and a merge
// with the deterministically computed summary.
func (s *Service) Analyze(ctx context.Context, req *AnalyzeRequest) (*AnalyzeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	deliveryDate, err := ParseDate(req.DeliveryDate)
	if err != nil {
		return nil, err
	}
	daysSinceDelivery := DaysBetween(deliveryDate, s.now())

	tone := s.AnalyzeTone(ctx, req.Description)

	query := fmt.Sprintf("%s %s %s claim handling policy", req.ClaimType, req.DamageType, req.ProductType)
	chunks, err := s.retriever.Retrieve(ctx, query, policy.DefaultTopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve policies: %w", err)
	}

	toneJSON, _ := json.Marshal(tone)
	user := llm.RenderTemplate(s.prompts.ClaimUser, map[string]string{
		"claim_context": claimContext(req, daysSinceDelivery),
		"policies":      policy.Serialize(chunks),
		"tone_json":     string(toneJSON),
	})

	parsed := analyzeFallback()
	raw, err := s.model.GenerateJSON(ctx, s.prompts.ClaimSystem, user)
	if err != nil {
		return nil, domain.NewModelError("claim analysis failed", err)
	}
	if uerr := json.Unmarshal([]byte(raw), &parsed); uerr != nil {
		slog.WarnContext(ctx, "claim analysis unparseable, using fallback", "error", uerr)
		parsed = analyzeFallback()
	}
	if parsed.PolicyRecommendations == nil {
		parsed.PolicyRecommendations = []PolicyRecommendation{}
	}
	if parsed.NextSteps == nil {
		parsed.NextSteps = []string{}
	}
	if parsed.CommunicationRecommendations.Tips == nil {
		parsed.CommunicationRecommendations.Tips = []string{}
	}

	return &AnalyzeResponse{
		ClaimSummary: ClaimSummary{
			ClaimType:         req.ClaimType,
			ProductType:       req.ProductType,
			DamageType:        req.DamageType,
			DaysSinceDelivery: daysSinceDelivery,
		},
		ToneAnalysis:                 tone,
		PolicyRecommendations:        parsed.PolicyRecommendations,
		CommunicationRecommendations: parsed.CommunicationRecommendations,
		NextSteps:                    parsed.NextSteps,
		Sources:                      policy.Sources(chunks),
	}, nil
}
