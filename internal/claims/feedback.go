package claims

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mueblesrd/support-rag/internal/domain"
	"github.com/mueblesrd/support-rag/internal/llm"
	"github.com/mueblesrd/support-rag/internal/policy"
)

const unparseableNote = "Unable to parse LLM response."

// batchModelOutput is the JSON shape of the single-call evaluation of
// criteria 2-5.
type batchModelOutput struct {
	DeliveryDate         DeliveryDateCheck   `json:"delivery_date"`
	DamageClassification BoolCheck           `json:"damage_classification_validation"`
	Attachments          BoolCheck           `json:"attachments_verification"`
	Eligibility          EligibilityDecision `json:"eligibility_decision"`
	FinalRecommendation  string              `json:"final_recommendation"`
	FinalEligibility     FinalEligibility    `json:"final_eligibility"`
}

func batchFallback(hasAttachments bool) batchModelOutput {
	return batchModelOutput{
		DeliveryDate:         DeliveryDateCheck{Result: "Unknown", Recommendation: unparseableNote},
		DamageClassification: BoolCheck{Result: false, Recommendation: unparseableNote},
		Attachments:          BoolCheck{Result: hasAttachments, Recommendation: unparseableNote},
		Eligibility:          EligibilityDecision{IsDecisionCorrect: false, Explanation: unparseableNote},
		FinalRecommendation:  unparseableNote + " Please review manually.",
		FinalEligibility:     FinalEligibility{IsEligible: false, Justification: unparseableNote},
	}
}

// contractCheck is criterion 1: objective, never delegated to the
// model.
func contractCheck(contractNumber string) ContractVerification {
	hasContract := strings.TrimSpace(contractNumber) != ""

	result := "Incorrect"
	verb := "is not"
	ref := "missing"
	if hasContract {
		result = "Correct"
		verb = "is"
		ref = contractNumber
	}

	return ContractVerification{
		Result: result,
		Explanation: fmt.Sprintf(
			"Contract number %s provided (%s). IMPORTANT: Please compare the name of the person that made the ticket or claim against the data in the contract to ensure they match.",
			verb, ref,
		),
	}
}

// EvaluateBatch audits an agent's claim handling with one structured
// model call. Criterion 1 is computed deterministically; criteria 2-5
// are judged by the model against two deduplicated retrieval batches.
func (s *Service) EvaluateBatch(ctx context.Context, req *FeedbackRequest) (*FeedbackResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	contract := contractCheck(req.ContractNumber)

	deliveryDate, err := ParseDate(req.DeliveryDate)
	if err != nil {
		return nil, err
	}
	claimDate, err := ParseDate(req.ClaimDate)
	if err != nil {
		return nil, err
	}
	daysSinceDelivery := DaysBetween(deliveryDate, s.now())
	daysDeliveryToClaim := DaysBetween(deliveryDate, claimDate)

	queries := []string{
		fmt.Sprintf("%s %s %s deadlines warranty eligibility", req.ClaimType, req.DamageType, req.ProductType),
		fmt.Sprintf("attachments requirements claim evidence %s %s", req.DamageType, req.ProductType),
	}
	chunks, err := s.retriever.RetrieveMany(ctx, queries, policy.DefaultTopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve policies: %w", err)
	}

	user := llm.RenderTemplate(s.prompts.FeedbackBatchUser, map[string]string{
		"contract_result":        contract.Result,
		"contract_number":        req.ContractNumber,
		"claim_type":             string(req.ClaimType),
		"damage_type":            string(req.DamageType),
		"product_type":           req.ProductType,
		"manufacturer":           req.Manufacturer,
		"product_code":           req.ProductCode,
		"store":                  req.StoreOfPurchase,
		"has_attachments":        yesNo(req.HasAttachments),
		"delivery_date":          req.DeliveryDate,
		"days_since_delivery":    fmt.Sprintf("%d", daysSinceDelivery),
		"claim_date":             req.ClaimDate,
		"days_delivery_to_claim": fmt.Sprintf("%d", daysDeliveryToClaim),
		"eligibility_decision":   eligibleLabel(req.Eligible),
		"description":            req.Description,
		"policies":               policy.Serialize(chunks),
	})

	raw, err := s.model.GenerateJSON(ctx, "", user)
	if err != nil {
		return nil, domain.NewModelError("feedback evaluation failed", err)
	}

	// The fallback text is reserved for output that does not parse at
	// all; a valid object with missing keys stays zero-valued.
	var parsed batchModelOutput
	if uerr := json.Unmarshal([]byte(raw), &parsed); uerr != nil {
		slog.WarnContext(ctx, "feedback evaluation unparseable, using fallback", "error", uerr)
		parsed = batchFallback(req.HasAttachments)
	}

	return &FeedbackResponse{
		ClaimSummary: FeedbackClaimSummary{
			ClaimType:           req.ClaimType,
			ProductType:         req.ProductType,
			DamageType:          req.DamageType,
			Manufacturer:        req.Manufacturer,
			ClaimDate:           req.ClaimDate,
			DaysSinceDelivery:   daysSinceDelivery,
			DaysDeliveryToClaim: daysDeliveryToClaim,
			EligibleInput:       req.Eligible,
		},
		CriteriaEvaluations: CriteriaEvaluations{
			ContractVerification: contract,
			DeliveryDate:         parsed.DeliveryDate,
			DamageClassification: parsed.DamageClassification,
			Attachments:          parsed.Attachments,
			Eligibility:          parsed.Eligibility,
		},
		FinalRecommendation: parsed.FinalRecommendation,
		FinalEligibility:    parsed.FinalEligibility,
		Sources:             policy.Sources(chunks),
	}, nil
}

// deepModelOutput is the JSON shape of the exhaustive evaluation,
// where the model judges all five criteria.
type deepModelOutput struct {
	CriteriaEvaluations CriteriaEvaluations `json:"criteria_evaluations"`
	FinalRecommendation string              `json:"final_recommendation"`
	FinalEligibility    FinalEligibility    `json:"final_eligibility"`
}

func deepFallback(contractNumber string, hasAttachments bool) deepModelOutput {
	contract := contractCheck(contractNumber)
	return deepModelOutput{
		CriteriaEvaluations: CriteriaEvaluations{
			ContractVerification: ContractVerification{Result: contract.Result, Explanation: unparseableNote},
			DeliveryDate:         DeliveryDateCheck{Result: "Unknown", Recommendation: unparseableNote},
			DamageClassification: BoolCheck{Result: false, Recommendation: unparseableNote},
			Attachments:          BoolCheck{Result: hasAttachments, Recommendation: unparseableNote},
			Eligibility:          EligibilityDecision{IsDecisionCorrect: false, Explanation: unparseableNote},
		},
		FinalRecommendation: unparseableNote + " Please review manually.",
		FinalEligibility:    FinalEligibility{IsEligible: false, Justification: unparseableNote},
	}
}

// EvaluateDeep is the exhaustive variant: five topic retrievals feed a
// single evaluation call that judges every criterion, including
// contract verification, which is seeded with the deterministic
// pre-check.
func (s *Service) EvaluateDeep(ctx context.Context, req *FeedbackRequest) (*FeedbackResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	hasContract := strings.TrimSpace(req.ContractNumber) != ""

	deliveryDate, err := ParseDate(req.DeliveryDate)
	if err != nil {
		return nil, err
	}
	claimDate, err := ParseDate(req.ClaimDate)
	if err != nil {
		return nil, err
	}
	daysSinceDelivery := DaysBetween(deliveryDate, s.now())
	daysDeliveryToClaim := DaysBetween(deliveryDate, claimDate)

	queries := []string{
		fmt.Sprintf("%s claim policies and deadlines", req.ClaimType),
		fmt.Sprintf("%s damage classification rules for %s", req.DamageType, req.ProductType),
		"attachment requirements for claims",
		fmt.Sprintf("warranty periods and deadline policies for %s by %s with %s damage", req.ProductType, req.Manufacturer, req.DamageType),
		"eligibility criteria and delivery deadline policies",
	}
	chunks, err := s.retriever.RetrieveMany(ctx, queries, policy.DefaultTopK)
	if err != nil {
		return nil, fmt.Errorf("retrieve policies: %w", err)
	}

	user := llm.RenderTemplate(s.prompts.FeedbackDeepUser, map[string]string{
		"claim_context": feedbackContext(req, hasContract, daysSinceDelivery, daysDeliveryToClaim),
		"policies":      policy.Serialize(chunks),
	})

	raw, err := s.model.GenerateJSON(ctx, s.prompts.FeedbackDeepSystem, user)
	if err != nil {
		return nil, domain.NewModelError("feedback evaluation failed", err)
	}

	var parsed deepModelOutput
	if uerr := json.Unmarshal([]byte(raw), &parsed); uerr != nil {
		slog.WarnContext(ctx, "deep feedback evaluation unparseable, using fallback", "error", uerr)
		parsed = deepFallback(req.ContractNumber, req.HasAttachments)
	}

	return &FeedbackResponse{
		ClaimSummary: FeedbackClaimSummary{
			ClaimType:           req.ClaimType,
			ProductType:         req.ProductType,
			DamageType:          req.DamageType,
			Manufacturer:        req.Manufacturer,
			ClaimDate:           req.ClaimDate,
			DaysSinceDelivery:   daysSinceDelivery,
			DaysDeliveryToClaim: daysDeliveryToClaim,
			EligibleInput:       req.Eligible,
		},
		CriteriaEvaluations: parsed.CriteriaEvaluations,
		FinalRecommendation: parsed.FinalRecommendation,
		FinalEligibility:    parsed.FinalEligibility,
		Sources:             policy.Sources(chunks),
	}, nil
}
