package claims

import (
	"fmt"
	"strings"
)

type ClaimType string

const (
	ClaimDamagedProduct   ClaimType = "damaged_product"
	ClaimDefectiveProduct ClaimType = "defective_product"
	ClaimMissingItem      ClaimType = "missing_item"
	ClaimDeliveryIssue    ClaimType = "delivery_issue"
	ClaimWarrantyService  ClaimType = "warranty_service"
)

type DamageType string

const (
	DamageAesthetic  DamageType = "aesthetic"
	DamageMechanical DamageType = "mechanical"
	DamageNone       DamageType = "none"
)

var claimTypes = map[ClaimType]bool{
	ClaimDamagedProduct:   true,
	ClaimDefectiveProduct: true,
	ClaimMissingItem:      true,
	ClaimDeliveryIssue:    true,
	ClaimWarrantyService:  true,
}

var damageTypes = map[DamageType]bool{
	DamageAesthetic:  true,
	DamageMechanical: true,
	DamageNone:       true,
}

// AnalyzeRequest is the body of POST /api/analyze-claim.
type AnalyzeRequest struct {
	ClaimType       ClaimType  `json:"claim_type"`
	DamageType      DamageType `json:"damage_type"`
	DeliveryDate    string     `json:"delivery_date"`
	ProductType     string     `json:"product_type"`
	Manufacturer    string     `json:"manufacturer"`
	StoreOfPurchase string     `json:"store_of_purchase"`
	ProductCode     string     `json:"product_code"`
	HasAttachments  bool       `json:"has_attachments"`
	Description     string     `json:"description"`
}

func (r *AnalyzeRequest) Validate() error {
	if !claimTypes[r.ClaimType] {
		return fmt.Errorf("claim_type must be one of: damaged_product, defective_product, missing_item, delivery_issue, warranty_service")
	}
	if !damageTypes[r.DamageType] {
		return fmt.Errorf("damage_type must be one of: aesthetic, mechanical, none")
	}
	if _, err := ParseDate(r.DeliveryDate); err != nil {
		return fmt.Errorf("delivery_date must be YYYY-MM-DD")
	}
	if strings.TrimSpace(r.ProductType) == "" {
		return fmt.Errorf("product_type is required")
	}
	if strings.TrimSpace(r.Description) == "" {
		return fmt.Errorf("description is required")
	}
	return nil
}

// FeedbackRequest is the body of POST /api/agent-feedback and
// /api/agent-feedback-deep.
type FeedbackRequest struct {
	AnalyzeRequest
	ContractNumber string `json:"contract_number"`
	ClaimDate      string `json:"claim_date"`
	Eligible       bool   `json:"eligible"`
}

func (r *FeedbackRequest) Validate() error {
	if err := r.AnalyzeRequest.Validate(); err != nil {
		return err
	}
	if _, err := ParseDate(r.ClaimDate); err != nil {
		return fmt.Errorf("claim_date must be YYYY-MM-DD")
	}
	return nil
}

// ---------------------------------------------------------------------------
// Responses
// ---------------------------------------------------------------------------

type ClaimSummary struct {
	ClaimType         ClaimType  `json:"claim_type"`
	ProductType       string     `json:"product_type"`
	DamageType        DamageType `json:"damage_type"`
	DaysSinceDelivery int        `json:"days_since_delivery"`
}

type ToneAnalysis struct {
	Tone       string   `json:"tone"`
	Confidence float64  `json:"confidence"`
	Indicators []string `json:"indicators"`
}

type PolicyRecommendation struct {
	PolicyReference string `json:"policy_reference"`
	Recommendation  string `json:"recommendation"`
	Priority        string `json:"priority"`
}

type CommunicationRecommendations struct {
	Approach         string   `json:"approach"`
	Tips             []string `json:"tips"`
	SuggestedOpening string   `json:"suggested_opening"`
}

// AnalyzeResponse is the body returned by POST /api/analyze-claim.
type AnalyzeResponse struct {
	ClaimSummary                 ClaimSummary                 `json:"claim_summary"`
	ToneAnalysis                 ToneAnalysis                 `json:"tone_analysis"`
	PolicyRecommendations        []PolicyRecommendation       `json:"policy_recommendations"`
	CommunicationRecommendations CommunicationRecommendations `json:"communication_recommendations"`
	NextSteps                    []string                     `json:"next_steps"`
	Sources                      []string                     `json:"sources"`
}

type FeedbackClaimSummary struct {
	ClaimType           ClaimType  `json:"claim_type"`
	ProductType         string     `json:"product_type"`
	DamageType          DamageType `json:"damage_type"`
	Manufacturer        string     `json:"manufacturer"`
	ClaimDate           string     `json:"claim_date"`
	DaysSinceDelivery   int        `json:"days_since_delivery"`
	DaysDeliveryToClaim int        `json:"days_delivery_to_claim"`
	EligibleInput       bool       `json:"eligible_input"`
}

type ContractVerification struct {
	Result      string `json:"result"`
	Explanation string `json:"explanation"`
}

type DeliveryDateCheck struct {
	Result         string `json:"result"`
	Recommendation string `json:"recommendation"`
}

type BoolCheck struct {
	Result         bool   `json:"result"`
	Recommendation string `json:"recommendation"`
}

type EligibilityDecision struct {
	IsDecisionCorrect bool   `json:"isDecisionCorrect"`
	Explanation       string `json:"explanation"`
}

type FinalEligibility struct {
	IsEligible    bool   `json:"isEligible"`
	Justification string `json:"justification"`
}

type CriteriaEvaluations struct {
	ContractVerification ContractVerification `json:"contract_verification"`
	DeliveryDate         DeliveryDateCheck    `json:"delivery_date"`
	DamageClassification BoolCheck            `json:"damage_classification_validation"`
	Attachments          BoolCheck            `json:"attachments_verification"`
	Eligibility          EligibilityDecision  `json:"eligibility_decision"`
}

// FeedbackResponse is the body returned by both agent-feedback
// endpoints.
type FeedbackResponse struct {
	ClaimSummary        FeedbackClaimSummary `json:"claim_summary"`
	CriteriaEvaluations CriteriaEvaluations  `json:"criteria_evaluations"`
	FinalRecommendation string               `json:"final_recommendation"`
	FinalEligibility    FinalEligibility     `json:"final_eligibility"`
	Sources             []string             `json:"sources"`
}
