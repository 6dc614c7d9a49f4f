package claims

import (
	"context"
	"fmt"
	"time"

	"github.com/mueblesrd/support-rag/internal/llm"
	"github.com/mueblesrd/support-rag/internal/policy"
)

// JSONModel generates a structured completion whose output is expected
// to be a single JSON object.
type JSONModel interface {
	GenerateJSON(ctx context.Context, system, user string) (string, error)
}

// Service evaluates customer claims and audits agent decisions against
// retrieved policy.
type Service struct {
	retriever *policy.Retriever
	model     JSONModel
	prompts   *llm.Prompts
	now       func() time.Time
}

func NewService(retriever *policy.Retriever, model JSONModel, prompts *llm.Prompts) *Service {
	return &Service{
		retriever: retriever,
		model:     model,
		prompts:   prompts,
		now:       time.Now,
	}
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func claimContext(req *AnalyzeRequest, daysSinceDelivery int) string {
	return fmt.Sprintf(`Claim Details:
- Claim Type: %s
- Damage Type: %s
- Delivery: %s (%d days ago)
- Product: %s by %s
- Store: %s
- Product Code: %s
- Has Attachments: %s

Customer Message:
"%s"`,
		req.ClaimType,
		req.DamageType,
		req.DeliveryDate,
		daysSinceDelivery,
		req.ProductType,
		req.Manufacturer,
		req.StoreOfPurchase,
		req.ProductCode,
		yesNo(req.HasAttachments),
		req.Description,
	)
}

func feedbackContext(req *FeedbackRequest, hasContract bool, daysSinceDelivery, daysDeliveryToClaim int) string {
	return fmt.Sprintf(`=== CLAIM DETAILS ===
- Claim Type: %s
- Damage Type: %s
- Product Type: %s
- Manufacturer: %s
- Store of Purchase: %s
- Product Code: %s
- Has Attachments: %s
- Customer Description: "%s"

=== VERIFICATION DATA ===
- Criterion 1 - Contract Number Provided: %s - Contract #: %s
- Criterion 2 - Delivery Date (from claim): %s (%d days ago)
- Criterion 2 - Claim Date: %s
- Criterion 2 - Days Between Delivery and Claim: %d
- Criterion 4 - Has Attachments: %s
- Criterion 5 - Agent's Eligibility Decision: %s`,
		req.ClaimType,
		req.DamageType,
		req.ProductType,
		req.Manufacturer,
		req.StoreOfPurchase,
		req.ProductCode,
		yesNo(req.HasAttachments),
		req.Description,
		yesNo(hasContract),
		req.ContractNumber,
		req.DeliveryDate,
		daysSinceDelivery,
		req.ClaimDate,
		daysDeliveryToClaim,
		yesNo(req.HasAttachments),
		eligibleLabel(req.Eligible),
	)
}

func eligibleLabel(b bool) string {
	if b {
		return "Eligible"
	}
	return "Not Eligible"
}
