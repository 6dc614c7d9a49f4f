package claims

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAnalyzeRequest() AnalyzeRequest {
	return AnalyzeRequest{
		ClaimType:       ClaimDamagedProduct,
		DamageType:      DamageAesthetic,
		DeliveryDate:    "2025-06-01",
		ProductType:     "sofa",
		Manufacturer:    "Elran",
		StoreOfPurchase: "02 - Sherbrooke",
		ProductCode:     "050534",
		HasAttachments:  true,
		Description:     "The armrest arrived scratched.",
	}
}

func TestAnalyzeRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*AnalyzeRequest)
		wantErr string
	}{
		{name: "valid", mutate: func(r *AnalyzeRequest) {}},
		{
			name:    "unknown claim type",
			mutate:  func(r *AnalyzeRequest) { r.ClaimType = "lost_in_space" },
			wantErr: "claim_type",
		},
		{
			name:    "unknown damage type",
			mutate:  func(r *AnalyzeRequest) { r.DamageType = "cosmic" },
			wantErr: "damage_type",
		},
		{
			name:    "bad delivery date",
			mutate:  func(r *AnalyzeRequest) { r.DeliveryDate = "June 1st" },
			wantErr: "delivery_date",
		},
		{
			name:    "missing product type",
			mutate:  func(r *AnalyzeRequest) { r.ProductType = "  " },
			wantErr: "product_type",
		},
		{
			name:    "missing description",
			mutate:  func(r *AnalyzeRequest) { r.Description = "" },
			wantErr: "description",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validAnalyzeRequest()
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFeedbackRequestValidate(t *testing.T) {
	req := FeedbackRequest{
		AnalyzeRequest: validAnalyzeRequest(),
		ContractNumber: "252228",
		ClaimDate:      "2025-06-10",
		Eligible:       true,
	}
	assert.NoError(t, req.Validate())

	req.ClaimDate = "yesterday"
	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claim_date")
}

func TestFeedbackRequestValidate_InheritsClaimChecks(t *testing.T) {
	req := FeedbackRequest{
		AnalyzeRequest: validAnalyzeRequest(),
		ClaimDate:      "2025-06-10",
	}
	req.ClaimType = "unknown"

	err := req.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claim_type")
}
