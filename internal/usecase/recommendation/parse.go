package recommendation

import (
	"encoding/json"
	"math"

	"github.com/simaogato/planwise-backend/internal/domain"
)

// percentageTolerance is how far the bucket percentages may drift from 100
const percentageTolerance = 0.01

type wireBucket struct {
	Percentage *float64 `json:"percentage"`
	Amount     *float64 `json:"amount"`
}

type wireAllocation struct {
	SIPs           *wireBucket `json:"sips"`
	Cryptocurrency *wireBucket `json:"cryptocurrency"`
	Gold           *wireBucket `json:"gold"`
}

type wireResponse struct {
	Allocation      *wireAllocation         `json:"allocation"`
	Recommendations *domain.Recommendations `json:"recommendations"`
}

// extractJSONObject returns the first balanced top-level {...} object in text.
// Braces inside JSON strings are skipped. Returns "" when no complete object exists.
func extractJSONObject(text string) string {
	depth := 0
	start := -1
	inString := false
	escape := false

	for i := 0; i < len(text); i++ {
		b := text[i]

		if escape {
			escape = false
			continue
		}
		if inString {
			if b == '\\' {
				escape = true
			} else if b == '"' {
				inString = false
			}
			continue
		}

		switch b {
		case '"':
			// quotes only matter once an object has started
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}

// parseResponse turns free-form model output into a Result.
// Every deviation from the expected shape is reported as a ProviderError; nothing is partially accepted.
func parseResponse(text string) (Result, error) {
	raw := extractJSONObject(text)
	if raw == "" {
		return Result{}, newError(KindEmptyResponse, "no JSON object in response (%d bytes)", len(text))
	}

	var resp wireResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return Result{}, &ProviderError{Kind: KindMalformedJSON, Err: err}
	}

	if resp.Allocation == nil {
		return Result{}, newError(KindMissingAllocation, "response has no allocation field")
	}

	allocation, err := resp.Allocation.toDomain()
	if err != nil {
		return Result{}, err
	}

	if resp.Recommendations == nil || !resp.Recommendations.Complete() {
		return Result{}, newError(KindMissingRecommendations, "response must carry advice for sips, cryptocurrency and gold")
	}

	return Result{
		Allocation:      allocation,
		Recommendations: *resp.Recommendations,
	}, nil
}

func (w *wireAllocation) toDomain() (domain.Allocation, error) {
	buckets := []struct {
		name string
		wire *wireBucket
	}{
		{"sips", w.SIPs},
		{"cryptocurrency", w.Cryptocurrency},
		{"gold", w.Gold},
	}

	shares := make([]domain.BucketShare, 0, len(buckets))
	for _, b := range buckets {
		if b.wire == nil || b.wire.Percentage == nil || b.wire.Amount == nil {
			return domain.Allocation{}, newError(KindInvalidAllocation, "bucket %q is incomplete", b.name)
		}
		pct := *b.wire.Percentage
		if math.IsNaN(pct) || pct < 0 || pct > 100 {
			return domain.Allocation{}, newError(KindInvalidAllocation, "bucket %q has percentage %v", b.name, pct)
		}
		shares = append(shares, domain.BucketShare{Percentage: pct, Amount: *b.wire.Amount})
	}

	allocation := domain.Allocation{
		SIPs:           shares[0],
		Cryptocurrency: shares[1],
		Gold:           shares[2],
	}
	if total := allocation.TotalPercentage(); math.Abs(total-100) > percentageTolerance {
		return domain.Allocation{}, newError(KindInvalidAllocation, "percentages sum to %v, want 100", total)
	}
	return allocation, nil
}
