package recommendation

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/simaogato/planwise-backend/internal/domain"
)

// Generator sends one prompt to a text-generation service and returns the raw reply
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is a successfully parsed and validated provider answer
type Result struct {
	Allocation      domain.Allocation
	Recommendations domain.Recommendations
}

// Provider asks an external generative service for an allocation and per-bucket advice
type Provider struct {
	Generator Generator
}

// NewProvider creates a new Provider backed by generator
func NewProvider(generator Generator) *Provider {
	return &Provider{Generator: generator}
}

// Fetch requests an allocation for monthlyIncome at riskLevel.
// Logic:
//  1. Build the prompt embedding income and risk level
//  2. Send exactly one request (no retry, no streaming)
//  3. Extract the first JSON object from the reply and validate its shape
//
// Any failure is returned as a *ProviderError. Fetch holds no state and has no side
// effects beyond the outbound call.
func (p *Provider) Fetch(ctx context.Context, monthlyIncome float64, riskLevel domain.RiskLevel) (Result, error) {
	if p == nil || p.Generator == nil {
		return Result{}, newError(KindTransport, "no generator configured")
	}

	text, err := p.Generator.Generate(ctx, BuildPrompt(monthlyIncome, riskLevel))
	if err != nil {
		return Result{}, &ProviderError{Kind: KindTransport, Err: err}
	}
	// a reply that raced a deadline is still discarded
	if ctxErr := ctx.Err(); ctxErr != nil {
		return Result{}, &ProviderError{Kind: KindTransport, Err: ctxErr}
	}

	return parseResponse(text)
}

// ErrGeneratorDisabled is returned by DisabledGenerator
var ErrGeneratorDisabled = errors.New("recommendation service disabled")

// DisabledGenerator always fails, sending every request down the fallback path
type DisabledGenerator struct{}

func (DisabledGenerator) Generate(context.Context, string) (string, error) {
	return "", ErrGeneratorDisabled
}

// BuildPrompt renders the advisor prompt for one request
func BuildPrompt(monthlyIncome float64, riskLevel domain.RiskLevel) string {
	income := strconv.FormatFloat(monthlyIncome, 'f', -1, 64)
	return fmt.Sprintf(`You are a financial advisor.

Given a monthly income of ₹%s and a risk level of "%s", suggest a recommended allocation strategy among SIPs, cryptocurrency, and gold.
The three percentages must add up to 100 and each amount must equal the monthly income multiplied by its percentage divided by 100.

Then, write a short explanation for each category based on the allocated amount and the user's risk level.

Respond in the following JSON format:

{
  "allocation": {
    "sips": { "percentage": number, "amount": number },
    "cryptocurrency": { "percentage": number, "amount": number },
    "gold": { "percentage": number, "amount": number }
  },
  "recommendations": {
    "sips": "Tailored advice for SIPs",
    "cryptocurrency": "Tailored advice for cryptocurrency",
    "gold": "Tailored advice for gold"
  }
}
`, income, riskLevel)
}
