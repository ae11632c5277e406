package sharelink

import (
	"strings"

	"github.com/google/uuid"
)

// PathPrefix is the frontend route that renders a shared plan
const PathPrefix = "/shared-plan/"

// Policy derives public share links from plan ids
type Policy struct {
	BaseURL string
}

// NewPolicy creates a Policy for the public frontend address baseURL
func NewPolicy(baseURL string) *Policy {
	return &Policy{BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/")}
}

// Derive returns the share link for planID when isSharedNow is true, nil otherwise.
// The result depends only on planID and the configured base URL.
func (p *Policy) Derive(planID uuid.UUID, isSharedNow bool) *string {
	if !isSharedNow {
		return nil
	}
	link := p.Link(planID)
	return &link
}

// Link returns the link a plan has while it is shared
func (p *Policy) Link(planID uuid.UUID) string {
	return p.BaseURL + PathPrefix + planID.String()
}
