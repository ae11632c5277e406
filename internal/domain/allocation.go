package domain

// AllocationSource records which path produced an allocation
type AllocationSource string

const (
	AllocationSourceProvider AllocationSource = "provider"
	AllocationSourceRules    AllocationSource = "rules"
)

// AllocationResult is the canonical outcome of allocation resolution,
// independent of whether the provider or the rule table produced it
type AllocationResult struct {
	Allocation      Allocation
	Recommendations *Recommendations
	Summary         string
	Source          AllocationSource
}
