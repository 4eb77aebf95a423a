package types

import "math"

type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyMedium   Urgency = "medium"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

// Weight maps an urgency onto [0,1]. Unknown values weigh like medium.
func (u Urgency) Weight() float64 {
	switch u {
	case UrgencyCritical:
		return 1.0
	case UrgencyHigh:
		return 0.8
	case UrgencyLow:
		return 0.4
	default:
		return 0.6
	}
}

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Hand-tuned thresholds the rest of the product depends on. Do not retune
// without checking downstream auto-approval.
const (
	AutoApproveConfidence = 0.8
	MediumRiskIssueCount  = 2
	HighRiskIssueCount    = 3
)

type SubmissionKind string

const (
	SubmissionDonation SubmissionKind = "donation"
	SubmissionRequest  SubmissionKind = "request"
)

type SubmissionContent struct {
	Kind        SubmissionKind `json:"kind,omitempty"`
	ItemName    string         `json:"itemName"`
	Category    ItemCategory   `json:"category"`
	Quantity    int            `json:"quantity"`
	Description *string        `json:"description,omitempty"`
	Location    string         `json:"location"`
	Urgency     Urgency        `json:"urgency"`
	ContactInfo string         `json:"contactInfo"`
}

type ValidationOutcome struct {
	IsValid     bool      `json:"isValid"`
	Confidence  float64   `json:"confidence"`
	Issues      []string  `json:"issues"`
	Suggestions []string  `json:"suggestions"`
	RiskLevel   RiskLevel `json:"riskLevel"`
	AutoApprove bool      `json:"autoApprove"`
}

func RiskForIssues(count int) RiskLevel {
	switch {
	case count >= HighRiskIssueCount:
		return RiskHigh
	case count >= MediumRiskIssueCount:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ApplyThresholds clamps confidence and derives RiskLevel and AutoApprove
// from the issue list, so outcomes from any source obey the same rules.
func (o *ValidationOutcome) ApplyThresholds() {
	if o.Issues == nil {
		o.Issues = []string{}
	}
	if o.Suggestions == nil {
		o.Suggestions = []string{}
	}

	o.Confidence = Clamp01(o.Confidence)
	o.RiskLevel = RiskForIssues(len(o.Issues))
	o.AutoApprove = o.IsValid && o.Confidence > AutoApproveConfidence
}

func Clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
