package enums

import "fmt"

// ReportStatus tracks a moderation queue entry.
type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusResolved ReportStatus = "resolved"
)

// IsValid reports whether the value is a known ReportStatus.
func (r ReportStatus) IsValid() bool {
	return r == ReportStatusPending || r == ReportStatusResolved
}

// ReportSource distinguishes persisted reports from heuristic candidates
// synthesized at read time from reviews and users.
type ReportSource string

const (
	ReportSourceStored      ReportSource = "stored"
	ReportSourceSynthesized ReportSource = "synthesized"
)

// ReportPriority ranks moderation queue entries.
type ReportPriority string

const (
	ReportPriorityLow    ReportPriority = "low"
	ReportPriorityMedium ReportPriority = "medium"
	ReportPriorityHigh   ReportPriority = "high"
)

var validReportPriorities = []ReportPriority{
	ReportPriorityLow,
	ReportPriorityMedium,
	ReportPriorityHigh,
}

// IsValid reports whether the value is a known ReportPriority.
func (p ReportPriority) IsValid() bool {
	for _, candidate := range validReportPriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseReportPriority converts raw input into a ReportPriority.
func ParseReportPriority(value string) (ReportPriority, error) {
	for _, candidate := range validReportPriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid report priority %q", value)
}
