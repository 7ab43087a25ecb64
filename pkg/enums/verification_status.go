package enums

import "fmt"

// VerificationStatus tracks a junk-shop verification submission.
type VerificationStatus string

const (
	VerificationStatusPending  VerificationStatus = "pending"
	VerificationStatusApproved VerificationStatus = "approved"
	VerificationStatusRejected VerificationStatus = "rejected"
)

var validVerificationStatuses = []VerificationStatus{
	VerificationStatusPending,
	VerificationStatusApproved,
	VerificationStatusRejected,
}

// IsValid reports whether the value is a known VerificationStatus.
func (v VerificationStatus) IsValid() bool {
	for _, candidate := range validVerificationStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// IsDecision reports whether the status represents a reviewer decision.
// Decisions are not terminal: an approved verification can be revoked to
// rejected and a rejected one re-approved by an explicit admin action.
func (v VerificationStatus) IsDecision() bool {
	return v == VerificationStatusApproved || v == VerificationStatusRejected
}

// NormalizeVerificationStatus treats an absent status as pending.
func NormalizeVerificationStatus(value string) VerificationStatus {
	if value == "" {
		return VerificationStatusPending
	}
	return VerificationStatus(value)
}

// ParseVerificationStatus converts raw input into a VerificationStatus.
func ParseVerificationStatus(value string) (VerificationStatus, error) {
	for _, candidate := range validVerificationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid verification status %q", value)
}
