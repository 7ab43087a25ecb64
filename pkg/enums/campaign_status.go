package enums

import "fmt"

// CampaignStatus tracks the lifecycle of a notification fan-out.
// The progression is pending -> sending -> completed and never reverts;
// a campaign stuck at sending signals a partial failure.
type CampaignStatus string

const (
	CampaignStatusPending   CampaignStatus = "pending"
	CampaignStatusSending   CampaignStatus = "sending"
	CampaignStatusCompleted CampaignStatus = "completed"
)

var campaignStatusRank = map[CampaignStatus]int{
	CampaignStatusPending:   0,
	CampaignStatusSending:   1,
	CampaignStatusCompleted: 2,
}

// IsValid reports whether the value is a known CampaignStatus.
func (c CampaignStatus) IsValid() bool {
	_, ok := campaignStatusRank[c]
	return ok
}

// CanAdvanceTo reports whether moving to next is a forward transition.
func (c CampaignStatus) CanAdvanceTo(next CampaignStatus) bool {
	current, ok := campaignStatusRank[c]
	if !ok {
		return false
	}
	target, ok := campaignStatusRank[next]
	if !ok {
		return false
	}
	return target > current
}

// ParseCampaignStatus converts raw input into a CampaignStatus.
func ParseCampaignStatus(value string) (CampaignStatus, error) {
	candidate := CampaignStatus(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid campaign status %q", value)
	}
	return candidate, nil
}
