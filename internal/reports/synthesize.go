package reports

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
)

// Candidate kinds. A candidate exists only in memory until an admin acts
// on it; the ref ties the eventual stored row back to its source record.
const (
	candidateKindReview = "review"
	candidateKindUser   = "user"
)

// lowRatingThreshold flags reviews at or below this rating.
const lowRatingThreshold = 2

// CandidateRef identifies a synthesized report candidate by its source.
type CandidateRef struct {
	Kind     string
	SourceID uuid.UUID
}

func (r CandidateRef) String() string {
	return r.Kind + ":" + r.SourceID.String()
}

// ParseCandidateRef reads a "kind:uuid" reference.
func ParseCandidateRef(ref string) (CandidateRef, error) {
	kind, raw, found := strings.Cut(ref, ":")
	if !found || (kind != candidateKindReview && kind != candidateKindUser) {
		return CandidateRef{}, fmt.Errorf("invalid candidate ref %q", ref)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return CandidateRef{}, fmt.Errorf("invalid candidate ref %q: %w", ref, err)
	}
	return CandidateRef{Kind: kind, SourceID: id}, nil
}

// SynthesizeFromReviews turns low-rated reviews into report candidates.
// One-star reviews rank high, two-star reviews medium.
func SynthesizeFromReviews(reviews []models.Review) []models.Report {
	var out []models.Report
	for _, review := range reviews {
		if review.Rating > lowRatingThreshold {
			continue
		}
		priority := enums.ReportPriorityMedium
		if review.Rating <= 1 {
			priority = enums.ReportPriorityHigh
		}
		reviewedUserID := review.ReviewedUserID
		reviewerID := review.ReviewerID
		description := fmt.Sprintf("Review rated %d/5", review.Rating)
		if review.Comment != nil && strings.TrimSpace(*review.Comment) != "" {
			description = fmt.Sprintf("Review rated %d/5: %s", review.Rating, strings.TrimSpace(*review.Comment))
		}
		out = append(out, models.Report{
			ID:             review.ID,
			ReportType:     "low_rating",
			ReporterID:     &reviewerID,
			ReporterName:   review.ReviewerName,
			ReportedUserID: &reviewedUserID,
			Description:    description,
			Priority:       priority,
			Status:         enums.ReportStatusPending,
			Source:         enums.ReportSourceSynthesized,
			CreatedAt:      review.CreatedAt,
		})
	}
	return out
}

// SynthesizeFromUsers flags accounts whose display name is too short to
// be a real name.
func SynthesizeFromUsers(users []models.User) []models.Report {
	var out []models.Report
	for _, user := range users {
		name := strings.TrimSpace(user.Name)
		if len([]rune(name)) >= 2 {
			continue
		}
		reportedID := user.ID
		out = append(out, models.Report{
			ID:             user.ID,
			ReportType:     "suspicious_name",
			ReporterName:   "System",
			ReportedUserID: &reportedID,
			Description:    fmt.Sprintf("Account name %q looks auto-generated or empty", name),
			Priority:       enums.ReportPriorityLow,
			Status:         enums.ReportStatusPending,
			Source:         enums.ReportSourceSynthesized,
			CreatedAt:      user.CreatedAt,
		})
	}
	return out
}
