package analytics

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
)

// The aggregation family below is pure: every function re-scans the full
// input slices and computes its answer in memory. Nothing here persists
// aggregates or mutates inputs.

// WeightSummary totals the parseable estimated weights across bookings.
type WeightSummary struct {
	TotalKg      float64 `json:"total_kg"`
	ValidCount   int     `json:"valid_count"`
	BookingCount int     `json:"booking_count"`
	AverageKg    float64 `json:"average_kg"`
}

// SummarizeWeights parses each booking's estimated weight as a float.
// Missing or non-numeric weights contribute 0 and are excluded from the
// valid count and the average.
func SummarizeWeights(bookings []models.Booking) WeightSummary {
	summary := WeightSummary{BookingCount: len(bookings)}
	for _, booking := range bookings {
		weight, ok := ParseWeight(booking.EstimatedWeight)
		if !ok {
			continue
		}
		summary.TotalKg += weight
		summary.ValidCount++
	}
	if summary.ValidCount > 0 {
		summary.AverageKg = summary.TotalKg / float64(summary.ValidCount)
	}
	return summary
}

// ParseWeight reads the leading decimal number of a raw weight string, so
// inputs like "10 kg" still parse. A missing or number-free value reports
// false.
func ParseWeight(raw *string) (float64, bool) {
	if raw == nil {
		return 0, false
	}
	s := strings.TrimSpace(*raw)
	if s == "" {
		return 0, false
	}

	end := 0
	seenDigit := false
	for end < len(s) {
		c := s[end]
		if c >= '0' && c <= '9' {
			seenDigit = true
			end++
			continue
		}
		if (c == '.' || c == '-' || c == '+') && !seenDigit && end == 0 {
			end++
			continue
		}
		if c == '.' && seenDigit {
			end++
			continue
		}
		break
	}
	if !seenDigit {
		return 0, false
	}

	value, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// MaterialCategory is one of the five fixed buckets used on the dashboard.
type MaterialCategory string

const (
	MaterialPlastic     MaterialCategory = "Plastic"
	MaterialPaper       MaterialCategory = "Paper"
	MaterialMetal       MaterialCategory = "Metal"
	MaterialGlass       MaterialCategory = "Glass"
	MaterialElectronics MaterialCategory = "Electronics"
)

// MaterialCategories lists the buckets in display order.
var MaterialCategories = []MaterialCategory{
	MaterialPlastic,
	MaterialPaper,
	MaterialMetal,
	MaterialGlass,
	MaterialElectronics,
}

var materialKeywords = map[MaterialCategory][]string{
	MaterialPlastic:     {"plastic", "bottle", "sachet"},
	MaterialPaper:       {"paper", "carton", "cardboard", "newspaper"},
	MaterialMetal:       {"metal", "aluminum", "tin", "steel", "can", "scrap"},
	MaterialGlass:       {"glass", "jar"},
	MaterialElectronics: {"electronic", "e-waste", "appliance", "gadget", "battery"},
}

// MaterialBucket is one category's share of classified bookings.
type MaterialBucket struct {
	Category MaterialCategory `json:"category"`
	Count    int              `json:"count"`
	WeightKg float64          `json:"weight_kg"`
	Percent  int              `json:"percent"`
}

// MaterialBreakdown groups bookings by junk type keyword. Types matching
// none of the five categories are dropped from the buckets yet still count
// toward TotalBookings, mirroring the dashboard's historical behavior.
type MaterialBreakdown struct {
	Buckets       []MaterialBucket `json:"buckets"`
	TotalBookings int              `json:"total_bookings"`
	Unclassified  int              `json:"unclassified"`
}

// ClassifyMaterial maps a junk type onto a category via case-insensitive
// substring match. The first matching category in display order wins.
func ClassifyMaterial(junkType string) (MaterialCategory, bool) {
	needle := strings.ToLower(strings.TrimSpace(junkType))
	if needle == "" {
		return "", false
	}
	for _, category := range MaterialCategories {
		for _, keyword := range materialKeywords[category] {
			if strings.Contains(needle, keyword) {
				return category, true
			}
		}
	}
	return "", false
}

// BreakdownByMaterial buckets bookings into the fixed material categories.
func BreakdownByMaterial(bookings []models.Booking) MaterialBreakdown {
	counts := map[MaterialCategory]int{}
	weights := map[MaterialCategory]float64{}
	classified := 0

	for _, booking := range bookings {
		if booking.JunkType == nil {
			continue
		}
		category, ok := ClassifyMaterial(*booking.JunkType)
		if !ok {
			continue
		}
		counts[category]++
		classified++
		if weight, ok := ParseWeight(booking.EstimatedWeight); ok {
			weights[category] += weight
		}
	}

	breakdown := MaterialBreakdown{
		TotalBookings: len(bookings),
		Unclassified:  len(bookings) - classified,
	}
	for _, category := range MaterialCategories {
		breakdown.Buckets = append(breakdown.Buckets, MaterialBucket{
			Category: category,
			Count:    counts[category],
			WeightKg: weights[category],
			Percent:  roundedPercent(counts[category], classified),
		})
	}
	return breakdown
}

// MonthBucket is one month's booking activity.
type MonthBucket struct {
	Month    string  `json:"month"`
	Count    int     `json:"count"`
	WeightKg float64 `json:"weight_kg"`
}

// MonthlySeries groups bookings into per-month buckets for the trailing
// window ending at now. Bookings without a usable timestamp are excluded
// and counted, never substituted with the current time.
func MonthlySeries(bookings []models.Booking, months int, now time.Time) ([]MonthBucket, int) {
	if months <= 0 {
		months = 12
	}

	buckets := make(map[string]*MonthBucket, months)
	ordered := make([]MonthBucket, 0, months)
	cursor := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := months - 1; i >= 0; i-- {
		month := cursor.AddDate(0, -i, 0)
		key := month.Format("2006-01")
		ordered = append(ordered, MonthBucket{Month: key})
		buckets[key] = &ordered[len(ordered)-1]
	}

	excluded := 0
	for _, booking := range bookings {
		at, ok := BookingTimestamp(booking)
		if !ok {
			excluded++
			continue
		}
		bucket, inWindow := buckets[at.UTC().Format("2006-01")]
		if !inWindow {
			continue
		}
		bucket.Count++
		if weight, ok := ParseWeight(booking.EstimatedWeight); ok {
			bucket.WeightKg += weight
		}
	}
	return ordered, excluded
}

// MunicipalityCount is one municipality's share of bookings.
type MunicipalityCount struct {
	Municipality string `json:"municipality"`
	Count        int    `json:"count"`
	Percent      int    `json:"percent"`
}

// BreakdownByMunicipality counts bookings per municipality, sorted by
// volume with ties broken alphabetically.
func BreakdownByMunicipality(bookings []models.Booking) []MunicipalityCount {
	counts := map[string]int{}
	total := 0
	for _, booking := range bookings {
		municipality := strings.TrimSpace(booking.Municipality)
		if municipality == "" {
			continue
		}
		counts[municipality]++
		total++
	}

	out := make([]MunicipalityCount, 0, len(counts))
	for municipality, count := range counts {
		out = append(out, MunicipalityCount{
			Municipality: municipality,
			Count:        count,
			Percent:      roundedPercent(count, total),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Municipality < out[j].Municipality
	})
	return out
}

// RoleCounts buckets accounts per canonical role. Legacy alias spellings
// land in the same bucket as their canonical role.
type RoleCounts struct {
	Total      int `json:"total"`
	Admins     int `json:"admins"`
	JunkShops  int `json:"junk_shops"`
	Collectors int `json:"collectors"`
	Residents  int `json:"residents"`
	Unknown    int `json:"unknown"`
}

// BreakdownByRole counts users per role, resolving aliases on the way in.
func BreakdownByRole(users []models.User) RoleCounts {
	counts := RoleCounts{Total: len(users)}
	for _, user := range users {
		role, err := enums.ParseUserRole(string(user.Role))
		if err != nil {
			counts.Unknown++
			continue
		}
		switch {
		case role.IsAdmin():
			counts.Admins++
		case role == enums.UserRoleJunkShopOwner:
			counts.JunkShops++
		case role == enums.UserRoleCollector:
			counts.Collectors++
		case role == enums.UserRoleResident:
			counts.Residents++
		}
	}
	return counts
}

func roundedPercent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}
