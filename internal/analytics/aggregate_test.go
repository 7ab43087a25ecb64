package analytics

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/LeiBaylon/kolekkita-backend/pkg/db/models"
	"github.com/LeiBaylon/kolekkita-backend/pkg/enums"
)

func strPtr(s string) *string { return &s }

func booking(weight *string, junkType string, municipality string, created time.Time) models.Booking {
	b := models.Booking{
		ID:              uuid.New(),
		UserID:          uuid.New(),
		EstimatedWeight: weight,
		Municipality:    municipality,
		Status:          "completed",
		CreatedAt:       created,
	}
	if junkType != "" {
		b.JunkType = &junkType
	}
	return b
}

func TestSummarizeWeights(t *testing.T) {
	now := time.Now().UTC()
	bookings := []models.Booking{
		booking(strPtr("10"), "", "Davao", now),
		booking(nil, "", "Davao", now),
		booking(strPtr("5.5"), "", "Davao", now),
	}

	summary := SummarizeWeights(bookings)
	if summary.TotalKg != 15.5 {
		t.Fatalf("expected total 15.5, got %v", summary.TotalKg)
	}
	if summary.ValidCount != 2 {
		t.Fatalf("expected 2 valid weights, got %d", summary.ValidCount)
	}
	if summary.BookingCount != 3 {
		t.Fatalf("expected 3 bookings, got %d", summary.BookingCount)
	}
	if summary.AverageKg != 7.75 {
		t.Fatalf("expected average 7.75, got %v", summary.AverageKg)
	}
}

func TestParseWeight(t *testing.T) {
	cases := []struct {
		in    *string
		want  float64
		valid bool
	}{
		{nil, 0, false},
		{strPtr(""), 0, false},
		{strPtr("   "), 0, false},
		{strPtr("10"), 10, true},
		{strPtr("5.5"), 5.5, true},
		{strPtr("10 kg"), 10, true},
		{strPtr("about twelve"), 0, false},
		{strPtr("kg 10"), 0, false},
		{strPtr(".5"), 0.5, true},
	}
	for _, tc := range cases {
		got, ok := ParseWeight(tc.in)
		if ok != tc.valid || got != tc.want {
			in := "<nil>"
			if tc.in != nil {
				in = *tc.in
			}
			t.Fatalf("ParseWeight(%q) = (%v, %v), want (%v, %v)", in, got, ok, tc.want, tc.valid)
		}
	}
}

func TestBreakdownByMaterial(t *testing.T) {
	now := time.Now().UTC()
	bookings := []models.Booking{
		booking(strPtr("2"), "plastic bottles", "Davao", now),
		booking(strPtr("3"), "PLASTIC chairs", "Davao", now),
		booking(strPtr("4"), "old newspaper", "Davao", now),
		booking(strPtr("1"), "unknown-stuff", "Davao", now),
		booking(nil, "", "Davao", now),
	}

	breakdown := BreakdownByMaterial(bookings)
	if breakdown.TotalBookings != 5 {
		t.Fatalf("unmatched types must still count in the total, got %d", breakdown.TotalBookings)
	}
	if breakdown.Unclassified != 2 {
		t.Fatalf("expected 2 unclassified bookings, got %d", breakdown.Unclassified)
	}

	byCategory := map[MaterialCategory]MaterialBucket{}
	for _, bucket := range breakdown.Buckets {
		byCategory[bucket.Category] = bucket
	}
	if byCategory[MaterialPlastic].Count != 2 {
		t.Fatalf("expected 2 plastic bookings, got %d", byCategory[MaterialPlastic].Count)
	}
	if byCategory[MaterialPlastic].WeightKg != 5 {
		t.Fatalf("expected 5kg of plastic, got %v", byCategory[MaterialPlastic].WeightKg)
	}
	if byCategory[MaterialPaper].Count != 1 {
		t.Fatalf("expected 1 paper booking, got %d", byCategory[MaterialPaper].Count)
	}
	// unknown-stuff appears in no bucket.
	total := 0
	for _, bucket := range breakdown.Buckets {
		total += bucket.Count
	}
	if total != 3 {
		t.Fatalf("expected 3 classified bookings across buckets, got %d", total)
	}
	if byCategory[MaterialPlastic].Percent != 67 {
		t.Fatalf("expected plastic at 67%%, got %d", byCategory[MaterialPlastic].Percent)
	}
}

func TestClassifyMaterial(t *testing.T) {
	cases := map[string]MaterialCategory{
		"plastic bottles": MaterialPlastic,
		"Water Bottle":    MaterialPlastic,
		"aluminum cans":   MaterialMetal,
		"glass jars":      MaterialGlass,
		"old appliance":   MaterialElectronics,
		"cardboard boxes": MaterialPaper,
	}
	for in, want := range cases {
		got, ok := ClassifyMaterial(in)
		if !ok || got != want {
			t.Fatalf("ClassifyMaterial(%q) = (%v, %v), want %v", in, got, ok, want)
		}
	}
	if _, ok := ClassifyMaterial("unknown-stuff"); ok {
		t.Fatalf("unknown-stuff must not classify")
	}
}

func TestMonthlySeriesExcludesBadTimestamps(t *testing.T) {
	now := time.Date(2026, time.August, 15, 12, 0, 0, 0, time.UTC)
	bookings := []models.Booking{
		booking(strPtr("10"), "", "Davao", now.AddDate(0, 0, -1)),
		booking(strPtr("5"), "", "Davao", now.AddDate(0, -1, 0)),
		booking(strPtr("99"), "", "Davao", time.Time{}),
	}

	series, excluded := MonthlySeries(bookings, 3, now)
	if excluded != 1 {
		t.Fatalf("expected 1 excluded booking, got %d", excluded)
	}
	if len(series) != 3 {
		t.Fatalf("expected 3 buckets, got %d", len(series))
	}
	if series[2].Month != "2026-08" || series[2].Count != 1 || series[2].WeightKg != 10 {
		t.Fatalf("unexpected current month bucket: %+v", series[2])
	}
	if series[1].Month != "2026-07" || series[1].Count != 1 {
		t.Fatalf("unexpected previous month bucket: %+v", series[1])
	}
	if series[0].Month != "2026-06" || series[0].Count != 0 {
		t.Fatalf("unexpected oldest bucket: %+v", series[0])
	}
}

func TestBreakdownByMunicipality(t *testing.T) {
	now := time.Now().UTC()
	bookings := []models.Booking{
		booking(nil, "", "Davao", now),
		booking(nil, "", "Davao", now),
		booking(nil, "", "Tagum", now),
		booking(nil, "", "", now),
	}

	out := BreakdownByMunicipality(bookings)
	if len(out) != 2 {
		t.Fatalf("expected 2 municipalities, got %d", len(out))
	}
	if out[0].Municipality != "Davao" || out[0].Count != 2 || out[0].Percent != 67 {
		t.Fatalf("unexpected top municipality: %+v", out[0])
	}
	if out[1].Municipality != "Tagum" || out[1].Percent != 33 {
		t.Fatalf("unexpected second municipality: %+v", out[1])
	}
}

func TestBreakdownByRoleBucketsAliases(t *testing.T) {
	users := []models.User{
		{ID: uuid.New(), Role: enums.UserRole("junkshop")},
		{ID: uuid.New(), Role: enums.UserRoleJunkShopOwner},
		{ID: uuid.New(), Role: enums.UserRole("customer")},
		{ID: uuid.New(), Role: enums.UserRoleResident},
		{ID: uuid.New(), Role: enums.UserRoleMainAdmin},
		{ID: uuid.New(), Role: enums.UserRole("wizard")},
	}

	counts := BreakdownByRole(users)
	if counts.JunkShops != 2 {
		t.Fatalf("junkshop alias and canonical role must share a bucket, got %d", counts.JunkShops)
	}
	if counts.Residents != 2 {
		t.Fatalf("customer alias and resident must share a bucket, got %d", counts.Residents)
	}
	if counts.Admins != 1 || counts.Unknown != 1 || counts.Total != 6 {
		t.Fatalf("unexpected counts: %+v", counts)
	}
}
