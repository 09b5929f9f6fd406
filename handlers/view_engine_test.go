package handlers

import (
	"context"
	"testing"
	"time"

	"slf.org.pk/echdata/models"
)

func TestPopulationBucket(t *testing.T) {
	tests := []struct {
		name string
		pop  *int
		want string
	}{
		{"nil", nil, "Unknown"},
		{"zero", intPtr(0), "Unknown"},
		{"small low", intPtr(1), PopSmall},
		{"small high", intPtr(99), PopSmall},
		{"medium low", intPtr(100), PopMedium},
		{"medium high", intPtr(499), PopMedium},
		{"large low", intPtr(500), PopLarge},
		{"large high", intPtr(999), PopLarge},
		{"very large", intPtr(1000), PopVeryLarge},
		{"very large big", intPtr(25000), PopVeryLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := populationBucket(tt.pop); got != tt.want {
				t.Errorf("populationBucket(%v) = %q, want %q", tt.pop, got, tt.want)
			}
		})
	}
}

func TestAllowedDimensions(t *testing.T) {
	want := map[string][]string{
		AxisCommunity:   {"country", "province", "district", "protection_status"},
		AxisVillage:     {"community", "population"},
		AxisBeneficiary: {"village", "community"},
		AxisVaccination: {"year", "season", "community", "village", "worker"},
		AxisDisease:     {"year", "season", "community", "village", "worker"},
		AxisPredation:   {"year", "season", "community", "village", "worker"},
		AxisWorker:      {"education", "status"},
	}
	for axis, dims := range want {
		got := AllowedDimensions[axis]
		if len(got) != len(dims) {
			t.Fatalf("axis %s has %d dimensions, want %d", axis, len(got), len(dims))
		}
		for i, dim := range dims {
			if got[i] != dim {
				t.Errorf("axis %s dimension %d = %q, want %q", axis, i, got[i], dim)
			}
			if groupAccessors[dim] == nil {
				t.Errorf("dimension %q has no accessor", dim)
			}
		}
	}
}

func TestCommunityAccessorPrecedence(t *testing.T) {
	community := &models.Community{Name: "Basho"}
	villageWithCommunity := &models.Village{Name: "Tisar", CommunityName: "Basho", Community: community}
	villageNameOnly := &models.Village{Name: "Tisar", CommunityName: "Hushe"}

	tests := []struct {
		name string
		item viewItem
		want string
	}{
		{"direct community wins", viewItem{community: community, village: villageNameOnly}, "Basho"},
		{"village community row", viewItem{village: villageWithCommunity}, "Basho"},
		{"village community name fallback", viewItem{village: villageNameOnly}, "Hushe"},
		{"nothing linked", viewItem{}, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := groupAccessors["community"](tt.item); got != tt.want {
				t.Errorf("community accessor = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGroupAccessorUnknownFallbacks(t *testing.T) {
	empty := viewItem{}
	for _, dim := range []string{"year", "season", "community", "village", "worker",
		"country", "province", "district", "protection_status", "population", "education", "status"} {
		if got := groupAccessors[dim](empty); got != "Unknown" {
			t.Errorf("accessor %q on empty item = %q, want Unknown", dim, got)
		}
	}
}

func TestWorkerStatusAccessor(t *testing.T) {
	departed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	active := viewItem{worker: &models.EchWorker{Name: "Ali"}}
	former := viewItem{worker: &models.EchWorker{Name: "Karim", DepartureDate: &departed}}

	if got := groupAccessors["status"](active); got != models.StatusActive {
		t.Errorf("active worker status = %q", got)
	}
	if got := groupAccessors["status"](former); got != models.StatusFormer {
		t.Errorf("former worker status = %q", got)
	}
}

func TestGroupItemsSortsUnknownLast(t *testing.T) {
	items := []viewItem{
		{cells: []string{"a"}, season: ""},
		{cells: []string{"b"}, season: "Winter"},
		{cells: []string{"c"}, season: "Spring"},
		{cells: []string{"d"}, season: "Spring"},
	}

	groups := groupItems(items, "season")
	if len(groups) != 3 {
		t.Fatalf("got %d groups, want 3", len(groups))
	}
	if groups[0].Key != "Spring" || groups[0].Count != 2 {
		t.Errorf("first group = %s (%d), want Spring (2)", groups[0].Key, groups[0].Count)
	}
	if groups[1].Key != "Winter" {
		t.Errorf("second group = %s, want Winter", groups[1].Key)
	}
	if groups[2].Key != "Unknown" {
		t.Errorf("last group = %s, want Unknown", groups[2].Key)
	}
}

func TestSearchItemsCaseInsensitive(t *testing.T) {
	items := []viewItem{
		{cells: []string{"Snow Leopard", "Tisar"}},
		{cells: []string{"Wolf", "Hushe"}},
		{cells: []string{"Lynx", "tisar"}},
	}

	got := searchItems(items, "TISAR")
	if len(got) != 2 {
		t.Fatalf("search matched %d items, want 2", len(got))
	}

	if got := searchItems(items, "bear"); len(got) != 0 {
		t.Errorf("search for absent term matched %d items", len(got))
	}
}

func TestYearOptions(t *testing.T) {
	now := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	years := YearOptions(now)
	if len(years) != 10 {
		t.Fatalf("got %d years, want 10", len(years))
	}
	if years[0] != 2026 || years[9] != 2017 {
		t.Errorf("years span %d..%d, want 2026..2017", years[0], years[9])
	}
	for i := 1; i < len(years); i++ {
		if years[i] != years[i-1]-1 {
			t.Fatalf("years not descending at index %d: %v", i, years)
		}
	}
}

func TestSummarizeVaccination(t *testing.T) {
	items := []viewItem{
		{visitID: 1, count: 10, value: 500},
		{visitID: 2, count: 5, value: 0},
	}
	summary := summarize(AxisVaccination, items)
	if summary["records"] != 2 {
		t.Errorf("records = %v, want 2", summary["records"])
	}
	if summary["animalsVaccinated"] != 15 {
		t.Errorf("animalsVaccinated = %v, want 15", summary["animalsVaccinated"])
	}
	if summary["salesIncome"] != 500.0 {
		t.Errorf("salesIncome = %v, want 500", summary["salesIncome"])
	}
}

func TestSummarizeVaccinationCountsIncomeOncePerVisit(t *testing.T) {
	// Three lines across two visits. The header income repeats on each line
	// of a visit and must only be added once, and records counts visits.
	items := []viewItem{
		{visitID: 1, count: 5, value: 300},
		{visitID: 1, count: 2, value: 300},
		{visitID: 2, count: 1, value: 200},
	}
	summary := summarize(AxisVaccination, items)
	if summary["records"] != 2 {
		t.Errorf("records = %v, want 2 visits", summary["records"])
	}
	if summary["animalsVaccinated"] != 8 {
		t.Errorf("animalsVaccinated = %v, want 8", summary["animalsVaccinated"])
	}
	if summary["salesIncome"] != 500.0 {
		t.Errorf("salesIncome = %v, want 500 (300 once + 200)", summary["salesIncome"])
	}
}

func TestSummarizeVillage(t *testing.T) {
	pop1, pop2 := 250, 800
	items := []viewItem{
		{village: &models.Village{Population: &pop1}},
		{village: &models.Village{Population: &pop2}},
		{village: &models.Village{}},
	}
	summary := summarize(AxisVillage, items)
	if summary["villages"] != 3 {
		t.Errorf("villages = %v, want 3", summary["villages"])
	}
	if summary["totalPopulation"] != 1050 {
		t.Errorf("totalPopulation = %v, want 1050", summary["totalPopulation"])
	}
}

func TestVaccinationViewIncomePerVisit(t *testing.T) {
	db := newTestDB(t)
	_, beneficiary := seedVillage(t, db)

	cost := 100.0
	sheepSold := 3
	visit := models.FieldVisit{
		Year:              2025,
		Season:            models.SeasonSummer,
		Date:              time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
		WorkerID:          1,
		BeneficiaryID:     beneficiary.ID,
		SheepSold:         &sheepSold,
		PerSoldAnimalCost: &cost,
		Vaccinations: []models.VaccinationLine{
			{VaccinationType: "FMD", Sheep: intPtr(10)},
			{VaccinationType: "PPR", Goats: intPtr(4)},
		},
	}
	if err := db.Create(&visit).Error; err != nil {
		t.Fatalf("seed visit: %v", err)
	}

	engine := NewViewEngine(db)
	result, err := engine.Execute(context.Background(), ViewQuery{Axis: AxisVaccination, Year: 2025})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("rows = %d, want one per vaccination line", len(result.Rows))
	}
	if result.Summary["salesIncome"] != 300.0 {
		t.Errorf("salesIncome = %v, want 300 (3 sheep at 100, counted once)", result.Summary["salesIncome"])
	}
	if result.Summary["records"] != 1 {
		t.Errorf("records = %v, want 1 visit", result.Summary["records"])
	}
	if result.Summary["animalsVaccinated"] != 14 {
		t.Errorf("animalsVaccinated = %v, want 14", result.Summary["animalsVaccinated"])
	}
}

func TestVillageAxisRows(t *testing.T) {
	db := newTestDB(t)
	community := models.Community{Name: "Basho"}
	if err := db.Create(&community).Error; err != nil {
		t.Fatalf("seed community: %v", err)
	}
	villages := []models.Village{
		{Name: "Arando", CommunityName: community.Name, Population: intPtr(1250)},
		{Name: "Tisar", CommunityName: community.Name},
	}
	if err := db.Create(&villages).Error; err != nil {
		t.Fatalf("seed villages: %v", err)
	}

	engine := NewViewEngine(db)
	result, err := engine.Execute(context.Background(), ViewQuery{Axis: AxisVillage})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if len(result.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(result.Rows))
	}
	// Ordered by name; population column renders "-" for unreported.
	if got := result.Rows[0][2]; got != "1,250" {
		t.Errorf("Arando population = %q, want %q", got, "1,250")
	}
	if got := result.Rows[1][2]; got != "-" {
		t.Errorf("Tisar population = %q, want %q", got, "-")
	}
}
