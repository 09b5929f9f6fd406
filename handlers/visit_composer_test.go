package handlers

import (
	"testing"
	"time"

	"slf.org.pk/echdata/models"
)

func intPtr(n int) *int { return &n }

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }

func TestPruneSubmissionDropsUntypedLines(t *testing.T) {
	sub := VisitSubmission{
		Vaccinations: []VaccinationEntry{
			{VaccinationType: "FMD", SpeciesCounts: SpeciesCounts{Sheep: intPtr(5)}},
			{VaccinationType: "", SpeciesCounts: SpeciesCounts{Sheep: intPtr(3)}},
			{VaccinationType: "   ", SpeciesCounts: SpeciesCounts{Goats: intPtr(2)}},
			{VaccinationType: " PPR ", SpeciesCounts: SpeciesCounts{Goats: intPtr(1)}},
		},
		Diseases: []DiseaseEntry{
			{DiseaseType: "", Symptoms: []string{"fever"}},
			{DiseaseType: "Anthrax", Symptoms: []string{"fever", "", "  ", "swelling"}},
		},
		Predations: []PredationEntry{
			{PredatorType: "Snow Leopard", SpeciesCounts: SpeciesCounts{Sheep: intPtr(2)}},
			{PredatorType: ""},
		},
	}

	pruneSubmission(&sub)

	if len(sub.Vaccinations) != 2 {
		t.Fatalf("kept %d vaccination entries, want 2", len(sub.Vaccinations))
	}
	if sub.Vaccinations[0].VaccinationType != "FMD" || sub.Vaccinations[1].VaccinationType != "PPR" {
		t.Errorf("kept types %q and %q, want FMD and PPR",
			sub.Vaccinations[0].VaccinationType, sub.Vaccinations[1].VaccinationType)
	}

	if len(sub.Diseases) != 1 {
		t.Fatalf("kept %d disease entries, want 1", len(sub.Diseases))
	}
	if len(sub.Diseases[0].Symptoms) != 2 {
		t.Errorf("kept %d symptoms, want 2 (blank ones pruned)", len(sub.Diseases[0].Symptoms))
	}

	if len(sub.Predations) != 1 {
		t.Fatalf("kept %d predation entries, want 1", len(sub.Predations))
	}
}

func TestPruneSubmissionAllBlank(t *testing.T) {
	sub := VisitSubmission{
		Vaccinations: []VaccinationEntry{{VaccinationType: ""}},
		Diseases:     []DiseaseEntry{{DiseaseType: ""}},
		Predations:   []PredationEntry{{PredatorType: ""}},
	}
	pruneSubmission(&sub)
	if len(sub.Vaccinations)+len(sub.Diseases)+len(sub.Predations) != 0 {
		t.Error("all-blank submission should prune to zero lines")
	}
}

func TestValidateSubmission(t *testing.T) {
	valid := VisitSubmission{
		Date:          time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC),
		Season:        models.SeasonSpring,
		BeneficiaryID: 3,
	}

	tests := []struct {
		name    string
		mutate  func(*VisitSubmission)
		wantErr bool
	}{
		{"valid", func(s *VisitSubmission) {}, false},
		{"missing date", func(s *VisitSubmission) { s.Date = time.Time{} }, true},
		{"bad season", func(s *VisitSubmission) { s.Season = "Monsoon" }, true},
		{"empty season", func(s *VisitSubmission) { s.Season = "" }, true},
		{"missing beneficiary", func(s *VisitSubmission) { s.BeneficiaryID = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := valid
			tt.mutate(&sub)
			err := validateSubmission(&sub)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateSubmission() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBuildVisitDerivesYear(t *testing.T) {
	sub := VisitSubmission{
		Date:          time.Date(2023, 11, 2, 0, 0, 0, 0, time.UTC),
		Season:        models.SeasonAutumn,
		BeneficiaryID: 9,
		Donor:         strPtr("WWF"),
		SheepSold:     intPtr(4),
		Vaccinations: []VaccinationEntry{
			{VaccinationType: "FMD", SpeciesCounts: SpeciesCounts{Sheep: intPtr(10), Cattle: intPtr(2)}},
		},
		Diseases: []DiseaseEntry{
			{DiseaseType: "Anthrax", Symptoms: []string{"fever", "swelling"}, SpeciesCounts: SpeciesCounts{Goats: intPtr(3)}},
		},
		Predations: []PredationEntry{
			{PredatorType: "Wolf", PerPreyAnimalCost: floatPtr(150), SpeciesCounts: SpeciesCounts{Sheep: intPtr(2)}},
		},
	}

	visit := buildVisit(&sub, 5)

	if visit.Year != 2023 {
		t.Errorf("Year = %d, want 2023 (derived from date)", visit.Year)
	}
	if visit.WorkerID != 5 {
		t.Errorf("WorkerID = %d, want 5", visit.WorkerID)
	}
	if visit.BeneficiaryID != 9 {
		t.Errorf("BeneficiaryID = %d, want 9", visit.BeneficiaryID)
	}
	if len(visit.Vaccinations) != 1 || visit.Vaccinations[0].VaccinationType != "FMD" {
		t.Fatalf("vaccination lines not carried over: %+v", visit.Vaccinations)
	}
	if len(visit.Diseases) != 1 || len(visit.Diseases[0].Symptoms) != 2 {
		t.Fatalf("disease line or symptoms not carried over: %+v", visit.Diseases)
	}
	if visit.Diseases[0].Symptoms[0].Symptom != "fever" {
		t.Errorf("first symptom = %q, want fever", visit.Diseases[0].Symptoms[0].Symptom)
	}
	if len(visit.Predations) != 1 || visit.Predations[0].PerPreyAnimalCost == nil {
		t.Fatalf("predation line not carried over: %+v", visit.Predations)
	}
	if visit.SheepSold == nil || *visit.SheepSold != 4 {
		t.Errorf("SheepSold not carried to header")
	}
}

func TestBuildVisitKeepsNilCounts(t *testing.T) {
	sub := VisitSubmission{
		Date:          time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Season:        models.SeasonSummer,
		BeneficiaryID: 1,
		Vaccinations: []VaccinationEntry{
			{VaccinationType: "FMD", SpeciesCounts: SpeciesCounts{Sheep: intPtr(0)}},
		},
	}

	visit := buildVisit(&sub, 2)
	line := visit.Vaccinations[0]
	if line.Sheep == nil || *line.Sheep != 0 {
		t.Error("explicit zero count must survive as zero, not nil")
	}
	if line.Goats != nil {
		t.Error("unreported count must stay nil, not become zero")
	}
}
