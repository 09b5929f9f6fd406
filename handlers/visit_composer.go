package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"slf.org.pk/echdata/models"
)

// VisitSubmission is the wire payload for one field visit: the header values
// and however many vaccination, disease and predation entries the worker
// filled in. The client sends every form row it rendered; rows the worker
// left without a type are pruned here, not rejected.
type VisitSubmission struct {
	Date          time.Time `json:"date"`
	Season        string    `json:"season"`
	Donor         *string   `json:"donor"`
	BeneficiaryID uint      `json:"beneficiaryId"`

	BigAnimalsSlaughtered   *int     `json:"bigAnimalsSlaughtered"`
	SmallAnimalsSlaughtered *int     `json:"smallAnimalsSlaughtered"`
	SheepSold               *int     `json:"sheepSold"`
	CattleSold              *int     `json:"cattleSold"`
	GoatsSold               *int     `json:"goatsSold"`
	PerSoldAnimalCost       *float64 `json:"perSoldAnimalCost"`

	Vaccinations []VaccinationEntry `json:"vaccinations"`
	Diseases     []DiseaseEntry     `json:"diseases"`
	Predations   []PredationEntry   `json:"predations"`
}

// SpeciesCounts carries the per-species head counts shared by all line kinds.
// Nil means the field was left empty, which is distinct from zero.
type SpeciesCounts struct {
	Sheep   *int `json:"sheep"`
	Goats   *int `json:"goats"`
	Cattle  *int `json:"cattle"`
	DozoYak *int `json:"dozoYak"`
	Others  *int `json:"others"`
}

type VaccinationEntry struct {
	VaccinationType string `json:"vaccinationType"`
	SpeciesCounts
}

type DiseaseEntry struct {
	DiseaseType string   `json:"diseaseType"`
	Symptoms    []string `json:"symptoms"`
	SpeciesCounts
}

type PredationEntry struct {
	PredatorType      string   `json:"predatorType"`
	PerPreyAnimalCost *float64 `json:"perPreyAnimalCost"`
	SpeciesCounts
}

var validSeasons = map[string]bool{
	models.SeasonSpring: true,
	models.SeasonSummer: true,
	models.SeasonAutumn: true,
	models.SeasonWinter: true,
}

var errNoDate = errors.New("date is required")

// pruneSubmission drops entries whose type was left blank and blank symptom
// strings. Untyped rows are an artifact of the client's fixed form layout,
// not an input error, so they disappear silently.
func pruneSubmission(sub *VisitSubmission) {
	vaccinations := sub.Vaccinations[:0]
	for _, entry := range sub.Vaccinations {
		entry.VaccinationType = strings.TrimSpace(entry.VaccinationType)
		if entry.VaccinationType != "" {
			vaccinations = append(vaccinations, entry)
		}
	}
	sub.Vaccinations = vaccinations

	diseases := sub.Diseases[:0]
	for _, entry := range sub.Diseases {
		entry.DiseaseType = strings.TrimSpace(entry.DiseaseType)
		if entry.DiseaseType == "" {
			continue
		}
		symptoms := entry.Symptoms[:0]
		for _, symptom := range entry.Symptoms {
			symptom = strings.TrimSpace(symptom)
			if symptom != "" {
				symptoms = append(symptoms, symptom)
			}
		}
		entry.Symptoms = symptoms
		diseases = append(diseases, entry)
	}
	sub.Diseases = diseases

	predations := sub.Predations[:0]
	for _, entry := range sub.Predations {
		entry.PredatorType = strings.TrimSpace(entry.PredatorType)
		if entry.PredatorType != "" {
			predations = append(predations, entry)
		}
	}
	sub.Predations = predations
}

// validateSubmission checks the header after pruning. Line entries need no
// checks beyond the type being present, which pruning already guarantees.
func validateSubmission(sub *VisitSubmission) error {
	if sub.Date.IsZero() {
		return errNoDate
	}
	if !validSeasons[sub.Season] {
		return fmt.Errorf("invalid season %q", sub.Season)
	}
	if sub.BeneficiaryID == 0 {
		return errors.New("beneficiaryId is required")
	}
	return nil
}

// buildVisit assembles the persistable record tree from a pruned submission.
// The record year is always derived from the visit date, never sent by the
// client.
func buildVisit(sub *VisitSubmission, workerID uint) models.FieldVisit {
	visit := models.FieldVisit{
		Year:          sub.Date.Year(),
		Season:        sub.Season,
		Date:          sub.Date,
		Donor:         sub.Donor,
		WorkerID:      workerID,
		BeneficiaryID: sub.BeneficiaryID,

		BigAnimalsSlaughtered:   sub.BigAnimalsSlaughtered,
		SmallAnimalsSlaughtered: sub.SmallAnimalsSlaughtered,
		SheepSold:               sub.SheepSold,
		CattleSold:              sub.CattleSold,
		GoatsSold:               sub.GoatsSold,
		PerSoldAnimalCost:       sub.PerSoldAnimalCost,
	}

	for _, entry := range sub.Vaccinations {
		visit.Vaccinations = append(visit.Vaccinations, models.VaccinationLine{
			VaccinationType: entry.VaccinationType,
			Sheep:           entry.Sheep,
			Goats:           entry.Goats,
			Cattle:          entry.Cattle,
			DozoYak:         entry.DozoYak,
			Others:          entry.Others,
		})
	}
	for _, entry := range sub.Diseases {
		line := models.DiseaseLine{
			DiseaseType: entry.DiseaseType,
			Sheep:       entry.Sheep,
			Goats:       entry.Goats,
			Cattle:      entry.Cattle,
			DozoYak:     entry.DozoYak,
			Others:      entry.Others,
		}
		for _, symptom := range entry.Symptoms {
			line.Symptoms = append(line.Symptoms, models.DiseaseSymptom{Symptom: symptom})
		}
		visit.Diseases = append(visit.Diseases, line)
	}
	for _, entry := range sub.Predations {
		visit.Predations = append(visit.Predations, models.PredationLine{
			PredatorType:      entry.PredatorType,
			Sheep:             entry.Sheep,
			Goats:             entry.Goats,
			Cattle:            entry.Cattle,
			DozoYak:           entry.DozoYak,
			Others:            entry.Others,
			PerPreyAnimalCost: entry.PerPreyAnimalCost,
		})
	}
	return visit
}
