package models

import "time"

// Seasons accepted on a field visit header.
const (
	SeasonSpring = "Spring"
	SeasonSummer = "Summer"
	SeasonAutumn = "Autumn"
	SeasonWinter = "Winter"
)

// FieldVisit is the header for one submitted field visit: sales, slaughter
// and cost figures for one beneficiary on one date, with vaccination, disease
// and predation detail lines hanging off it. The header and all lines are
// written in a single transaction. WorkerID is intentionally unconstrained so
// historical visits survive the deletion of the worker who recorded them.
type FieldVisit struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	Year   int       `gorm:"not null;index" json:"year"`
	Season string    `gorm:"size:20;not null" json:"season"`
	Date   time.Time `gorm:"not null" json:"date"`
	Donor  *string   `gorm:"size:100" json:"donor,omitempty"`

	WorkerID      uint         `gorm:"not null;index" json:"workerId"`
	Worker        *EchWorker   `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	BeneficiaryID uint         `gorm:"not null;index" json:"beneficiaryId"`
	Beneficiary   *Beneficiary `gorm:"foreignKey:BeneficiaryID" json:"beneficiary,omitempty"`

	BigAnimalsSlaughtered   *int     `json:"bigAnimalsSlaughtered,omitempty"`
	SmallAnimalsSlaughtered *int     `json:"smallAnimalsSlaughtered,omitempty"`
	SheepSold               *int     `json:"sheepSold,omitempty"`
	CattleSold              *int     `json:"cattleSold,omitempty"`
	GoatsSold               *int     `json:"goatsSold,omitempty"`
	PerSoldAnimalCost       *float64 `json:"perSoldAnimalCost,omitempty"`

	Vaccinations []VaccinationLine `gorm:"foreignKey:VisitID" json:"vaccinations,omitempty"`
	Diseases     []DiseaseLine     `gorm:"foreignKey:VisitID" json:"diseases,omitempty"`
	Predations   []PredationLine   `gorm:"foreignKey:VisitID" json:"predations,omitempty"`
}

// VaccinationLine is one vaccine type administered during a visit, with head
// counts per species. Nil counts mean the species was not reported, which the
// view engine renders differently from an explicit zero.
type VaccinationLine struct {
	ID      uint        `gorm:"primaryKey" json:"id"`
	VisitID uint        `gorm:"not null;index" json:"visitId"`
	Visit   *FieldVisit `gorm:"foreignKey:VisitID" json:"visit,omitempty"`

	VaccinationType string `gorm:"size:100;not null" json:"vaccinationType"`
	Sheep           *int   `json:"sheep,omitempty"`
	Goats           *int   `json:"goats,omitempty"`
	Cattle          *int   `json:"cattle,omitempty"`
	DozoYak         *int   `json:"dozoYak,omitempty"`
	Others          *int   `json:"others,omitempty"`
}

// DiseaseLine is one disease occurrence observed during a visit.
type DiseaseLine struct {
	ID      uint        `gorm:"primaryKey" json:"id"`
	VisitID uint        `gorm:"not null;index" json:"visitId"`
	Visit   *FieldVisit `gorm:"foreignKey:VisitID" json:"visit,omitempty"`

	DiseaseType string `gorm:"size:100;not null" json:"diseaseType"`
	Sheep       *int   `json:"sheep,omitempty"`
	Goats       *int   `json:"goats,omitempty"`
	Cattle      *int   `json:"cattle,omitempty"`
	DozoYak     *int   `json:"dozoYak,omitempty"`
	Others      *int   `json:"others,omitempty"`

	Symptoms []DiseaseSymptom `gorm:"foreignKey:DiseaseLineID" json:"symptoms,omitempty"`
}

// DiseaseSymptom is one observed symptom on a disease line.
type DiseaseSymptom struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	DiseaseLineID uint   `gorm:"not null;index" json:"diseaseLineId"`
	Symptom       string `gorm:"size:150;not null" json:"symptom"`
}

// PredationLine is one predator attack recorded during a visit.
type PredationLine struct {
	ID      uint        `gorm:"primaryKey" json:"id"`
	VisitID uint        `gorm:"not null;index" json:"visitId"`
	Visit   *FieldVisit `gorm:"foreignKey:VisitID" json:"visit,omitempty"`

	PredatorType      string   `gorm:"size:100;not null" json:"predatorType"`
	Sheep             *int     `json:"sheep,omitempty"`
	Goats             *int     `json:"goats,omitempty"`
	Cattle            *int     `json:"cattle,omitempty"`
	DozoYak           *int     `json:"dozoYak,omitempty"`
	Others            *int     `json:"others,omitempty"`
	PerPreyAnimalCost *float64 `json:"perPreyAnimalCost,omitempty"`
}
