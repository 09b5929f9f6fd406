package handlers

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"slf.org.pk/echdata/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(&models.Community{}, &models.Village{}, &models.Beneficiary{},
		&models.EchWorker{}, &models.VillageAssignment{}, &models.Training{},
		&models.WorkerTraining{}, &models.AdminAccount{}, &models.FieldVisit{},
		&models.VaccinationLine{}, &models.DiseaseLine{}, &models.DiseaseSymptom{},
		&models.PredationLine{}, &models.AuditLog{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedVillage creates a community, one village in it, and one beneficiary.
func seedVillage(t *testing.T, db *gorm.DB) (models.Village, models.Beneficiary) {
	t.Helper()
	community := models.Community{Name: "Basho"}
	if err := db.Create(&community).Error; err != nil {
		t.Fatalf("seed community: %v", err)
	}
	village := models.Village{Name: "Tisar", CommunityName: community.Name}
	if err := db.Create(&village).Error; err != nil {
		t.Fatalf("seed village: %v", err)
	}
	beneficiary := models.Beneficiary{Name: "Ghulam", VillageID: village.ID}
	if err := db.Create(&beneficiary).Error; err != nil {
		t.Fatalf("seed beneficiary: %v", err)
	}
	return village, beneficiary
}
