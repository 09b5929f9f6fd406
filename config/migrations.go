package config

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
	"slf.org.pk/echdata/models"
)

func Migrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID: "10012026_create_core_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Community{}, &models.Village{}, &models.Beneficiary{},
					&models.EchWorker{}, &models.VillageAssignment{}, &models.Training{}, &models.WorkerTraining{},
					&models.AdminAccount{})
			},
		},
		{
			ID: "10012026_create_visit_tables",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.FieldVisit{}, &models.VaccinationLine{},
					&models.DiseaseLine{}, &models.DiseaseSymptom{}, &models.PredationLine{})
			},
		},
		{
			ID: "12012026_add_foreign_keys",
			Migrate: func(tx *gorm.DB) error {
				// field_visits deliberately has no worker_id constraint so that
				// historical visits survive worker deletion.
				stmts := []string{
					"ALTER TABLE villages ADD CONSTRAINT fk_villages_community FOREIGN KEY (community_name) REFERENCES communities(name) ON DELETE RESTRICT",
					"ALTER TABLE beneficiaries ADD CONSTRAINT fk_beneficiaries_village FOREIGN KEY (village_id) REFERENCES villages(id) ON DELETE RESTRICT",
					"ALTER TABLE village_assignments ADD CONSTRAINT fk_assignments_worker FOREIGN KEY (worker_id) REFERENCES ech_workers(id) ON DELETE CASCADE",
					"ALTER TABLE village_assignments ADD CONSTRAINT fk_assignments_village FOREIGN KEY (village_id) REFERENCES villages(id) ON DELETE RESTRICT",
					"ALTER TABLE worker_trainings ADD CONSTRAINT fk_worker_trainings_worker FOREIGN KEY (worker_id) REFERENCES ech_workers(id) ON DELETE CASCADE",
					"ALTER TABLE worker_trainings ADD CONSTRAINT fk_worker_trainings_training FOREIGN KEY (training_id) REFERENCES trainings(id) ON DELETE CASCADE",
					"ALTER TABLE field_visits ADD CONSTRAINT fk_visits_beneficiary FOREIGN KEY (beneficiary_id) REFERENCES beneficiaries(id) ON DELETE RESTRICT",
					"ALTER TABLE vaccination_lines ADD CONSTRAINT fk_vaccination_lines_visit FOREIGN KEY (visit_id) REFERENCES field_visits(id) ON DELETE CASCADE",
					"ALTER TABLE disease_lines ADD CONSTRAINT fk_disease_lines_visit FOREIGN KEY (visit_id) REFERENCES field_visits(id) ON DELETE CASCADE",
					"ALTER TABLE disease_symptoms ADD CONSTRAINT fk_disease_symptoms_line FOREIGN KEY (disease_line_id) REFERENCES disease_lines(id) ON DELETE CASCADE",
					"ALTER TABLE predation_lines ADD CONSTRAINT fk_predation_lines_visit FOREIGN KEY (visit_id) REFERENCES field_visits(id) ON DELETE CASCADE",
				}
				for _, stmt := range stmts {
					if err := tx.Exec(stmt).Error; err != nil {
						// Constraint may already exist from a prior partial run
						continue
					}
				}
				return nil
			},
		},
	})
	return m.Migrate()
}
