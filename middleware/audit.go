package middleware

import (
	"encoding/json"
	"log"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"slf.org.pk/echdata/models"
)

// RecordAudit writes one audit row. Failures are logged, not propagated, so
// an audit problem never blocks the action being recorded.
func RecordAudit(db *gorm.DB, actor, role, action, entity, entityID string, detail any) {
	entry := models.AuditLog{
		Actor:    actor,
		Role:     role,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
	}
	if detail != nil {
		payload, err := json.Marshal(detail)
		if err != nil {
			log.Printf("audit: marshal detail for %s: %v", action, err)
		} else {
			entry.Detail = datatypes.JSON(payload)
		}
	}
	if err := db.Create(&entry).Error; err != nil {
		log.Printf("audit: write %s: %v", action, err)
	}
}
