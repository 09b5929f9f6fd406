package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"gorm.io/gorm"
	"slf.org.pk/echdata/middleware"
	"slf.org.pk/echdata/models"
)

// BeneficiaryHandler serves beneficiary lookup and registration. Writes are
// gated on the caller holding an open assignment for the village.
type BeneficiaryHandler struct {
	db     *gorm.DB
	access *middleware.VillageAccess
}

func NewBeneficiaryHandler(db *gorm.DB, access *middleware.VillageAccess) *BeneficiaryHandler {
	return &BeneficiaryHandler{db: db, access: access}
}

// ListByVillage returns the beneficiaries registered in one village.
func (h *BeneficiaryHandler) ListByVillage(w http.ResponseWriter, r *http.Request) {
	villageID, err := pathID(r, "villageId")
	if err != nil {
		http.Error(w, "invalid village id", http.StatusBadRequest)
		return
	}

	var beneficiaries []models.Beneficiary
	err = h.db.WithContext(r.Context()).
		Where("village_id = ?", villageID).
		Order("name").
		Find(&beneficiaries).Error
	if err != nil {
		log.Printf("list beneficiaries for village %d: %v", villageID, err)
		http.Error(w, "could not load beneficiaries", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, beneficiaries)
}

// Create registers a beneficiary in a village the caller can write to.
func (h *BeneficiaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var beneficiary models.Beneficiary
	if err := json.NewDecoder(r.Body).Decode(&beneficiary); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if beneficiary.Name == "" || beneficiary.VillageID == 0 {
		http.Error(w, "name and villageId are required", http.StatusBadRequest)
		return
	}
	beneficiary.ID = 0
	beneficiary.Village = nil

	if err := h.access.AuthorizeWrite(r, beneficiary.VillageID); err != nil {
		middleware.WriteAuthError(w, err)
		return
	}

	if err := h.db.WithContext(r.Context()).Create(&beneficiary).Error; err != nil {
		log.Printf("create beneficiary: %v", err)
		http.Error(w, "could not create beneficiary", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, beneficiary)
}
