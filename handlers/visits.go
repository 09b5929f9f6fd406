package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"gorm.io/gorm"
	"slf.org.pk/echdata/middleware"
	"slf.org.pk/echdata/models"
)

// VisitHandler accepts field visit submissions and serves them back.
type VisitHandler struct {
	db     *gorm.DB
	access *middleware.VillageAccess
}

func NewVisitHandler(db *gorm.DB, access *middleware.VillageAccess) *VisitHandler {
	return &VisitHandler{db: db, access: access}
}

// Submit records one field visit. The beneficiary's village is checked
// against the caller's assignments before anything is written, and the
// header plus every line lands in a single transaction: if any row fails,
// nothing is kept.
func (h *VisitHandler) Submit(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var sub VisitSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	pruneSubmission(&sub)
	if err := validateSubmission(&sub); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var beneficiary models.Beneficiary
	if err := h.db.WithContext(r.Context()).First(&beneficiary, sub.BeneficiaryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "beneficiary not found", http.StatusBadRequest)
			return
		}
		log.Printf("submit visit: load beneficiary %d: %v", sub.BeneficiaryID, err)
		http.Error(w, "could not record visit", http.StatusInternalServerError)
		return
	}

	if err := h.access.AuthorizeWrite(r, beneficiary.VillageID); err != nil {
		middleware.WriteAuthError(w, err)
		return
	}

	visit := buildVisit(&sub, claims.WorkerID)
	err := h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&visit).Error
	})
	if err != nil {
		log.Printf("submit visit: %v", err)
		http.Error(w, "could not record visit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, visit)
}

// GetVisit returns one visit with all lines, symptoms and lookups attached.
func (h *VisitHandler) GetVisit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid visit id", http.StatusBadRequest)
		return
	}

	var visit models.FieldVisit
	err = h.db.WithContext(r.Context()).
		Preload("Beneficiary.Village.Community").
		Preload("Worker").
		Preload("Vaccinations").
		Preload("Diseases.Symptoms").
		Preload("Predations").
		First(&visit, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "visit not found", http.StatusNotFound)
			return
		}
		log.Printf("get visit %d: %v", id, err)
		http.Error(w, "could not load visit", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, visit)
}
