package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"
	"slf.org.pk/echdata/middleware"
	"slf.org.pk/echdata/models"
)

// AssignmentHandler manages worker-to-village assignments. Assigning and
// ending are admin operations; listing one's own villages is open to any
// authenticated worker.
type AssignmentHandler struct {
	db     *gorm.DB
	access *middleware.VillageAccess
}

func NewAssignmentHandler(db *gorm.DB, access *middleware.VillageAccess) *AssignmentHandler {
	return &AssignmentHandler{db: db, access: access}
}

type assignRequest struct {
	WorkerID  uint       `json:"workerId"`
	VillageID uint       `json:"villageId"`
	StartDate *time.Time `json:"startDate"`
}

// Assign opens an assignment for a worker in a village. A second assignment
// for the same pair hits the composite primary key and reports a conflict.
func (h *AssignmentHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req assignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.WorkerID == 0 || req.VillageID == 0 {
		http.Error(w, "workerId and villageId are required", http.StatusBadRequest)
		return
	}

	start := time.Now()
	if req.StartDate != nil {
		start = *req.StartDate
	}
	assignment := models.VillageAssignment{
		WorkerID:  req.WorkerID,
		VillageID: req.VillageID,
		StartDate: start,
	}
	if err := h.db.WithContext(r.Context()).Create(&assignment).Error; err != nil {
		if isDuplicateKey(err) {
			http.Error(w, "worker is already assigned to this village", http.StatusConflict)
			return
		}
		log.Printf("assign worker %d to village %d: %v", req.WorkerID, req.VillageID, err)
		http.Error(w, "could not create assignment", http.StatusInternalServerError)
		return
	}

	claims := middleware.GetClaims(r)
	middleware.RecordAudit(h.db, claims.Email, claims.Role, "assignment_opened", "village",
		strconv.FormatUint(uint64(req.VillageID), 10), map[string]any{"workerId": req.WorkerID})
	writeJSON(w, http.StatusCreated, assignment)
}

type endAssignmentRequest struct {
	WorkerID  uint       `json:"workerId"`
	VillageID uint       `json:"villageId"`
	EndDate   *time.Time `json:"endDate"`
}

// End closes an open assignment by setting its end date. The administrator
// may end any assignment; a worker only their own. Ending an assignment that
// is already closed, or that never existed, changes nothing and still
// reports success.
func (h *AssignmentHandler) End(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req endAssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.WorkerID == 0 || req.VillageID == 0 {
		http.Error(w, "workerId and villageId are required", http.StatusBadRequest)
		return
	}
	if !claims.IsAdmin() && req.WorkerID != claims.WorkerID {
		http.Error(w, "workers may only end their own assignments", http.StatusForbidden)
		return
	}

	end := time.Now()
	if req.EndDate != nil {
		end = *req.EndDate
	}
	result := h.db.WithContext(r.Context()).
		Model(&models.VillageAssignment{}).
		Where("worker_id = ? AND village_id = ? AND end_date IS NULL", req.WorkerID, req.VillageID).
		Update("end_date", end)
	if result.Error != nil {
		log.Printf("end assignment worker %d village %d: %v", req.WorkerID, req.VillageID, result.Error)
		http.Error(w, "could not end assignment", http.StatusInternalServerError)
		return
	}

	if result.RowsAffected > 0 {
		middleware.RecordAudit(h.db, claims.Email, claims.Role, "assignment_ended", "village",
			strconv.FormatUint(uint64(req.VillageID), 10), map[string]any{"workerId": req.WorkerID})
	}
	writeJSON(w, http.StatusOK, map[string]any{"ended": result.RowsAffected > 0})
}

// ListForWorker returns the full assignment history for one worker.
func (h *AssignmentHandler) ListForWorker(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid worker id", http.StatusBadRequest)
		return
	}

	var assignments []models.VillageAssignment
	err = h.db.WithContext(r.Context()).
		Preload("Village.Community").
		Where("worker_id = ?", id).
		Order("start_date").
		Find(&assignments).Error
	if err != nil {
		log.Printf("list assignments for worker %d: %v", id, err)
		http.Error(w, "could not load assignments", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, assignments)
}

// AssignedVillages returns the villages the caller can currently record in.
// The administrator sees every village.
func (h *AssignmentHandler) AssignedVillages(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	if claims.IsAdmin() {
		var villages []models.Village
		if err := h.db.WithContext(r.Context()).Preload("Community").Order("name").Find(&villages).Error; err != nil {
			log.Printf("list all villages: %v", err)
			http.Error(w, "could not load villages", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, villages)
		return
	}

	villages, err := h.access.AccessibleVillages(r.Context(), claims.WorkerID)
	if err != nil {
		log.Printf("resolve villages for worker %d: %v", claims.WorkerID, err)
		middleware.WriteAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, villages)
}
