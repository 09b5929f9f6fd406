package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"slf.org.pk/echdata/middleware"
	"slf.org.pk/echdata/models"
	"slf.org.pk/echdata/utils"
)

// WorkerHandler is the admin-only management surface for ECH worker accounts.
type WorkerHandler struct {
	db *gorm.DB
}

func NewWorkerHandler(db *gorm.DB) *WorkerHandler {
	return &WorkerHandler{db: db}
}

type createWorkerRequest struct {
	Name             string     `json:"name"`
	FatherName       *string    `json:"fatherName"`
	NationalID       string     `json:"nationalId"`
	JoiningDate      time.Time  `json:"joiningDate"`
	DepartureDate    *time.Time `json:"departureDate"`
	HighestEducation *string    `json:"highestEducation"`
	Phone            *string    `json:"phone"`
	Address          *string    `json:"address"`
	VillageIDs       []uint     `json:"villageIds"`
	TrainingIDs      []uint     `json:"trainingIds"`
}

type createdCredentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateWorker issues the next sequential worker id, hashes the shared
// default password, and writes the worker together with any initial village
// assignments and training completions in one transaction. The login
// credentials are returned once in the response and never again.
func (h *WorkerHandler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req createWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" || req.NationalID == "" || req.JoiningDate.IsZero() {
		http.Error(w, "name, nationalId and joiningDate are required", http.StatusBadRequest)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(utils.DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("create worker: hash password: %v", err)
		http.Error(w, "could not create worker", http.StatusInternalServerError)
		return
	}

	var worker models.EchWorker
	err = h.db.WithContext(r.Context()).Transaction(func(tx *gorm.DB) error {
		// Next id is max existing plus one. Issued inside the transaction so
		// concurrent creates cannot race to the same id.
		var maxID int64
		if err := tx.Model(&models.EchWorker{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
			return err
		}
		nextID := uint(maxID) + 1

		worker = models.EchWorker{
			ID:               nextID,
			Name:             req.Name,
			FatherName:       req.FatherName,
			Username:         fmt.Sprintf("ech_%d", nextID),
			NationalID:       req.NationalID,
			PasswordHash:     string(hash),
			JoiningDate:      req.JoiningDate,
			DepartureDate:    req.DepartureDate,
			HighestEducation: req.HighestEducation,
			Phone:            req.Phone,
			Address:          req.Address,
		}
		if err := tx.Create(&worker).Error; err != nil {
			return err
		}

		for _, villageID := range req.VillageIDs {
			assignment := models.VillageAssignment{
				WorkerID:  worker.ID,
				VillageID: villageID,
				StartDate: req.JoiningDate,
			}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
		}
		for _, trainingID := range req.TrainingIDs {
			completion := models.WorkerTraining{
				WorkerID:       worker.ID,
				TrainingID:     trainingID,
				CompletionDate: req.JoiningDate,
			}
			if err := tx.Create(&completion).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			http.Error(w, "a worker with this national id already exists", http.StatusConflict)
			return
		}
		log.Printf("create worker: %v", err)
		http.Error(w, "could not create worker", http.StatusInternalServerError)
		return
	}

	claims := middleware.GetClaims(r)
	middleware.RecordAudit(h.db, claims.Email, claims.Role, "worker_created", "worker",
		strconv.FormatUint(uint64(worker.ID), 10), map[string]any{"name": worker.Name})

	writeJSON(w, http.StatusCreated, map[string]any{
		"worker": worker,
		"credentials": createdCredentials{
			Email:    utils.WorkerEmail(worker.ID),
			Password: utils.DefaultPassword,
		},
	})
}

// ListWorkers returns all workers with assignment and training history.
// ?status=Active|Former filters on employment status.
func (h *WorkerHandler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	var workers []models.EchWorker
	err := h.db.WithContext(r.Context()).
		Preload("Assignments.Village.Community").
		Preload("Trainings.Training").
		Order("id").
		Find(&workers).Error
	if err != nil {
		log.Printf("list workers: %v", err)
		http.Error(w, "could not load workers", http.StatusInternalServerError)
		return
	}

	if status := r.URL.Query().Get("status"); status != "" {
		filtered := workers[:0]
		for _, worker := range workers {
			if worker.EmploymentStatus() == status {
				filtered = append(filtered, worker)
			}
		}
		workers = filtered
	}
	writeJSON(w, http.StatusOK, workers)
}

// GetWorker returns one worker by id with full history.
func (h *WorkerHandler) GetWorker(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid worker id", http.StatusBadRequest)
		return
	}

	var worker models.EchWorker
	err = h.db.WithContext(r.Context()).
		Preload("Assignments.Village.Community").
		Preload("Trainings.Training").
		First(&worker, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "worker not found", http.StatusNotFound)
			return
		}
		log.Printf("get worker %d: %v", id, err)
		http.Error(w, "could not load worker", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, worker)
}

type updateWorkerRequest struct {
	Name             *string    `json:"name"`
	FatherName       *string    `json:"fatherName"`
	DepartureDate    *time.Time `json:"departureDate"`
	HighestEducation *string    `json:"highestEducation"`
	Phone            *string    `json:"phone"`
	Address          *string    `json:"address"`
}

// UpdateWorker patches mutable worker fields. Id, username and national id
// are fixed at creation.
func (h *WorkerHandler) UpdateWorker(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid worker id", http.StatusBadRequest)
		return
	}

	var req updateWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	var worker models.EchWorker
	if err := h.db.WithContext(r.Context()).First(&worker, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "worker not found", http.StatusNotFound)
			return
		}
		log.Printf("update worker %d: %v", id, err)
		http.Error(w, "could not load worker", http.StatusInternalServerError)
		return
	}

	if req.Name != nil {
		worker.Name = *req.Name
	}
	if req.FatherName != nil {
		worker.FatherName = req.FatherName
	}
	if req.DepartureDate != nil {
		worker.DepartureDate = req.DepartureDate
	}
	if req.HighestEducation != nil {
		worker.HighestEducation = req.HighestEducation
	}
	if req.Phone != nil {
		worker.Phone = req.Phone
	}
	if req.Address != nil {
		worker.Address = req.Address
	}

	if err := h.db.WithContext(r.Context()).Save(&worker).Error; err != nil {
		log.Printf("update worker %d: %v", id, err)
		http.Error(w, "could not update worker", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, worker)
}

// DeleteWorker removes the worker row. Assignments and training completions
// cascade away with it; field visits keep the worker id as history.
func (h *WorkerHandler) DeleteWorker(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid worker id", http.StatusBadRequest)
		return
	}

	result := h.db.WithContext(r.Context()).Delete(&models.EchWorker{}, id)
	if result.Error != nil {
		log.Printf("delete worker %d: %v", id, result.Error)
		http.Error(w, "could not delete worker", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "worker not found", http.StatusNotFound)
		return
	}

	claims := middleware.GetClaims(r)
	middleware.RecordAudit(h.db, claims.Email, claims.Role, "worker_deleted", "worker",
		strconv.FormatUint(id, 10), nil)
	writeJSON(w, http.StatusOK, map[string]string{"message": "worker deleted"})
}

// pathID reads a numeric {name} path variable.
func pathID(r *http.Request, name string) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)[name], 10, 32)
}
