package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"gorm.io/gorm"
	"slf.org.pk/echdata/models"
)

// TrainingHandler manages the training catalogue and per-worker completions.
type TrainingHandler struct {
	db *gorm.DB
}

func NewTrainingHandler(db *gorm.DB) *TrainingHandler {
	return &TrainingHandler{db: db}
}

// ListTrainings returns the full training catalogue.
func (h *TrainingHandler) ListTrainings(w http.ResponseWriter, r *http.Request) {
	var trainings []models.Training
	if err := h.db.WithContext(r.Context()).Order("year DESC, name").Find(&trainings).Error; err != nil {
		log.Printf("list trainings: %v", err)
		http.Error(w, "could not load trainings", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, trainings)
}

// CreateTraining adds a catalogue entry.
func (h *TrainingHandler) CreateTraining(w http.ResponseWriter, r *http.Request) {
	var training models.Training
	if err := json.NewDecoder(r.Body).Decode(&training); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if training.Name == "" || training.Year == 0 {
		http.Error(w, "name and year are required", http.StatusBadRequest)
		return
	}
	training.ID = 0

	if err := h.db.WithContext(r.Context()).Create(&training).Error; err != nil {
		log.Printf("create training: %v", err)
		http.Error(w, "could not create training", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, training)
}

// DeleteTraining removes a catalogue entry; completions cascade with it.
func (h *TrainingHandler) DeleteTraining(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "invalid training id", http.StatusBadRequest)
		return
	}

	result := h.db.WithContext(r.Context()).Delete(&models.Training{}, id)
	if result.Error != nil {
		log.Printf("delete training %d: %v", id, result.Error)
		http.Error(w, "could not delete training", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "training not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "training deleted"})
}

type completionRequest struct {
	WorkerID       uint       `json:"workerId"`
	TrainingID     uint       `json:"trainingId"`
	CompletionDate *time.Time `json:"completionDate"`
}

// RecordCompletion marks a training as completed by a worker.
func (h *TrainingHandler) RecordCompletion(w http.ResponseWriter, r *http.Request) {
	var req completionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.WorkerID == 0 || req.TrainingID == 0 {
		http.Error(w, "workerId and trainingId are required", http.StatusBadRequest)
		return
	}

	var training models.Training
	if err := h.db.WithContext(r.Context()).First(&training, req.TrainingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "training not found", http.StatusNotFound)
			return
		}
		log.Printf("load training %d: %v", req.TrainingID, err)
		http.Error(w, "could not record completion", http.StatusInternalServerError)
		return
	}

	date := time.Now()
	if req.CompletionDate != nil {
		date = *req.CompletionDate
	}
	completion := models.WorkerTraining{
		WorkerID:       req.WorkerID,
		TrainingID:     req.TrainingID,
		CompletionDate: date,
	}
	if err := h.db.WithContext(r.Context()).Create(&completion).Error; err != nil {
		if isDuplicateKey(err) {
			http.Error(w, "completion already recorded for this worker", http.StatusConflict)
			return
		}
		log.Printf("record completion worker %d training %d: %v", req.WorkerID, req.TrainingID, err)
		http.Error(w, "could not record completion", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, completion)
}

// RemoveCompletion deletes one worker-training completion row.
func (h *TrainingHandler) RemoveCompletion(w http.ResponseWriter, r *http.Request) {
	workerID, err := pathID(r, "workerId")
	if err != nil {
		http.Error(w, "invalid worker id", http.StatusBadRequest)
		return
	}
	trainingID, err := pathID(r, "trainingId")
	if err != nil {
		http.Error(w, "invalid training id", http.StatusBadRequest)
		return
	}

	result := h.db.WithContext(r.Context()).
		Where("worker_id = ? AND training_id = ?", workerID, trainingID).
		Delete(&models.WorkerTraining{})
	if result.Error != nil {
		log.Printf("remove completion worker %s training %s: %v",
			strconv.FormatUint(workerID, 10), strconv.FormatUint(trainingID, 10), result.Error)
		http.Error(w, "could not remove completion", http.StatusInternalServerError)
		return
	}
	if result.RowsAffected == 0 {
		http.Error(w, "completion not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "completion removed"})
}
