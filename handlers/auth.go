package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"slf.org.pk/echdata/middleware"
	"slf.org.pk/echdata/models"
	"slf.org.pk/echdata/utils"
)

// AuthHandler serves login, token introspection, profile and password
// rotation.
type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token    string `json:"token"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	WorkerID uint   `json:"workerId,omitempty"`
}

// Login accepts a worker id or the literal "admin" plus a password. The
// typed value is expanded to the synthetic email before the credential check
// so both account kinds share one code path shape.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	email, err := utils.LoginEmail(req.Login)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if email == utils.AdminEmail() {
		var admin models.AdminAccount
		if err := h.db.WithContext(r.Context()).Where("email = ?", email).First(&admin).Error; err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		token, err := middleware.GenerateToken(0, email, "Administrator", middleware.RoleAdmin)
		if err != nil {
			log.Printf("login: sign admin token: %v", err)
			http.Error(w, "could not issue token", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, loginResponse{Token: token, Role: middleware.RoleAdmin, Name: "Administrator", Email: email})
		return
	}

	workerID, err := utils.WorkerIDFromEmail(email)
	if err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	var worker models.EchWorker
	if err := h.db.WithContext(r.Context()).First(&worker, workerID).Error; err != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(worker.PasswordHash), []byte(req.Password)) != nil {
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := middleware.GenerateToken(worker.ID, email, worker.Name, middleware.RoleWorker)
	if err != nil {
		log.Printf("login: sign worker token: %v", err)
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{
		Token:    token,
		Role:     middleware.RoleWorker,
		Name:     worker.Name,
		Email:    email,
		WorkerID: worker.ID,
	})
}

// Whoami echoes the verified claims so clients can confirm a stored token
// still resolves to the identity they expect.
func (h *AuthHandler) Whoami(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"workerId": claims.WorkerID,
		"email":    claims.Email,
		"name":     claims.Name,
		"role":     claims.Role,
	})
}

// Profile returns the caller's own record: the full worker row with
// assignment and training history, or a minimal block for the administrator.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if claims.IsAdmin() {
		writeJSON(w, http.StatusOK, map[string]any{
			"email": claims.Email,
			"name":  claims.Name,
			"role":  middleware.RoleAdmin,
		})
		return
	}

	var worker models.EchWorker
	err := h.db.WithContext(r.Context()).
		Preload("Assignments.Village.Community").
		Preload("Trainings.Training").
		First(&worker, claims.WorkerID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			http.Error(w, "worker not found", http.StatusNotFound)
			return
		}
		log.Printf("profile: load worker %d: %v", claims.WorkerID, err)
		http.Error(w, "could not load profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, worker)
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// ChangePassword rotates the caller's own password after verifying the
// current one.
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r)
	if claims == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.NewPassword) < 8 {
		http.Error(w, "new password must be at least 8 characters", http.StatusBadRequest)
		return
	}

	var currentHash string
	if claims.IsAdmin() {
		var admin models.AdminAccount
		if err := h.db.WithContext(r.Context()).Where("email = ?", claims.Email).First(&admin).Error; err != nil {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}
		currentHash = admin.PasswordHash
	} else {
		var worker models.EchWorker
		if err := h.db.WithContext(r.Context()).First(&worker, claims.WorkerID).Error; err != nil {
			http.Error(w, "account not found", http.StatusNotFound)
			return
		}
		currentHash = worker.PasswordHash
	}

	if bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(req.CurrentPassword)) != nil {
		http.Error(w, "current password is incorrect", http.StatusUnauthorized)
		return
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Printf("change password: hash: %v", err)
		http.Error(w, "could not update password", http.StatusInternalServerError)
		return
	}

	if claims.IsAdmin() {
		err = h.db.WithContext(r.Context()).Model(&models.AdminAccount{}).
			Where("email = ?", claims.Email).
			Update("password_hash", string(newHash)).Error
	} else {
		err = h.db.WithContext(r.Context()).Model(&models.EchWorker{}).
			Where("id = ?", claims.WorkerID).
			Update("password_hash", string(newHash)).Error
	}
	if err != nil {
		log.Printf("change password: update: %v", err)
		http.Error(w, "could not update password", http.StatusInternalServerError)
		return
	}

	middleware.RecordAudit(h.db, claims.Email, claims.Role, "password_changed", "account", claims.Email, nil)
	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

// writeJSON is the shared response helper for all handlers.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
