package routes

import (
	"net/http"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
	"slf.org.pk/echdata/handlers"
	"slf.org.pk/echdata/middleware"
)

// RegisterRoutes sets up all application routes
func RegisterRoutes(db *gorm.DB) http.Handler {
	r := mux.NewRouter()

	access := middleware.NewVillageAccess(db)
	auth := handlers.NewAuthHandler(db)
	workers := handlers.NewWorkerHandler(db)
	assignments := handlers.NewAssignmentHandler(db, access)
	trainings := handlers.NewTrainingHandler(db)
	geography := handlers.NewGeographyHandler(db)
	beneficiaries := handlers.NewBeneficiaryHandler(db, access)
	visits := handlers.NewVisitHandler(db, access)
	view := handlers.NewViewHandler(db)

	// =====================================================
	// Public Routes (no authentication)
	// =====================================================
	r.HandleFunc("/login", auth.Login).Methods("POST")
	r.HandleFunc("/api/v1/login", auth.Login).Methods("POST")

	// =====================================================
	// Protected API Routes (require JWT authentication)
	// =====================================================
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.JWTMiddleware)

	// Identity and account
	api.HandleFunc("/token", auth.Whoami).Methods("GET")
	api.HandleFunc("/profile", auth.Profile).Methods("GET")
	api.HandleFunc("/change-password", auth.ChangePassword).Methods("POST")

	// Geography
	api.HandleFunc("/communities", geography.ListCommunities).Methods("GET")
	api.HandleFunc("/communities", geography.CreateCommunity).Methods("POST")
	api.HandleFunc("/villages", geography.ListVillages).Methods("GET")
	api.HandleFunc("/villages", geography.CreateVillage).Methods("POST")
	api.HandleFunc("/villages/assigned", assignments.AssignedVillages).Methods("GET")

	// Workers may end their own assignment; the handler enforces ownership
	api.HandleFunc("/assignments/end", assignments.End).Methods("POST")

	// Beneficiaries
	api.HandleFunc("/villages/{villageId}/beneficiaries", beneficiaries.ListByVillage).Methods("GET")
	api.HandleFunc("/beneficiaries", beneficiaries.Create).Methods("POST")

	// Field visits
	api.HandleFunc("/visits", visits.Submit).Methods("POST")
	api.HandleFunc("/visits/{id}", visits.GetVisit).Methods("GET")

	// View and export
	api.HandleFunc("/view", view.Browse).Methods("GET")
	api.HandleFunc("/view/options", view.Options).Methods("GET")
	api.HandleFunc("/view/export/excel", view.ExportExcel).Methods("GET")
	api.HandleFunc("/view/export/csv", view.ExportCSV).Methods("GET")

	// Training catalogue is readable by any authenticated user
	api.HandleFunc("/trainings", trainings.ListTrainings).Methods("GET")

	// =====================================================
	// Admin Routes (administrator role required)
	// =====================================================
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(func(next http.Handler) http.Handler {
		return middleware.RequireRole([]string{middleware.RoleAdmin}, next)
	})

	admin.HandleFunc("/workers", workers.ListWorkers).Methods("GET")
	admin.HandleFunc("/workers", workers.CreateWorker).Methods("POST")
	admin.HandleFunc("/workers/{id}", workers.GetWorker).Methods("GET")
	admin.HandleFunc("/workers/{id}", workers.UpdateWorker).Methods("PUT")
	admin.HandleFunc("/workers/{id}", workers.DeleteWorker).Methods("DELETE")
	admin.HandleFunc("/workers/{id}/assignments", assignments.ListForWorker).Methods("GET")

	admin.HandleFunc("/assignments", assignments.Assign).Methods("POST")

	admin.HandleFunc("/trainings", trainings.CreateTraining).Methods("POST")
	admin.HandleFunc("/trainings/{id}", trainings.DeleteTraining).Methods("DELETE")
	admin.HandleFunc("/trainings/completions", trainings.RecordCompletion).Methods("POST")
	admin.HandleFunc("/trainings/completions/{workerId}/{trainingId}", trainings.RemoveCompletion).Methods("DELETE")

	return r
}
