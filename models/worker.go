package models

import "time"

// Employment status labels derived from the departure date.
const (
	StatusActive = "Active"
	StatusFormer = "Former"
)

// EchWorker is an Ecosystem Health Coordinator field worker. IDs are small
// sequential integers issued by the admin workflow (max existing id plus one)
// because the worker's login identity is synthesized from the numeric id.
type EchWorker struct {
	ID               uint       `gorm:"primaryKey" json:"id"`
	Name             string     `gorm:"size:100;not null" json:"name"`
	FatherName       *string    `gorm:"size:100" json:"fatherName,omitempty"`
	Username         string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	NationalID       string     `gorm:"size:20;uniqueIndex;not null" json:"nationalId"`
	PasswordHash     string     `gorm:"size:255;not null" json:"-"`
	JoiningDate      time.Time  `gorm:"not null" json:"joiningDate"`
	DepartureDate    *time.Time `json:"departureDate,omitempty"`
	HighestEducation *string    `gorm:"size:100" json:"highestEducation,omitempty"`
	Phone            *string    `gorm:"size:20" json:"phone,omitempty"`
	Address          *string    `gorm:"size:255" json:"address,omitempty"`

	Assignments []VillageAssignment `gorm:"foreignKey:WorkerID" json:"assignments,omitempty"`
	Trainings   []WorkerTraining    `gorm:"foreignKey:WorkerID" json:"trainings,omitempty"`
}

// EmploymentStatus reports Active or Former based on the departure date.
func (w *EchWorker) EmploymentStatus() string {
	if w.DepartureDate != nil {
		return StatusFormer
	}
	return StatusActive
}

// VillageAssignment links a worker to a village. A null EndDate marks an open
// assignment and confers write access to the village; ended assignments are
// kept as history. The composite key means a worker holds at most one
// assignment row per village.
type VillageAssignment struct {
	WorkerID  uint       `gorm:"primaryKey;autoIncrement:false" json:"workerId"`
	VillageID uint       `gorm:"primaryKey;autoIncrement:false" json:"villageId"`
	Village   *Village   `gorm:"foreignKey:VillageID" json:"village,omitempty"`
	StartDate time.Time  `gorm:"not null" json:"startDate"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// IsOpen reports whether the assignment currently grants access.
func (a *VillageAssignment) IsOpen() bool {
	return a.EndDate == nil
}

// Training is a catalogue entry for a capacity-building course.
type Training struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	Name         string  `gorm:"size:150;not null" json:"name"`
	Year         int     `gorm:"not null" json:"year"`
	DurationDays int     `gorm:"not null" json:"durationDays"`
	Scope        *string `gorm:"size:255" json:"scope,omitempty"`
	ConductedBy  *string `gorm:"size:150" json:"conductedBy,omitempty"`
}

// WorkerTraining records completion of a training by a worker.
type WorkerTraining struct {
	WorkerID       uint      `gorm:"primaryKey;autoIncrement:false" json:"workerId"`
	TrainingID     uint      `gorm:"primaryKey;autoIncrement:false" json:"trainingId"`
	Training       *Training `gorm:"foreignKey:TrainingID" json:"training,omitempty"`
	CompletionDate time.Time `gorm:"not null" json:"completionDate"`
}

// AdminAccount is the single administrator credential row. The administrator
// is not an ECH worker and bypasses village scoping entirely.
type AdminAccount struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
