package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"slf.org.pk/echdata/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	err = db.AutoMigrate(&models.Community{}, &models.Village{},
		&models.VillageAssignment{}, &models.AuditLog{})
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedVillages(t *testing.T, db *gorm.DB, names ...string) []models.Village {
	t.Helper()
	community := models.Community{Name: "Basho"}
	if err := db.Create(&community).Error; err != nil {
		t.Fatalf("seed community: %v", err)
	}
	villages := make([]models.Village, len(names))
	for i, name := range names {
		villages[i] = models.Village{Name: name, CommunityName: community.Name}
		if err := db.Create(&villages[i]).Error; err != nil {
			t.Fatalf("seed village %s: %v", name, err)
		}
	}
	return villages
}

func workerRequest(workerID uint) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/visits", nil)
	claims := &Claims{WorkerID: workerID, Email: "1@slf.com", Name: "Ali", Role: RoleWorker}
	return req.WithContext(context.WithValue(req.Context(), userClaimsKey, claims))
}

func adminRequest() *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/visits", nil)
	claims := &Claims{Email: "admin@slf.com", Name: "Administrator", Role: RoleAdmin}
	return req.WithContext(context.WithValue(req.Context(), userClaimsKey, claims))
}

func TestAccessibleVillageIDsReturnsOpenAssignmentsOnly(t *testing.T) {
	db := newTestDB(t)
	villages := seedVillages(t, db, "Tisar", "Hushe", "Kanday")
	ended := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	assignments := []models.VillageAssignment{
		{WorkerID: 1, VillageID: villages[0].ID, StartDate: time.Now()},
		{WorkerID: 1, VillageID: villages[1].ID, StartDate: time.Now(), EndDate: &ended},
		{WorkerID: 2, VillageID: villages[2].ID, StartDate: time.Now()},
	}
	for i := range assignments {
		if err := db.Create(&assignments[i]).Error; err != nil {
			t.Fatalf("seed assignment: %v", err)
		}
	}

	access := NewVillageAccess(db)
	ids, err := access.AccessibleVillageIDs(context.Background(), 1)
	if err != nil {
		t.Fatalf("AccessibleVillageIDs: %v", err)
	}
	if len(ids) != 1 || ids[0] != villages[0].ID {
		t.Errorf("ids = %v, want exactly [%d]: ended and other-worker assignments must be excluded",
			ids, villages[0].ID)
	}
}

func TestEndingAssignmentRemovesAccessWithoutDeleting(t *testing.T) {
	db := newTestDB(t)
	villages := seedVillages(t, db, "Tisar")
	assignment := models.VillageAssignment{WorkerID: 1, VillageID: villages[0].ID, StartDate: time.Now()}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}

	access := NewVillageAccess(db)
	ids, err := access.AccessibleVillageIDs(context.Background(), 1)
	if err != nil || len(ids) != 1 {
		t.Fatalf("before ending: ids = %v, err = %v", ids, err)
	}

	now := time.Now()
	err = db.Model(&models.VillageAssignment{}).
		Where("worker_id = ? AND village_id = ? AND end_date IS NULL", 1, villages[0].ID).
		Update("end_date", now).Error
	if err != nil {
		t.Fatalf("end assignment: %v", err)
	}

	ids, err = access.AccessibleVillageIDs(context.Background(), 1)
	if err != nil {
		t.Fatalf("after ending: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("ids after ending = %v, want empty", ids)
	}

	var count int64
	db.Model(&models.VillageAssignment{}).Where("worker_id = ?", 1).Count(&count)
	if count != 1 {
		t.Errorf("assignment rows = %d, want 1: ending must keep the row as history", count)
	}
}

func TestAuthorizeWriteAllowsOpenAssignment(t *testing.T) {
	db := newTestDB(t)
	villages := seedVillages(t, db, "Tisar")
	assignment := models.VillageAssignment{WorkerID: 1, VillageID: villages[0].ID, StartDate: time.Now()}
	if err := db.Create(&assignment).Error; err != nil {
		t.Fatalf("seed assignment: %v", err)
	}

	access := NewVillageAccess(db)
	if err := access.AuthorizeWrite(workerRequest(1), villages[0].ID); err != nil {
		t.Errorf("AuthorizeWrite = %v, want nil for assigned village", err)
	}
}

func TestAuthorizeWriteDeniesAndAudits(t *testing.T) {
	db := newTestDB(t)
	villages := seedVillages(t, db, "Tisar")

	access := NewVillageAccess(db)
	err := access.AuthorizeWrite(workerRequest(1), villages[0].ID)
	if !errors.Is(err, ErrVillageForbidden) {
		t.Fatalf("AuthorizeWrite = %v, want ErrVillageForbidden", err)
	}

	var audits []models.AuditLog
	if err := db.Where("action = ?", "village_write_denied").Find(&audits).Error; err != nil {
		t.Fatalf("load audit rows: %v", err)
	}
	if len(audits) != 1 {
		t.Errorf("audit rows = %d, want 1 denial entry", len(audits))
	}
}

func TestAuthorizeWriteAdminBypass(t *testing.T) {
	db := newTestDB(t)
	villages := seedVillages(t, db, "Tisar")

	// No assignments at all: the administrator still passes.
	access := NewVillageAccess(db)
	if err := access.AuthorizeWrite(adminRequest(), villages[0].ID); err != nil {
		t.Errorf("AuthorizeWrite for admin = %v, want nil", err)
	}
}

func TestWriteAuthErrorStatuses(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAuthError(rec, ErrVillageForbidden)
	if rec.Code != http.StatusForbidden {
		t.Errorf("forbidden mapped to %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	WriteAuthError(rec, ErrAccessResolve)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("resolver failure mapped to %d, want 500", rec.Code)
	}
}
