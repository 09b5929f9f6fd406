package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strconv"

	"gorm.io/gorm"
	"slf.org.pk/echdata/models"
)

var (
	// ErrAccessResolve wraps store failures while loading assignments. Callers
	// must treat it as a hard stop, never as "no villages".
	ErrAccessResolve = errors.New("could not resolve village access")

	// ErrVillageForbidden means the caller holds no open assignment for the
	// village being written to.
	ErrVillageForbidden = errors.New("village is not assigned to this worker")
)

// VillageAccess resolves and enforces which villages a worker may write to.
// Access derives solely from open assignments, rows whose end date is null.
type VillageAccess struct {
	db *gorm.DB
}

func NewVillageAccess(db *gorm.DB) *VillageAccess {
	return &VillageAccess{db: db}
}

// AccessibleVillageIDs returns the ids of villages the worker holds an open
// assignment for. An empty result is a valid answer; a store failure is not,
// and comes back wrapped in ErrAccessResolve.
func (v *VillageAccess) AccessibleVillageIDs(ctx context.Context, workerID uint) ([]uint, error) {
	var ids []uint
	err := v.db.WithContext(ctx).
		Model(&models.VillageAssignment{}).
		Where("worker_id = ? AND end_date IS NULL", workerID).
		Pluck("village_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAccessResolve, err)
	}
	return ids, nil
}

// AccessibleVillages returns the full village rows, community preloaded, for
// the worker's open assignments.
func (v *VillageAccess) AccessibleVillages(ctx context.Context, workerID uint) ([]models.Village, error) {
	ids, err := v.AccessibleVillageIDs(ctx, workerID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []models.Village{}, nil
	}
	var villages []models.Village
	err = v.db.WithContext(ctx).Preload("Community").
		Where("id IN ?", ids).Order("name").Find(&villages).Error
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAccessResolve, err)
	}
	return villages, nil
}

// AuthorizeWrite checks one village against the caller's open assignments.
// The administrator passes unconditionally. A refusal is written to the audit
// log before ErrVillageForbidden is returned; the caller must stop the write.
func (v *VillageAccess) AuthorizeWrite(r *http.Request, villageID uint) error {
	claims := GetClaims(r)
	if claims == nil {
		return ErrVillageForbidden
	}
	if claims.IsAdmin() {
		return nil
	}

	ids, err := v.AccessibleVillageIDs(r.Context(), claims.WorkerID)
	if err != nil {
		return err
	}
	if slices.Contains(ids, villageID) {
		return nil
	}

	RecordAudit(v.db, strconv.FormatUint(uint64(claims.WorkerID), 10), claims.Role,
		"village_write_denied", "village", strconv.FormatUint(uint64(villageID), 10),
		map[string]any{"path": r.URL.Path, "method": r.Method})
	return ErrVillageForbidden
}

// WriteAuthError maps gate errors onto HTTP statuses: refusals are 403,
// resolver failures are 500.
func WriteAuthError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrVillageForbidden) {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
	http.Error(w, "could not verify village access", http.StatusInternalServerError)
}
