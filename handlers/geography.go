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
	"slf.org.pk/echdata/utils"
)

// GeographyHandler serves communities and villages.
type GeographyHandler struct {
	db *gorm.DB
}

func NewGeographyHandler(db *gorm.DB) *GeographyHandler {
	return &GeographyHandler{db: db}
}

// ListCommunities returns all communities ordered by name.
func (h *GeographyHandler) ListCommunities(w http.ResponseWriter, r *http.Request) {
	var communities []models.Community
	if err := h.db.WithContext(r.Context()).Order("name").Find(&communities).Error; err != nil {
		log.Printf("list communities: %v", err)
		http.Error(w, "could not load communities", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, communities)
}

// CreateCommunity adds a community. The name is the primary key, so a repeat
// name reports a conflict.
func (h *GeographyHandler) CreateCommunity(w http.ResponseWriter, r *http.Request) {
	var community models.Community
	if err := json.NewDecoder(r.Body).Decode(&community); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if community.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	if err := h.db.WithContext(r.Context()).Create(&community).Error; err != nil {
		if isDuplicateKey(err) {
			http.Error(w, "a community with this name already exists", http.StatusConflict)
			return
		}
		log.Printf("create community: %v", err)
		http.Error(w, "could not create community", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, community)
}

// ListVillages returns villages with their community preloaded.
// ?community=NAME filters by community; ?near_lat=&near_lng=&radius_km=
// keeps only villages with GPS coordinates inside the radius.
func (h *GeographyHandler) ListVillages(w http.ResponseWriter, r *http.Request) {
	query := h.db.WithContext(r.Context()).Preload("Community").Order("name")
	if community := r.URL.Query().Get("community"); community != "" {
		query = query.Where("community_name = ?", community)
	}

	var villages []models.Village
	if err := query.Find(&villages).Error; err != nil {
		log.Printf("list villages: %v", err)
		http.Error(w, "could not load villages", http.StatusInternalServerError)
		return
	}

	if latStr, lngStr := r.URL.Query().Get("near_lat"), r.URL.Query().Get("near_lng"); latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			http.Error(w, "invalid near_lat or near_lng", http.StatusBadRequest)
			return
		}
		radiusKm := 25.0
		if radStr := r.URL.Query().Get("radius_km"); radStr != "" {
			parsed, err := strconv.ParseFloat(radStr, 64)
			if err != nil || parsed <= 0 {
				http.Error(w, "invalid radius_km", http.StatusBadRequest)
				return
			}
			radiusKm = parsed
		}

		nearby := villages[:0]
		for _, village := range villages {
			if village.GPSLat == nil || village.GPSLong == nil {
				continue
			}
			if utils.WithinRadiusKm(lat, lng, *village.GPSLat, *village.GPSLong, radiusKm) {
				nearby = append(nearby, village)
			}
		}
		villages = nearby
	}
	writeJSON(w, http.StatusOK, villages)
}

// CreateVillage adds a village. When a worker creates one, an open assignment
// to the new village is opened for them so they can record there immediately;
// an assignment failure downgrades to a warning rather than rolling back the
// village.
func (h *GeographyHandler) CreateVillage(w http.ResponseWriter, r *http.Request) {
	var village models.Village
	if err := json.NewDecoder(r.Body).Decode(&village); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if village.Name == "" || village.CommunityName == "" {
		http.Error(w, "name and communityName are required", http.StatusBadRequest)
		return
	}
	village.ID = 0
	village.Community = nil

	if err := h.db.WithContext(r.Context()).Create(&village).Error; err != nil {
		log.Printf("create village: %v", err)
		http.Error(w, "could not create village", http.StatusInternalServerError)
		return
	}

	warning := ""
	claims := middleware.GetClaims(r)
	if claims != nil && !claims.IsAdmin() {
		assignment := models.VillageAssignment{
			WorkerID:  claims.WorkerID,
			VillageID: village.ID,
			StartDate: time.Now(),
		}
		if err := h.db.WithContext(r.Context()).Create(&assignment).Error; err != nil {
			log.Printf("self-assign worker %d to village %d: %v", claims.WorkerID, village.ID, err)
			warning = "village created but could not be assigned to you"
		}
	}

	resp := map[string]any{"village": village}
	if warning != "" {
		resp["warning"] = warning
	}
	writeJSON(w, http.StatusCreated, resp)
}
