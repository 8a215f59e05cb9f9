package handler

import (
	"net/http"
	"runtime"
	"time"

	"guardian-vault-api/internal/repository"
	"guardian-vault-api/pkg/apierror"
	"guardian-vault-api/pkg/response"
)

// AdminHandler handles admin-related HTTP requests.
type AdminHandler struct {
	profileRepo repository.ProfileRepository // Interface instead of concrete type
	dbType      string                       // Database type: sqlite or mysql
	loginKey    string
	startTime   time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(profileRepo repository.ProfileRepository, dbType, loginKey string) *AdminHandler {
	return &AdminHandler{
		profileRepo: profileRepo,
		dbType:      dbType,
		loginKey:    loginKey,
		startTime:   time.Now(),
	}
}

// authorize checks the X-Login-Key header against the configured admin key.
func (h *AdminHandler) authorize(r *http.Request) bool {
	return h.loginKey != "" && r.Header.Get("X-Login-Key") == h.loginKey
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(r) {
		response.Error(w, apierror.Unauthorized("invalid login key"))
		return
	}

	ctx := r.Context()
	stats := make(map[string]interface{})

	// System info
	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["db_type"] = h.dbType

	// Memory stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
		"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
		"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
		"num_gc":         memStats.NumGC,
		"goroutines":     runtime.NumGoroutine(),
	}

	// Profile database stats
	if h.profileRepo != nil {
		dbStats, err := h.profileRepo.GetStats(ctx)
		if err == nil {
			dbStats["status"] = "connected"
			stats["database"] = dbStats
		} else {
			stats["database"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		}
	} else {
		stats["database"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	// Runtime info
	stats["runtime"] = map[string]interface{}{
		"go_version": runtime.Version(),
		"os":         runtime.GOOS,
		"arch":       runtime.GOARCH,
		"cpus":       runtime.NumCPU(),
	}

	response.OK(w, stats)
}

// GetHealth handles GET /api/v1/admin/health
func (h *AdminHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	response.OK(w, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// VerifyLogin handles POST /api/v1/admin/login
func (h *AdminHandler) VerifyLogin(w http.ResponseWriter, r *http.Request) {
	if !h.authorize(r) {
		response.Error(w, apierror.Unauthorized("invalid login key"))
		return
	}
	response.OK(w, map[string]string{"status": "ok"})
}
