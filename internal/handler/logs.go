package handler

import (
	"net/http"
	"strconv"

	"guardian-vault-api/internal/repository"
	"guardian-vault-api/pkg/apierror"
	"guardian-vault-api/pkg/response"
)

// LogHandler serves the import audit log.
type LogHandler struct {
	profileRepo repository.ProfileRepository
	loginKey    string
}

// NewLogHandler creates a new log handler.
func NewLogHandler(profileRepo repository.ProfileRepository, loginKey string) *LogHandler {
	return &LogHandler{profileRepo: profileRepo, loginKey: loginKey}
}

// GetImportLogs handles GET /api/v1/admin/logs - paginated import audit entries
func (h *LogHandler) GetImportLogs(w http.ResponseWriter, r *http.Request) {
	if h.loginKey == "" || r.Header.Get("X-Login-Key") != h.loginKey {
		response.Error(w, apierror.Unauthorized("invalid login key"))
		return
	}
	if h.profileRepo == nil {
		response.Error(w, apierror.InternalError("database connection unavailable"))
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	logs, total, err := h.profileRepo.GetImportLogs(r.Context(), limit, offset)
	if err != nil {
		response.Error(w, apierror.InternalError("failed to fetch import logs"))
		return
	}

	response.JSONWithMeta(w, http.StatusOK, logs, page, limit, total)
}
