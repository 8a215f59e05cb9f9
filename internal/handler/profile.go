package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"guardian-vault-api/internal/middleware"
	"guardian-vault-api/internal/model"
	"guardian-vault-api/internal/service"
	"guardian-vault-api/pkg/apierror"
	"guardian-vault-api/pkg/response"
)

// DefaultMaxImportBytes caps the import request body (8 MiB).
const DefaultMaxImportBytes = 8 << 20

// ProfileHandler handles profile import/export HTTP requests.
type ProfileHandler struct {
	importService  *service.ImportService
	exportService  *service.ExportService
	maxImportBytes int64
}

// NewProfileHandler creates a new profile handler.
func NewProfileHandler(importService *service.ImportService, exportService *service.ExportService, maxImportBytes int64) *ProfileHandler {
	if maxImportBytes <= 0 {
		maxImportBytes = DefaultMaxImportBytes
	}
	return &ProfileHandler{
		importService:  importService,
		exportService:  exportService,
		maxImportBytes: maxImportBytes,
	}
}

// Import handles POST /api/v1/profile/import
//
// The body is a previously exported data bag. Everything recognized in it
// is written in one transaction; on any storage failure nothing is kept and
// the error surfaces through the shared error envelope.
func (h *ProfileHandler) Import(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCallerFromContext(r.Context())
	if caller == nil {
		response.Error(w, apierror.Unauthorized("session token required"))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, h.maxImportBytes+1))
	if err != nil {
		response.Error(w, apierror.BadRequest("failed to read request body"))
		return
	}
	defer r.Body.Close()

	if int64(len(body)) > h.maxImportBytes {
		response.Error(w, apierror.PayloadTooLarge("import too large"))
		return
	}

	var bag model.ImportBag
	if err := json.Unmarshal(body, &bag); err != nil {
		response.Error(w, apierror.BadRequest("invalid JSON"))
		return
	}

	summary, err := h.importService.Import(r.Context(), caller.AppID, caller.BungieMembershipID, bag)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, summary)
}

// Export handles GET /api/v1/profile/export
func (h *ProfileHandler) Export(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetCallerFromContext(r.Context())
	if caller == nil {
		response.Error(w, apierror.Unauthorized("session token required"))
		return
	}

	export, err := h.exportService.Export(r.Context(), caller.AppID, caller.BungieMembershipID)
	if err != nil {
		response.Error(w, err)
		return
	}

	response.OK(w, export)
}
