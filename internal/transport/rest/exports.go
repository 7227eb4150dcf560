package rest

import (
	"errors"
	"net/http"
	"strings"

	"dails-report/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const exportKeyPrefix = "exports:"

func (h *Handler) startExport(w http.ResponseWriter, r *http.Request) {
	id, err := ParseDeclarationID(chi.URLParam(r, "id"))
	if err != nil {
		ErrorBadRequest(w, err.Error())
		return
	}

	req, err := ValidateExportRequest(r)
	if err != nil {
		ErrorBadRequest(w, err.Error())
		return
	}

	exportID, err := h.exports.StartExport(r.Context(), id, req.Format)
	if err != nil {
		h.log.Error("start export", zap.Int64("declaration_id", id), zap.Error(err))
		ErrorInternal(w, "failed to start export")
		return
	}

	SuccessAccepted(w, "Export queued", map[string]any{
		"export_id":      exportID,
		"declaration_id": id,
		"format":         req.Format,
	})
}

func (h *Handler) listExports(w http.ResponseWriter, r *http.Request) {
	id, err := ParseDeclarationID(chi.URLParam(r, "id"))
	if err != nil {
		ErrorBadRequest(w, err.Error())
		return
	}

	exports, err := h.exports.GetExports(r.Context(), id)
	if err != nil {
		h.log.Error("list exports", zap.Int64("declaration_id", id), zap.Error(err))
		ErrorInternal(w, "failed to get exports")
		return
	}

	Success(w, "", exports)
}

func (h *Handler) getExport(w http.ResponseWriter, r *http.Request) {
	exportIDParam := chi.URLParam(r, "export_id")
	if exportIDParam == "" {
		ErrorBadRequest(w, "export_id is required")
		return
	}
	exportID := exportIDParam
	if !strings.HasPrefix(exportID, exportKeyPrefix) {
		exportID = exportKeyPrefix + exportID
	}

	export, err := h.exports.GetExport(r.Context(), exportID)
	if err != nil {
		if errors.Is(err, service.ErrExportNotFound) {
			ErrorNotFound(w, "export not found")
			return
		}
		h.log.Error("get export", zap.String("export_id", exportID), zap.Error(err))
		ErrorInternal(w, "failed to get export")
		return
	}

	Success(w, "", export)
}
