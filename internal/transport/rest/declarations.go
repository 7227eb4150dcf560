package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"dails-report/internal/domain"
	"dails-report/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const (
	HeaderPassword            = "X-PDF-Password"
	HeaderPasswordInstruction = "X-PDF-Password-Instruction"
)

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	id, err := ParseDeclarationID(chi.URLParam(r, "id"))
	if err != nil {
		ErrorBadRequest(w, err.Error())
		return
	}

	rep, err := h.reports.Generate(r.Context(), id, service.FormatPDF)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			ErrorNotFound(w, "declaration not found")
			return
		}
		h.log.Error("generate report", zap.Int64("declaration_id", id), zap.Error(err))
		ErrorInternal(w, "failed to generate report")
		return
	}

	w.Header().Set("Content-Type", rep.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", rep.FileName))
	w.Header().Set("Content-Length", strconv.Itoa(len(rep.Data)))
	if rep.EncryptionApplied {
		if rep.Password != nil {
			w.Header().Set(HeaderPassword, *rep.Password)
		}
		if rep.PasswordInstruction != nil {
			w.Header().Set(HeaderPasswordInstruction, *rep.PasswordInstruction)
		}
	}
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(rep.Data); err != nil {
		h.log.Warn("write report", zap.Int64("declaration_id", id), zap.Error(err))
	}
}
