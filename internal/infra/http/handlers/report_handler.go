package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/agencyscout/scout-funnel/internal/usecase"
)

// ReportHandler is the read-only lead report: filter by creation-date
// range, sort by a single field, export as CSV.
type ReportHandler struct {
	ListLeadsUC *usecase.ListLeadsUseCase
}

func NewReportHandler(uc *usecase.ListLeadsUseCase) *ReportHandler {
	return &ReportHandler{ListLeadsUC: uc}
}

func reportInput(r *http.Request) usecase.ListLeadsInput {
	q := r.URL.Query()
	return usecase.ListLeadsInput{
		From:     q.Get("from"),
		To:       q.Get("to"),
		SortBy:   q.Get("sort"),
		SortDesc: q.Get("dir") != "asc", // newest first by default
	}
}

func (h *ReportHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	leads, err := h.ListLeadsUC.Execute(r.Context(), reportInput(r))
	if err != nil {
		if usecase.IsDomainError(err) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "lead query failed"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"total": len(leads),
		"leads": leads,
	})
}

func (h *ReportHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	name := usecase.ExportFileName(time.Now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	if err := h.ListLeadsUC.ExportCSV(r.Context(), reportInput(r), w); err != nil {
		// Headers may already be gone; a truncated download is the best
		// signal left.
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "export failed"})
	}
}
