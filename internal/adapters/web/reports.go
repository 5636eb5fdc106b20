package web

import "net/http"

func (h *Handler) dashboardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.GetDashboardSummary(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, summary)
}

func (h *Handler) dailyCollections(w http.ResponseWriter, r *http.Request) {
	// defaults to today when ?date= is absent
	result, err := h.svc.GetDailyCollections(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}

func (h *Handler) outstandingReceivables(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetOutstandingReceivables(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, result)
}
