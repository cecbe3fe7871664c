package api

import "net/http"

func (h *APIHandler) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, activity, err := h.statsService.GetStats()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":         true,
		"statistics":      stats,
		"recent_activity": activity,
	})
}

func (h *APIHandler) FeedbackSummaryHandler(w http.ResponseWriter, r *http.Request) {
	entries, err := h.statsService.GetFeedbackSummary()
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":          true,
		"feedback_entries": entries,
		"total":            len(entries),
	})
}
