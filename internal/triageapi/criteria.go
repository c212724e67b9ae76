package triageapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

func (a *API) handleListCriteria(w http.ResponseWriter, r *http.Request) {
	crits := a.criteria.All()

	if raw := r.URL.Query().Get("age"); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil || age < 0 {
			http.Error(w, `{"error":"age must be a non-negative integer"}`, http.StatusBadRequest)
			return
		}
		crits = a.criteria.ForAge(age)
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"count":    len(crits),
		"criteria": crits,
	})
}

func (a *API) handleGetCriterion(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid criterion id"}`, http.StatusBadRequest)
		return
	}

	crit, ok := a.criteria.ByID(id)
	if !ok {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(crit)
}
