package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"kairosvote.io/kairos/lib/network/api/resource"
	"kairosvote.io/kairos/lib/network/httputils"
)

// GetAuditHandler lists the audit trail of one proposal: the verdict
// entries by default, the weight recompute entries with ?kind=weights.
func (api *NetworkHandlerAPI) GetAuditHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if r.FormValue("kind") == "weights" {
		entries, err := api.analyzer.ProposalWeights(id)
		if err != nil {
			httputils.WriteJSONError(w, err)
			return
		}
		httputils.WriteJSON(w, http.StatusOK, entries)
		return
	}

	entries, err := api.analyzer.ProposalVerdicts(id)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	list := resource.ResourceList{
		SelfLink: strings.Replace(resource.URLProposalAudit, "{id}", id, -1),
	}
	for _, entry := range entries {
		list.Resources = append(list.Resources, resource.NewVerdictEntry(entry))
	}

	httputils.WriteJSON(w, http.StatusOK, list)
}

// GetSuggestedThresholdHandler reports what the recorded margins say
// the base threshold should be.
func (api *NetworkHandlerAPI) GetSuggestedThresholdHandler(w http.ResponseWriter, r *http.Request) {
	margin, err := api.analyzer.AverageMargin()
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	suggested, err := api.analyzer.SuggestedBaseThreshold()
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"average_margin": margin,
		"suggested_base": suggested,
	})
}
