package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"kairosvote.io/kairos/lib/audit"
	"kairosvote.io/kairos/lib/common/observer"
	"kairosvote.io/kairos/lib/network/api/resource"
	"kairosvote.io/kairos/lib/network/httputils"
)

func renderVerdictEntry(args ...interface{}) ([]byte, error) {
	if len(args) <= 1 {
		return nil, fmt.Errorf("render: value is empty")
	}

	switch v := args[1].(type) {
	case audit.VerdictEntry:
		return resource.NewVerdictEntry(v).Resource().MarshalJSON()
	case httputils.HALResource:
		return v.Resource().MarshalJSON()
	}

	return RenderJSONFunc(args...)
}

// GetVerdictHandler reports the proposal's current verdict. With
// `Accept: text/event-stream` it stays open and pushes every terminal
// transition of this proposal.
func (api *NetworkHandlerAPI) GetVerdictHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if httputils.IsEventStream(r) {
		event := observer.NewEvent(observer.ResourceVerdict, observer.ConditionProposal, id)
		es := NewEventStream(w, r, renderVerdictEntry, DefaultContentType)
		if result, found := api.engine.Result(id); found {
			es.Render(resource.NewEvaluation(result))
		}
		es.Run(observer.VerdictObserver, event.String())
		return
	}

	if result, found := api.engine.Result(id); found {
		httputils.WriteJSON(w, http.StatusOK, resource.NewEvaluation(result))
		return
	}

	verdict, err := api.engine.Verdict(id)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"proposal_id": id,
		"verdict":     verdict.String(),
		"accepted":    verdict.IsAccepted(),
	})
}

// GetVerdictStreamHandler pushes every terminal verdict of every
// proposal as a server-sent event stream.
func (api *NetworkHandlerAPI) GetVerdictStreamHandler(w http.ResponseWriter, r *http.Request) {
	if !httputils.IsEventStream(r) {
		entries, err := api.analyzer.Verdicts()
		if err != nil {
			httputils.WriteJSONError(w, err)
			return
		}

		list := resource.ResourceList{SelfLink: resource.URLVerdicts}
		for _, entry := range entries {
			list.Resources = append(list.Resources, resource.NewVerdictEntry(entry))
		}
		httputils.WriteJSON(w, http.StatusOK, list)
		return
	}

	es := NewEventStream(w, r, renderVerdictEntry, DefaultContentType)
	es.Run(observer.VerdictObserver, observer.ResourceVerdict+"-"+observer.ConditionAll)
}
