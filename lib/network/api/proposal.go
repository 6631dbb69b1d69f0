package api

import (
	"io/ioutil"
	"net/http"

	"github.com/gorilla/mux"

	"kairosvote.io/kairos/lib/common"
	"kairosvote.io/kairos/lib/errors"
	"kairosvote.io/kairos/lib/network/api/resource"
	"kairosvote.io/kairos/lib/network/httputils"
	"kairosvote.io/kairos/lib/voting"
)

func (api *NetworkHandlerAPI) PostProposalHandler(w http.ResponseWriter, r *http.Request) {
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		httputils.WriteJSONError(w, errors.ErrorBadRequestParameter)
		return
	}

	var config voting.ProposalConfig
	if err := common.DecodeJSONValue(body, &config); err != nil {
		httputils.WriteJSONError(w, errors.ErrorBadRequestParameter.Clone().SetData("error", err.Error()))
		return
	}

	p, err := config.Make(api.nowFunc())
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	if err := api.engine.AddProposal(p); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	rp, err := api.engine.Proposal(p.ID)
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusCreated, resource.NewProposal(rp.Summary()))
}

func (api *NetworkHandlerAPI) GetProposalsHandler(w http.ResponseWriter, r *http.Request) {
	summaries := api.engine.Summaries()

	list := resource.ResourceList{SelfLink: resource.URLProposals}
	for _, summary := range summaries {
		list.Resources = append(list.Resources, resource.NewProposal(summary))
	}

	httputils.WriteJSON(w, http.StatusOK, list)
}

func (api *NetworkHandlerAPI) GetProposalHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	if rp, err := api.engine.Proposal(id); err == nil {
		httputils.WriteJSON(w, http.StatusOK, resource.NewProposal(rp.Summary()))
		return
	}

	// closed proposals keep their final result around
	if result, found := api.engine.Result(id); found {
		httputils.WriteJSON(w, http.StatusOK, resource.NewEvaluation(result))
		return
	}

	httputils.WriteJSONError(w, errors.ErrorProposalNotFound.Clone().SetData("proposal", id))
}

func (api *NetworkHandlerAPI) PostEvaluateHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := api.engine.Evaluate(id, api.nowFunc())
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewEvaluation(result))
}

func (api *NetworkHandlerAPI) PostWithdrawHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	result, err := api.engine.Withdraw(id, api.nowFunc())
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewEvaluation(result))
}
