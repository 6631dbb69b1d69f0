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

func (api *NetworkHandlerAPI) PostVoteHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		httputils.WriteJSONError(w, errors.ErrorBadRequestParameter)
		return
	}

	vote, err := voting.NewVoteFromJSON(body)
	if err != nil {
		httputils.WriteJSONError(w, errors.ErrorInvalidVote.Clone().SetData("error", err.Error()))
		return
	}

	if vote.ProposalID() != id {
		httputils.WriteJSONError(w, errors.ErrorBadRequestParameter.Clone().
			SetData("proposal", id).
			SetData("vote_proposal", vote.ProposalID()))
		return
	}

	if err := api.engine.SubmitVote(vote, api.nowFunc()); err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"proposal_id": id,
		"vote_id":     vote.GetHash(),
		"validator":   vote.Validator(),
	})
}

type overrideRequest struct {
	Token string `json:"token"`
}

func (api *NetworkHandlerAPI) PostOverrideHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		httputils.WriteJSONError(w, errors.ErrorBadRequestParameter)
		return
	}

	var req overrideRequest
	if err := common.DecodeJSONValue(body, &req); err != nil {
		httputils.WriteJSONError(w, errors.ErrorBadRequestParameter.Clone().SetData("error", err.Error()))
		return
	}

	result, err := api.engine.Override(id, req.Token, api.nowFunc())
	if err != nil {
		httputils.WriteJSONError(w, err)
		return
	}

	httputils.WriteJSON(w, http.StatusOK, resource.NewEvaluation(result))
}
