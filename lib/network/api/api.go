package api

import (
	"time"

	"github.com/gorilla/mux"

	"kairosvote.io/kairos/lib/audit"
	"kairosvote.io/kairos/lib/engine"
)

// API endpoint patterns, relative to the versioned API prefix.
const (
	GetProposalsHandlerPattern = "/proposals"
	PostProposalHandlerPattern = "/proposals"
	GetProposalHandlerPattern  = "/proposals/{id}"
	PostVoteHandlerPattern     = "/proposals/{id}/votes"
	PostEvaluateHandlerPattern = "/proposals/{id}/evaluate"
	PostOverrideHandlerPattern = "/proposals/{id}/override"
	PostWithdrawHandlerPattern = "/proposals/{id}/withdraw"
	GetVerdictHandlerPattern   = "/proposals/{id}/verdict"
	GetAuditHandlerPattern     = "/proposals/{id}/audit"
	GetVerdictStreamPattern    = "/verdicts"
	GetSuggestedHandlerPattern = "/audit/suggested-threshold"
)

// NetworkHandlerAPI is the HTTP status surface of one node. The engine
// itself never reads a clock; this layer pins `now` once per request.
type NetworkHandlerAPI struct {
	engine   *engine.DecisionEngine
	analyzer *audit.Analyzer
	nowFunc  func() time.Time
}

func NewNetworkHandlerAPI(de *engine.DecisionEngine, analyzer *audit.Analyzer) *NetworkHandlerAPI {
	return &NetworkHandlerAPI{
		engine:   de,
		analyzer: analyzer,
		nowFunc:  func() time.Time { return time.Now().UTC() },
	}
}

// SetNowFunc pins the request clock, for deterministic tests.
func (api *NetworkHandlerAPI) SetNowFunc(nowFunc func() time.Time) {
	api.nowFunc = nowFunc
}

func (api *NetworkHandlerAPI) AddAPIHandlers(router *mux.Router) {
	router.HandleFunc(GetProposalsHandlerPattern, api.GetProposalsHandler).Methods("GET")
	router.HandleFunc(PostProposalHandlerPattern, api.PostProposalHandler).Methods("POST")
	router.HandleFunc(GetProposalHandlerPattern, api.GetProposalHandler).Methods("GET")
	router.HandleFunc(PostVoteHandlerPattern, api.PostVoteHandler).Methods("POST")
	router.HandleFunc(PostEvaluateHandlerPattern, api.PostEvaluateHandler).Methods("POST")
	router.HandleFunc(PostOverrideHandlerPattern, api.PostOverrideHandler).Methods("POST")
	router.HandleFunc(PostWithdrawHandlerPattern, api.PostWithdrawHandler).Methods("POST")
	router.HandleFunc(GetVerdictHandlerPattern, api.GetVerdictHandler).Methods("GET")
	router.HandleFunc(GetAuditHandlerPattern, api.GetAuditHandler).Methods("GET")
	router.HandleFunc(GetVerdictStreamPattern, api.GetVerdictStreamHandler).Methods("GET")
	router.HandleFunc(GetSuggestedHandlerPattern, api.GetSuggestedThresholdHandler).Methods("GET")
}
