package resource

const (
	APIVersionV1 = "/v1"
	APIPrefix    = "/api"

	URLProposals        = APIPrefix + APIVersionV1 + "/proposals"
	URLProposal         = APIPrefix + APIVersionV1 + "/proposals/{id}"
	URLProposalVotes    = APIPrefix + APIVersionV1 + "/proposals/{id}/votes"
	URLProposalEvaluate = APIPrefix + APIVersionV1 + "/proposals/{id}/evaluate"
	URLProposalOverride = APIPrefix + APIVersionV1 + "/proposals/{id}/override"
	URLProposalWithdraw = APIPrefix + APIVersionV1 + "/proposals/{id}/withdraw"
	URLProposalVerdict  = APIPrefix + APIVersionV1 + "/proposals/{id}/verdict"
	URLProposalAudit    = APIPrefix + APIVersionV1 + "/proposals/{id}/audit"
	URLVerdicts         = APIPrefix + APIVersionV1 + "/verdicts"
)
