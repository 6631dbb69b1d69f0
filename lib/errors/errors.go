package errors

var (
	ErrorInvalidDecayConfig          = NewError(100, "invalid decay model configuration")
	ErrorInvalidEscalationProfile    = NewError(101, "invalid escalation profile")
	ErrorUntrustedTimestamp          = NewError(102, "vote timestamp failed attestation")
	ErrorProposalNotOpen             = NewError(103, "proposal is not open")
	ErrorExtensionLimitExceeded      = NewError(104, "voting window extension limit exceeded")
	ErrorProposalNotFound            = NewError(105, "proposal not found")
	ErrorProposalAlreadyExists       = NewError(106, "proposal already exists")
	ErrorVoteAlreadyCast             = NewError(107, "validator already voted on this proposal")
	ErrorInvalidVote                 = NewError(108, "vote is not well formed")
	ErrorSignatureVerificationFailed = NewError(109, "signature verification failed")
	ErrorInvalidWindowConfig         = NewError(110, "invalid voting window configuration")
	ErrorInvalidOverrideToken        = NewError(111, "emergency override token rejected")
	ErrorStorageCoreError            = NewError(112, "storage error")
	ErrorStorageRecordDoesNotExist   = NewError(113, "record does not exist in storage")
	ErrorStorageRecordAlreadyExists  = NewError(114, "record already exists in storage")
	ErrorInvalidConfig               = NewError(115, "invalid configuration")
	ErrorInvalidProposal             = NewError(116, "proposal is not well formed")
	ErrorBadRequestParameter         = NewError(117, "bad request parameter")
	ErrorInvalidQueryString          = NewError(118, "invalid query string")
)
