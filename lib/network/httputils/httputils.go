package httputils

import (
	"net/http"

	"kairosvote.io/kairos/lib/errors"
)

// IsEventStream checks request header accept is text/event-stream
func IsEventStream(r *http.Request) bool {
	if r.Header.Get("Accept") == "text/event-stream" {
		return true
	}
	return false
}

var (
	ErrorsToStatus = map[uint]int{
		errors.ErrorInvalidDecayConfig.Code:          http.StatusBadRequest,
		errors.ErrorInvalidEscalationProfile.Code:    http.StatusBadRequest,
		errors.ErrorUntrustedTimestamp.Code:          http.StatusBadRequest,
		errors.ErrorProposalNotOpen.Code:             http.StatusConflict,
		errors.ErrorExtensionLimitExceeded.Code:      http.StatusConflict,
		errors.ErrorProposalNotFound.Code:            http.StatusNotFound,
		errors.ErrorProposalAlreadyExists.Code:       http.StatusConflict,
		errors.ErrorVoteAlreadyCast.Code:             http.StatusConflict,
		errors.ErrorInvalidVote.Code:                 http.StatusBadRequest,
		errors.ErrorSignatureVerificationFailed.Code: http.StatusBadRequest,
		errors.ErrorInvalidWindowConfig.Code:         http.StatusBadRequest,
		errors.ErrorInvalidOverrideToken.Code:        http.StatusForbidden,
		errors.ErrorStorageCoreError.Code:            http.StatusInternalServerError,
		errors.ErrorStorageRecordDoesNotExist.Code:   http.StatusNotFound,
		errors.ErrorStorageRecordAlreadyExists.Code:  http.StatusConflict,
		errors.ErrorInvalidConfig.Code:               http.StatusInternalServerError,
		errors.ErrorInvalidProposal.Code:             http.StatusBadRequest,
		errors.ErrorBadRequestParameter.Code:         http.StatusBadRequest,
		errors.ErrorInvalidQueryString.Code:          http.StatusBadRequest,
	}
)

func StatusCode(err error) int {
	if e, ok := err.(*errors.Error); ok {
		if status, found := ErrorsToStatus[e.Code]; found {
			return status
		}
	}
	return http.StatusInternalServerError
}
