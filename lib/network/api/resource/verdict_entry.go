package resource

import (
	"strings"

	"github.com/nvellon/hal"

	"kairosvote.io/kairos/lib/audit"
)

type VerdictEntry struct {
	e audit.VerdictEntry
}

func NewVerdictEntry(e audit.VerdictEntry) *VerdictEntry {
	return &VerdictEntry{e: e}
}

func (v VerdictEntry) GetMap() hal.Entry {
	return hal.Entry{
		"proposal_id": v.e.ProposalID,
		"verdict":     v.e.Verdict.String(),
		"fraction":    v.e.Fraction,
		"required":    v.e.Required,
		"margin":      v.e.Margin(),
		"vote_count":  v.e.VoteCount,
		"decided_at":  v.e.DecidedAt,
	}
}

func (v VerdictEntry) Resource() *hal.Resource {
	return hal.NewResource(v, v.LinkSelf())
}

func (v VerdictEntry) LinkSelf() string {
	return strings.Replace(URLProposalAudit, "{id}", v.e.ProposalID, -1)
}
