package resource

import (
	"strings"

	"github.com/nvellon/hal"

	"kairosvote.io/kairos/lib/common"
	"kairosvote.io/kairos/lib/engine"
)

type Proposal struct {
	s engine.ProposalSummary
}

func NewProposal(s engine.ProposalSummary) *Proposal {
	return &Proposal{s: s}
}

func (p Proposal) GetMap() hal.Entry {
	return hal.Entry{
		"id":              p.s.ID,
		"criticality":     string(p.s.Criticality),
		"status":          p.s.Status.String(),
		"created_at":      common.FormatISO8601(p.s.CreatedAt),
		"deadline":        common.FormatISO8601(p.s.Deadline),
		"eligible_weight": p.s.EligibleWeight,
		"minimum_votes":   p.s.MinimumVotes,
		"vote_count":      p.s.VoteCount,
		"extensions":      len(p.s.Extensions),
	}
}

func (p Proposal) Resource() *hal.Resource {
	r := hal.NewResource(p, p.LinkSelf())
	r.AddLink("votes", hal.NewLink(strings.Replace(URLProposalVotes, "{id}", p.s.ID, -1)))
	r.AddLink("verdict", hal.NewLink(strings.Replace(URLProposalVerdict, "{id}", p.s.ID, -1)))
	r.AddLink("audit", hal.NewLink(strings.Replace(URLProposalAudit, "{id}", p.s.ID, -1)))

	return r
}

func (p Proposal) LinkSelf() string {
	return strings.Replace(URLProposal, "{id}", p.s.ID, -1)
}
