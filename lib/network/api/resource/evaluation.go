package resource

import (
	"strings"

	"github.com/nvellon/hal"

	"kairosvote.io/kairos/lib/common"
	"kairosvote.io/kairos/lib/engine"
)

type Evaluation struct {
	r engine.EvaluationResult
}

func NewEvaluation(r engine.EvaluationResult) *Evaluation {
	return &Evaluation{r: r}
}

func (e Evaluation) GetMap() hal.Entry {
	return hal.Entry{
		"id":           e.r.ProposalID,
		"verdict":      e.r.Verdict.String(),
		"accepted":     e.r.Verdict.IsAccepted(),
		"fraction":     e.r.Fraction,
		"required":     e.r.Required,
		"vote_count":   e.r.VoteCount,
		"extended":     e.r.Extended,
		"deadline":     common.FormatISO8601(e.r.Deadline),
		"evaluated_at": common.FormatISO8601(e.r.EvaluatedAt),
	}
}

func (e Evaluation) Resource() *hal.Resource {
	r := hal.NewResource(e, e.LinkSelf())
	r.AddLink("proposal", hal.NewLink(strings.Replace(URLProposal, "{id}", e.r.ProposalID, -1)))

	return r
}

func (e Evaluation) LinkSelf() string {
	return strings.Replace(URLProposalVerdict, "{id}", e.r.ProposalID, -1)
}
