package observer

import (
	"github.com/GianlucaGuarini/go-observable"
)

// VerdictObserver publishes terminal verdict transitions,
// WeightObserver publishes audited effective-weight recomputations.
var VerdictObserver = observable.New()
var WeightObserver = observable.New()

const (
	ResourceVerdict = "verdict"
	ResourceWeight  = "weight"

	ConditionAll      = "*"
	ConditionProposal = "proposal"
)

type Event struct {
	Resource  string `json:"resource"`
	Condition string `json:"condition"`
	Id        string `json:"id"`
}

func NewEvent(resource, condition, id string) Event {
	return Event{
		Resource:  resource,
		Condition: condition,
		Id:        id,
	}
}

func (e Event) String() string {
	toStr := e.Resource + "-"
	if e.Condition == ConditionAll {
		toStr += e.Condition
	} else {
		toStr += e.Condition + "="
		toStr += e.Id
	}
	return toStr
}
