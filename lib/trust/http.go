package trust

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sethgrid/pester"
)

// HTTPProvider asks a reputation service for bonuses. Any failure
// degrades to the neutral bonus: a flaky reputation service must never
// block a decision.
type HTTPProvider struct {
	client   *pester.Client
	endpoint string
}

type bonusResponse struct {
	Validator string  `json:"validator"`
	Bonus     float64 `json:"bonus"`
}

func NewHTTPProvider(endpoint string) *HTTPProvider {
	client := pester.New()
	client.Concurrency = 1
	client.MaxRetries = 3
	client.Backoff = pester.ExponentialBackoff
	client.Timeout = 2 * time.Second

	return &HTTPProvider{
		client:   client,
		endpoint: endpoint,
	}
}

func (p *HTTPProvider) Bonus(validator string) float64 {
	resp, err := p.client.Get(fmt.Sprintf("%s/%s", p.endpoint, validator))
	if err != nil {
		return NeutralBonus
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return NeutralBonus
	}

	var body bonusResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return NeutralBonus
	}

	if body.Bonus < NeutralBonus {
		return NeutralBonus
	}

	return body.Bonus
}
