package trust

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStaticProviderMissingIsNeutral(t *testing.T) {
	p := NewStaticProvider(map[string]float64{
		"validator-001": 1.2,
		"validator-002": 1.1,
	})

	require.Equal(t, 1.2, p.Bonus("validator-001"))
	require.Equal(t, NeutralBonus, p.Bonus("unknown"))
}

func TestStaticProviderClampsBelowNeutral(t *testing.T) {
	p := NewStaticProvider(map[string]float64{"validator-001": 0.5})

	require.Equal(t, NeutralBonus, p.Bonus("validator-001"))
}

func TestStaticProviderConcurrentAccess(t *testing.T) {
	p := NewStaticProvider(nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			p.SetBonus("validator-001", 1.3)
		}()
		go func() {
			defer wg.Done()
			_ = p.Bonus("validator-001")
		}()
	}
	wg.Wait()
}

func TestHTTPProvider(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		validator := strings.TrimPrefix(r.URL.Path, "/")
		if validator == "validator-001" {
			json.NewEncoder(w).Encode(bonusResponse{Validator: validator, Bonus: 1.2})
			return
		}
		http.NotFound(w, r)
	}))
	defer ts.Close()

	p := NewHTTPProvider(ts.URL)
	require.Equal(t, 1.2, p.Bonus("validator-001"))
	require.Equal(t, NeutralBonus, p.Bonus("unknown"))
}
