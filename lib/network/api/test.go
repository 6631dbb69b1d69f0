package api

import (
	"net/http/httptest"
	"time"

	"github.com/gorilla/mux"

	"kairosvote.io/kairos/lib/attest"
	"kairosvote.io/kairos/lib/audit"
	"kairosvote.io/kairos/lib/cache"
	"kairosvote.io/kairos/lib/engine"
	"kairosvote.io/kairos/lib/storage"
	"kairosvote.io/kairos/lib/trust"
)

var testNetworkID = []byte("kairos-test-network")

var testNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// prepareAPIServer builds a full node surface over in-memory storage
// with a pinned clock.
func prepareAPIServer() (*httptest.Server, *engine.DecisionEngine, error) {
	st, err := storage.NewTestMemoryLevelDBBackend()
	if err != nil {
		return nil, nil, err
	}

	writer := audit.NewWriter(st)
	analyzer := audit.NewAnalyzer(st)

	conf := engine.NewConfig(testNetworkID)
	weights := engine.NewWeightEngine(
		cache.NewMemCacheAdapter(100),
		trust.NewStaticProvider(nil),
		conf,
		writer,
	)

	de, err := engine.NewDecisionEngine(conf, weights, attest.NewLocalAttestor(time.Minute, time.Hour), writer)
	if err != nil {
		return nil, nil, err
	}

	handler := NewNetworkHandlerAPI(de, analyzer)
	handler.SetNowFunc(func() time.Time { return testNow })

	router := mux.NewRouter()
	handler.AddAPIHandlers(router)

	return httptest.NewServer(router), de, nil
}

func engineAuthorizer(expected string) engine.OverrideAuthorizer {
	return engine.OverrideAuthorizerFunc(func(proposalID, token string) bool {
		return token == expected
	})
}
