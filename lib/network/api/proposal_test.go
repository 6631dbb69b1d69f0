package api

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"kairosvote.io/kairos/lib/common"
	"kairosvote.io/kairos/lib/voting"
)

func postJSON(ts string, path string, body interface{}) (*http.Response, []byte, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, nil, err
	}

	resp, err := http.Post(ts+path, "application/json", bytes.NewReader(encoded))
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	payload, err := ioutil.ReadAll(resp.Body)
	return resp, payload, err
}

func testProposalConfig(id string) voting.ProposalConfig {
	return voting.ProposalConfig{
		ID:             id,
		CreatedAt:      common.FormatISO8601(testNow),
		EligibleWeight: 100,
		Decay: voting.DecayConfig{
			Type:     voting.DecayExponential,
			HalfLife: 10 * time.Minute,
		},
		Escalation: &voting.EscalationConfig{
			Type: voting.EscalationLinear,
			Base: 0.51,
		},
		Window: voting.NewDefaultWindowConfig(voting.WindowMedium),
	}
}

func TestAPIPostProposal(t *testing.T) {
	ts, de, err := prepareAPIServer()
	require.NoError(t, err)
	defer ts.Close()

	resp, payload, err := postJSON(ts.URL, "/proposals", testProposalConfig("prop-1"))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &result))
	require.Equal(t, "prop-1", result["id"])
	require.Equal(t, "PENDING", result["status"])

	require.Equal(t, []string{"prop-1"}, de.RunningProposalIDs())
}

func TestAPIPostProposalInvalid(t *testing.T) {
	ts, _, err := prepareAPIServer()
	require.NoError(t, err)
	defer ts.Close()

	config := testProposalConfig("prop-bad")
	config.Decay.Type = "quadratic"

	resp, _, err := postJSON(ts.URL, "/proposals", config)
	require.NoError(t, err)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIPostProposalDuplicate(t *testing.T) {
	ts, _, err := prepareAPIServer()
	require.NoError(t, err)
	defer ts.Close()

	resp, _, err := postJSON(ts.URL, "/proposals", testProposalConfig("prop-dup"))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _, err = postJSON(ts.URL, "/proposals", testProposalConfig("prop-dup"))
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPIGetProposal(t *testing.T) {
	ts, _, err := prepareAPIServer()
	require.NoError(t, err)
	defer ts.Close()

	_, _, err = postJSON(ts.URL, "/proposals", testProposalConfig("prop-get"))
	require.NoError(t, err)

	resp, err := http.Get(ts.URL + "/proposals/prop-get")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/hal+json", resp.Header.Get("Content-Type"))

	resp, err = http.Get(ts.URL + "/proposals/no-such-proposal")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	require.Equal(t, "application/problem+json", resp.Header.Get("Content-Type"))
}

func TestAPIWithdraw(t *testing.T) {
	ts, de, err := prepareAPIServer()
	require.NoError(t, err)
	defer ts.Close()

	_, _, err = postJSON(ts.URL, "/proposals", testProposalConfig("prop-withdraw"))
	require.NoError(t, err)

	resp, payload, err := postJSON(ts.URL, "/proposals/prop-withdraw/withdraw", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &result))
	require.Equal(t, "WITHDRAWN", result["verdict"])

	verdict, err := de.Verdict("prop-withdraw")
	require.NoError(t, err)
	require.Equal(t, voting.WITHDRAWN, verdict)

	// withdrawing again conflicts with the terminal state
	resp, _, err = postJSON(ts.URL, "/proposals/prop-withdraw/withdraw", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPIEvaluate(t *testing.T) {
	ts, _, err := prepareAPIServer()
	require.NoError(t, err)
	defer ts.Close()

	_, _, err = postJSON(ts.URL, "/proposals", testProposalConfig("prop-eval"))
	require.NoError(t, err)

	resp, payload, err := postJSON(ts.URL, "/proposals/prop-eval/evaluate", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var result map[string]interface{}
	require.NoError(t, json.Unmarshal(payload, &result))
	require.Equal(t, "PENDING", result["verdict"])
	require.Equal(t, 0.51, result["required"])
}
