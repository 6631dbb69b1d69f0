package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	cmdcommon "kairosvote.io/kairos/cmd/kairos/common"
	"kairosvote.io/kairos/lib/attest"
	"kairosvote.io/kairos/lib/audit"
	"kairosvote.io/kairos/lib/cache"
	"kairosvote.io/kairos/lib/common/keypair"
	"kairosvote.io/kairos/lib/engine"
	"kairosvote.io/kairos/lib/storage"
	"kairosvote.io/kairos/lib/trust"
	"kairosvote.io/kairos/lib/voting"
)

var (
	simulateCmd *cobra.Command

	flagSimValidators  int
	flagSimWindow      string
	flagSimHalfLife    string
	flagSimBase        float64
	flagSimCritical    bool
	flagSimStep        string
	flagSimFormat      string
	flagSimNetworkID   string
	flagSimMinimumVote int
)

type simulationStep struct {
	Elapsed   string  `json:"elapsed" yaml:"elapsed"`
	Verdict   string  `json:"verdict" yaml:"verdict"`
	Fraction  float64 `json:"fraction" yaml:"fraction"`
	Required  float64 `json:"required" yaml:"required"`
	VoteCount int     `json:"vote_count" yaml:"vote_count"`
	Extended  bool    `json:"extended" yaml:"extended"`
}

func init() {
	simulateCmd = &cobra.Command{
		Use:   "simulate",
		Short: "Run an offline voting simulation with a synthetic validator set",
		Run: func(c *cobra.Command, args []string) {
			runSimulation(c)
		},
	}

	simulateCmd.Flags().IntVar(&flagSimValidators, "validators", 5, "number of synthetic validators")
	simulateCmd.Flags().StringVar(&flagSimWindow, "window", "MEDIUM", "window type, {SHORT, MEDIUM, LONG}")
	simulateCmd.Flags().StringVar(&flagSimHalfLife, "half-life", "10m", "decay half-life")
	simulateCmd.Flags().Float64Var(&flagSimBase, "base", 0.51, "base acceptance fraction")
	simulateCmd.Flags().BoolVar(&flagSimCritical, "critical", false, "use the critical escalation profile")
	simulateCmd.Flags().StringVar(&flagSimStep, "step", "1m", "simulated clock step between evaluations")
	simulateCmd.Flags().IntVar(&flagSimMinimumVote, "minimum-votes", 0, "absolute minimum vote count, 0 disables")
	simulateCmd.Flags().StringVar(&flagSimFormat, "format", "yaml", "format={json, prettyjson, yaml}")
	simulateCmd.Flags().StringVar(&flagSimNetworkID, "network-id", "kairos-simulation", "network id")

	rootCmd.AddCommand(simulateCmd)
}

func runSimulation(c *cobra.Command) {
	halfLife, err := time.ParseDuration(flagSimHalfLife)
	if err != nil {
		cmdcommon.PrintFlagsError(c, "--half-life", err)
	}
	step, err := time.ParseDuration(flagSimStep)
	if err != nil {
		cmdcommon.PrintFlagsError(c, "--step", err)
	}
	encode, ok := cmdcommon.DefaultEncodes[flagSimFormat]
	if !ok {
		cmdcommon.PrintFlagsError(c, "--format", fmt.Errorf(`"%s" not recognized`, flagSimFormat))
	}

	networkID := []byte(flagSimNetworkID)
	begin := time.Now().UTC()

	criticality := voting.CriticalityNormal
	if flagSimCritical {
		criticality = voting.CriticalityCritical
	}

	config := voting.ProposalConfig{
		ID:             "simulation",
		Criticality:    criticality,
		EligibleWeight: float64(flagSimValidators),
		MinimumVotes:   flagSimMinimumVote,
		Decay: voting.DecayConfig{
			Type:     voting.DecayExponential,
			HalfLife: halfLife,
		},
		Window: voting.NewDefaultWindowConfig(voting.WindowType(flagSimWindow)),
	}
	if !flagSimCritical {
		config.Escalation = &voting.EscalationConfig{
			Type: voting.EscalationLinear,
			Base: flagSimBase,
		}
	}

	p, err := config.Make(begin)
	if err != nil {
		cmdcommon.PrintError(c, err)
	}

	st, err := storage.NewTestMemoryLevelDBBackend()
	if err != nil {
		cmdcommon.PrintError(c, err)
	}
	defer st.Close()
	writer := audit.NewWriter(st)

	conf := engine.NewConfig(networkID)
	weights := engine.NewWeightEngine(
		cache.NewMemCacheAdapter(conf.WeightCacheSize),
		trust.NewStaticProvider(nil),
		conf,
		writer,
	)

	de, err := engine.NewDecisionEngine(conf, weights, attest.NewLocalAttestor(time.Minute, 0), writer)
	if err != nil {
		cmdcommon.PrintError(c, err)
	}
	if err := de.AddProposal(p); err != nil {
		cmdcommon.PrintError(c, err)
	}

	// one validator votes at every clock step until the window closes
	duration := p.Window.Duration()
	var steps []simulationStep

	now := begin
	voted := 0
	for elapsed := time.Duration(0); elapsed <= duration+duration/5; elapsed += step {
		now = begin.Add(elapsed)

		if voted < flagSimValidators {
			kp := keypair.Random()
			vote := voting.NewVote(kp.Address(), p.ID, 1, now)
			vote.Sign(kp, networkID)
			if err := de.SubmitVote(*vote, now); err == nil {
				voted++
			}
		}

		result, err := de.Evaluate(p.ID, now)
		if err != nil {
			cmdcommon.PrintError(c, err)
		}

		steps = append(steps, simulationStep{
			Elapsed:   elapsed.String(),
			Verdict:   result.Verdict.String(),
			Fraction:  result.Fraction,
			Required:  result.Required,
			VoteCount: result.VoteCount,
			Extended:  result.Extended,
		})

		if result.Verdict.IsTerminal() {
			break
		}
	}

	if err := encode(steps, os.Stdout); err != nil {
		cmdcommon.PrintError(c, err)
	}

	verdict, _ := de.Verdict(p.ID)
	fmt.Fprintf(os.Stdout, "final verdict: %s\n", verdict)
}
