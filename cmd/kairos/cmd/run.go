package cmd

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"time"

	logging "github.com/inconshreveable/log15"
	"github.com/mattn/go-isatty"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter"
	"gopkg.in/yaml.v2"

	cmdcommon "kairosvote.io/kairos/cmd/kairos/common"
	"kairosvote.io/kairos/lib/attest"
	"kairosvote.io/kairos/lib/audit"
	"kairosvote.io/kairos/lib/cache"
	"kairosvote.io/kairos/lib/common"
	"kairosvote.io/kairos/lib/engine"
	"kairosvote.io/kairos/lib/metrics"
	"kairosvote.io/kairos/lib/network"
	"kairosvote.io/kairos/lib/network/api"
	"kairosvote.io/kairos/lib/network/api/resource"
	"kairosvote.io/kairos/lib/storage"
	"kairosvote.io/kairos/lib/trust"
	"kairosvote.io/kairos/lib/voting"
)

const defaultBind string = "0.0.0.0:12345"
const defaultLogLevel logging.Lvl = logging.LvlInfo

var (
	flagNetworkID          string = common.GetENVValue("KAIROS_NETWORK_ID", "")
	flagBind               string = common.GetENVValue("KAIROS_BIND", defaultBind)
	flagLogLevel           string = common.GetENVValue("KAIROS_LOG_LEVEL", defaultLogLevel.String())
	flagLogOutput          string = common.GetENVValue("KAIROS_LOG_OUTPUT", "")
	flagPolicyFile         string = common.GetENVValue("KAIROS_POLICY", "")
	flagCacheConfigString  string = common.GetENVValue("KAIROS_CACHE", "memory://")
	flagTrustEndpoint      string = common.GetENVValue("KAIROS_TRUST_ENDPOINT", "")
	flagNTPServer          string = common.GetENVValue("KAIROS_NTP_SERVER", "")
	flagOverrideToken      string = common.GetENVValue("KAIROS_OVERRIDE_TOKEN", "")
	flagRateLimit          string = common.GetENVValue("KAIROS_RATE_LIMIT", "100-S")
	flagEvaluationInterval string = common.GetENVValue("KAIROS_EVALUATION_INTERVAL", "5s")
	flagRecomputeTolerance string = common.GetENVValue("KAIROS_RECOMPUTE_TOLERANCE", "5s")
	flagDriftTolerance     string = common.GetENVValue("KAIROS_DRIFT_TOLERANCE", "1m")
	flagMaxVoteAge         string = common.GetENVValue("KAIROS_MAX_VOTE_AGE", "0s")

	flagStorageConfigString string
)

var (
	runCmd *cobra.Command

	storageConfig      storage.Config
	rateLimit          limiter.Rate
	evaluationInterval time.Duration
	recomputeTolerance time.Duration
	driftTolerance     time.Duration
	maxVoteAge         time.Duration
	logLevel           logging.Lvl
	log                logging.Logger
)

// policyFile is the startup description of the proposals to open.
type policyFile struct {
	Proposals []voting.ProposalConfig `yaml:"proposals"`
}

func init() {
	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run kairos node",
		Run: func(c *cobra.Command, args []string) {
			parseFlagsRun()

			runNode()
			return
		},
	}

	var currentDirectory string
	var err error
	if currentDirectory, err = os.Getwd(); err != nil {
		cmdcommon.PrintFlagsError(runCmd, "--storage", err)
	}
	if currentDirectory, err = filepath.Abs(currentDirectory); err != nil {
		cmdcommon.PrintFlagsError(runCmd, "--storage", err)
	}
	flagStorageConfigString = common.GetENVValue("KAIROS_STORAGE", fmt.Sprintf("file://%s/db", currentDirectory))

	runCmd.Flags().StringVar(&flagNetworkID, "network-id", flagNetworkID, "network id")
	runCmd.Flags().StringVar(&flagBind, "bind", flagBind, "address to listen on")
	runCmd.Flags().StringVar(&flagLogLevel, "log-level", flagLogLevel, "log level, {crit, error, warn, info, debug}")
	runCmd.Flags().StringVar(&flagLogOutput, "log-output", flagLogOutput, "set log output file")
	runCmd.Flags().StringVar(&flagStorageConfigString, "storage", flagStorageConfigString, "storage uri")
	runCmd.Flags().StringVar(&flagPolicyFile, "policy", flagPolicyFile, "yaml file with proposals to open at startup")
	runCmd.Flags().StringVar(&flagCacheConfigString, "cache", flagCacheConfigString, "weight cache uri, {memory://, redis://<host:port>}")
	runCmd.Flags().StringVar(&flagTrustEndpoint, "trust-endpoint", flagTrustEndpoint, "reputation service endpoint url")
	runCmd.Flags().StringVar(&flagNTPServer, "ntp-server", flagNTPServer, "ntp server for timestamp attestation")
	runCmd.Flags().StringVar(&flagOverrideToken, "override-token", flagOverrideToken, "token accepted for emergency override")
	runCmd.Flags().StringVar(&flagRateLimit, "rate-limit", flagRateLimit, "api rate limit, formatted like 100-S")
	runCmd.Flags().StringVar(&flagEvaluationInterval, "evaluation-interval", flagEvaluationInterval, "interval between evaluation sweeps")
	runCmd.Flags().StringVar(&flagRecomputeTolerance, "recompute-tolerance", flagRecomputeTolerance, "staleness allowed on cached weights")
	runCmd.Flags().StringVar(&flagDriftTolerance, "drift-tolerance", flagDriftTolerance, "clock drift tolerated on vote timestamps")
	runCmd.Flags().StringVar(&flagMaxVoteAge, "max-vote-age", flagMaxVoteAge, "oldest acceptable vote timestamp, 0 disables")

	rootCmd.AddCommand(runCmd)
}

func parseFlagsRun() {
	var err error

	if len(flagNetworkID) < 1 {
		cmdcommon.PrintFlagsError(runCmd, "--network-id", errors.New("--network-id must be given"))
	}

	if storageConfig, err = storage.NewConfigFromString(flagStorageConfigString); err != nil {
		cmdcommon.PrintFlagsError(runCmd, "--storage", err)
	}

	if rateLimit, err = limiter.NewRateFromFormatted(flagRateLimit); err != nil {
		cmdcommon.PrintFlagsError(runCmd, "--rate-limit", err)
	}

	if evaluationInterval, err = time.ParseDuration(flagEvaluationInterval); err != nil {
		cmdcommon.PrintFlagsError(runCmd, "--evaluation-interval", err)
	}
	if recomputeTolerance, err = time.ParseDuration(flagRecomputeTolerance); err != nil {
		cmdcommon.PrintFlagsError(runCmd, "--recompute-tolerance", err)
	}
	if driftTolerance, err = time.ParseDuration(flagDriftTolerance); err != nil {
		cmdcommon.PrintFlagsError(runCmd, "--drift-tolerance", err)
	}
	if maxVoteAge, err = time.ParseDuration(flagMaxVoteAge); err != nil {
		cmdcommon.PrintFlagsError(runCmd, "--max-vote-age", err)
	}

	if logLevel, err = logging.LvlFromString(flagLogLevel); err != nil {
		cmdcommon.PrintFlagsError(runCmd, "--log-level", err)
	}

	var logHandler logging.Handler

	var formatter logging.Format
	if isatty.IsTerminal(os.Stdout.Fd()) {
		formatter = logging.TerminalFormat()
	} else {
		formatter = common.JsonFormatEx(false, true)
	}
	logHandler = logging.StreamHandler(os.Stdout, formatter)

	if len(flagLogOutput) < 1 {
		flagLogOutput = "<stdout>"
	} else {
		if logHandler, err = logging.FileHandler(flagLogOutput, logging.JsonFormat()); err != nil {
			cmdcommon.PrintFlagsError(runCmd, "--log-output", err)
		}
	}

	log = logging.New("module", "main")
	log.SetHandler(logging.LvlFilterHandler(logLevel, logHandler))
	engine.SetLogging(logLevel, logHandler)
	network.SetLogging(logLevel, logHandler)

	log.Info("Starting kairos")

	parsedFlags := []interface{}{}
	parsedFlags = append(parsedFlags, "\n\tnetwork-id", flagNetworkID)
	parsedFlags = append(parsedFlags, "\n\tbind", flagBind)
	parsedFlags = append(parsedFlags, "\n\tstorage", flagStorageConfigString)
	parsedFlags = append(parsedFlags, "\n\tcache", flagCacheConfigString)
	parsedFlags = append(parsedFlags, "\n\tpolicy", flagPolicyFile)
	parsedFlags = append(parsedFlags, "\n\tlog-level", flagLogLevel)
	parsedFlags = append(parsedFlags, "\n\tlog-output", flagLogOutput)
	parsedFlags = append(parsedFlags, "\n\tevaluation-interval", flagEvaluationInterval)

	log.Debug("parsed flags:", parsedFlags...)
}

func makeCacheAdapter(conf engine.Config) cache.Adapter {
	if strings.HasPrefix(flagCacheConfigString, "redis://") {
		addr := strings.TrimPrefix(flagCacheConfigString, "redis://")
		return cache.NewRedisCacheAdapter(
			&cache.RedisRingOptions{Addrs: map[string]string{"kairos": addr}},
			time.Hour,
		)
	}

	return cache.NewMemCacheAdapter(conf.WeightCacheSize)
}

func makeTrustProvider() trust.Provider {
	if len(flagTrustEndpoint) > 0 {
		return trust.NewHTTPProvider(flagTrustEndpoint)
	}

	return trust.NewStaticProvider(nil)
}

func makeAttestor() attest.Attestor {
	if len(flagNTPServer) > 0 {
		attestor := attest.NewNTPAttestor(flagNTPServer, driftTolerance, maxVoteAge, 10*time.Minute)
		if err := attestor.Sync(); err != nil {
			log.Warn("initial ntp sync failed, continuing with local clock", "server", flagNTPServer, "error", err)
		}
		return attestor
	}

	return attest.NewLocalAttestor(driftTolerance, maxVoteAge)
}

func openPolicyProposals(de *engine.DecisionEngine) error {
	if len(flagPolicyFile) < 1 {
		return nil
	}

	body, err := ioutil.ReadFile(flagPolicyFile)
	if err != nil {
		return err
	}

	var policy policyFile
	if err := yaml.Unmarshal(body, &policy); err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, config := range policy.Proposals {
		p, err := config.Make(now)
		if err != nil {
			return err
		}
		if err := de.AddProposal(p); err != nil {
			return err
		}
		log.Info("opened proposal from policy", "proposal", p.ID)
	}

	return nil
}

func runNode() {
	st, err := storage.NewStorage(storageConfig)
	if err != nil {
		log.Crit("failed to initialize storage", "error", err)

		os.Exit(1)
	}
	defer st.Close()

	writer := audit.NewWriter(st)
	analyzer := audit.NewAnalyzer(st)

	conf := engine.NewConfig([]byte(flagNetworkID))
	conf.RecomputeTolerance = recomputeTolerance
	conf.EvaluationInterval = evaluationInterval

	weights := engine.NewWeightEngine(makeCacheAdapter(conf), makeTrustProvider(), conf, writer)

	de, err := engine.NewDecisionEngine(conf, weights, makeAttestor(), writer)
	if err != nil {
		log.Crit("failed to initialize engine", "error", err)

		os.Exit(1)
	}

	if len(flagOverrideToken) > 0 {
		token := flagOverrideToken
		de.SetOverrideAuthorizer(engine.OverrideAuthorizerFunc(func(proposalID, presented string) bool {
			return presented == token
		}))
	}

	if err := openPolicyProposals(de); err != nil {
		log.Crit("failed to open policy proposals", "error", err)

		os.Exit(1)
	}

	metrics.InitPrometheusMetrics()
	metrics.SetVersion()

	serverConfig := network.NewServerConfig(flagBind)
	serverConfig.RateLimit = rateLimit
	server := network.NewServer(serverConfig)

	apiHandler := api.NewNetworkHandlerAPI(de, analyzer)
	apiRouter := server.Router().PathPrefix(resource.APIPrefix + resource.APIVersionV1).Subrouter()
	apiHandler.AddAPIHandlers(apiRouter)

	server.AddHandler("/metrics", promhttp.Handler())

	// Execution group.
	var g run.Group
	{
		g.Add(func() error {
			return server.Start()
		}, func(error) {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			server.Stop(ctx)
		})
	}
	{
		done := make(chan struct{})
		g.Add(func() error {
			ticker := time.NewTicker(conf.EvaluationInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					de.EvaluateAll(time.Now().UTC())
				case <-done:
					return nil
				}
			}
		}, func(error) {
			close(done)
		})
	}
	{
		cancel := make(chan struct{})
		g.Add(func() error {
			return cmdcommon.Interrupt(cancel)
		}, func(error) {
			close(cancel)
		})
	}

	if err := g.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
