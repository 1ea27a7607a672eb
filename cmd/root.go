// cmd/root.go
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/tsn-sched/tsn-sched/sim"
	"github.com/tsn-sched/tsn-sched/sim/netio"
	"github.com/tsn-sched/tsn-sched/sim/routing"
	"github.com/tsn-sched/tsn-sched/sim/solverprofile"
	"github.com/tsn-sched/tsn-sched/sim/trace"
)

var (
	networkPath           string
	scenarioPath          string
	printRaw              bool
	algorithm             string
	routingName           string
	configurationRating   int
	flowSorting           int
	offensivePlanning     bool
	configurationPlacement int
	candidatePaths        int
	verifySchedule        bool
	solverProfilePath     string
	logLevel              string
)

var rootCmd = &cobra.Command{
	Use:   "tsn-sched",
	Short: "Offline time-triggered transmission scheduler for TSN networks",
	RunE:  runScenario,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&networkPath, "network", "", "path to the network edge-list file (required)")
	rootCmd.Flags().StringVar(&scenarioPath, "scenario", "", "path to the scenario JSON file (required)")
	rootCmd.Flags().BoolVar(&printRaw, "print-raw", false, "emit tab-separated machine-readable records instead of pretty blocks")
	rootCmd.Flags().StringVar(&algorithm, "algorithm", "H2S", "scheduler algorithm: H2S, CELF, EDF, FF, HERMES")
	rootCmd.Flags().StringVar(&routingName, "routing", "DIJKSTRA_OVERLAP", "candidate-path oracle: DIJKSTRA_OVERLAP, K_SHORTEST")
	rootCmd.Flags().IntVar(&configurationRating, "configuration-rating", 1, "configuration rater index")
	rootCmd.Flags().IntVar(&flowSorting, "flow-sorting", 4, "flow sorter index")
	rootCmd.Flags().BoolVar(&offensivePlanning, "offensive-planning", false, "attempt offensive replanning when defensive planning leaves flows unadmitted")
	rootCmd.Flags().IntVar(&configurationPlacement, "configuration-placement", 1, "placement policy: 0=ASAP, 1=BALANCED, 2=HERMES")
	rootCmd.Flags().IntVar(&candidatePaths, "candidate-paths", 5, "number of candidate paths requested per flow")
	rootCmd.Flags().BoolVar(&verifySchedule, "verify-schedule", false, "run the independent schedule verifier after every time step")
	rootCmd.Flags().StringVar(&solverProfilePath, "solver-profile", "", "optional YAML file overriding the above strategy selection")
	rootCmd.Flags().StringVar(&logLevel, "log", "info", "log level (debug, info, warn, error)")

	rootCmd.MarkFlagRequired("network")
	rootCmd.MarkFlagRequired("scenario")
}

func runScenario(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	logrus.SetLevel(level)

	if solverProfilePath != "" {
		profile, err := solverprofile.Load(solverProfilePath)
		if err != nil {
			return err
		}
		if err := profile.Validate(); err != nil {
			return err
		}
		applyProfile(profile)
	}

	if !sim.IsValidConfigRaterIndex(configurationRating) && !sim.IsValidCelfRaterIndex(configurationRating) {
		return fmt.Errorf("unrecognized --configuration-rating %d", configurationRating)
	}
	if !sim.IsValidFlowSorterIndex(flowSorting) {
		return fmt.Errorf("unrecognized --flow-sorting %d", flowSorting)
	}

	// --candidate-paths is forced to 1 for strategies that schedule a
	// single fixed path per flow (§6).
	effectiveCandidatePaths := candidatePaths
	if algorithm == "HERMES" || (algorithm == "CELF" && configurationRating == 3) {
		effectiveCandidatePaths = 1
	}

	g, err := netio.ParseNetworkFile(networkPath)
	if err != nil {
		return err
	}
	steps, err := netio.ParseScenarioFile(scenarioPath)
	if err != nil {
		return err
	}

	periods := scenarioPeriods(steps)
	hyperCycle := sim.HyperCycle(periods)
	subCycle := sim.SubCycle(periods)
	oracle := newOracle(routingName)
	solver := newSolver(algorithm, configurationRating, flowSorting, configurationPlacement, subCycle)

	tr := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelSteps})
	driver := sim.NewScenarioDriver(g, hyperCycle, oracle, solver, effectiveCandidatePaths, offensivePlanning, verifySchedule, tr)

	for _, step := range steps {
		simStep := sim.TimeStep{
			Time:        step.Time,
			AddFlows:    step.AddFlows,
			RemoveFlows: step.RemoveFlows,
		}
		records, err := driver.RunTimeStep(simStep)
		printRecords(records)
		if err != nil {
			logrus.Errorf("time step %d: %v", step.Time, err)
			os.Exit(2)
		}
	}
	return nil
}

func applyProfile(p *solverprofile.Profile) {
	if p.Algorithm != "" {
		algorithm = p.Algorithm
	}
	if p.Routing != "" {
		routingName = p.Routing
	}
	if p.ConfigurationRating != nil {
		configurationRating = *p.ConfigurationRating
	}
	if p.FlowSorting != nil {
		flowSorting = *p.FlowSorting
	}
	if p.ConfigurationPlacement != nil {
		configurationPlacement = *p.ConfigurationPlacement
	}
	if p.CandidatePaths != nil {
		candidatePaths = *p.CandidatePaths
	}
	if p.OffensivePlanning != nil {
		offensivePlanning = *p.OffensivePlanning
	}
	if p.VerifySchedule != nil {
		verifySchedule = *p.VerifySchedule
	}
}

func scenarioPeriods(steps []netio.TimeStep) []int64 {
	var periods []int64
	for _, step := range steps {
		for _, f := range step.AddFlows {
			periods = append(periods, f.PeriodUs)
		}
	}
	return periods
}

func newOracle(name string) sim.CandidatePathOracle {
	switch strings.ToUpper(name) {
	case "K_SHORTEST":
		return routing.KShortest{}
	case "DIJKSTRA_OVERLAP":
		return routing.DijkstraOverlap{}
	default:
		panic(fmt.Sprintf("unknown routing oracle %q", name))
	}
}

func newPlacement(placementIdx int, subCycle int64) sim.PlacementFunc {
	switch placementIdx {
	case 0:
		return sim.ASAP
	case 1:
		return sim.Balanced(subCycle)
	case 2:
		return hermesAsPlacement
	default:
		panic(fmt.Sprintf("unknown configuration-placement %d", placementIdx))
	}
}

// hermesAsPlacement lets H2S/CELF drive Hermes's per-flow phase-ordered
// placement as an ordinary PlacementFunc, since its signature already
// matches (§4.3 "placement function consumes (config, flow, util)").
func hermesAsPlacement(u *sim.UtilizationList, cfg *sim.Configuration, flow *sim.Flow) bool {
	return sim.HermesPlaceFlow(u, cfg, flow)
}

func newSolver(alg string, configRating, flowSorter, placementIdx int, subCycle int64) sim.Scheduler {
	place := newPlacement(placementIdx, subCycle)
	switch strings.ToUpper(alg) {
	case "H2S":
		return &sim.H2S{Sorter: sim.NewFlowSorter(flowSorter), Rater: sim.NewConfigRater(configRatingOrDefault(configRating)), Place: place}
	case "CELF":
		return &sim.CELF{Rater: sim.NewCelfRater(configRatingOrDefaultCelf(configRating)), Place: place}
	case "EDF":
		return &sim.EDF{}
	case "FF":
		return sim.FirstFit{}
	case "HERMES":
		return sim.Hermes{}
	default:
		panic(fmt.Sprintf("unknown algorithm %q", alg))
	}
}

func configRatingOrDefault(n int) int {
	if sim.IsValidConfigRaterIndex(n) {
		return n
	}
	return 1
}

func configRatingOrDefaultCelf(n int) int {
	if sim.IsValidCelfRaterIndex(n) {
		return n
	}
	return 1
}

func printRecords(records []trace.TimeStepRecord) {
	for _, r := range records {
		if printRaw {
			fmt.Printf("%d\t%s\t%d\t%d\t%.4f\t%d\t%d\t%d\t%d\t%.4f\t%d\n",
				r.Time, r.PlanningMode, r.FlowsScheduled, r.FlowsTotal, r.IngressTrafficMbps,
				r.NumberOfFrames, r.SolvingTimeUs, r.ConfigTimeUs, r.MaxQueueSize,
				r.AvgSchedulingTable, r.MaxSchedulingTable)
			continue
		}
		fmt.Printf("time=%d mode=%s scheduled=%d/%d ingress=%.4fMbit/s frames=%d max_queue=%d avg_table=%.2f max_table=%d\n",
			r.Time, r.PlanningMode, r.FlowsScheduled, r.FlowsTotal, r.IngressTrafficMbps,
			r.NumberOfFrames, r.MaxQueueSize, r.AvgSchedulingTable, r.MaxSchedulingTable)
	}
}
