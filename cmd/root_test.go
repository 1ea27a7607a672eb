package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	sim "github.com/tsn-sched/tsn-sched/sim"
	"github.com/tsn-sched/tsn-sched/sim/netio"
	"github.com/tsn-sched/tsn-sched/sim/routing"
	"github.com/tsn-sched/tsn-sched/sim/solverprofile"
)

func TestRootCmd_RequiredFlagsAreRegistered(t *testing.T) {
	// GIVEN the root command with its registered flags
	network := rootCmd.Flags().Lookup("network")
	scenario := rootCmd.Flags().Lookup("scenario")

	// THEN both --network and --scenario exist (MarkFlagRequired needs them
	// registered first)
	assert.NotNil(t, network, "--network flag must be registered")
	assert.NotNil(t, scenario, "--scenario flag must be registered")
}

func TestRootCmd_AlgorithmDefaultIsH2S(t *testing.T) {
	flag := rootCmd.Flags().Lookup("algorithm")
	assert.NotNil(t, flag)
	assert.Equal(t, "H2S", flag.DefValue, "default algorithm must remain H2S")
}

func TestRootCmd_CandidatePathsDefaultIsPositive(t *testing.T) {
	flag := rootCmd.Flags().Lookup("candidate-paths")
	assert.NotNil(t, flag)
	assert.Equal(t, "5", flag.DefValue)
}

func TestNewOracle_KnownNames(t *testing.T) {
	assert.IsType(t, routing.DijkstraOverlap{}, newOracle("DIJKSTRA_OVERLAP"))
	assert.IsType(t, routing.KShortest{}, newOracle("K_SHORTEST"))
	assert.IsType(t, routing.KShortest{}, newOracle("k_shortest"), "oracle names are case-insensitive")
}

func TestNewOracle_UnknownNamePanics(t *testing.T) {
	assert.Panics(t, func() { newOracle("BOGUS") })
}

func TestNewSolver_KnownAlgorithms(t *testing.T) {
	assert.IsType(t, &sim.H2S{}, newSolver("H2S", 1, 4, 0, 100))
	assert.IsType(t, &sim.CELF{}, newSolver("CELF", 1, 4, 0, 100))
	assert.IsType(t, &sim.EDF{}, newSolver("EDF", 1, 4, 0, 100))
	assert.IsType(t, sim.FirstFit{}, newSolver("FF", 1, 4, 0, 100))
	assert.IsType(t, sim.Hermes{}, newSolver("HERMES", 1, 4, 0, 100))
}

func TestNewSolver_UnknownAlgorithmPanics(t *testing.T) {
	assert.Panics(t, func() { newSolver("BOGUS", 1, 4, 0, 100) })
}

func TestNewPlacement_KnownIndices(t *testing.T) {
	assert.NotNil(t, newPlacement(0, 100))
	assert.NotNil(t, newPlacement(1, 100))
	assert.NotNil(t, newPlacement(2, 100))
}

func TestNewPlacement_UnknownIndexPanics(t *testing.T) {
	assert.Panics(t, func() { newPlacement(9, 100) })
}

func TestConfigRatingOrDefault_FallsBackOnInvalid(t *testing.T) {
	assert.Equal(t, 1, configRatingOrDefault(0))
	assert.Equal(t, 2, configRatingOrDefault(2))
}

func TestConfigRatingOrDefaultCelf_FallsBackOnInvalid(t *testing.T) {
	assert.Equal(t, 1, configRatingOrDefaultCelf(0))
	assert.Equal(t, 3, configRatingOrDefaultCelf(3))
}

func TestScenarioPeriods_CollectsEveryAddedFlowsPeriod(t *testing.T) {
	steps := []netio.TimeStep{
		{Time: 0, AddFlows: []sim.Flow{{ID: 1, PeriodUs: 100}, {ID: 2, PeriodUs: 200}}},
		{Time: 100, AddFlows: []sim.Flow{{ID: 3, PeriodUs: 300}}},
	}
	periods := scenarioPeriods(steps)
	assert.ElementsMatch(t, []int64{100, 200, 300}, periods)
}

func TestApplyProfile_OverridesOnlySetFields(t *testing.T) {
	// GIVEN package-level defaults
	algorithm, routingName, configurationRating = "H2S", "DIJKSTRA_OVERLAP", 1
	candidatePathsOverride := 7

	// WHEN a profile overrides only algorithm and candidate paths
	applyProfile(&solverprofile.Profile{Algorithm: "CELF", CandidatePaths: &candidatePathsOverride})

	// THEN only the set fields change
	assert.Equal(t, "CELF", algorithm)
	assert.Equal(t, "DIJKSTRA_OVERLAP", routingName, "unset fields must leave the CLI default untouched")
	assert.Equal(t, 7, candidatePaths)
}
