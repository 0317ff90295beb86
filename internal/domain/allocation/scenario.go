// Package allocation implements the serial-dictatorship assignment engine
// and its what-if scenarios. The package is pure: no I/O, no clocks, no
// shared state; it consumes already-fetched submissions and returns results.
package allocation

// Scenario codes accepted by the engine.
const (
	// ScenarioCurrent allocates against real submissions only.
	ScenarioCurrent = 0
	// ScenarioRemainingUsers fabricates users for every missing priority
	// slot below the target before allocating.
	ScenarioRemainingUsers = 1
	// ScenarioBlockedDestinations marks caller-selected destinations
	// unavailable on top of the real assignments.
	ScenarioBlockedDestinations = 2
	// ScenarioPreferenceDepth treats the top-N preferences of every
	// higher-priority user as consumed when computing backup lists.
	ScenarioPreferenceDepth = 3
)

// Params is a scenario code resolved into concrete engine switches.
type Params struct {
	// CompetitionDepth is how many top preferences of each higher-priority
	// user count as pre-consumed in the backup calculation. It never
	// affects the primary assignment.
	CompetitionDepth int

	// IncludeSyntheticUsers enables the missing-slot fill-in.
	IncludeSyntheticUsers bool

	// BlockSpecificItems enables the destination filter.
	BlockSpecificItems bool
}

// ParamsFor maps a scenario code and the caller's competition depth to
// engine parameters. Unknown codes resolve to the current-state scenario;
// bad input is not an error here, the upstream layer owns validation.
func ParamsFor(scenario, competitionDepth int) Params {
	switch scenario {
	case ScenarioRemainingUsers:
		return Params{IncludeSyntheticUsers: true}
	case ScenarioBlockedDestinations:
		return Params{BlockSpecificItems: true}
	case ScenarioPreferenceDepth:
		if competitionDepth < 0 {
			competitionDepth = 0
		}
		return Params{CompetitionDepth: competitionDepth}
	default:
		return Params{}
	}
}
