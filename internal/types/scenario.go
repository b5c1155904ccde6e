package types

import "fmt"

// ScenarioType is one of the five fixed sound scenarios the exercise can
// present. Ordinal order (declaration order) is the canonical scenario id
// used for deterministic tie-breaks.
type ScenarioType string

const (
	ScenarioAmbulance ScenarioType = "ambulance"
	ScenarioPolice    ScenarioType = "police"
	ScenarioFiretruck ScenarioType = "firetruck"
	ScenarioTrain     ScenarioType = "train"
	ScenarioIceCream  ScenarioType = "ice_cream"
)

var allScenarios = []ScenarioType{
	ScenarioAmbulance,
	ScenarioPolice,
	ScenarioFiretruck,
	ScenarioTrain,
	ScenarioIceCream,
}

func AllScenarios() []ScenarioType {
	out := make([]ScenarioType, len(allScenarios))
	copy(out, allScenarios)
	return out
}

// ScenarioOrdinal returns the canonical id of s, or -1 if s is unknown.
func ScenarioOrdinal(s ScenarioType) int {
	for i, v := range allScenarios {
		if v == s {
			return i
		}
	}
	return -1
}

func ParseScenario(raw string) (ScenarioType, error) {
	s := ScenarioType(raw)
	if ScenarioOrdinal(s) < 0 {
		return "", fmt.Errorf("unknown scenario_type %q", raw)
	}
	return s, nil
}
