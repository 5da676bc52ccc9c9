package model

// Tier is the pollen severity classification of a reading, plus the
// synthetic Mixed tier used at fleet level when actions disagree.
type Tier int

const (
	TierLow Tier = iota
	TierModerate
	TierHigh
	TierMixed
)

// String returns the tier name used in reports and metrics labels.
func (t Tier) String() string {
	switch t {
	case TierLow:
		return "LOW"
	case TierModerate:
		return "MODERATE"
	case TierHigh:
		return "HIGH"
	case TierMixed:
		return "MIXED"
	}
	return "UNKNOWN"
}

// Style maps a tier to its display style. This is the single place the
// red/yellow/green convention lives.
func (t Tier) Style() string {
	switch t {
	case TierLow:
		return "green"
	case TierModerate:
		return "yellow"
	default:
		return "red"
	}
}

// Action is the recommended handling for a single vehicle.
type Action int

const (
	ActionWash Action = iota
	ActionHold
	ActionDoNotWash
)

// String returns the action name shown in the fleet action table.
func (a Action) String() string {
	switch a {
	case ActionWash:
		return "WASH"
	case ActionHold:
		return "HOLD"
	case ActionDoNotWash:
		return "DO NOT WASH"
	}
	return "UNKNOWN"
}

// Wash reports whether the action clears the vehicle for washing today.
func (a Action) Wash() bool { return a == ActionWash }

// Decision is a tier paired with its operator-facing label and rationale.
type Decision struct {
	Tier      Tier   `json:"tier"`
	Label     string `json:"label"`
	Rationale string `json:"rationale"`
}
