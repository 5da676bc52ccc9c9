package fleet

import (
	"fmt"
	"strings"

	"github.com/pollenops/pollenguard/core/model"
)

// aggregate folds the per-vehicle rows into the fleet decision. The wash
// and hold partitions in the rationale keep insertion order.
func (e *Evaluator) aggregate(results []VehicleResult) Report {
	var washed, held []string
	for _, r := range results {
		if r.Action.Wash() {
			washed = append(washed, r.Vehicle.Label())
		} else {
			held = append(held, r.Vehicle.Label())
		}
	}

	var dec model.Decision
	switch {
	case len(held) == 0:
		dec = model.Decision{
			Tier:      model.TierLow,
			Label:     "WASH ALL",
			Rationale: "All vehicles are clear to wash.",
		}
	case len(washed) == 0:
		dec = model.Decision{
			Tier:      model.TierHigh,
			Label:     "HOLD WASH",
			Rationale: "One or more vehicles require washing to be held.",
		}
	default:
		dec = model.Decision{
			Tier:  model.TierMixed,
			Label: "MIXED FLEET",
			Rationale: fmt.Sprintf("Wash: %s. Hold: %s.",
				strings.Join(washed, ", "), strings.Join(held, ", ")),
		}
	}

	return Report{
		Decision:          dec,
		Vehicles:          results,
		WashCount:         len(washed),
		HoldCount:         len(held),
		WaterSavedGallons: len(held) * e.cfg.GallonsPerVehicle,
		Pollen:            summarize(results),
	}
}
