// Package rules decides which master items belong on a trip's checklist and
// in what quantity. Everything here is a pure computation over in-memory
// values; callers own all I/O.
package rules

import "github.com/jtroost/packmule/internal/model"

// TripContext carries the trip attributes that drive item selection.
type TripContext struct {
	Temperature model.Temperature
	Duration    model.Duration
	PeopleCount int
	Activities  []model.ActivityID
}

// ShouldInclude reports whether a master item belongs on a trip with the
// given context. All present conditions must hold; the weather and activity
// lists use membership (OR) semantics; an item without conditions always
// matches.
func ShouldInclude(item model.MasterItem, ctx TripContext) bool {
	cond := item.Conditions

	if len(cond.Weather) > 0 && !containsTemperature(cond.Weather, ctx.Temperature) {
		return false
	}

	if len(cond.Activities) > 0 && !anyActivityOverlap(cond.Activities, ctx.Activities) {
		return false
	}

	if cond.MinPeople > 0 && ctx.PeopleCount < cond.MinPeople {
		return false
	}

	if cond.MinDuration != "" && ctx.Duration.Rank() < cond.MinDuration.Rank() {
		return false
	}

	return true
}

// EffectiveQuantity computes the packing quantity for a derived item:
// the item's base quantity, multiplied by the people count for per-person
// items. Stored on the trip item at generation time, never recomputed.
func EffectiveQuantity(item model.MasterItem, peopleCount int) int {
	base := item.BaseQuantity()
	if item.PerPerson {
		return base * peopleCount
	}
	return base
}

func containsTemperature(list []model.Temperature, t model.Temperature) bool {
	for _, v := range list {
		if v == t {
			return true
		}
	}
	return false
}

func anyActivityOverlap(wanted, have []model.ActivityID) bool {
	for _, w := range wanted {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}
	return false
}
