package rules

import "github.com/jtroost/packmule/internal/model"

// Plan is the outcome of reconciling a trip's existing items against the
// item set the rules would generate for new trip attributes.
type Plan struct {
	// Add lists master items to materialize as new trip items.
	Add []model.MasterItem
	// RemoveIDs lists trip item ids to drop: unchecked, master-derived
	// items that no longer match. Checked items are always retained.
	RemoveIDs map[string]bool
}

// Added and Removed report the counts surfaced to the user.
func (p Plan) Added() int   { return len(p.Add) }
func (p Plan) Removed() int { return len(p.RemoveIDs) }

// Reconcile computes the additive/subtractive patch that converges a trip's
// items to the given context without discarding user progress:
//
//   - master items matching the new context but missing from the trip are
//     added;
//   - unchecked derived items that stopped matching are removed;
//   - checked items, custom items, and orphaned items (their master item no
//     longer exists) are never touched.
//
// Linear in the number of master items plus trip items.
func Reconcile(masterItems []model.MasterItem, tripItems []model.TripItem, ctx TripContext) Plan {
	eligible := make(map[string]bool, len(masterItems))
	for _, mi := range masterItems {
		if ShouldInclude(mi, ctx) {
			eligible[mi.ID] = true
		}
	}

	known := make(map[string]bool, len(masterItems))
	for _, mi := range masterItems {
		known[mi.ID] = true
	}

	existing := make(map[string]bool, len(tripItems))
	for _, ti := range tripItems {
		if ti.Derived() {
			existing[ti.MasterItemID] = true
		}
	}

	plan := Plan{RemoveIDs: make(map[string]bool)}
	for _, mi := range masterItems {
		if eligible[mi.ID] && !existing[mi.ID] {
			plan.Add = append(plan.Add, mi)
		}
	}

	for _, ti := range tripItems {
		if !ti.Derived() || ti.Checked {
			continue
		}
		// An orphaned reference (master item deleted) is custom-equivalent:
		// never auto-removed, never re-added.
		if !known[ti.MasterItemID] {
			continue
		}
		if !eligible[ti.MasterItemID] {
			plan.RemoveIDs[ti.ID] = true
		}
	}

	return plan
}
