package state

import (
	"time"

	"github.com/google/uuid"

	"github.com/jtroost/packmule/internal/model"
	"github.com/jtroost/packmule/internal/rules"
)

// CreateTripParams carries the attributes for a new trip.
type CreateTripParams struct {
	Name        string
	Destination string
	StartDate   string
	EndDate     string
	Temperature model.Temperature
	Duration    model.Duration
	PeopleCount int
	Activities  []model.ActivityID

	// Group sharing. When the store has an active group and Share is true,
	// the trip snapshots the current membership into its sharing fields.
	CreatorID   string
	Share       bool
	Permissions map[string]model.TripPermission
}

// CreateTrip creates a trip and materializes every master item eligible
// under its attributes. Returns the new trip id.
func (s *Store) CreateTrip(params CreateTripParams) string {
	tripID := uuid.NewString()
	ctx := rules.TripContext{
		Temperature: params.Temperature,
		Duration:    params.Duration,
		PeopleCount: params.PeopleCount,
		Activities:  params.Activities,
	}

	s.mutate(func(st *State) {
		trip := model.Trip{
			ID:          tripID,
			Name:        params.Name,
			Destination: params.Destination,
			StartDate:   params.StartDate,
			EndDate:     params.EndDate,
			Temperature: params.Temperature,
			Duration:    params.Duration,
			PeopleCount: params.PeopleCount,
			Activities:  params.Activities,
			Status:      model.StatusPlanning,
			CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		}

		if group := st.CurrentGroup; group != nil && params.Share {
			trip.GroupID = group.ID
			trip.CreatorID = params.CreatorID
			trip.SharedWith = group.MemberUIDs()
			if params.Permissions != nil {
				trip.Permissions = params.Permissions
			} else {
				perms := make(map[string]model.TripPermission, len(group.Members))
				for uid := range group.Members {
					perms[uid] = model.PermissionView
				}
				trip.Permissions = perms
			}
		}

		sortCounter := 0
		var items []model.TripItem
		for _, mi := range st.MasterItems {
			if !rules.ShouldInclude(mi, ctx) {
				continue
			}
			items = append(items, model.TripItem{
				ID:           uuid.NewString(),
				TripID:       tripID,
				MasterItemID: mi.ID,
				Name:         mi.Name,
				CategoryID:   mi.CategoryID,
				Quantity:     rules.EffectiveQuantity(mi, params.PeopleCount),
				SortOrder:    sortCounter,
			})
			sortCounter++
		}

		st.Trips = append(st.Trips, trip)
		st.TripItems = append(st.TripItems, items...)
	})

	return tripID
}

// UpdateTrip applies fn to the trip with the given id, if present.
// Attribute edits that should re-derive the item set go through
// RegenerateTripItems instead; sync never calls this.
func (s *Store) UpdateTrip(id string, fn func(*model.Trip)) {
	s.mutate(func(st *State) {
		for i := range st.Trips {
			if st.Trips[i].ID == id {
				fn(&st.Trips[i])
				return
			}
		}
	})
}

// DeleteTrip removes a trip and all of its items. Undoable.
func (s *Store) DeleteTrip(id string) {
	s.mutate(func(st *State) {
		var removed *model.Trip
		kept := st.Trips[:0]
		for _, t := range st.Trips {
			if t.ID == id {
				t := t
				removed = &t
				continue
			}
			kept = append(kept, t)
		}
		if removed == nil {
			return
		}
		st.Trips = append([]model.Trip(nil), kept...)

		var removedItems []model.TripItem
		keptItems := make([]model.TripItem, 0, len(st.TripItems))
		for _, ti := range st.TripItems {
			if ti.TripID == id {
				removedItems = append(removedItems, ti)
				continue
			}
			keptItems = append(keptItems, ti)
		}
		st.TripItems = keptItems

		s.rememberUndo(func(st *State) {
			st.Trips = append(st.Trips, *removed)
			st.TripItems = append(st.TripItems, removedItems...)
		})
	})
}

// CopyTrip clones a trip under a new name with all items unchecked. Mirror
// links are remapped onto the cloned items so they stay intra-trip.
// Returns the new trip id, or "" if the source does not exist.
func (s *Store) CopyTrip(tripID, newName string) string {
	newTripID := uuid.NewString()
	found := false

	s.mutate(func(st *State) {
		var original *model.Trip
		for i := range st.Trips {
			if st.Trips[i].ID == tripID {
				original = &st.Trips[i]
				break
			}
		}
		if original == nil {
			return
		}
		found = true

		clone := *original
		clone.ID = newTripID
		clone.Name = newName
		clone.Status = model.StatusPlanning
		clone.CopiedFromTrip = tripID
		clone.CreatedAt = time.Now().UTC().Format(time.RFC3339)

		idMap := make(map[string]string)
		var newItems []model.TripItem
		for _, ti := range st.TripItems {
			if ti.TripID != tripID {
				continue
			}
			item := ti
			item.ID = uuid.NewString()
			item.TripID = newTripID
			item.Checked = false
			idMap[ti.ID] = item.ID
			newItems = append(newItems, item)
		}
		for i := range newItems {
			if newItems[i].SourceItemID != "" {
				newItems[i].SourceItemID = idMap[newItems[i].SourceItemID]
			}
		}

		st.Trips = append(st.Trips, clone)
		st.TripItems = append(st.TripItems, newItems...)
	})

	if !found {
		return ""
	}
	return newTripID
}

// RegenerateTripItems reconciles a trip's item set after its attributes
// changed, updating the trip attributes and applying the rule engine's
// plan. New items continue the sortOrder after the current per-category
// maximum; existing items are never renumbered. Returns the add/remove
// counts for user feedback.
func (s *Store) RegenerateTripItems(tripID string, ctx rules.TripContext) (added, removed int) {
	s.mutate(func(st *State) {
		var trip *model.Trip
		for i := range st.Trips {
			if st.Trips[i].ID == tripID {
				trip = &st.Trips[i]
				break
			}
		}
		if trip == nil {
			return
		}
		trip.Temperature = ctx.Temperature
		trip.Duration = ctx.Duration
		trip.PeopleCount = ctx.PeopleCount
		trip.Activities = ctx.Activities

		var tripItems []model.TripItem
		for _, ti := range st.TripItems {
			if ti.TripID == tripID {
				tripItems = append(tripItems, ti)
			}
		}

		plan := rules.Reconcile(st.MasterItems, tripItems, ctx)

		// Per-category sortOrder high-water marks over surviving items.
		maxOrders := make(map[string]int)
		for _, ti := range tripItems {
			if plan.RemoveIDs[ti.ID] {
				continue
			}
			if cur, ok := maxOrders[ti.CategoryID]; !ok || ti.SortOrder > cur {
				maxOrders[ti.CategoryID] = ti.SortOrder
			}
		}

		var newItems []model.TripItem
		for _, mi := range plan.Add {
			order := 0
			if cur, ok := maxOrders[mi.CategoryID]; ok {
				order = cur + 1
			}
			maxOrders[mi.CategoryID] = order
			newItems = append(newItems, model.TripItem{
				ID:           uuid.NewString(),
				TripID:       tripID,
				MasterItemID: mi.ID,
				Name:         mi.Name,
				CategoryID:   mi.CategoryID,
				Quantity:     rules.EffectiveQuantity(mi, ctx.PeopleCount),
				SortOrder:    order,
			})
		}

		kept := make([]model.TripItem, 0, len(st.TripItems))
		for _, ti := range st.TripItems {
			if plan.RemoveIDs[ti.ID] {
				continue
			}
			kept = append(kept, ti)
		}
		st.TripItems = append(kept, newItems...)

		added = plan.Added()
		removed = plan.Removed()
	})
	return added, removed
}
