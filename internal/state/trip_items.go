package state

import (
	"strings"

	"github.com/google/uuid"

	"github.com/jtroost/packmule/internal/catalog"
	"github.com/jtroost/packmule/internal/model"
)

// AddTripItem adds a custom (non-derived) item to a trip. When categoryID
// is empty the name is run through the catalog categorizer. Returns the
// new item id.
func (s *Store) AddTripItem(tripID, name, categoryID string, quantity int, notes string) string {
	if categoryID == "" {
		categoryID = catalog.Categorize(name)
	}
	if quantity < 1 {
		quantity = 1
	}
	id := uuid.NewString()
	s.mutate(func(st *State) {
		st.TripItems = append(st.TripItems, model.TripItem{
			ID:         id,
			TripID:     tripID,
			Name:       name,
			CategoryID: categoryID,
			Quantity:   quantity,
			Notes:      notes,
			IsCustom:   true,
			SortOrder:  maxTripSortOrder(st.TripItems, tripID, categoryID) + 1,
		})
	})
	return id
}

// UpdateTripItem applies fn to the item with the given id. Changes to the
// linked field set (checked, quantity, notes, purchased) are mirrored onto
// the item's shopping counterpart, in either link direction, within the
// same mutation. Unlinked fields never propagate.
func (s *Store) UpdateTripItem(id string, fn func(*model.TripItem)) {
	s.mutate(func(st *State) {
		var item *model.TripItem
		for i := range st.TripItems {
			if st.TripItems[i].ID == id {
				item = &st.TripItems[i]
				break
			}
		}
		if item == nil {
			return
		}
		before := *item
		fn(item)

		counterpart := findCounterpart(st, id, item.SourceItemID)
		if counterpart == nil {
			return
		}
		if item.Checked != before.Checked {
			counterpart.Checked = item.Checked
		}
		if item.Quantity != before.Quantity {
			counterpart.Quantity = item.Quantity
		}
		if item.Notes != before.Notes {
			counterpart.Notes = item.Notes
		}
		if item.Purchased != before.Purchased {
			counterpart.Purchased = item.Purchased
		}
	})
}

// ToggleTripItem flips the checked flag, mirroring to any counterpart.
func (s *Store) ToggleTripItem(id string) {
	s.UpdateTripItem(id, func(ti *model.TripItem) {
		ti.Checked = !ti.Checked
	})
}

// TogglePurchased flips the purchased flag, mirroring to any counterpart.
func (s *Store) TogglePurchased(id string) {
	s.UpdateTripItem(id, func(ti *model.TripItem) {
		ti.Purchased = !ti.Purchased
	})
}

// DeleteTripItem removes one item from its trip. A surviving counterpart
// has its link cleared and lives on independently. Undoable, link included.
func (s *Store) DeleteTripItem(id string) {
	s.mutate(func(st *State) {
		var removed *model.TripItem
		kept := make([]model.TripItem, 0, len(st.TripItems))
		for _, ti := range st.TripItems {
			if ti.ID == id {
				ti := ti
				removed = &ti
				continue
			}
			kept = append(kept, ti)
		}
		if removed == nil {
			return
		}
		st.TripItems = kept

		var unlinkedID string
		for i := range st.TripItems {
			if st.TripItems[i].SourceItemID == id {
				unlinkedID = st.TripItems[i].ID
				st.TripItems[i].SourceItemID = ""
				break
			}
		}

		s.rememberUndo(func(st *State) {
			st.TripItems = append(st.TripItems, *removed)
			for i := range st.TripItems {
				if st.TripItems[i].ID == unlinkedID {
					st.TripItems[i].SourceItemID = id
				}
			}
		})
	})
}

// SaveTripItemToMaster promotes a custom trip item into the master list so
// future trips can pick it up. The trip item becomes a derived item linked
// to the new template. Returns the master item id, or "" when the item is
// missing or already derived.
func (s *Store) SaveTripItemToMaster(id string) string {
	masterID := ""
	s.mutate(func(st *State) {
		var item *model.TripItem
		for i := range st.TripItems {
			if st.TripItems[i].ID == id {
				item = &st.TripItems[i]
				break
			}
		}
		if item == nil || !item.IsCustom || item.MasterItemID != "" {
			return
		}
		masterID = uuid.NewString()
		st.MasterItems = append(st.MasterItems, model.MasterItem{
			ID:         masterID,
			Name:       item.Name,
			CategoryID: item.CategoryID,
			Quantity:   item.Quantity,
			SortOrder:  maxMasterSortOrder(st.MasterItems, item.CategoryID) + 1,
		})
		item.MasterItemID = masterID
		item.IsCustom = false
	})
	return masterID
}

// UncheckAllTripItems resets every checked flag on a trip, typically when
// re-using a packed list.
func (s *Store) UncheckAllTripItems(tripID string) {
	s.mutate(func(st *State) {
		for i := range st.TripItems {
			if st.TripItems[i].TripID == tripID {
				st.TripItems[i].Checked = false
			}
		}
	})
}

// ReorderTripItems applies a new ordering within one category of a trip.
func (s *Store) ReorderTripItems(tripID, categoryID string, orderedIDs []string) {
	index := make(map[string]int, len(orderedIDs))
	for i, id := range orderedIDs {
		index[id] = i
	}
	s.mutate(func(st *State) {
		for i := range st.TripItems {
			ti := &st.TripItems[i]
			if ti.TripID != tripID || ti.CategoryID != categoryID {
				continue
			}
			if pos, ok := index[ti.ID]; ok {
				ti.SortOrder = pos
			}
		}
	})
}

// CopyItemToShopping creates a shopping-category mirror of a trip item,
// linked back to its source. No-ops: the item is itself a shopping item, a
// mirror for it already exists, or an unlinked shopping item with the same
// name (case-insensitive) is already on the trip. Returns the mirror id or
// "".
func (s *Store) CopyItemToShopping(id string) string {
	mirrorID := ""
	s.mutate(func(st *State) {
		var item *model.TripItem
		for i := range st.TripItems {
			if st.TripItems[i].ID == id {
				item = &st.TripItems[i]
				break
			}
		}
		if item == nil {
			return
		}
		shoppingCat := shoppingCategoryID(st.Categories)
		if item.CategoryID == shoppingCat {
			return
		}
		lowerName := strings.ToLower(item.Name)
		for _, ti := range st.TripItems {
			if ti.TripID != item.TripID || ti.CategoryID != shoppingCat {
				continue
			}
			if ti.SourceItemID == id {
				return
			}
			if strings.ToLower(ti.Name) == lowerName {
				return
			}
		}
		mirrorID = uuid.NewString()
		st.TripItems = append(st.TripItems, model.TripItem{
			ID:           mirrorID,
			TripID:       item.TripID,
			Name:         item.Name,
			CategoryID:   shoppingCat,
			SourceItemID: id,
			Quantity:     item.Quantity,
			Notes:        item.Notes,
			IsCustom:     true,
			SortOrder:    maxTripSortOrder(st.TripItems, item.TripID, shoppingCat) + 1,
		})
	})
	return mirrorID
}

// findCounterpart resolves a mirror link from either end: the shopping
// mirror (sourceItemID set) or the origin item another mirror points at.
func findCounterpart(st *State, id, sourceItemID string) *model.TripItem {
	for i := range st.TripItems {
		other := &st.TripItems[i]
		if sourceItemID != "" && other.ID == sourceItemID {
			return other
		}
		if other.SourceItemID == id {
			return other
		}
	}
	return nil
}

// shoppingCategoryID returns the trip's shopping category, preferring the
// well-known id and falling back to a name match for imported data.
func shoppingCategoryID(categories []model.Category) string {
	for _, c := range categories {
		if c.ID == model.ShoppingCategoryID {
			return c.ID
		}
	}
	for _, c := range categories {
		if c.IsShopping() {
			return c.ID
		}
	}
	return model.ShoppingCategoryID
}

func maxTripSortOrder(items []model.TripItem, tripID, categoryID string) int {
	max := -1
	for _, ti := range items {
		if ti.TripID == tripID && ti.CategoryID == categoryID && ti.SortOrder > max {
			max = ti.SortOrder
		}
	}
	return max
}
