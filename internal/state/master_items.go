package state

import (
	"github.com/google/uuid"

	"github.com/jtroost/packmule/internal/model"
)

// AddMasterItem adds a template row. The id and per-category sortOrder are
// assigned here; any values on the argument are ignored.
func (s *Store) AddMasterItem(item model.MasterItem) string {
	item.ID = uuid.NewString()
	s.mutate(func(st *State) {
		item.SortOrder = maxMasterSortOrder(st.MasterItems, item.CategoryID) + 1
		st.MasterItems = append(st.MasterItems, item)
	})
	return item.ID
}

// UpdateMasterItem applies fn to the item with the given id, if present.
func (s *Store) UpdateMasterItem(id string, fn func(*model.MasterItem)) {
	s.mutate(func(st *State) {
		for i := range st.MasterItems {
			if st.MasterItems[i].ID == id {
				fn(&st.MasterItems[i])
				return
			}
		}
	})
}

// DeleteMasterItem removes a template row. Trip items derived from it stay
// on their trips as orphans. Undoable.
func (s *Store) DeleteMasterItem(id string) {
	s.mutate(func(st *State) {
		for i, mi := range st.MasterItems {
			if mi.ID == id {
				removed := mi
				st.MasterItems = append(st.MasterItems[:i:i], st.MasterItems[i+1:]...)
				s.rememberUndo(func(st *State) {
					st.MasterItems = append(st.MasterItems, removed)
				})
				return
			}
		}
	})
}

// ReorderMasterItems applies a new ordering within one category.
func (s *Store) ReorderMasterItems(categoryID string, orderedIDs []string) {
	index := make(map[string]int, len(orderedIDs))
	for i, id := range orderedIDs {
		index[id] = i
	}
	s.mutate(func(st *State) {
		for i := range st.MasterItems {
			if st.MasterItems[i].CategoryID != categoryID {
				continue
			}
			if pos, ok := index[st.MasterItems[i].ID]; ok {
				st.MasterItems[i].SortOrder = pos
			}
		}
	})
}

func maxMasterSortOrder(items []model.MasterItem, categoryID string) int {
	max := -1
	for _, mi := range items {
		if mi.CategoryID == categoryID && mi.SortOrder > max {
			max = mi.SortOrder
		}
	}
	return max
}
