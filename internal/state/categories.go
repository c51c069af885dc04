package state

import (
	"github.com/google/uuid"

	"github.com/jtroost/packmule/internal/model"
)

// AddCategory appends a category at the end of the ordering and returns its
// id.
func (s *Store) AddCategory(name, icon string) string {
	id := uuid.NewString()
	s.mutate(func(st *State) {
		st.Categories = append(st.Categories, model.Category{
			ID:        id,
			Name:      name,
			Icon:      icon,
			SortOrder: maxCategorySortOrder(st.Categories) + 1,
		})
	})
	return id
}

// UpdateCategory renames a category and/or changes its icon.
func (s *Store) UpdateCategory(id, name, icon string) {
	s.mutate(func(st *State) {
		for i := range st.Categories {
			if st.Categories[i].ID == id {
				st.Categories[i].Name = name
				st.Categories[i].Icon = icon
				return
			}
		}
	})
}

// DeleteCategory removes a category and cascades delete of its master
// items. Trip items keep their category reference: they are trip-scoped
// history and outlive master-list edits. Undoable.
func (s *Store) DeleteCategory(id string) {
	s.mutate(func(st *State) {
		var removed *model.Category
		kept := st.Categories[:0]
		for _, c := range st.Categories {
			if c.ID == id {
				c := c
				removed = &c
				continue
			}
			kept = append(kept, c)
		}
		if removed == nil {
			return
		}
		st.Categories = append([]model.Category(nil), kept...)

		var removedItems []model.MasterItem
		keptItems := make([]model.MasterItem, 0, len(st.MasterItems))
		for _, mi := range st.MasterItems {
			if mi.CategoryID == id {
				removedItems = append(removedItems, mi)
				continue
			}
			keptItems = append(keptItems, mi)
		}
		st.MasterItems = keptItems

		s.rememberUndo(func(st *State) {
			st.Categories = append(st.Categories, *removed)
			st.MasterItems = append(st.MasterItems, removedItems...)
		})
	})
}

// ReorderCategories applies a new ordering: each listed id gets its index
// as sortOrder. Ids not listed keep their previous sortOrder.
func (s *Store) ReorderCategories(orderedIDs []string) {
	index := make(map[string]int, len(orderedIDs))
	for i, id := range orderedIDs {
		index[id] = i
	}
	s.mutate(func(st *State) {
		for i := range st.Categories {
			if pos, ok := index[st.Categories[i].ID]; ok {
				st.Categories[i].SortOrder = pos
			}
		}
	})
}
