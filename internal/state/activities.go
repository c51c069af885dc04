package state

import (
	"github.com/google/uuid"

	"github.com/jtroost/packmule/internal/model"
)

// AddCustomActivity registers a user-defined activity tag and returns its
// id (prefixed so it can never collide with a built-in tag).
func (s *Store) AddCustomActivity(name, icon string) string {
	id := "custom_" + uuid.NewString()
	s.mutate(func(st *State) {
		st.CustomActivities = append(st.CustomActivities, model.CustomActivity{
			ID:   id,
			Name: name,
			Icon: icon,
		})
	})
	return id
}

// UpdateCustomActivity renames a custom activity and/or changes its icon.
func (s *Store) UpdateCustomActivity(id, name, icon string) {
	s.mutate(func(st *State) {
		for i := range st.CustomActivities {
			if st.CustomActivities[i].ID == id {
				st.CustomActivities[i].Name = name
				st.CustomActivities[i].Icon = icon
				return
			}
		}
	})
}

// DeleteCustomActivity removes the activity and strips its id from every
// master-item condition set. Undoable, including the stripped references.
func (s *Store) DeleteCustomActivity(id string) {
	s.mutate(func(st *State) {
		var removed *model.CustomActivity
		kept := st.CustomActivities[:0]
		for _, ca := range st.CustomActivities {
			if ca.ID == id {
				ca := ca
				removed = &ca
				continue
			}
			kept = append(kept, ca)
		}
		if removed == nil {
			return
		}
		st.CustomActivities = append([]model.CustomActivity(nil), kept...)

		// Track which items referenced the activity so undo can restore the
		// conditions exactly.
		var referencing []string
		aid := model.ActivityID(id)
		for i := range st.MasterItems {
			acts := st.MasterItems[i].Conditions.Activities
			filtered := acts[:0]
			had := false
			for _, a := range acts {
				if a == aid {
					had = true
					continue
				}
				filtered = append(filtered, a)
			}
			if had {
				referencing = append(referencing, st.MasterItems[i].ID)
				st.MasterItems[i].Conditions.Activities = append([]model.ActivityID(nil), filtered...)
			}
		}

		s.rememberUndo(func(st *State) {
			st.CustomActivities = append(st.CustomActivities, *removed)
			for i := range st.MasterItems {
				for _, refID := range referencing {
					if st.MasterItems[i].ID == refID {
						st.MasterItems[i].Conditions.Activities = append(st.MasterItems[i].Conditions.Activities, aid)
					}
				}
			}
		})
	})
}
