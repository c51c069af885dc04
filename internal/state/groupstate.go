package state

import (
	"strings"

	"github.com/jtroost/packmule/internal/model"
)

// SetCurrentGroup installs (or clears, with nil) the active group context.
func (s *Store) SetCurrentGroup(group *model.Group) {
	s.mutate(func(st *State) {
		st.CurrentGroup = group
	})
}

// SetSharedTrips replaces the transient shared-trip collections fetched
// from the other members of the active group.
func (s *Store) SetSharedTrips(trips []model.Trip, items []model.TripItem) {
	s.mutate(func(st *State) {
		st.SharedTrips = trips
		st.SharedTripItems = items
	})
}

// UpdateSharedTripItem applies fn to one shared-trip item, for optimistic
// edits on another member's trip. No mirror propagation: shared items are
// the other member's data and sync back verbatim.
func (s *Store) UpdateSharedTripItem(id string, fn func(*model.TripItem)) {
	s.mutate(func(st *State) {
		for i := range st.SharedTripItems {
			if st.SharedTripItems[i].ID == id {
				fn(&st.SharedTripItems[i])
				return
			}
		}
	})
}

// SetPersonalBackupItems installs the member's pre-group master items, kept
// around so they can be offered back into the group list.
func (s *Store) SetPersonalBackupItems(items []model.MasterItem) {
	s.mutate(func(st *State) {
		st.PersonalBackupItems = items
	})
}

// AddPersonalItemToGroup copies one personal-backup item into the active
// master list, skipping it when an item with the same name (compared
// case-insensitively) already exists. Returns the new item id or "".
func (s *Store) AddPersonalItemToGroup(backupItemID string) string {
	newID := ""
	s.mutate(func(st *State) {
		var backup *model.MasterItem
		for i := range st.PersonalBackupItems {
			if st.PersonalBackupItems[i].ID == backupItemID {
				backup = &st.PersonalBackupItems[i]
				break
			}
		}
		if backup == nil {
			return
		}
		lower := strings.ToLower(backup.Name)
		for _, mi := range st.MasterItems {
			if strings.ToLower(mi.Name) == lower {
				return
			}
		}
		item := *backup
		item.SortOrder = maxMasterSortOrder(st.MasterItems, item.CategoryID) + 1
		st.MasterItems = append(st.MasterItems, item)
		newID = item.ID
	})
	return newID
}

// UnseenSharedTrips returns the shared trips not yet acknowledged by the
// user, for badge display.
func (s State) UnseenSharedTrips() []model.Trip {
	seen := make(map[string]bool, len(s.SeenSharedTripIDs))
	for _, id := range s.SeenSharedTripIDs {
		seen[id] = true
	}
	var out []model.Trip
	for _, t := range s.SharedTrips {
		if !seen[t.ID] {
			out = append(out, t)
		}
	}
	return out
}

// MarkSharedTripsSeen records every currently shared trip as acknowledged.
func (s *Store) MarkSharedTripsSeen() {
	s.mutate(func(st *State) {
		seen := make(map[string]bool, len(st.SeenSharedTripIDs))
		for _, id := range st.SeenSharedTripIDs {
			seen[id] = true
		}
		for _, t := range st.SharedTrips {
			if !seen[t.ID] {
				st.SeenSharedTripIDs = append(st.SeenSharedTripIDs, t.ID)
				seen[t.ID] = true
			}
		}
	})
}

// SetNewMemberUIDs installs the uids detected as having just joined the
// group, for transient "new member" notification.
func (s *Store) SetNewMemberUIDs(uids []string) {
	s.mutate(func(st *State) {
		st.NewMemberUIDs = uids
	})
}

// ClearNewMemberUIDs dismisses the new-member notification.
func (s *Store) ClearNewMemberUIDs() {
	s.mutate(func(st *State) {
		st.NewMemberUIDs = nil
	})
}

// ReplaceCollections swaps in a full set of entity collections, as when the
// remote copy wins on first sync or an import is applied. The initialized
// flag is forced on so the seed never overwrites the restored data.
func (s *Store) ReplaceCollections(p Persisted) {
	s.mutate(func(st *State) {
		st.Categories = p.Categories
		st.MasterItems = p.MasterItems
		st.Trips = p.Trips
		st.TripItems = p.TripItems
		st.CustomActivities = p.CustomActivities
		st.Initialized = true
	})
}
