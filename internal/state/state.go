// Package state holds the client's single source of truth: every entity
// collection plus the transient group context. All mutations go through the
// Store, are applied synchronously, and fan out to subscribers as full
// snapshots.
package state

import "github.com/jtroost/packmule/internal/model"

// State is the complete application state. The group-derived fields
// (CurrentGroup through NewMemberUIDs) are transient: they are re-fetched on
// every sync and never written to the durable slot.
type State struct {
	Categories       []model.Category
	MasterItems      []model.MasterItem
	Trips            []model.Trip
	TripItems        []model.TripItem
	CustomActivities []model.CustomActivity
	Initialized      bool

	// Shared-trip notification tracking (persisted).
	SeenSharedTripIDs []string

	// Transient group context.
	CurrentGroup        *model.Group
	SharedTrips         []model.Trip
	SharedTripItems     []model.TripItem
	PersonalBackupItems []model.MasterItem
	NewMemberUIDs       []string
}

// Clone returns a deep copy of the state. Subscribers and callers always
// receive clones so no goroutine can observe a partially applied mutation.
func (s State) Clone() State {
	out := s
	out.Categories = append([]model.Category(nil), s.Categories...)
	out.MasterItems = cloneMasterItems(s.MasterItems)
	out.Trips = cloneTrips(s.Trips)
	out.TripItems = append([]model.TripItem(nil), s.TripItems...)
	out.CustomActivities = append([]model.CustomActivity(nil), s.CustomActivities...)
	out.SeenSharedTripIDs = append([]string(nil), s.SeenSharedTripIDs...)
	out.SharedTrips = cloneTrips(s.SharedTrips)
	out.SharedTripItems = append([]model.TripItem(nil), s.SharedTripItems...)
	out.PersonalBackupItems = cloneMasterItems(s.PersonalBackupItems)
	out.NewMemberUIDs = append([]string(nil), s.NewMemberUIDs...)
	if s.CurrentGroup != nil {
		g := *s.CurrentGroup
		g.Members = make(map[string]model.GroupMember, len(s.CurrentGroup.Members))
		for uid, m := range s.CurrentGroup.Members {
			g.Members[uid] = m
		}
		out.CurrentGroup = &g
	}
	return out
}

func cloneMasterItems(items []model.MasterItem) []model.MasterItem {
	if items == nil {
		return nil
	}
	out := make([]model.MasterItem, len(items))
	for i, mi := range items {
		out[i] = mi
		out[i].Conditions.Weather = append([]model.Temperature(nil), mi.Conditions.Weather...)
		out[i].Conditions.Activities = append([]model.ActivityID(nil), mi.Conditions.Activities...)
	}
	return out
}

func cloneTrips(trips []model.Trip) []model.Trip {
	if trips == nil {
		return nil
	}
	out := make([]model.Trip, len(trips))
	for i, t := range trips {
		out[i] = t
		out[i].Activities = append([]model.ActivityID(nil), t.Activities...)
		out[i].SharedWith = append([]string(nil), t.SharedWith...)
		if t.Permissions != nil {
			perms := make(map[string]model.TripPermission, len(t.Permissions))
			for uid, p := range t.Permissions {
				perms[uid] = p
			}
			out[i].Permissions = perms
		}
	}
	return out
}

// Persisted is the durable subset of the state written to the on-device
// slot. Group-derived fields are excluded on purpose: they may be stale or
// reflect membership the user no longer has, so they are always re-fetched.
type Persisted struct {
	Categories        []model.Category       `json:"categories"`
	MasterItems       []model.MasterItem     `json:"masterItems"`
	Trips             []model.Trip           `json:"trips"`
	TripItems         []model.TripItem       `json:"tripItems"`
	CustomActivities  []model.CustomActivity `json:"customActivities"`
	Initialized       bool                   `json:"initialized"`
	SeenSharedTripIDs []string               `json:"seenSharedTripIds"`
}

// Persisted extracts the durable subset from a state snapshot.
func (s State) Persisted() Persisted {
	return Persisted{
		Categories:        s.Categories,
		MasterItems:       s.MasterItems,
		Trips:             s.Trips,
		TripItems:         s.TripItems,
		CustomActivities:  s.CustomActivities,
		Initialized:       s.Initialized,
		SeenSharedTripIDs: s.SeenSharedTripIDs,
	}
}

// FromPersisted builds an in-memory state from a loaded durable document.
func FromPersisted(p Persisted) State {
	return State{
		Categories:        p.Categories,
		MasterItems:       p.MasterItems,
		Trips:             p.Trips,
		TripItems:         p.TripItems,
		CustomActivities:  p.CustomActivities,
		Initialized:       p.Initialized,
		SeenSharedTripIDs: p.SeenSharedTripIDs,
	}
}
