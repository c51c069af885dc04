package state

import (
	"strings"
	"testing"

	"github.com/jtroost/packmule/internal/model"
	"github.com/jtroost/packmule/internal/rules"
)

type recordingPersister struct {
	saves []Persisted
}

func (p *recordingPersister) Save(doc Persisted) error {
	p.saves = append(p.saves, doc)
	return nil
}

func testMasterItems() []model.MasterItem {
	return []model.MasterItem{
		{ID: "m-tent", Name: "Tent", CategoryID: "cat-camping", Quantity: 1},
		{
			ID: "m-raincoat", Name: "Raincoat", CategoryID: "cat-clothing",
			Conditions: model.Conditions{Weather: []model.Temperature{model.TemperatureCold, model.TemperatureMixed}},
		},
		{
			ID: "m-socks", Name: "Socks", CategoryID: "cat-clothing",
			Quantity: 2, PerPerson: true,
		},
		{
			ID: "m-wetsuit", Name: "Wetsuit", CategoryID: "cat-activities",
			Conditions: model.Conditions{Activities: []model.ActivityID{model.ActivitySwimming}},
		},
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(State{
		Categories: []model.Category{
			{ID: "cat-camping", Name: "Camping", SortOrder: 0},
			{ID: "cat-clothing", Name: "Clothing", SortOrder: 1},
			{ID: "cat-activities", Name: "Activities", SortOrder: 2},
			{ID: model.ShoppingCategoryID, Name: "Shopping", SortOrder: 3},
		},
		MasterItems: testMasterItems(),
		Initialized: true,
	}, nil, nil)
}

func findTripItem(t *testing.T, st State, pred func(model.TripItem) bool) model.TripItem {
	t.Helper()
	for _, ti := range st.TripItems {
		if pred(ti) {
			return ti
		}
	}
	t.Fatal("trip item not found")
	return model.TripItem{}
}

func TestInitializeSeedsOnce(t *testing.T) {
	s := New(State{}, nil, nil)
	s.Initialize()

	first := s.Snapshot()
	if len(first.Categories) == 0 || len(first.MasterItems) == 0 {
		t.Fatal("expected seeded categories and master items")
	}
	if !first.Initialized {
		t.Fatal("initialized flag not set")
	}

	s.DeleteCategory(first.Categories[0].ID)
	s.Initialize()
	after := s.Snapshot()
	if len(after.Categories) != len(first.Categories)-1 {
		t.Fatalf("second Initialize reseeded: %d categories, want %d",
			len(after.Categories), len(first.Categories)-1)
	}
}

func TestCreateTripMaterializesEligibleItems(t *testing.T) {
	s := newTestStore(t)
	tripID := s.CreateTrip(CreateTripParams{
		Name:        "Summer lake week",
		Temperature: model.TemperatureHot,
		Duration:    model.DurationWeek,
		PeopleCount: 3,
		Activities:  []model.ActivityID{model.ActivitySwimming},
	})

	st := s.Snapshot()
	if len(st.Trips) != 1 || st.Trips[0].ID != tripID {
		t.Fatalf("trip not stored: %+v", st.Trips)
	}

	names := make(map[string]model.TripItem)
	for _, ti := range st.TripItems {
		names[ti.Name] = ti
	}
	if _, ok := names["Raincoat"]; ok {
		t.Error("raincoat included on a hot trip")
	}
	for _, want := range []string{"Tent", "Socks", "Wetsuit"} {
		if _, ok := names[want]; !ok {
			t.Errorf("missing expected item %q", want)
		}
	}
	if got := names["Socks"].Quantity; got != 6 {
		t.Errorf("per-person socks quantity = %d, want 6", got)
	}
	if got := names["Tent"].Quantity; got != 1 {
		t.Errorf("tent quantity = %d, want 1", got)
	}
}

func TestRegenerateTripItems(t *testing.T) {
	s := newTestStore(t)
	tripID := s.CreateTrip(CreateTripParams{
		Name:        "Coast weekend",
		Temperature: model.TemperatureHot,
		Duration:    model.DurationWeekend,
		PeopleCount: 2,
	})

	// Check the tent, then turn the weather cold and add swimming.
	tent := findTripItem(t, s.Snapshot(), func(ti model.TripItem) bool { return ti.Name == "Tent" })
	s.ToggleTripItem(tent.ID)

	added, removed := s.RegenerateTripItems(tripID, rules.TripContext{
		Temperature: model.TemperatureCold,
		Duration:    model.DurationWeekend,
		PeopleCount: 2,
		Activities:  []model.ActivityID{model.ActivitySwimming},
	})
	if added != 2 {
		t.Errorf("added = %d, want 2 (raincoat, wetsuit)", added)
	}
	if removed != 0 {
		t.Errorf("removed = %d, want 0", removed)
	}

	st := s.Snapshot()
	tent = findTripItem(t, st, func(ti model.TripItem) bool { return ti.Name == "Tent" })
	if !tent.Checked {
		t.Error("checked flag lost across regeneration")
	}

	// Back to hot: the unchecked derived extras go, the checked tent stays.
	_, removed = s.RegenerateTripItems(tripID, rules.TripContext{
		Temperature: model.TemperatureHot,
		Duration:    model.DurationWeekend,
		PeopleCount: 2,
	})
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}
	st = s.Snapshot()
	for _, ti := range st.TripItems {
		if ti.Name == "Raincoat" || ti.Name == "Wetsuit" {
			t.Errorf("ineligible unchecked item %q survived", ti.Name)
		}
	}
}

func TestRegenerateKeepsOrphanedItems(t *testing.T) {
	s := newTestStore(t)
	tripID := s.CreateTrip(CreateTripParams{
		Temperature: model.TemperatureHot,
		Duration:    model.DurationWeek,
		PeopleCount: 1,
	})
	s.DeleteMasterItem("m-tent")

	_, removed := s.RegenerateTripItems(tripID, rules.TripContext{
		Temperature: model.TemperatureHot,
		Duration:    model.DurationWeek,
		PeopleCount: 1,
	})
	if removed != 0 {
		t.Fatalf("removed = %d, want 0", removed)
	}
	findTripItem(t, s.Snapshot(), func(ti model.TripItem) bool { return ti.Name == "Tent" })
}

func TestShoppingMirrorPropagation(t *testing.T) {
	s := newTestStore(t)
	tripID := s.CreateTrip(CreateTripParams{
		Temperature: model.TemperatureHot,
		Duration:    model.DurationWeek,
		PeopleCount: 1,
	})
	tent := findTripItem(t, s.Snapshot(), func(ti model.TripItem) bool { return ti.Name == "Tent" })

	mirrorID := s.CopyItemToShopping(tent.ID)
	if mirrorID == "" {
		t.Fatal("mirror not created")
	}

	// Dedup: second copy and copying the mirror itself are no-ops.
	if got := s.CopyItemToShopping(tent.ID); got != "" {
		t.Error("duplicate mirror created")
	}
	if got := s.CopyItemToShopping(mirrorID); got != "" {
		t.Error("mirror of a shopping item created")
	}

	// Origin -> mirror.
	s.ToggleTripItem(tent.ID)
	s.UpdateTripItem(tent.ID, func(ti *model.TripItem) {
		ti.Quantity = 4
		ti.Notes = "check the poles"
	})
	st := s.Snapshot()
	mirror := findTripItem(t, st, func(ti model.TripItem) bool { return ti.ID == mirrorID })
	if !mirror.Checked || mirror.Quantity != 4 || mirror.Notes != "check the poles" {
		t.Errorf("mirror not synced: %+v", mirror)
	}

	// Mirror -> origin, and unlinked fields stay put.
	s.TogglePurchased(mirrorID)
	s.UpdateTripItem(mirrorID, func(ti *model.TripItem) { ti.Name = "Tent (new)" })
	st = s.Snapshot()
	origin := findTripItem(t, st, func(ti model.TripItem) bool { return ti.ID == tent.ID })
	if !origin.Purchased {
		t.Error("purchased not mirrored back to origin")
	}
	if origin.Name != "Tent" {
		t.Error("name propagated; only the linked field set should sync")
	}

	// Deleting the origin severs the link; the mirror lives on.
	s.DeleteTripItem(tent.ID)
	st = s.Snapshot()
	mirror = findTripItem(t, st, func(ti model.TripItem) bool { return ti.ID == mirrorID })
	if mirror.SourceItemID != "" {
		t.Error("mirror still linked to deleted origin")
	}
	if mirror.TripID != tripID {
		t.Error("mirror moved trips")
	}
}

func TestCopyTripRemapsMirrorLinks(t *testing.T) {
	s := newTestStore(t)
	tripID := s.CreateTrip(CreateTripParams{
		Temperature: model.TemperatureHot,
		Duration:    model.DurationWeek,
		PeopleCount: 1,
	})
	tent := findTripItem(t, s.Snapshot(), func(ti model.TripItem) bool { return ti.Name == "Tent" })
	s.CopyItemToShopping(tent.ID)
	s.ToggleTripItem(tent.ID)

	newID := s.CopyTrip(tripID, "Tent trip again")
	if newID == "" {
		t.Fatal("copy failed")
	}

	st := s.Snapshot()
	var origin, mirror model.TripItem
	for _, ti := range st.TripItems {
		if ti.TripID != newID {
			continue
		}
		if ti.Checked {
			t.Errorf("copied item %q still checked", ti.Name)
		}
		if ti.SourceItemID != "" {
			mirror = ti
		} else if ti.Name == "Tent" {
			origin = ti
		}
	}
	if mirror.ID == "" {
		t.Fatal("mirror not copied")
	}
	if mirror.SourceItemID != origin.ID {
		t.Errorf("mirror link not remapped: points at %q, want %q", mirror.SourceItemID, origin.ID)
	}
}

func TestSaveTripItemToMaster(t *testing.T) {
	s := newTestStore(t)
	tripID := s.CreateTrip(CreateTripParams{
		Temperature: model.TemperatureHot,
		Duration:    model.DurationWeek,
		PeopleCount: 1,
	})
	itemID := s.AddTripItem(tripID, "Headlamp", "cat-camping", 2, "")

	masterID := s.SaveTripItemToMaster(itemID)
	if masterID == "" {
		t.Fatal("promotion failed")
	}
	if again := s.SaveTripItemToMaster(itemID); again != "" {
		t.Error("second promotion should be a no-op")
	}

	st := s.Snapshot()
	var master *model.MasterItem
	for i := range st.MasterItems {
		if st.MasterItems[i].ID == masterID {
			master = &st.MasterItems[i]
		}
	}
	if master == nil || master.Name != "Headlamp" || master.Quantity != 2 {
		t.Fatalf("master item wrong: %+v", master)
	}
	item := findTripItem(t, st, func(ti model.TripItem) bool { return ti.ID == itemID })
	if item.IsCustom || item.MasterItemID != masterID {
		t.Errorf("trip item not linked to template: %+v", item)
	}
}

func TestAddTripItemCategorizesByName(t *testing.T) {
	s := newTestStore(t)
	tripID := s.CreateTrip(CreateTripParams{
		Temperature: model.TemperatureHot,
		Duration:    model.DurationWeek,
		PeopleCount: 1,
	})
	id := s.AddTripItem(tripID, "Sunscreen", "", 0, "")
	item := findTripItem(t, s.Snapshot(), func(ti model.TripItem) bool { return ti.ID == id })
	if item.CategoryID == "" {
		t.Error("no category assigned")
	}
	if item.Quantity != 1 {
		t.Errorf("quantity = %d, want clamped to 1", item.Quantity)
	}
	if !item.IsCustom {
		t.Error("custom flag not set")
	}
}

func TestUndoRestoresCategoryCascade(t *testing.T) {
	s := newTestStore(t)
	before := s.Snapshot()

	s.DeleteCategory("cat-clothing")
	mid := s.Snapshot()
	if len(mid.Categories) != len(before.Categories)-1 {
		t.Fatal("category not deleted")
	}
	for _, mi := range mid.MasterItems {
		if mi.CategoryID == "cat-clothing" {
			t.Fatalf("cascade missed %q", mi.Name)
		}
	}

	if !s.Undo() {
		t.Fatal("nothing to undo")
	}
	after := s.Snapshot()
	if len(after.Categories) != len(before.Categories) {
		t.Error("category not restored")
	}
	if len(after.MasterItems) != len(before.MasterItems) {
		t.Error("cascaded master items not restored")
	}
	if s.Undo() {
		t.Error("undo should be one-shot")
	}
}

func TestDeleteCustomActivityStripsReferences(t *testing.T) {
	s := newTestStore(t)
	actID := s.AddCustomActivity("Bouldering", "🧗")
	s.UpdateMasterItem("m-tent", func(mi *model.MasterItem) {
		mi.Conditions.Activities = []model.ActivityID{model.ActivityID(actID)}
	})

	s.DeleteCustomActivity(actID)
	st := s.Snapshot()
	if len(st.CustomActivities) != 0 {
		t.Fatal("activity not removed")
	}
	for _, mi := range st.MasterItems {
		for _, a := range mi.Conditions.Activities {
			if a == model.ActivityID(actID) {
				t.Fatalf("dangling activity reference on %q", mi.Name)
			}
		}
	}

	s.Undo()
	st = s.Snapshot()
	if len(st.CustomActivities) != 1 {
		t.Fatal("activity not restored by undo")
	}
	restored := false
	for _, mi := range st.MasterItems {
		if mi.ID != "m-tent" {
			continue
		}
		for _, a := range mi.Conditions.Activities {
			if a == model.ActivityID(actID) {
				restored = true
			}
		}
	}
	if !restored {
		t.Error("stripped condition reference not restored by undo")
	}
}

func TestAddPersonalItemToGroupDedupesByName(t *testing.T) {
	s := newTestStore(t)
	s.SetPersonalBackupItems([]model.MasterItem{
		{ID: "p-1", Name: "TENT", CategoryID: "cat-camping"},
		{ID: "p-2", Name: "Camping chair", CategoryID: "cat-camping"},
	})

	if got := s.AddPersonalItemToGroup("p-1"); got != "" {
		t.Error("case-insensitive duplicate added to group list")
	}
	if got := s.AddPersonalItemToGroup("p-2"); got == "" {
		t.Error("new personal item not added")
	}
	if got := s.AddPersonalItemToGroup("missing"); got != "" {
		t.Error("unknown backup id added something")
	}
}

func TestSharedTripSeenTracking(t *testing.T) {
	s := newTestStore(t)
	s.SetSharedTrips([]model.Trip{{ID: "t-1"}, {ID: "t-2"}}, nil)

	if got := len(s.Snapshot().UnseenSharedTrips()); got != 2 {
		t.Fatalf("unseen = %d, want 2", got)
	}
	s.MarkSharedTripsSeen()
	if got := len(s.Snapshot().UnseenSharedTrips()); got != 0 {
		t.Fatalf("unseen after mark = %d, want 0", got)
	}

	s.SetSharedTrips([]model.Trip{{ID: "t-1"}, {ID: "t-3"}}, nil)
	unseen := s.Snapshot().UnseenSharedTrips()
	if len(unseen) != 1 || unseen[0].ID != "t-3" {
		t.Fatalf("unseen = %+v, want just t-3", unseen)
	}
}

func TestMutationsPersistAndNotify(t *testing.T) {
	persister := &recordingPersister{}
	s := New(State{Initialized: true}, persister, nil)

	var notified int
	s.Subscribe(func(State) { notified++ })

	s.AddCategory("Gear", "🎒")
	s.AddCategory("Food", "🥫")

	if notified != 2 {
		t.Errorf("subscriber called %d times, want 2", notified)
	}
	if len(persister.saves) != 2 {
		t.Fatalf("persister called %d times, want 2", len(persister.saves))
	}
	last := persister.saves[len(persister.saves)-1]
	if len(last.Categories) != 2 {
		t.Errorf("persisted %d categories, want 2", len(last.Categories))
	}
	names := []string{last.Categories[0].Name, last.Categories[1].Name}
	if !strings.Contains(strings.Join(names, ","), "Food") {
		t.Errorf("persisted categories = %v", names)
	}
}

func TestCreateTripSnapshotsGroupSharing(t *testing.T) {
	s := newTestStore(t)
	s.SetCurrentGroup(&model.Group{
		ID: "g-1",
		Members: map[string]model.GroupMember{
			"alice": {Role: model.RoleOwner},
			"bob":   {Role: model.RoleMember},
		},
	})

	tripID := s.CreateTrip(CreateTripParams{
		Name:        "Group trip",
		Temperature: model.TemperatureHot,
		Duration:    model.DurationWeek,
		PeopleCount: 2,
		CreatorID:   "alice",
		Share:       true,
	})

	st := s.Snapshot()
	trip := st.Trips[0]
	if trip.ID != tripID || trip.GroupID != "g-1" {
		t.Fatalf("group not snapshotted: %+v", trip)
	}
	if len(trip.SharedWith) != 2 {
		t.Errorf("sharedWith = %v", trip.SharedWith)
	}
	if got := trip.PermissionFor("alice"); got != model.PermissionOwner {
		t.Errorf("creator permission = %q, want owner", got)
	}
	if got := trip.PermissionFor("bob"); got != model.PermissionView {
		t.Errorf("member permission = %q, want view", got)
	}
	if got := trip.PermissionFor("mallory"); got != model.PermissionNone {
		t.Errorf("outsider permission = %q, want none", got)
	}
}
