package rules

import (
	"testing"

	"github.com/jtroost/packmule/internal/model"
)

var reconcileMaster = []model.MasterItem{
	{ID: "m-jacket", Name: "Rain jacket", CategoryID: "cat-clothing",
		Conditions: model.Conditions{Weather: []model.Temperature{model.TemperatureCold, model.TemperatureMixed}},
		PerPerson:  true},
	{ID: "m-sunscreen", Name: "Sunscreen", CategoryID: "cat-toiletries",
		Conditions: model.Conditions{Weather: []model.Temperature{model.TemperatureHot}}},
	{ID: "m-toothbrush", Name: "Toothbrush", CategoryID: "cat-toiletries", PerPerson: true},
}

func ctxHot(people int) TripContext {
	return TripContext{Temperature: model.TemperatureHot, Duration: model.DurationWeek, PeopleCount: people}
}

func ctxMixed(people int) TripContext {
	return TripContext{Temperature: model.TemperatureMixed, Duration: model.DurationWeek, PeopleCount: people}
}

func TestReconcileAddsNewlyEligible(t *testing.T) {
	items := []model.TripItem{
		{ID: "t1", TripID: "trip", MasterItemID: "m-sunscreen", CategoryID: "cat-toiletries"},
		{ID: "t2", TripID: "trip", MasterItemID: "m-toothbrush", CategoryID: "cat-toiletries"},
	}

	plan := Reconcile(reconcileMaster, items, ctxMixed(2))

	if plan.Added() != 1 || plan.Add[0].ID != "m-jacket" {
		t.Fatalf("expected only m-jacket added, got %+v", plan.Add)
	}
	if !plan.RemoveIDs["t1"] {
		t.Error("unchecked sunscreen should be removed on a mixed trip")
	}
	if plan.RemoveIDs["t2"] {
		t.Error("unconditional toothbrush must stay")
	}
}

func TestReconcilePreservesCheckedItems(t *testing.T) {
	items := []model.TripItem{
		{ID: "t1", TripID: "trip", MasterItemID: "m-jacket", CategoryID: "cat-clothing", Checked: true},
	}

	plan := Reconcile(reconcileMaster, items, ctxHot(4))

	if plan.RemoveIDs["t1"] {
		t.Error("checked item must survive becoming ineligible")
	}
	if plan.Removed() != 0 {
		t.Errorf("removed = %d, want 0", plan.Removed())
	}
}

func TestReconcileRemovesUncheckedIneligible(t *testing.T) {
	items := []model.TripItem{
		{ID: "t1", TripID: "trip", MasterItemID: "m-jacket", CategoryID: "cat-clothing"},
	}

	plan := Reconcile(reconcileMaster, items, ctxHot(4))

	if !plan.RemoveIDs["t1"] {
		t.Error("unchecked jacket should be removed on a hot trip")
	}
	// sunscreen newly eligible
	if plan.Added() != 1 || plan.Add[0].ID != "m-sunscreen" {
		t.Errorf("expected sunscreen added, got %+v", plan.Add)
	}
}

func TestReconcileIgnoresCustomItems(t *testing.T) {
	items := []model.TripItem{
		{ID: "t1", TripID: "trip", Name: "Board games", CategoryID: "cat-other", IsCustom: true},
	}

	plan := Reconcile(reconcileMaster, items, ctxHot(1))

	if plan.RemoveIDs["t1"] {
		t.Error("custom items are never removed by reconciliation")
	}
}

func TestReconcileOrphanedItemIsCustomEquivalent(t *testing.T) {
	// t1 references a master item that no longer exists.
	items := []model.TripItem{
		{ID: "t1", TripID: "trip", MasterItemID: "m-deleted", CategoryID: "cat-clothing"},
	}

	plan := Reconcile(reconcileMaster, items, ctxHot(1))

	if plan.RemoveIDs["t1"] {
		t.Error("orphaned item must not be auto-removed")
	}
	for _, mi := range plan.Add {
		if mi.ID == "m-deleted" {
			t.Error("orphaned reference must not be re-added")
		}
	}
}

func TestReconcileCounts(t *testing.T) {
	items := []model.TripItem{
		{ID: "t1", TripID: "trip", MasterItemID: "m-jacket"},        // unchecked, ineligible on hot -> removed
		{ID: "t2", TripID: "trip", MasterItemID: "m-toothbrush"},    // stays
		{ID: "t3", TripID: "trip", Name: "Snacks", IsCustom: true}, // untouched
	}

	plan := Reconcile(reconcileMaster, items, ctxHot(2))

	if plan.Added() != 1 {
		t.Errorf("added = %d, want 1 (sunscreen)", plan.Added())
	}
	if plan.Removed() != 1 {
		t.Errorf("removed = %d, want 1 (jacket)", plan.Removed())
	}
}
