package sync

import (
	"testing"

	"github.com/jtroost/packmule/internal/model"
	"github.com/jtroost/packmule/internal/state"
)

func fingerprintFixture() state.Persisted {
	return state.Persisted{
		Categories: []model.Category{
			{ID: "c-1", Name: "Clothing"},
			{ID: "c-2", Name: "Gear"},
		},
		MasterItems: []model.MasterItem{
			{ID: "m-1", Name: "Tent", CategoryID: "c-2"},
			{ID: "m-2", Name: "Raincoat", CategoryID: "c-1"},
		},
		Trips: []model.Trip{
			{ID: "t-1", Name: "Coast weekend"},
		},
		TripItems: []model.TripItem{
			{ID: "ti-1", TripID: "t-1", Name: "Tent", Quantity: 1},
			{ID: "ti-2", TripID: "t-1", Name: "Raincoat", Quantity: 2},
		},
		CustomActivities: []model.CustomActivity{
			{ID: "a-1", Name: "Bouldering"},
		},
		Initialized: true,
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint(fingerprintFixture())
	b := Fingerprint(fingerprintFixture())
	if a != b {
		t.Fatalf("same content hashed differently: %s vs %s", a, b)
	}
}

func TestFingerprintIgnoresOrdering(t *testing.T) {
	base := Fingerprint(fingerprintFixture())

	shuffled := fingerprintFixture()
	shuffled.MasterItems[0], shuffled.MasterItems[1] = shuffled.MasterItems[1], shuffled.MasterItems[0]
	shuffled.TripItems[0], shuffled.TripItems[1] = shuffled.TripItems[1], shuffled.TripItems[0]
	shuffled.Categories[0], shuffled.Categories[1] = shuffled.Categories[1], shuffled.Categories[0]

	if got := Fingerprint(shuffled); got != base {
		t.Fatal("slice order changed the fingerprint")
	}
}

func TestFingerprintIgnoresLocalOnlyFields(t *testing.T) {
	base := Fingerprint(fingerprintFixture())

	local := fingerprintFixture()
	local.Initialized = false
	local.SeenSharedTripIDs = []string{"t-1", "t-2"}

	if got := Fingerprint(local); got != base {
		t.Fatal("local-only fields changed the fingerprint")
	}
}

func TestFingerprintTracksContent(t *testing.T) {
	base := Fingerprint(fingerprintFixture())

	changed := fingerprintFixture()
	changed.TripItems[0].Checked = true
	if got := Fingerprint(changed); got == base {
		t.Fatal("checking an item did not move the fingerprint")
	}

	removed := fingerprintFixture()
	removed.MasterItems = removed.MasterItems[:1]
	if got := Fingerprint(removed); got == base {
		t.Fatal("removing a master item did not move the fingerprint")
	}
}
