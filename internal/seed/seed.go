// Package seed holds the default master list written to a fresh Local Store
// exactly once, guarded by the store's initialized flag.
package seed

import "github.com/jtroost/packmule/internal/model"

// Categories returns the default category set in display order.
func Categories() []model.Category {
	return []model.Category{
		{ID: "cat-clothing", Name: "Clothing", Icon: "👕", SortOrder: 0},
		{ID: "cat-toiletries", Name: "Toiletries", Icon: "🧴", SortOrder: 1},
		{ID: "cat-camping", Name: "Camping gear", Icon: "⛺", SortOrder: 2},
		{ID: "cat-kitchen", Name: "Kitchen", Icon: "🍳", SortOrder: 3},
		{ID: "cat-electronics", Name: "Electronics", Icon: "🔌", SortOrder: 4},
		{ID: "cat-documents", Name: "Documents", Icon: "📄", SortOrder: 5},
		{ID: "cat-activities", Name: "Activities", Icon: "🎯", SortOrder: 6},
		{ID: model.ShoppingCategoryID, Name: "Shopping", Icon: "🛒", SortOrder: 7},
	}
}

// MasterItems returns the default reusable packing list. Conditions follow
// the built-in temperature, duration and activity tags.
func MasterItems() []model.MasterItem {
	cold := []model.Temperature{model.TemperatureCold}
	coldMixed := []model.Temperature{model.TemperatureCold, model.TemperatureMixed}
	hot := []model.Temperature{model.TemperatureHot}
	hotMixed := []model.Temperature{model.TemperatureHot, model.TemperatureMixed}

	return []model.MasterItem{
		// Clothing
		{ID: "mi-tshirts", Name: "T-shirts", CategoryID: "cat-clothing", PerPerson: true, Quantity: 4, SortOrder: 0},
		{ID: "mi-underwear", Name: "Underwear", CategoryID: "cat-clothing", PerPerson: true, Quantity: 5, SortOrder: 1},
		{ID: "mi-socks", Name: "Socks", CategoryID: "cat-clothing", PerPerson: true, Quantity: 5, SortOrder: 2},
		{ID: "mi-rain-jacket", Name: "Rain jacket", CategoryID: "cat-clothing", PerPerson: true,
			Conditions: model.Conditions{Weather: coldMixed}, SortOrder: 3},
		{ID: "mi-warm-sweater", Name: "Warm sweater", CategoryID: "cat-clothing", PerPerson: true,
			Conditions: model.Conditions{Weather: cold}, SortOrder: 4},
		{ID: "mi-shorts", Name: "Shorts", CategoryID: "cat-clothing", PerPerson: true, Quantity: 2,
			Conditions: model.Conditions{Weather: hotMixed}, SortOrder: 5},
		{ID: "mi-swimwear", Name: "Swimwear", CategoryID: "cat-clothing", PerPerson: true,
			Conditions: model.Conditions{Activities: []model.ActivityID{model.ActivitySwimming}}, SortOrder: 6},
		{ID: "mi-hiking-boots", Name: "Hiking boots", CategoryID: "cat-clothing", PerPerson: true,
			Conditions: model.Conditions{Activities: []model.ActivityID{model.ActivityHiking}}, SortOrder: 7},
		{ID: "mi-ski-gear", Name: "Ski clothing", CategoryID: "cat-clothing", PerPerson: true,
			Conditions: model.Conditions{Activities: []model.ActivityID{model.ActivityWinterSports}}, SortOrder: 8},
		{ID: "mi-sun-hat", Name: "Sun hat", CategoryID: "cat-clothing", PerPerson: true,
			Conditions: model.Conditions{Weather: hot}, SortOrder: 9},
		{ID: "mi-extra-clothes", Name: "Extra set of clothes", CategoryID: "cat-clothing", PerPerson: true,
			Conditions: model.Conditions{MinDuration: model.DurationWeek}, SortOrder: 10},

		// Toiletries
		{ID: "mi-toothbrush", Name: "Toothbrush", CategoryID: "cat-toiletries", PerPerson: true, SortOrder: 0},
		{ID: "mi-toothpaste", Name: "Toothpaste", CategoryID: "cat-toiletries", SortOrder: 1},
		{ID: "mi-shampoo", Name: "Shampoo", CategoryID: "cat-toiletries", SortOrder: 2},
		{ID: "mi-sunscreen", Name: "Sunscreen", CategoryID: "cat-toiletries",
			Conditions: model.Conditions{Weather: hotMixed}, SortOrder: 3},
		{ID: "mi-insect-repellent", Name: "Insect repellent", CategoryID: "cat-toiletries",
			Conditions: model.Conditions{Weather: hot}, SortOrder: 4},
		{ID: "mi-first-aid", Name: "First aid kit", CategoryID: "cat-toiletries", SortOrder: 5},
		{ID: "mi-towels", Name: "Towels", CategoryID: "cat-toiletries", PerPerson: true, SortOrder: 6},

		// Camping gear
		{ID: "mi-sleeping-bag", Name: "Sleeping bag", CategoryID: "cat-camping", PerPerson: true, SortOrder: 0},
		{ID: "mi-camping-chairs", Name: "Camping chairs", CategoryID: "cat-camping", PerPerson: true, SortOrder: 1},
		{ID: "mi-camping-table", Name: "Camping table", CategoryID: "cat-camping", SortOrder: 2},
		{ID: "mi-awning", Name: "Awning", CategoryID: "cat-camping", SortOrder: 3},
		{ID: "mi-electric-heater", Name: "Electric heater", CategoryID: "cat-camping",
			Conditions: model.Conditions{Weather: cold}, SortOrder: 4},
		{ID: "mi-parasol", Name: "Parasol", CategoryID: "cat-camping",
			Conditions: model.Conditions{Weather: hot}, SortOrder: 5},
		{ID: "mi-extra-gas", Name: "Spare gas bottle", CategoryID: "cat-camping",
			Conditions: model.Conditions{MinDuration: model.DurationWeek}, SortOrder: 6},

		// Kitchen
		{ID: "mi-cutlery", Name: "Cutlery", CategoryID: "cat-kitchen", SortOrder: 0},
		{ID: "mi-plates", Name: "Plates", CategoryID: "cat-kitchen", PerPerson: true, SortOrder: 1},
		{ID: "mi-cooler", Name: "Cool box", CategoryID: "cat-kitchen", SortOrder: 2},
		{ID: "mi-coffee", Name: "Coffee supplies", CategoryID: "cat-kitchen", SortOrder: 3},
		{ID: "mi-bbq", Name: "Barbecue", CategoryID: "cat-kitchen",
			Conditions: model.Conditions{Weather: hotMixed, MinPeople: 2}, SortOrder: 4},

		// Electronics
		{ID: "mi-phone-chargers", Name: "Phone chargers", CategoryID: "cat-electronics", SortOrder: 0},
		{ID: "mi-power-bank", Name: "Power bank", CategoryID: "cat-electronics", SortOrder: 1},
		{ID: "mi-camera", Name: "Camera + lenses", CategoryID: "cat-electronics",
			Conditions: model.Conditions{Activities: []model.ActivityID{model.ActivityPhotography}}, SortOrder: 2},
		{ID: "mi-extension-cord", Name: "Extension cord", CategoryID: "cat-electronics", SortOrder: 3},

		// Documents
		{ID: "mi-passports", Name: "Passports / ID", CategoryID: "cat-documents", SortOrder: 0},
		{ID: "mi-insurance", Name: "Insurance cards", CategoryID: "cat-documents", SortOrder: 1},
		{ID: "mi-vehicle-papers", Name: "Vehicle papers", CategoryID: "cat-documents", SortOrder: 2},

		// Activities
		{ID: "mi-bikes", Name: "Bicycles", CategoryID: "cat-activities", PerPerson: true,
			Conditions: model.Conditions{Activities: []model.ActivityID{model.ActivityCycling}}, SortOrder: 0},
		{ID: "mi-fishing-rod", Name: "Fishing rod", CategoryID: "cat-activities",
			Conditions: model.Conditions{Activities: []model.ActivityID{model.ActivityFishing}}, SortOrder: 1},
		{ID: "mi-hiking-poles", Name: "Hiking poles", CategoryID: "cat-activities", PerPerson: true,
			Conditions: model.Conditions{Activities: []model.ActivityID{model.ActivityHiking}}, SortOrder: 2},
		{ID: "mi-books", Name: "Books / e-reader", CategoryID: "cat-activities",
			Conditions: model.Conditions{Activities: []model.ActivityID{model.ActivityRelaxation}}, SortOrder: 3},
		{ID: "mi-board-games", Name: "Board games", CategoryID: "cat-activities",
			Conditions: model.Conditions{MinPeople: 2}, SortOrder: 4},
	}
}
