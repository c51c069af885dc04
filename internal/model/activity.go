package model

import "strings"

// Temperature is the expected weather band for a trip.
type Temperature string

const (
	TemperatureHot   Temperature = "hot"
	TemperatureMixed Temperature = "mixed"
	TemperatureCold  Temperature = "cold"
)

// Duration is the coarse trip length band. Bands form a total order:
// weekend < week < extended.
type Duration string

const (
	DurationWeekend  Duration = "weekend"
	DurationWeek     Duration = "week"
	DurationExtended Duration = "extended"
)

// Rank returns the position of d in the duration order. Unknown values rank
// lowest so a malformed condition never blocks an item.
func (d Duration) Rank() int {
	switch d {
	case DurationWeek:
		return 1
	case DurationExtended:
		return 2
	default:
		return 0
	}
}

// ActivityID identifies either a built-in activity tag or a user-defined
// custom activity (prefixed "custom_").
type ActivityID string

const (
	ActivityHiking       ActivityID = "hiking"
	ActivityCycling      ActivityID = "cycling"
	ActivityFishing      ActivityID = "fishing"
	ActivitySwimming     ActivityID = "swimming"
	ActivityPhotography  ActivityID = "photography"
	ActivityRelaxation   ActivityID = "relaxation"
	ActivityWinterSports ActivityID = "winter_sports"
)

// RetiredActivitySurfing was removed from the built-in set; migrations strip
// it from stored master items and trips.
const RetiredActivitySurfing ActivityID = "surfing"

// customActivityPrefix marks ids of user-defined activities.
const customActivityPrefix = "custom_"

// BuiltinActivities lists the closed set of built-in activity tags in
// display order.
var BuiltinActivities = []ActivityID{
	ActivityHiking,
	ActivityCycling,
	ActivityFishing,
	ActivitySwimming,
	ActivityPhotography,
	ActivityRelaxation,
	ActivityWinterSports,
}

// IsCustom reports whether the id refers to a user-defined activity.
func (a ActivityID) IsCustom() bool {
	return strings.HasPrefix(string(a), customActivityPrefix)
}

// CustomActivity is a user-defined extension of the built-in activity set.
type CustomActivity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// ActivityLabels maps built-in activity ids to display names.
var ActivityLabels = map[ActivityID]string{
	ActivityHiking:       "Hiking",
	ActivityCycling:      "Cycling",
	ActivityFishing:      "Fishing",
	ActivitySwimming:     "Swimming",
	ActivityPhotography:  "Photography",
	ActivityRelaxation:   "Relaxation",
	ActivityWinterSports: "Winter sports",
}

// ActivityIcons maps built-in activity ids to their emoji.
var ActivityIcons = map[ActivityID]string{
	ActivityHiking:       "🥾",
	ActivityCycling:      "🚴",
	ActivityFishing:      "🎣",
	ActivitySwimming:     "🏊",
	ActivityPhotography:  "📷",
	ActivityRelaxation:   "😎",
	ActivityWinterSports: "⛷️",
}

// TemperatureLabels maps temperature bands to display names.
var TemperatureLabels = map[Temperature]string{
	TemperatureHot:   "Warm (>25°C)",
	TemperatureMixed: "Mixed (10-25°C)",
	TemperatureCold:  "Cold (<10°C)",
}

// DurationLabels maps duration bands to display names.
var DurationLabels = map[Duration]string{
	DurationWeekend:  "Weekend (1-3 nights)",
	DurationWeek:     "Week (4-7 nights)",
	DurationExtended: "Extended (8+ nights)",
}
