package rules

import (
	"testing"

	"github.com/jtroost/packmule/internal/model"
)

func TestShouldIncludeUnconditional(t *testing.T) {
	item := model.MasterItem{ID: "m1", Name: "Toothbrush"}
	ctx := TripContext{Temperature: model.TemperatureHot, Duration: model.DurationWeekend, PeopleCount: 1}

	if !ShouldInclude(item, ctx) {
		t.Error("item without conditions should always match")
	}
}

func TestShouldIncludeWeather(t *testing.T) {
	item := model.MasterItem{
		ID:   "m1",
		Name: "Rain jacket",
		Conditions: model.Conditions{
			Weather: []model.Temperature{model.TemperatureCold, model.TemperatureMixed},
		},
	}

	tests := []struct {
		temperature model.Temperature
		want        bool
	}{
		{model.TemperatureHot, false},
		{model.TemperatureMixed, true},
		{model.TemperatureCold, true},
	}

	for _, tt := range tests {
		ctx := TripContext{Temperature: tt.temperature, Duration: model.DurationWeek, PeopleCount: 2}
		if got := ShouldInclude(item, ctx); got != tt.want {
			t.Errorf("ShouldInclude(temperature=%s) = %v, want %v", tt.temperature, got, tt.want)
		}
	}
}

func TestShouldIncludeActivitiesOrSemantics(t *testing.T) {
	item := model.MasterItem{
		ID: "m1",
		Conditions: model.Conditions{
			Activities: []model.ActivityID{model.ActivityHiking, model.ActivityCycling},
		},
	}

	tests := []struct {
		name       string
		activities []model.ActivityID
		want       bool
	}{
		{"no overlap", []model.ActivityID{model.ActivitySwimming}, false},
		{"one overlap suffices", []model.ActivityID{model.ActivitySwimming, model.ActivityCycling}, true},
		{"empty trip activities", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := TripContext{Temperature: model.TemperatureMixed, Duration: model.DurationWeek, PeopleCount: 2, Activities: tt.activities}
			if got := ShouldInclude(item, ctx); got != tt.want {
				t.Errorf("ShouldInclude = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldIncludeMinPeople(t *testing.T) {
	item := model.MasterItem{ID: "m1", Conditions: model.Conditions{MinPeople: 3}}

	ctx := TripContext{Temperature: model.TemperatureMixed, Duration: model.DurationWeek, PeopleCount: 2}
	if ShouldInclude(item, ctx) {
		t.Error("2 people should not satisfy minPeople=3")
	}
	ctx.PeopleCount = 3
	if !ShouldInclude(item, ctx) {
		t.Error("3 people should satisfy minPeople=3")
	}
}

func TestShouldIncludeMinDuration(t *testing.T) {
	item := model.MasterItem{ID: "m1", Conditions: model.Conditions{MinDuration: model.DurationWeek}}

	tests := []struct {
		duration model.Duration
		want     bool
	}{
		{model.DurationWeekend, false},
		{model.DurationWeek, true},
		{model.DurationExtended, true},
	}

	for _, tt := range tests {
		ctx := TripContext{Temperature: model.TemperatureMixed, Duration: tt.duration, PeopleCount: 1}
		if got := ShouldInclude(item, ctx); got != tt.want {
			t.Errorf("ShouldInclude(duration=%s) = %v, want %v", tt.duration, got, tt.want)
		}
	}
}

func TestShouldIncludeConditionsAreANDed(t *testing.T) {
	item := model.MasterItem{
		ID: "m1",
		Conditions: model.Conditions{
			Weather:    []model.Temperature{model.TemperatureCold},
			Activities: []model.ActivityID{model.ActivityWinterSports},
			MinPeople:  2,
		},
	}

	ctx := TripContext{
		Temperature: model.TemperatureCold,
		Duration:    model.DurationWeek,
		PeopleCount: 2,
		Activities:  []model.ActivityID{model.ActivityWinterSports},
	}
	if !ShouldInclude(item, ctx) {
		t.Error("all conditions satisfied, item should match")
	}

	ctx.Temperature = model.TemperatureHot
	if ShouldInclude(item, ctx) {
		t.Error("one failing condition should exclude the item")
	}
}

func TestShouldIncludeDeterministic(t *testing.T) {
	item := model.MasterItem{
		ID: "m1",
		Conditions: model.Conditions{
			Weather:   []model.Temperature{model.TemperatureMixed},
			MinPeople: 2,
		},
	}
	ctx := TripContext{Temperature: model.TemperatureMixed, Duration: model.DurationWeek, PeopleCount: 4}

	first := ShouldInclude(item, ctx)
	for i := 0; i < 100; i++ {
		if ShouldInclude(item, ctx) != first {
			t.Fatal("ShouldInclude is not deterministic for identical input")
		}
	}
}

func TestEffectiveQuantity(t *testing.T) {
	tests := []struct {
		name        string
		quantity    int
		perPerson   bool
		peopleCount int
		want        int
	}{
		{"default quantity", 0, false, 4, 1},
		{"fixed quantity ignores people", 2, false, 5, 2},
		{"per person multiplies", 2, true, 3, 6},
		{"per person default base", 0, true, 4, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := model.MasterItem{Quantity: tt.quantity, PerPerson: tt.perPerson}
			got := EffectiveQuantity(item, tt.peopleCount)
			if got != tt.want {
				t.Errorf("EffectiveQuantity = %d, want %d", got, tt.want)
			}
			// Idempotent for identical inputs
			if again := EffectiveQuantity(item, tt.peopleCount); again != got {
				t.Errorf("second call = %d, first = %d", again, got)
			}
		})
	}
}
