package model

// Conditions restrict when a master item is included in a generated trip
// list. All present conditions must hold; an empty Conditions always
// matches.
type Conditions struct {
	Weather     []Temperature `json:"weather,omitempty"`
	Activities  []ActivityID  `json:"activities,omitempty"`
	MinPeople   int           `json:"minPeople,omitempty"`
	MinDuration Duration      `json:"minDuration,omitempty"`
}

// MasterItem is a reusable template row in the master packing list.
type MasterItem struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	CategoryID string     `json:"categoryId"`
	Conditions Conditions `json:"conditions"`
	Quantity   int        `json:"quantity,omitempty"`  // defaults to 1 when zero
	PerPerson  bool       `json:"perPerson,omitempty"` // multiply by people count
	SortOrder  int        `json:"sortOrder,omitempty"`
}

// BaseQuantity returns the item quantity with the default of 1 applied.
func (m MasterItem) BaseQuantity() int {
	if m.Quantity <= 0 {
		return 1
	}
	return m.Quantity
}
