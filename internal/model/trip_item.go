package model

// TripItem is one row on a concrete trip's checklist.
//
// MasterItemID set means the row was derived from a master item; empty means
// it was added ad hoc. SourceItemID, when set, points at another trip item
// in the same trip that this row mirrors in the shopping category; exactly
// one side of a link carries the reference.
type TripItem struct {
	ID           string `json:"id"`
	TripID       string `json:"tripId"`
	MasterItemID string `json:"masterItemId,omitempty"`
	SourceItemID string `json:"sourceItemId,omitempty"`
	Name         string `json:"name"`
	CategoryID   string `json:"categoryId"`
	Checked      bool   `json:"checked"`
	Purchased    bool   `json:"purchased,omitempty"`
	Notes        string `json:"notes,omitempty"`
	IsCustom     bool   `json:"isCustom"`
	Quantity     int    `json:"quantity,omitempty"`
	SortOrder    int    `json:"sortOrder,omitempty"`
}

// Derived reports whether the item still counts as master-derived for
// reconciliation. Orphaned rows (master item deleted) keep their id but are
// treated like custom items by callers that resolve the reference.
func (ti TripItem) Derived() bool {
	return ti.MasterItemID != "" && !ti.IsCustom
}
