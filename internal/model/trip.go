package model

// TripStatus is the lifecycle stage of a trip.
type TripStatus string

const (
	StatusPlanning  TripStatus = "planning"
	StatusActive    TripStatus = "active"
	StatusCompleted TripStatus = "completed"
)

// TripPermission is a viewer's access level on a shared trip.
type TripPermission string

const (
	PermissionNone  TripPermission = ""
	PermissionView  TripPermission = "view"
	PermissionEdit  TripPermission = "edit"
	PermissionOwner TripPermission = "owner"
)

// CanEdit reports whether the permission allows mutating trip items.
func (p TripPermission) CanEdit() bool {
	return p == PermissionEdit || p == PermissionOwner
}

// Trip is one concrete trip with the attributes that drive item generation.
// The group sharing fields are a snapshot taken at creation time and later
// mutable by the owner.
type Trip struct {
	ID              string                    `json:"id"`
	Name            string                    `json:"name"`
	Destination     string                    `json:"destination"`
	StartDate       string                    `json:"startDate"`
	EndDate         string                    `json:"endDate"`
	Temperature     Temperature               `json:"temperature"`
	Duration        Duration                  `json:"duration"`
	PeopleCount     int                       `json:"peopleCount"`
	Activities      []ActivityID              `json:"activities"`
	Status          TripStatus                `json:"status"`
	Notes           string                    `json:"notes,omitempty"`
	CopiedFromTrip  string                    `json:"copiedFromTripId,omitempty"`
	CreatedAt       string                    `json:"createdAt"`
	GroupID         string                    `json:"groupId,omitempty"`
	CreatorID       string                    `json:"creatorId,omitempty"`
	SharedWith      []string                  `json:"sharedWith,omitempty"`
	Permissions     map[string]TripPermission `json:"permissions,omitempty"`
}

// PermissionFor resolves the viewer's access level on a shared trip.
// Resolution order: creator, then the explicit permission map, then the
// legacy sharedWith list (implying view), else no access.
func (t Trip) PermissionFor(uid string) TripPermission {
	if uid == "" {
		return PermissionNone
	}
	if t.CreatorID == uid {
		return PermissionOwner
	}
	if p, ok := t.Permissions[uid]; ok {
		return p
	}
	for _, id := range t.SharedWith {
		if id == uid {
			return PermissionView
		}
	}
	return PermissionNone
}
