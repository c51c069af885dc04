package model

// Group membership roles. Exactly one member holds RoleOwner and the group's
// OwnerID matches that member's uid.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// GroupMember is one principal inside a group.
type GroupMember struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoURL,omitempty"`
	Role        string `json:"role"`
	JoinedAt    string `json:"joinedAt"`
}

// Group is a set of principals sharing one master packing list.
type Group struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	OwnerID    string                 `json:"ownerId"`
	InviteCode string                 `json:"inviteCode"`
	Members    map[string]GroupMember `json:"members"`
	CreatedAt  string                 `json:"createdAt"`
}

// MemberUIDs returns the uids of all members. Order is unspecified.
func (g Group) MemberUIDs() []string {
	uids := make([]string, 0, len(g.Members))
	for uid := range g.Members {
		uids = append(uids, uid)
	}
	return uids
}

// OtherMemberUIDs returns every member uid except the given one.
func (g Group) OtherMemberUIDs(uid string) []string {
	uids := make([]string, 0, len(g.Members))
	for id := range g.Members {
		if id != uid {
			uids = append(uids, id)
		}
	}
	return uids
}

// User is the signed-in principal as supplied by the auth collaborator.
type User struct {
	UID         string `json:"uid"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoURL,omitempty"`
}
