// Package group implements the client side of group sharing: creating and
// joining groups by invite code, membership management, and access to the
// trips other members have shared into the group.
package group

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jtroost/packmule/internal/docstore"
	"github.com/jtroost/packmule/internal/model"
	"github.com/jtroost/packmule/internal/remote"
	"github.com/jtroost/packmule/internal/state"
)

var (
	ErrInvalidInviteCode = errors.New("no group with that invite code")
	ErrAlreadyMember     = errors.New("already a member of this group")
	ErrNoGroup           = errors.New("not in a group")
	ErrNotOwner          = errors.New("only the group owner can do that")
	ErrCannotRemoveSelf  = errors.New("the owner leaves or dissolves the group instead of removing themselves")
	ErrNotEditable       = errors.New("no edit permission on this trip")
)

// Collections under the group tree where members publish their shared
// trips for the others to read.
const (
	SharedTripsCollection     = "sharedTrips"
	SharedTripItemsCollection = "sharedTripItems"
)

const (
	profileCollection = "profile"
	profileDocID      = "profile"
	backupCollection  = "personalBackup"
)

// Profile is the small per-user document that records which group the user
// belongs to, so a fresh device can rejoin it.
type Profile struct {
	GroupID     string `json:"groupId,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
}

// Service coordinates group membership between the local store and the
// sync server.
type Service struct {
	client *remote.Client
	store  *state.Store
	user   model.User
	logger *slog.Logger
}

func NewService(client *remote.Client, store *state.Store, user model.User, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		client: client,
		store:  store,
		user:   user,
		logger: logger.With("component", "group"),
	}
}

// Create makes a new group owned by the caller and activates it locally.
func (s *Service) Create(ctx context.Context, name string) (*model.Group, error) {
	g := &model.Group{
		ID:         uuid.NewString(),
		Name:       name,
		OwnerID:    s.user.UID,
		InviteCode: NewInviteCode(),
		Members: map[string]model.GroupMember{
			s.user.UID: s.selfMember(model.RoleOwner),
		},
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.client.PutGroup(ctx, g); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	if err := s.activate(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Join resolves an invite code, adds the caller as a member, backs up the
// personal master list, and activates the group locally.
func (s *Service) Join(ctx context.Context, inviteCode string) (*model.Group, error) {
	g, err := s.client.FindGroupByInviteCode(ctx, inviteCode)
	if err != nil {
		return nil, fmt.Errorf("resolve invite code: %w", err)
	}
	if g == nil {
		return nil, ErrInvalidInviteCode
	}
	if _, ok := g.Members[s.user.UID]; ok {
		return nil, ErrAlreadyMember
	}

	g.Members[s.user.UID] = s.selfMember(model.RoleMember)
	if err := s.client.PutGroup(ctx, g); err != nil {
		return nil, fmt.Errorf("join group: %w", err)
	}

	if err := s.backupPersonalItems(ctx); err != nil {
		// The join already happened; a failed backup only costs the
		// name-matching restore on a later leave.
		s.logger.Warn("personal list backup failed", "error", err)
	}
	if err := s.activate(ctx, g); err != nil {
		return nil, err
	}
	return g, nil
}

// Leave removes the caller from the active group. When the owner leaves
// and other members remain, ownership passes to one of them; the last
// member leaving dissolves the group entirely. Callers running a sync
// engine follow up with Engine.DropGroup so the shared list lands back on
// the personal path.
func (s *Service) Leave(ctx context.Context) error {
	g := s.currentGroup()
	if g == nil {
		return ErrNoGroup
	}

	others := g.OtherMemberUIDs(s.user.UID)
	if len(others) == 0 {
		if err := s.client.DeleteGroup(ctx, g.ID); err != nil {
			return fmt.Errorf("dissolve group on leave: %w", err)
		}
		return s.deactivate(ctx)
	}

	delete(g.Members, s.user.UID)
	if g.OwnerID == s.user.UID {
		sort.Strings(others)
		heir := others[0]
		m := g.Members[heir]
		m.Role = model.RoleOwner
		g.Members[heir] = m
		g.OwnerID = heir
	}
	if err := s.client.PutGroup(ctx, g); err != nil {
		return fmt.Errorf("leave group: %w", err)
	}
	return s.deactivate(ctx)
}

// Delete dissolves the active group and everything under it. Owner only.
func (s *Service) Delete(ctx context.Context) error {
	g := s.currentGroup()
	if g == nil {
		return ErrNoGroup
	}
	if g.OwnerID != s.user.UID {
		return ErrNotOwner
	}
	if err := s.client.DeleteGroup(ctx, g.ID); err != nil {
		return fmt.Errorf("delete group: %w", err)
	}
	return s.deactivate(ctx)
}

// RemoveMember evicts a member. Owner only; the owner cannot evict
// themselves.
func (s *Service) RemoveMember(ctx context.Context, uid string) error {
	g := s.currentGroup()
	if g == nil {
		return ErrNoGroup
	}
	if g.OwnerID != s.user.UID {
		return ErrNotOwner
	}
	if uid == g.OwnerID {
		return ErrCannotRemoveSelf
	}
	if _, ok := g.Members[uid]; !ok {
		return nil
	}
	delete(g.Members, uid)
	if err := s.client.PutGroup(ctx, g); err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	s.store.SetCurrentGroup(g)
	return nil
}

// RegenerateInviteCode invalidates the current invite code. Owner only.
// Returns the new code.
func (s *Service) RegenerateInviteCode(ctx context.Context) (string, error) {
	g := s.currentGroup()
	if g == nil {
		return "", ErrNoGroup
	}
	if g.OwnerID != s.user.UID {
		return "", ErrNotOwner
	}
	g.InviteCode = NewInviteCode()
	if err := s.client.PutGroup(ctx, g); err != nil {
		return "", fmt.Errorf("regenerate invite code: %w", err)
	}
	s.store.SetCurrentGroup(g)
	return g.InviteCode, nil
}

// FetchSharedTrips pulls the trips other members have shared into the
// group, filtered to those the caller may at least view, and installs them
// in the store.
func (s *Service) FetchSharedTrips(ctx context.Context) error {
	g := s.currentGroup()
	if g == nil {
		return ErrNoGroup
	}
	owner := remote.GroupOwner(g.ID)

	tripDocs, err := s.client.ListDocs(ctx, owner, SharedTripsCollection)
	if err != nil {
		return fmt.Errorf("fetch shared trips: %w", err)
	}
	var trips []model.Trip
	visible := make(map[string]bool)
	for _, doc := range tripDocs {
		var t model.Trip
		if err := docstore.Decode(doc, &t); err != nil {
			s.logger.Warn("skipping corrupt shared trip", "doc", doc.ID, "error", err)
			continue
		}
		if t.CreatorID == s.user.UID {
			continue
		}
		if t.PermissionFor(s.user.UID) == model.PermissionNone {
			continue
		}
		trips = append(trips, t)
		visible[t.ID] = true
	}

	itemDocs, err := s.client.ListDocs(ctx, owner, SharedTripItemsCollection)
	if err != nil {
		return fmt.Errorf("fetch shared trip items: %w", err)
	}
	var items []model.TripItem
	for _, doc := range itemDocs {
		var ti model.TripItem
		if err := docstore.Decode(doc, &ti); err != nil {
			continue
		}
		if visible[ti.TripID] {
			items = append(items, ti)
		}
	}

	s.store.SetSharedTrips(trips, items)
	return nil
}

// ToggleSharedTripItem optimistically flips the checked flag on another
// member's trip item and pushes it, rolling the flag back if the push
// fails. Requires edit permission on the trip.
func (s *Service) ToggleSharedTripItem(ctx context.Context, itemID string) error {
	g := s.currentGroup()
	if g == nil {
		return ErrNoGroup
	}

	snap := s.store.Snapshot()
	var item *model.TripItem
	for i := range snap.SharedTripItems {
		if snap.SharedTripItems[i].ID == itemID {
			item = &snap.SharedTripItems[i]
			break
		}
	}
	if item == nil {
		return fmt.Errorf("shared item %s not found", itemID)
	}
	var trip *model.Trip
	for i := range snap.SharedTrips {
		if snap.SharedTrips[i].ID == item.TripID {
			trip = &snap.SharedTrips[i]
			break
		}
	}
	if trip == nil || !trip.PermissionFor(s.user.UID).CanEdit() {
		return ErrNotEditable
	}

	s.store.UpdateSharedTripItem(itemID, func(ti *model.TripItem) {
		ti.Checked = !ti.Checked
	})

	updated := *item
	updated.Checked = !item.Checked
	if err := s.client.PutDoc(ctx, remote.GroupOwner(g.ID), SharedTripItemsCollection, itemID, updated); err != nil {
		s.store.UpdateSharedTripItem(itemID, func(ti *model.TripItem) {
			ti.Checked = item.Checked
		})
		return fmt.Errorf("push shared item: %w", err)
	}
	return nil
}

// FetchPersonalBackup loads the pre-group master list snapshot so its
// items can be offered back into the group list.
func (s *Service) FetchPersonalBackup(ctx context.Context) error {
	docs, err := s.client.ListDocs(ctx, remote.UserOwner(s.user.UID), backupCollection)
	if err != nil {
		return fmt.Errorf("fetch personal backup: %w", err)
	}
	var items []model.MasterItem
	for _, doc := range docs {
		var mi model.MasterItem
		if err := docstore.Decode(doc, &mi); err != nil {
			continue
		}
		items = append(items, mi)
	}
	s.store.SetPersonalBackupItems(items)
	return nil
}

// LoadProfile returns the caller's remote profile, or a zero profile when
// none exists yet.
func (s *Service) LoadProfile(ctx context.Context) (Profile, error) {
	doc, err := s.client.GetDoc(ctx, remote.UserOwner(s.user.UID), profileCollection, profileDocID)
	if err != nil {
		return Profile{}, fmt.Errorf("load profile: %w", err)
	}
	if doc == nil {
		return Profile{}, nil
	}
	var p Profile
	if err := docstore.Decode(*doc, &p); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}

func (s *Service) currentGroup() *model.Group {
	snap := s.store.Snapshot()
	return snap.CurrentGroup
}

func (s *Service) selfMember(role string) model.GroupMember {
	return model.GroupMember{
		UID:         s.user.UID,
		DisplayName: s.user.DisplayName,
		Email:       s.user.Email,
		PhotoURL:    s.user.PhotoURL,
		Role:        role,
		JoinedAt:    time.Now().UTC().Format(time.RFC3339),
	}
}

// activate records the group in the profile and the local store.
func (s *Service) activate(ctx context.Context, g *model.Group) error {
	if err := s.saveProfile(ctx, g.ID); err != nil {
		return err
	}
	s.store.SetCurrentGroup(g)
	return nil
}

// deactivate clears the group from the profile and the local store,
// restoring the group-derived collections to empty.
func (s *Service) deactivate(ctx context.Context) error {
	if err := s.saveProfile(ctx, ""); err != nil {
		return err
	}
	s.store.SetCurrentGroup(nil)
	s.store.SetSharedTrips(nil, nil)
	s.store.SetPersonalBackupItems(nil)
	return nil
}

func (s *Service) saveProfile(ctx context.Context, groupID string) error {
	p := Profile{
		GroupID:     groupID,
		DisplayName: s.user.DisplayName,
		Email:       s.user.Email,
	}
	if err := s.client.PutDoc(ctx, remote.UserOwner(s.user.UID), profileCollection, profileDocID, p); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// backupPersonalItems snapshots the personal master list before the group
// list takes over, keyed by item id so re-joining overwrites cleanly.
func (s *Service) backupPersonalItems(ctx context.Context) error {
	snap := s.store.Snapshot()
	ops := make([]docstore.Op, 0, len(snap.MasterItems))
	for _, mi := range snap.MasterItems {
		data, err := docstore.Encode(mi)
		if err != nil {
			return err
		}
		ops = append(ops, docstore.Op{
			Method:     "put",
			OwnerKind:  docstore.OwnerUser,
			OwnerID:    s.user.UID,
			Collection: backupCollection,
			DocID:      mi.ID,
			Data:       data,
		})
	}
	if len(ops) == 0 {
		return nil
	}
	return s.client.BatchWrite(ctx, ops)
}
