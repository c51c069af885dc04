package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/jtroost/packmule/internal/auth"
	"github.com/jtroost/packmule/internal/docstore"
	"github.com/jtroost/packmule/internal/model"
	"github.com/jtroost/packmule/internal/websocket"
)

// Group metadata lives in the group's own tree so one batch can touch the
// members and the shared list together.
const (
	groupMetaCollection = "meta"
	groupMetaDocID      = "group"
)

// loadGroup fetches and decodes a group's metadata document. Returns nil
// without error when the group does not exist.
func loadGroup(store *docstore.Store, gid string) (*model.Group, error) {
	doc, err := store.Get(docstore.Owner{Kind: docstore.OwnerGroup, ID: gid}, groupMetaCollection, groupMetaDocID)
	if err != nil || doc == nil {
		return nil, err
	}
	var g model.Group
	if err := json.Unmarshal(doc.Data, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// GroupHandler manages group metadata: creation, membership changes, invite
// code lookup, and dissolution.
type GroupHandler struct {
	store  *docstore.Store
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewGroupHandler(store *docstore.Store, hub *websocket.Hub, logger *slog.Logger) *GroupHandler {
	return &GroupHandler{store: store, hub: hub, logger: logger}
}

// Get returns a group's metadata. Members see everything; non-members get
// 404 so group ids can't be probed.
func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	gid := r.PathValue("id")
	group, err := loadGroup(h.store, gid)
	if err != nil {
		h.logger.Error("load group", "group", gid, "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to load group")
		return
	}
	if group == nil {
		errorJSON(w, http.StatusNotFound, "group not found")
		return
	}
	if _, ok := group.Members[auth.UID(r.Context())]; !ok {
		errorJSON(w, http.StatusNotFound, "group not found")
		return
	}
	writeJSON(w, http.StatusOK, group)
}

// Put creates or updates a group's metadata. Creation requires the caller
// to be the owner-member of the new group. Updates by members are free-form;
// a non-member may only add themselves (the invite-code join flow).
func (h *GroupHandler) Put(w http.ResponseWriter, r *http.Request) {
	gid := r.PathValue("id")
	uid := auth.UID(r.Context())

	var incoming model.Group
	if err := json.NewDecoder(io.LimitReader(r.Body, maxDocumentBytes)).Decode(&incoming); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if incoming.ID != gid {
		errorJSON(w, http.StatusBadRequest, "group id mismatch")
		return
	}
	if len(incoming.Members) == 0 {
		errorJSON(w, http.StatusBadRequest, "group needs members")
		return
	}

	existing, err := loadGroup(h.store, gid)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to load group")
		return
	}

	if existing == nil {
		member, ok := incoming.Members[uid]
		if !ok || incoming.OwnerID != uid || member.Role != model.RoleOwner {
			errorJSON(w, http.StatusForbidden, "new group must be owned by you")
			return
		}
	} else if _, ok := existing.Members[uid]; !ok {
		if !isSelfJoin(existing, &incoming, uid) {
			errorJSON(w, http.StatusForbidden, "not a group member")
			return
		}
	}

	data, err := json.Marshal(incoming)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to encode group")
		return
	}
	owner := docstore.Owner{Kind: docstore.OwnerGroup, ID: gid}
	if err := h.store.Put(owner, groupMetaCollection, groupMetaDocID, data); err != nil {
		h.logger.Error("store group", "group", gid, "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to store group")
		return
	}

	h.hub.Broadcast(websocket.Event{
		Type:       websocket.EventChanged,
		GroupID:    gid,
		Collection: groupMetaCollection,
		DocID:      groupMetaDocID,
		ActorUID:   uid,
	})
	writeJSON(w, http.StatusOK, incoming)
}

// isSelfJoin reports whether incoming differs from existing only by adding
// uid as a plain member, with everything else intact.
func isSelfJoin(existing, incoming *model.Group, uid string) bool {
	if incoming.OwnerID != existing.OwnerID ||
		incoming.Name != existing.Name ||
		incoming.InviteCode != existing.InviteCode {
		return false
	}
	if len(incoming.Members) != len(existing.Members)+1 {
		return false
	}
	added, ok := incoming.Members[uid]
	if !ok || added.Role != model.RoleMember {
		return false
	}
	for id := range existing.Members {
		if _, ok := incoming.Members[id]; !ok {
			return false
		}
	}
	return true
}

// Delete dissolves a group and every document under it. Owner only.
func (h *GroupHandler) Delete(w http.ResponseWriter, r *http.Request) {
	gid := r.PathValue("id")
	uid := auth.UID(r.Context())

	group, err := loadGroup(h.store, gid)
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to load group")
		return
	}
	if group == nil {
		errorJSON(w, http.StatusNotFound, "group not found")
		return
	}
	if group.OwnerID != uid {
		errorJSON(w, http.StatusForbidden, "only the owner can delete the group")
		return
	}

	if err := h.store.DeleteOwner(docstore.Owner{Kind: docstore.OwnerGroup, ID: gid}); err != nil {
		h.logger.Error("delete group", "group", gid, "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to delete group")
		return
	}

	h.hub.Broadcast(websocket.Event{Type: websocket.EventDeleted, GroupID: gid, ActorUID: uid})
	w.WriteHeader(http.StatusNoContent)
}

// Lookup finds a group by invite code. This is the one cross-group query,
// and the entry point for joining, so it sits behind a rate limit.
func (h *GroupHandler) Lookup(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("inviteCode")
	if code == "" {
		errorJSON(w, http.StatusBadRequest, "missing inviteCode")
		return
	}

	docs, err := h.store.FindByField(docstore.OwnerGroup, groupMetaCollection, "inviteCode", code)
	if err != nil {
		h.logger.Error("lookup group", "error", err)
		errorJSON(w, http.StatusInternalServerError, "lookup failed")
		return
	}
	if len(docs) == 0 {
		errorJSON(w, http.StatusNotFound, "no group with that invite code")
		return
	}

	var g model.Group
	if err := json.Unmarshal(docs[0].Data, &g); err != nil {
		errorJSON(w, http.StatusInternalServerError, "corrupt group document")
		return
	}
	writeJSON(w, http.StatusOK, g)
}
