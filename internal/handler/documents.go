package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/jtroost/packmule/internal/auth"
	"github.com/jtroost/packmule/internal/docstore"
	"github.com/jtroost/packmule/internal/websocket"
)

const (
	maxDocumentBytes = 1 << 20 // 1 MiB per document
	maxBatchOps      = 500
)

// DocumentHandler serves the raw document API the sync clients mirror
// their state through: per-user and per-group collections of JSON docs,
// plus a transactional batch endpoint for upsert-and-prune flushes.
type DocumentHandler struct {
	store  *docstore.Store
	hub    *websocket.Hub
	logger *slog.Logger
}

func NewDocumentHandler(store *docstore.Store, hub *websocket.Hub, logger *slog.Logger) *DocumentHandler {
	return &DocumentHandler{store: store, hub: hub, logger: logger}
}

// userOwner resolves the {uid} path segment, enforcing that callers only
// touch their own tree.
func (h *DocumentHandler) userOwner(w http.ResponseWriter, r *http.Request) (docstore.Owner, bool) {
	uid := r.PathValue("uid")
	if uid == "" {
		errorJSON(w, http.StatusBadRequest, "missing uid")
		return docstore.Owner{}, false
	}
	if uid != auth.UID(r.Context()) {
		errorJSON(w, http.StatusForbidden, "not your documents")
		return docstore.Owner{}, false
	}
	return docstore.Owner{Kind: docstore.OwnerUser, ID: uid}, true
}

// groupOwner resolves the {id} path segment and checks membership.
func (h *DocumentHandler) groupOwner(w http.ResponseWriter, r *http.Request) (docstore.Owner, bool) {
	gid := r.PathValue("id")
	if gid == "" {
		errorJSON(w, http.StatusBadRequest, "missing group id")
		return docstore.Owner{}, false
	}
	group, err := loadGroup(h.store, gid)
	if err != nil {
		h.logger.Error("load group", "group", gid, "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to load group")
		return docstore.Owner{}, false
	}
	if group == nil {
		errorJSON(w, http.StatusNotFound, "group not found")
		return docstore.Owner{}, false
	}
	if _, ok := group.Members[auth.UID(r.Context())]; !ok {
		errorJSON(w, http.StatusForbidden, "not a group member")
		return docstore.Owner{}, false
	}
	return docstore.Owner{Kind: docstore.OwnerGroup, ID: gid}, true
}

func (h *DocumentHandler) list(w http.ResponseWriter, r *http.Request, owner docstore.Owner) {
	collection := r.PathValue("collection")
	docs, err := h.store.List(owner, collection)
	if err != nil {
		h.logger.Error("list documents", "owner", owner.ID, "collection", collection, "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []docstore.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

func (h *DocumentHandler) get(w http.ResponseWriter, r *http.Request, owner docstore.Owner) {
	doc, err := h.store.Get(owner, r.PathValue("collection"), r.PathValue("docId"))
	if err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to get document")
		return
	}
	if doc == nil {
		errorJSON(w, http.StatusNotFound, "document not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *DocumentHandler) put(w http.ResponseWriter, r *http.Request, owner docstore.Owner) {
	data, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentBytes+1))
	if err != nil {
		errorJSON(w, http.StatusBadRequest, "failed to read body")
		return
	}
	if len(data) > maxDocumentBytes {
		errorJSON(w, http.StatusRequestEntityTooLarge, "document too large")
		return
	}
	if !json.Valid(data) {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	collection, docID := r.PathValue("collection"), r.PathValue("docId")
	if err := h.store.Put(owner, collection, docID, data); err != nil {
		h.logger.Error("put document", "owner", owner.ID, "collection", collection, "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to store document")
		return
	}

	if owner.Kind == docstore.OwnerGroup {
		h.hub.Broadcast(websocket.Event{
			Type:       websocket.EventChanged,
			GroupID:    owner.ID,
			Collection: collection,
			DocID:      docID,
			ActorUID:   auth.UID(r.Context()),
		})
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *DocumentHandler) delete(w http.ResponseWriter, r *http.Request, owner docstore.Owner) {
	collection, docID := r.PathValue("collection"), r.PathValue("docId")
	if err := h.store.Delete(owner, collection, docID); err != nil {
		errorJSON(w, http.StatusInternalServerError, "failed to delete document")
		return
	}
	if owner.Kind == docstore.OwnerGroup {
		h.hub.Broadcast(websocket.Event{
			Type:       websocket.EventChanged,
			GroupID:    owner.ID,
			Collection: collection,
			DocID:      docID,
			ActorUID:   auth.UID(r.Context()),
		})
	}
	w.WriteHeader(http.StatusNoContent)
}

// User document routes.

func (h *DocumentHandler) ListUserDocs(w http.ResponseWriter, r *http.Request) {
	if owner, ok := h.userOwner(w, r); ok {
		h.list(w, r, owner)
	}
}

func (h *DocumentHandler) GetUserDoc(w http.ResponseWriter, r *http.Request) {
	if owner, ok := h.userOwner(w, r); ok {
		h.get(w, r, owner)
	}
}

func (h *DocumentHandler) PutUserDoc(w http.ResponseWriter, r *http.Request) {
	if owner, ok := h.userOwner(w, r); ok {
		h.put(w, r, owner)
	}
}

func (h *DocumentHandler) DeleteUserDoc(w http.ResponseWriter, r *http.Request) {
	if owner, ok := h.userOwner(w, r); ok {
		h.delete(w, r, owner)
	}
}

// Group document routes.

func (h *DocumentHandler) ListGroupDocs(w http.ResponseWriter, r *http.Request) {
	if owner, ok := h.groupOwner(w, r); ok {
		h.list(w, r, owner)
	}
}

func (h *DocumentHandler) GetGroupDoc(w http.ResponseWriter, r *http.Request) {
	if owner, ok := h.groupOwner(w, r); ok {
		h.get(w, r, owner)
	}
}

func (h *DocumentHandler) PutGroupDoc(w http.ResponseWriter, r *http.Request) {
	if owner, ok := h.groupOwner(w, r); ok {
		h.put(w, r, owner)
	}
}

func (h *DocumentHandler) DeleteGroupDoc(w http.ResponseWriter, r *http.Request) {
	if owner, ok := h.groupOwner(w, r); ok {
		h.delete(w, r, owner)
	}
}

// Batch applies a set of ops atomically. Every op must target the caller's
// own tree or a group the caller belongs to.
func (h *DocumentHandler) Batch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Ops []docstore.Op `json:"ops"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 16<<20)).Decode(&req); err != nil {
		errorJSON(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if len(req.Ops) == 0 {
		errorJSON(w, http.StatusBadRequest, "empty batch")
		return
	}
	if len(req.Ops) > maxBatchOps {
		errorJSON(w, http.StatusBadRequest, "too many ops")
		return
	}

	uid := auth.UID(r.Context())
	memberOf := make(map[string]bool)
	for _, op := range req.Ops {
		switch op.OwnerKind {
		case docstore.OwnerUser:
			if op.OwnerID != uid {
				errorJSON(w, http.StatusForbidden, "batch touches another user's documents")
				return
			}
		case docstore.OwnerGroup:
			ok, cached := memberOf[op.OwnerID]
			if !cached {
				group, err := loadGroup(h.store, op.OwnerID)
				if err != nil {
					errorJSON(w, http.StatusInternalServerError, "failed to load group")
					return
				}
				if group != nil {
					_, ok = group.Members[uid]
				}
				memberOf[op.OwnerID] = ok
			}
			if !ok {
				errorJSON(w, http.StatusForbidden, "batch touches a group you are not in")
				return
			}
		default:
			errorJSON(w, http.StatusBadRequest, "unknown owner kind")
			return
		}
		if op.Method == "put" && (len(op.Data) > maxDocumentBytes || !json.Valid(op.Data)) {
			errorJSON(w, http.StatusBadRequest, "invalid document data")
			return
		}
	}

	if err := h.store.ApplyBatch(req.Ops); err != nil {
		h.logger.Error("apply batch", "ops", len(req.Ops), "error", err)
		errorJSON(w, http.StatusInternalServerError, "failed to apply batch")
		return
	}

	notified := make(map[string]bool)
	for _, op := range req.Ops {
		if op.OwnerKind == docstore.OwnerGroup && !notified[op.OwnerID] {
			notified[op.OwnerID] = true
			h.hub.Broadcast(websocket.Event{
				Type:     websocket.EventChanged,
				GroupID:  op.OwnerID,
				ActorUID: uid,
			})
		}
	}

	writeJSON(w, http.StatusOK, map[string]int{"applied": len(req.Ops)})
}
