package sync

import (
	"context"
	"time"

	"github.com/jtroost/packmule/internal/docstore"
	"github.com/jtroost/packmule/internal/group"
	"github.com/jtroost/packmule/internal/model"
	"github.com/jtroost/packmule/internal/remote"
	"github.com/jtroost/packmule/internal/websocket"
)

// metaCollection is where the server keeps group metadata; a change event
// there means the membership or invite code moved.
const metaCollection = "meta"

func (e *Engine) startWatch(ctx context.Context, gid string) {
	watchCtx, cancel := context.WithCancel(ctx)
	e.mu.Lock()
	e.watchStop = cancel
	e.mu.Unlock()

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()
		err := e.client.WatchGroup(watchCtx, gid, func(ev websocket.Event) {
			e.handleGroupEvent(watchCtx, ev)
		})
		if err != nil && watchCtx.Err() == nil {
			e.logger.Error("group watch ended", "group", gid, "error", err)
		}
	}()
}

func (e *Engine) stopWatch() {
	e.mu.Lock()
	stop := e.watchStop
	e.watchStop = nil
	e.mu.Unlock()
	if stop != nil {
		stop()
	}
	e.wg.Wait()
}

// cancelWatch stops the watcher without waiting for it. Used from inside
// the watch callback itself, where waiting would deadlock.
func (e *Engine) cancelWatch() {
	e.mu.Lock()
	stop := e.watchStop
	e.watchStop = nil
	e.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// handleGroupEvent reacts to another member's change. Events for the
// user's own writes are skipped: the local store already reflects them.
func (e *Engine) handleGroupEvent(ctx context.Context, ev websocket.Event) {
	if ev.ActorUID == e.user.UID {
		return
	}

	switch {
	case ev.Type == websocket.EventDeleted:
		e.logger.Info("group dissolved remotely", "group", ev.GroupID)
		e.dropGroupLocally()

	case ev.Collection == metaCollection:
		e.refreshGroupMeta(ctx, ev.GroupID)

	case ev.Collection == group.SharedTripsCollection,
		ev.Collection == group.SharedTripItemsCollection:
		if ev.Collection == group.SharedTripItemsCollection {
			e.foldSharedItemEdit(ctx, ev)
		}
		if err := e.groups.FetchSharedTrips(ctx); err != nil {
			e.logger.Warn("fetch shared trips", "error", err)
		}

	default:
		// Another member changed the shared master list.
		e.refreshFromRemote(ctx)
	}
}

// dropGroupLocally clears all group context after a remote dissolution.
func (e *Engine) dropGroupLocally() {
	e.cancelWatch()
	e.setGroupID("")
	e.store.SetCurrentGroup(nil)
	e.store.SetSharedTrips(nil, nil)
	e.store.SetPersonalBackupItems(nil)
}

// refreshGroupMeta re-reads the group after a metadata change, surfaces any
// newly joined members for a short while, and handles being removed.
func (e *Engine) refreshGroupMeta(ctx context.Context, gid string) {
	g, err := e.client.GetGroup(ctx, gid)
	if err != nil {
		e.logger.Warn("refresh group", "group", gid, "error", err)
		return
	}
	if g == nil {
		// Gone, or this user was removed; either way the group is over
		// for us.
		e.logger.Info("no longer a member", "group", gid)
		e.dropGroupLocally()
		return
	}

	var joined []string
	if prev := e.store.Snapshot().CurrentGroup; prev != nil {
		for uid := range g.Members {
			if _, ok := prev.Members[uid]; !ok && uid != e.user.UID {
				joined = append(joined, uid)
			}
		}
	}
	e.store.SetCurrentGroup(g)
	if len(joined) > 0 {
		e.store.SetNewMemberUIDs(joined)
		time.AfterFunc(newMemberBadgeDuration, e.store.ClearNewMemberUIDs)
	}
}

// foldSharedItemEdit applies another member's edit of an item on one of
// this user's own trips back into the local trip items. Without this the
// next flush would overwrite the edit with the stale local copy.
func (e *Engine) foldSharedItemEdit(ctx context.Context, ev websocket.Event) {
	doc, err := e.client.GetDoc(ctx, remote.GroupOwner(ev.GroupID), group.SharedTripItemsCollection, ev.DocID)
	if err != nil {
		e.logger.Warn("fetch shared item", "doc", ev.DocID, "error", err)
		return
	}
	if doc == nil {
		return
	}
	var edited model.TripItem
	if err := docstore.Decode(*doc, &edited); err != nil {
		e.logger.Warn("decode shared item", "doc", ev.DocID, "error", err)
		return
	}

	snap := e.store.Snapshot()
	for _, t := range snap.Trips {
		if t.ID == edited.TripID && t.CreatorID == e.user.UID {
			e.store.UpdateTripItem(edited.ID, func(it *model.TripItem) {
				it.Checked = edited.Checked
				it.Quantity = edited.Quantity
				it.Notes = edited.Notes
				it.Purchased = edited.Purchased
			})
			return
		}
	}
}

// refreshFromRemote pulls the remote collections and adopts them unless a
// local flush is pending, in which case the flush goes first and the
// collections converge on the other members' next event.
func (e *Engine) refreshFromRemote(ctx context.Context) {
	e.mu.Lock()
	busy := e.syncing || e.timer != nil
	e.mu.Unlock()
	if busy {
		e.logger.Debug("skipping remote refresh, local changes pending")
		return
	}

	remoteDoc, empty, err := e.pull(ctx)
	if err != nil {
		e.logger.Warn("refresh from remote", "error", err)
		return
	}
	if empty {
		return
	}
	e.store.ReplaceCollections(remoteDoc)
	e.setLastHash(Fingerprint(remoteDoc))
}
