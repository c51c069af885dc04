// Package sync keeps the local store and the remote document tree
// converged: a content-hash debounced push of local edits, a pull-on-start
// (and on refresh) where the remote copy wins, and a group watch that folds
// other members' changes in as they happen.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	stdsync "sync"
	"time"

	"github.com/jtroost/packmule/internal/docstore"
	"github.com/jtroost/packmule/internal/group"
	"github.com/jtroost/packmule/internal/model"
	"github.com/jtroost/packmule/internal/remote"
	"github.com/jtroost/packmule/internal/state"
)

// Collection names mirrored between the store and the remote tree.
const (
	colCategories       = "categories"
	colMasterItems      = "masterItems"
	colTrips            = "trips"
	colTripItems        = "tripItems"
	colCustomActivities = "customActivities"
)

const (
	// DefaultDebounce batches rapid edits into one flush.
	DefaultDebounce = 2 * time.Second
	// newMemberBadgeDuration is how long a "new member joined" notice
	// stays up before clearing itself.
	newMemberBadgeDuration = 10 * time.Second
)

// Config tunes the engine. Zero values take the defaults.
type Config struct {
	Debounce time.Duration
}

// Engine owns the client side of synchronization for one signed-in user.
type Engine struct {
	store  *state.Store
	client *remote.Client
	groups *group.Service
	user   model.User
	cfg    Config
	logger *slog.Logger

	mu        stdsync.Mutex
	runCtx    context.Context
	lastHash  string
	timer     *time.Timer
	syncing   bool
	groupID   string
	watchStop context.CancelFunc
	wg        stdsync.WaitGroup
}

func NewEngine(store *state.Store, client *remote.Client, groups *group.Service, user model.User, cfg Config, logger *slog.Logger) *Engine {
	if cfg.Debounce == 0 {
		cfg.Debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store,
		client: client,
		groups: groups,
		user:   user,
		cfg:    cfg,
		logger: logger.With("component", "sync"),
	}
}

// Start performs the initial reconciliation and begins watching the store.
// On an empty remote the local state is uploaded wholesale (first device);
// otherwise the remote copy wins and replaces the local collections.
func (e *Engine) Start(ctx context.Context) error {
	e.mu.Lock()
	e.runCtx = ctx
	e.mu.Unlock()

	profile, err := e.groups.LoadProfile(ctx)
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if profile.GroupID != "" {
		g, err := e.client.GetGroup(ctx, profile.GroupID)
		if err != nil {
			return fmt.Errorf("load group: %w", err)
		}
		if g == nil {
			e.logger.Warn("profile references a gone group, syncing personally", "group", profile.GroupID)
		} else {
			e.store.SetCurrentGroup(g)
			e.setGroupID(g.ID)
		}
	}

	remoteDoc, empty, err := e.pull(ctx)
	if err != nil {
		return fmt.Errorf("initial pull: %w", err)
	}
	if empty {
		e.logger.Info("remote is empty, uploading local state")
		if err := e.Flush(ctx); err != nil {
			return fmt.Errorf("initial upload: %w", err)
		}
	} else {
		e.store.ReplaceCollections(remoteDoc)
		e.setLastHash(Fingerprint(remoteDoc))
	}

	e.store.Subscribe(e.onChange)

	if gid := e.activeGroupID(); gid != "" {
		if err := e.groups.FetchPersonalBackup(ctx); err != nil {
			e.logger.Warn("fetch personal backup", "error", err)
		}
		if err := e.groups.FetchSharedTrips(ctx); err != nil {
			e.logger.Warn("fetch shared trips", "error", err)
		}
		e.startWatch(ctx, gid)
	}
	return nil
}

// Stop cancels the debounce timer and the group watch, then waits for the
// watcher to exit. Pending local changes stay in the on-device slot and
// flush on the next Start.
func (e *Engine) Stop() {
	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	stop := e.watchStop
	e.watchStop = nil
	e.mu.Unlock()

	if stop != nil {
		stop()
	}
	e.wg.Wait()
}

// Refresh discards any pending flush, re-resolves group membership and
// re-pulls the remote copy, which wins. Called when the app returns to the
// foreground so a stale device never overwrites fresher remote data, and
// so a leave, removal or dissolution that happened while the device was
// away takes effect here too. While a flush is in flight the refresh is
// skipped rather than queued; the next one converges.
func (e *Engine) Refresh(ctx context.Context) error {
	e.mu.Lock()
	if e.syncing {
		e.mu.Unlock()
		e.logger.Debug("skipping refresh, flush in flight")
		return nil
	}
	e.syncing = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	runCtx := e.runCtx
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.syncing = false
		e.mu.Unlock()
	}()

	profile, err := e.groups.LoadProfile(ctx)
	if err != nil {
		return fmt.Errorf("refresh profile: %w", err)
	}
	prev := e.activeGroupID()
	var g *model.Group
	if profile.GroupID != "" {
		g, err = e.client.GetGroup(ctx, profile.GroupID)
		if err != nil {
			return fmt.Errorf("refresh group: %w", err)
		}
	}
	switch {
	case g == nil && prev != "":
		e.logger.Info("no longer a member, back to personal sync", "group", prev)
		e.dropGroupLocally()
	case g != nil:
		e.store.SetCurrentGroup(g)
		e.setGroupID(g.ID)
	}

	remoteDoc, empty, err := e.pull(ctx)
	if err != nil {
		return fmt.Errorf("refresh pull: %w", err)
	}
	if !empty {
		e.store.ReplaceCollections(remoteDoc)
		e.setLastHash(Fingerprint(remoteDoc))
	}

	if g != nil {
		if err := e.groups.FetchSharedTrips(ctx); err != nil {
			e.logger.Warn("fetch shared trips", "error", err)
		}
		e.mu.Lock()
		watching := e.watchStop != nil
		e.mu.Unlock()
		if g.ID != prev || !watching {
			e.stopWatch()
			if runCtx == nil {
				runCtx = ctx
			}
			e.startWatch(runCtx, g.ID)
		}
	}
	return nil
}

// AdoptGroup switches the engine onto the group currently active in the
// store: master collections start flushing to the group tree and the
// watch begins. Call after a successful group create or join.
func (e *Engine) AdoptGroup(ctx context.Context) error {
	snap := e.store.Snapshot()
	if snap.CurrentGroup == nil {
		return group.ErrNoGroup
	}
	gid := snap.CurrentGroup.ID
	if e.activeGroupID() == gid {
		return nil
	}

	e.stopWatch()
	e.setGroupID(gid)

	// First member in brings their list; later joiners adopt the group's
	// list when it already has one.
	remoteDoc, empty, err := e.pull(ctx)
	if err != nil {
		return fmt.Errorf("pull group state: %w", err)
	}
	if empty || len(remoteDoc.MasterItems) == 0 {
		if err := e.Flush(ctx); err != nil {
			return fmt.Errorf("seed group state: %w", err)
		}
	} else {
		e.store.ReplaceCollections(remoteDoc)
		e.setLastHash(Fingerprint(remoteDoc))
	}

	if err := e.groups.FetchSharedTrips(ctx); err != nil {
		e.logger.Warn("fetch shared trips", "error", err)
	}
	e.startWatch(ctx, gid)
	return nil
}

// DropGroup switches the engine back to personal sync, flushing the
// current list into the user's own tree. It is the second half of leaving:
// call it right after group.Service.Leave or Delete succeeds, so the list
// the user was working with follows them onto the personal path.
func (e *Engine) DropGroup(ctx context.Context) error {
	if e.activeGroupID() == "" {
		return nil
	}
	e.stopWatch()
	e.setGroupID("")
	if err := e.Flush(ctx); err != nil {
		return fmt.Errorf("flush personal state: %w", err)
	}
	return nil
}

// Flush pushes the current snapshot: every local document is upserted and
// every remote document with no local counterpart is pruned, in one
// batched write. Safe to call concurrently; overlapping calls collapse
// into one.
func (e *Engine) Flush(ctx context.Context) error {
	e.mu.Lock()
	if e.syncing {
		e.mu.Unlock()
		return nil
	}
	e.syncing = true
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.syncing = false
		e.mu.Unlock()
		e.rescheduleIfDirty()
	}()

	snap := e.store.Snapshot()
	p := snap.Persisted()

	ops, err := e.buildOps(ctx, p)
	if err != nil {
		return fmt.Errorf("plan flush: %w", err)
	}
	if err := e.client.BatchWrite(ctx, ops); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	e.setLastHash(Fingerprint(p))
	e.logger.Debug("flushed", "ops", len(ops))
	return nil
}

// onChange is the store subscriber: hash the syncable subset, and when it
// moved, arm (or re-arm) the debounce timer.
func (e *Engine) onChange(st state.State) {
	h := Fingerprint(st.Persisted())

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.syncing || h == e.lastHash {
		return
	}
	e.scheduleLocked()
}

func (e *Engine) scheduleLocked() {
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(e.cfg.Debounce, func() {
		if err := e.Flush(context.Background()); err != nil {
			e.logger.Error("debounced flush", "error", err)
		}
	})
}

// rescheduleIfDirty re-arms the debounce when edits landed while a flush
// was in flight, so nothing is silently dropped.
func (e *Engine) rescheduleIfDirty() {
	h := Fingerprint(e.store.Snapshot().Persisted())
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.syncing && h != e.lastHash {
		e.scheduleLocked()
	}
}

func (e *Engine) setLastHash(h string) {
	e.mu.Lock()
	e.lastHash = h
	e.mu.Unlock()
}

func (e *Engine) setGroupID(gid string) {
	e.mu.Lock()
	e.groupID = gid
	e.mu.Unlock()
}

func (e *Engine) activeGroupID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.groupID
}

// masterOwner is where the shared list collections live: the group tree
// when a group is active, otherwise the user's own tree.
func (e *Engine) masterOwner() docstore.Owner {
	if gid := e.activeGroupID(); gid != "" {
		return remote.GroupOwner(gid)
	}
	return remote.UserOwner(e.user.UID)
}

func (e *Engine) userOwner() docstore.Owner {
	return remote.UserOwner(e.user.UID)
}
