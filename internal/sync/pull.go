package sync

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/jtroost/packmule/internal/docstore"
	"github.com/jtroost/packmule/internal/group"
	"github.com/jtroost/packmule/internal/model"
	"github.com/jtroost/packmule/internal/remote"
	"github.com/jtroost/packmule/internal/state"
)

// listInto fetches one collection and decodes every document into T.
func listInto[T any](ctx context.Context, c *remote.Client, owner docstore.Owner, collection string) ([]T, error) {
	docs, err := c.ListDocs(ctx, owner, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		var v T
		if err := docstore.Decode(d, &v); err != nil {
			return nil, fmt.Errorf("decode %s/%s: %w", collection, d.ID, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// pull downloads the five syncable collections. Master collections come
// from the group tree when a group is active, trips and trip items always
// from the user's own tree. The empty result reports a never-used remote.
func (e *Engine) pull(ctx context.Context) (state.Persisted, bool, error) {
	master := e.masterOwner()
	user := e.userOwner()

	var p state.Persisted
	var err error
	if p.Categories, err = listInto[model.Category](ctx, e.client, master, colCategories); err != nil {
		return p, false, err
	}
	if p.MasterItems, err = listInto[model.MasterItem](ctx, e.client, master, colMasterItems); err != nil {
		return p, false, err
	}
	if p.CustomActivities, err = listInto[model.CustomActivity](ctx, e.client, master, colCustomActivities); err != nil {
		return p, false, err
	}
	if p.Trips, err = listInto[model.Trip](ctx, e.client, user, colTrips); err != nil {
		return p, false, err
	}
	if p.TripItems, err = listInto[model.TripItem](ctx, e.client, user, colTripItems); err != nil {
		return p, false, err
	}

	empty := len(p.Categories) == 0 && len(p.MasterItems) == 0 &&
		len(p.CustomActivities) == 0 && len(p.Trips) == 0 && len(p.TripItems) == 0
	p.Initialized = !empty
	return p, empty, nil
}

// collectionPlan is one collection's flush target: where it lives remotely
// and the local documents keyed by id.
type collectionPlan struct {
	owner      docstore.Owner
	collection string
	docs       map[string]any
}

func docMap[T any](items []T, id func(T) string) map[string]any {
	m := make(map[string]any, len(items))
	for _, it := range items {
		m[id(it)] = it
	}
	return m
}

// buildOps plans a full flush of the snapshot: an upsert for every local
// document and a delete for every remote document no longer present
// locally, with all upserts ordered before the deletes so an interrupted
// multi-chunk write never leaves a collection emptier than either side.
// When a group is active, the user's group trips and their items are also
// published into the group's shared collections.
func (e *Engine) buildOps(ctx context.Context, p state.Persisted) ([]docstore.Op, error) {
	plans := []collectionPlan{
		{e.masterOwner(), colCategories, docMap(p.Categories, func(c model.Category) string { return c.ID })},
		{e.masterOwner(), colMasterItems, docMap(p.MasterItems, func(m model.MasterItem) string { return m.ID })},
		{e.masterOwner(), colCustomActivities, docMap(p.CustomActivities, func(a model.CustomActivity) string { return a.ID })},
		{e.userOwner(), colTrips, docMap(p.Trips, func(t model.Trip) string { return t.ID })},
		{e.userOwner(), colTripItems, docMap(p.TripItems, func(i model.TripItem) string { return i.ID })},
	}

	var puts, prunes []docstore.Op
	var errs error

	appendPut := func(owner docstore.Owner, collection, id string, v any) {
		data, err := docstore.Encode(v)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("encode %s/%s: %w", collection, id, err))
			return
		}
		puts = append(puts, docstore.Op{
			Method:     "put",
			OwnerKind:  owner.Kind,
			OwnerID:    owner.ID,
			Collection: collection,
			DocID:      id,
			Data:       data,
		})
	}
	appendPrune := func(owner docstore.Owner, collection, id string) {
		prunes = append(prunes, docstore.Op{
			Method:     "delete",
			OwnerKind:  owner.Kind,
			OwnerID:    owner.ID,
			Collection: collection,
			DocID:      id,
		})
	}

	for _, plan := range plans {
		remoteDocs, err := e.client.ListDocs(ctx, plan.owner, plan.collection)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("list %s for prune: %w", plan.collection, err))
			continue
		}
		for id, v := range plan.docs {
			appendPut(plan.owner, plan.collection, id, v)
		}
		for _, doc := range remoteDocs {
			if _, ok := plan.docs[doc.ID]; !ok {
				appendPrune(plan.owner, plan.collection, doc.ID)
			}
		}
	}

	if gid := e.activeGroupID(); gid != "" {
		sharedPuts, sharedPrunes, err := e.planSharedPublication(ctx, gid, p)
		if err != nil {
			errs = multierr.Append(errs, err)
		}
		puts = append(puts, sharedPuts...)
		prunes = append(prunes, sharedPrunes...)
	}

	if errs != nil {
		return nil, errs
	}
	return append(puts, prunes...), nil
}

// planSharedPublication mirrors the user's group-shared trips into the
// group tree, where other members read them, and withdraws copies of trips
// that no longer exist locally. Only documents this user authored are ever
// touched; other members' publications stay theirs.
func (e *Engine) planSharedPublication(ctx context.Context, gid string, p state.Persisted) (puts, prunes []docstore.Op, err error) {
	owner := remote.GroupOwner(gid)

	mine := make(map[string]model.Trip)
	for _, t := range p.Trips {
		if t.GroupID == gid && t.CreatorID == e.user.UID {
			mine[t.ID] = t
		}
	}
	myItems := make(map[string]model.TripItem)
	for _, it := range p.TripItems {
		if _, ok := mine[it.TripID]; ok {
			myItems[it.ID] = it
		}
	}

	var errs error
	appendPut := func(collection, id string, v any) {
		data, encErr := docstore.Encode(v)
		if encErr != nil {
			errs = multierr.Append(errs, fmt.Errorf("encode %s/%s: %w", collection, id, encErr))
			return
		}
		puts = append(puts, docstore.Op{
			Method:     "put",
			OwnerKind:  owner.Kind,
			OwnerID:    owner.ID,
			Collection: collection,
			DocID:      id,
			Data:       data,
		})
	}

	for id, t := range mine {
		appendPut(group.SharedTripsCollection, id, t)
	}
	for id, it := range myItems {
		appendPut(group.SharedTripItemsCollection, id, it)
	}

	// Trip ids this user has ever published, remote and local, so item
	// pruning below only touches items under the user's own trips.
	owned := make(map[string]bool, len(mine))
	for id := range mine {
		owned[id] = true
	}

	remoteTrips, err := e.client.ListDocs(ctx, owner, group.SharedTripsCollection)
	if err != nil {
		return puts, prunes, multierr.Append(errs, fmt.Errorf("list shared trips for prune: %w", err))
	}
	for _, doc := range remoteTrips {
		var t model.Trip
		if decErr := docstore.Decode(doc, &t); decErr != nil {
			e.logger.Warn("skipping malformed shared trip", "doc", doc.ID, "error", decErr)
			continue
		}
		if t.CreatorID != e.user.UID {
			continue
		}
		owned[doc.ID] = true
		if _, ok := mine[doc.ID]; !ok {
			prunes = append(prunes, docstore.Op{
				Method: "delete", OwnerKind: owner.Kind, OwnerID: owner.ID,
				Collection: group.SharedTripsCollection, DocID: doc.ID,
			})
		}
	}

	remoteItems, err := e.client.ListDocs(ctx, owner, group.SharedTripItemsCollection)
	if err != nil {
		return puts, prunes, multierr.Append(errs, fmt.Errorf("list shared trip items for prune: %w", err))
	}
	for _, doc := range remoteItems {
		var it model.TripItem
		if decErr := docstore.Decode(doc, &it); decErr != nil {
			e.logger.Warn("skipping malformed shared trip item", "doc", doc.ID, "error", decErr)
			continue
		}
		if !owned[it.TripID] {
			continue
		}
		if _, ok := myItems[doc.ID]; !ok {
			prunes = append(prunes, docstore.Op{
				Method: "delete", OwnerKind: owner.Kind, OwnerID: owner.ID,
				Collection: group.SharedTripItemsCollection, DocID: doc.ID,
			})
		}
	}

	return puts, prunes, errs
}
