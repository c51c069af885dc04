package remote_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jtroost/packmule/internal/auth"
	"github.com/jtroost/packmule/internal/database"
	"github.com/jtroost/packmule/internal/docstore"
	"github.com/jtroost/packmule/internal/model"
	"github.com/jtroost/packmule/internal/remote"
	"github.com/jtroost/packmule/internal/server"
	"github.com/jtroost/packmule/internal/websocket"
)

func newTestClient(t *testing.T, uid string, batchLimit int) *remote.Client {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ts := httptest.NewServer(server.New(db, issuer, logger).Router())
	t.Cleanup(ts.Close)

	token, err := issuer.Mint(auth.Principal{UID: uid})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return remote.NewClient(remote.Config{
		BaseURL:    ts.URL,
		Token:      token,
		BatchLimit: batchLimit,
	}, logger)
}

func TestDocRoundTrip(t *testing.T) {
	c := newTestClient(t, "alice", 0)
	ctx := context.Background()
	owner := remote.UserOwner("alice")

	trip := model.Trip{ID: "t-1", Name: "Lakes", PeopleCount: 2}
	if err := c.PutDoc(ctx, owner, "trips", trip.ID, trip); err != nil {
		t.Fatalf("put: %v", err)
	}

	doc, err := c.GetDoc(ctx, owner, "trips", "t-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc == nil {
		t.Fatal("document missing")
	}
	var got model.Trip
	if err := json.Unmarshal(doc.Data, &got); err != nil || got.Name != "Lakes" {
		t.Fatalf("data = %s", doc.Data)
	}

	docs, err := c.ListDocs(ctx, owner, "trips")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("docs = %+v", docs)
	}

	if err := c.DeleteDoc(ctx, owner, "trips", "t-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	doc, err = c.GetDoc(ctx, owner, "trips", "t-1")
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if doc != nil {
		t.Fatal("document survived delete")
	}
}

func TestBatchWriteChunks(t *testing.T) {
	c := newTestClient(t, "alice", 2)
	ctx := context.Background()

	var ops []docstore.Op
	for _, id := range []string{"m-1", "m-2", "m-3", "m-4", "m-5"} {
		ops = append(ops, docstore.Op{
			Method: "put", OwnerKind: docstore.OwnerUser, OwnerID: "alice",
			Collection: "masterItems", DocID: id, Data: json.RawMessage(`{}`),
		})
	}
	if err := c.BatchWrite(ctx, ops); err != nil {
		t.Fatalf("batch write: %v", err)
	}

	docs, err := c.ListDocs(ctx, remote.UserOwner("alice"), "masterItems")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 5 {
		t.Fatalf("got %d docs, want 5 across 3 chunks", len(docs))
	}
}

func TestGroupOpsAndWatch(t *testing.T) {
	c := newTestClient(t, "alice", 0)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	group := &model.Group{
		ID: "g-1", Name: "Trip crew", OwnerID: "alice", InviteCode: "ABC234",
		Members: map[string]model.GroupMember{
			"alice": {UID: "alice", Role: model.RoleOwner},
		},
	}
	if err := c.PutGroup(ctx, group); err != nil {
		t.Fatalf("put group: %v", err)
	}

	got, err := c.GetGroup(ctx, "g-1")
	if err != nil {
		t.Fatalf("get group: %v", err)
	}
	if got == nil || got.InviteCode != "ABC234" {
		t.Fatalf("group = %+v", got)
	}

	found, err := c.FindGroupByInviteCode(ctx, "ABC234")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	if found == nil || found.ID != "g-1" {
		t.Fatalf("lookup = %+v", found)
	}
	if missing, err := c.FindGroupByInviteCode(ctx, "ZZZZZZ"); err != nil || missing != nil {
		t.Fatalf("lookup miss = %+v, err = %v", missing, err)
	}

	// Watch picks up a write to the group's collections.
	events := make(chan websocket.Event, 4)
	var wg sync.WaitGroup
	watchCtx, stopWatch := context.WithCancel(ctx)
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.WatchGroup(watchCtx, "g-1", func(ev websocket.Event) {
			events <- ev
		})
	}()

	time.Sleep(100 * time.Millisecond)
	if err := c.PutDoc(ctx, remote.GroupOwner("g-1"), "masterItems", "m-1", map[string]string{"name": "Tent"}); err != nil {
		t.Fatalf("group put: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Type != websocket.EventChanged || ev.GroupID != "g-1" {
			t.Fatalf("event = %+v", ev)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no watch event received")
	}

	stopWatch()
	wg.Wait()

	if err := c.DeleteGroup(ctx, "g-1"); err != nil {
		t.Fatalf("delete group: %v", err)
	}
	if got, err := c.GetGroup(ctx, "g-1"); err != nil || got != nil {
		t.Fatalf("group after delete = %+v, err = %v", got, err)
	}
}
