package docstore

import (
	"encoding/json"
	"testing"

	"github.com/jtroost/packmule/internal/database"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func TestPutGetDelete(t *testing.T) {
	s := setupTestStore(t)
	owner := Owner{Kind: OwnerUser, ID: "alice"}

	if err := s.Put(owner, "trips", "t-1", json.RawMessage(`{"name":"Lakes"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	doc, err := s.Get(owner, "trips", "t-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if doc == nil || doc.ID != "t-1" {
		t.Fatalf("doc = %+v", doc)
	}
	var decoded struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(doc.Data, &decoded); err != nil || decoded.Name != "Lakes" {
		t.Fatalf("data = %s, err = %v", doc.Data, err)
	}

	// Put replaces.
	if err := s.Put(owner, "trips", "t-1", json.RawMessage(`{"name":"Coast"}`)); err != nil {
		t.Fatalf("second put: %v", err)
	}
	doc, _ = s.Get(owner, "trips", "t-1")
	if err := json.Unmarshal(doc.Data, &decoded); err != nil || decoded.Name != "Coast" {
		t.Fatalf("data after replace = %s", doc.Data)
	}

	if err := s.Delete(owner, "trips", "t-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	doc, err = s.Get(owner, "trips", "t-1")
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if doc != nil {
		t.Fatalf("doc survived delete: %+v", doc)
	}

	// Deleting again is fine.
	if err := s.Delete(owner, "trips", "t-1"); err != nil {
		t.Fatalf("redundant delete: %v", err)
	}
}

func TestListIsScopedToOwnerAndCollection(t *testing.T) {
	s := setupTestStore(t)
	alice := Owner{Kind: OwnerUser, ID: "alice"}
	bob := Owner{Kind: OwnerUser, ID: "bob"}

	s.Put(alice, "trips", "t-1", json.RawMessage(`{}`))
	s.Put(alice, "trips", "t-2", json.RawMessage(`{}`))
	s.Put(alice, "tripItems", "ti-1", json.RawMessage(`{}`))
	s.Put(bob, "trips", "t-9", json.RawMessage(`{}`))

	docs, err := s.List(alice, "trips")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 2 || docs[0].ID != "t-1" || docs[1].ID != "t-2" {
		t.Fatalf("docs = %+v", docs)
	}

	docs, _ = s.List(bob, "tripItems")
	if len(docs) != 0 {
		t.Fatalf("leaked docs across owners: %+v", docs)
	}
}

func TestFindByField(t *testing.T) {
	s := setupTestStore(t)
	g1 := Owner{Kind: OwnerGroup, ID: "g-1"}
	g2 := Owner{Kind: OwnerGroup, ID: "g-2"}

	s.Put(g1, "meta", "group", json.RawMessage(`{"id":"g-1","inviteCode":"ABC234"}`))
	s.Put(g2, "meta", "group", json.RawMessage(`{"id":"g-2","inviteCode":"XYZ789"}`))

	docs, err := s.FindByField(OwnerGroup, "meta", "inviteCode", "XYZ789")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("docs = %+v", docs)
	}
	var g struct {
		ID string `json:"id"`
	}
	json.Unmarshal(docs[0].Data, &g)
	if g.ID != "g-2" {
		t.Errorf("found group %q, want g-2", g.ID)
	}

	docs, _ = s.FindByField(OwnerGroup, "meta", "inviteCode", "NOPE")
	if len(docs) != 0 {
		t.Errorf("unexpected match: %+v", docs)
	}
}

func TestDeleteOwner(t *testing.T) {
	s := setupTestStore(t)
	g := Owner{Kind: OwnerGroup, ID: "g-1"}
	s.Put(g, "meta", "group", json.RawMessage(`{}`))
	s.Put(g, "masterItems", "m-1", json.RawMessage(`{}`))
	s.Put(Owner{Kind: OwnerGroup, ID: "g-2"}, "meta", "group", json.RawMessage(`{}`))

	if err := s.DeleteOwner(g); err != nil {
		t.Fatalf("delete owner: %v", err)
	}
	if docs, _ := s.List(g, "masterItems"); len(docs) != 0 {
		t.Errorf("group docs survived: %+v", docs)
	}
	if doc, _ := s.Get(Owner{Kind: OwnerGroup, ID: "g-2"}, "meta", "group"); doc == nil {
		t.Error("unrelated group deleted")
	}
}

func TestApplyBatchIsAtomic(t *testing.T) {
	s := setupTestStore(t)
	owner := Owner{Kind: OwnerUser, ID: "alice"}
	s.Put(owner, "trips", "t-old", json.RawMessage(`{}`))

	ops := []Op{
		{Method: "put", OwnerKind: OwnerUser, OwnerID: "alice", Collection: "trips", DocID: "t-1", Data: json.RawMessage(`{"name":"A"}`)},
		{Method: "delete", OwnerKind: OwnerUser, OwnerID: "alice", Collection: "trips", DocID: "t-old"},
		{Method: "put", OwnerKind: OwnerUser, OwnerID: "alice", Collection: "tripItems", DocID: "ti-1", Data: json.RawMessage(`{}`)},
	}
	if err := s.ApplyBatch(ops); err != nil {
		t.Fatalf("apply batch: %v", err)
	}
	if doc, _ := s.Get(owner, "trips", "t-old"); doc != nil {
		t.Error("pruned doc survived batch")
	}
	if doc, _ := s.Get(owner, "tripItems", "ti-1"); doc == nil {
		t.Error("batched put missing")
	}

	// A bad op rolls the whole batch back.
	bad := []Op{
		{Method: "put", OwnerKind: OwnerUser, OwnerID: "alice", Collection: "trips", DocID: "t-2", Data: json.RawMessage(`{}`)},
		{Method: "merge", OwnerKind: OwnerUser, OwnerID: "alice", Collection: "trips", DocID: "t-3"},
	}
	if err := s.ApplyBatch(bad); err == nil {
		t.Fatal("expected error for unknown method")
	}
	if doc, _ := s.Get(owner, "trips", "t-2"); doc != nil {
		t.Error("partial batch committed")
	}
}
