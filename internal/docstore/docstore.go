// Package docstore is the server-side document store: schemaless JSON
// documents grouped into per-owner collections, the shape the sync clients
// mirror their local state into.
package docstore

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// OwnerKind distinguishes the two document namespaces.
type OwnerKind string

const (
	OwnerUser  OwnerKind = "user"
	OwnerGroup OwnerKind = "group"
)

// Valid reports whether k is one of the known owner kinds.
func (k OwnerKind) Valid() bool {
	return k == OwnerUser || k == OwnerGroup
}

// Owner identifies one document namespace: a user's private tree or a
// group's shared tree.
type Owner struct {
	Kind OwnerKind
	ID   string
}

// Document is one stored JSON document.
type Document struct {
	ID        string          `json:"id"`
	Data      json.RawMessage `json:"data"`
	UpdatedAt string          `json:"updatedAt"`
}

// Op is a single mutation inside a batch.
type Op struct {
	Method     string          `json:"method"` // "put" or "delete"
	OwnerKind  OwnerKind       `json:"ownerKind"`
	OwnerID    string          `json:"ownerId"`
	Collection string          `json:"collection"`
	DocID      string          `json:"docId"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// Store persists documents in SQLite.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

const docCols = `doc_id, data, updated_at`

func scanDocument(scanner interface{ Scan(...any) error }) (*Document, error) {
	var d Document
	var data string
	if err := scanner.Scan(&d.ID, &data, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Data = json.RawMessage(data)
	return &d, nil
}

// Put creates or replaces one document.
func (s *Store) Put(owner Owner, collection, docID string, data json.RawMessage) error {
	_, err := s.db.Exec(`
		INSERT INTO documents (owner_kind, owner_id, collection, doc_id, data, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(owner_kind, owner_id, collection, doc_id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`,
		owner.Kind, owner.ID, collection, docID, string(data))
	if err != nil {
		return fmt.Errorf("put document: %w", err)
	}
	return nil
}

// Get returns one document, or nil when absent.
func (s *Store) Get(owner Owner, collection, docID string) (*Document, error) {
	row := s.db.QueryRow(`
		SELECT `+docCols+` FROM documents
		WHERE owner_kind = ? AND owner_id = ? AND collection = ? AND doc_id = ?`,
		owner.Kind, owner.ID, collection, docID)
	d, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

// Delete removes one document. Deleting an absent document is not an error.
func (s *Store) Delete(owner Owner, collection, docID string) error {
	_, err := s.db.Exec(`
		DELETE FROM documents
		WHERE owner_kind = ? AND owner_id = ? AND collection = ? AND doc_id = ?`,
		owner.Kind, owner.ID, collection, docID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

// List returns every document in a collection, ordered by doc id for
// stable output.
func (s *Store) List(owner Owner, collection string) ([]Document, error) {
	rows, err := s.db.Query(`
		SELECT `+docCols+` FROM documents
		WHERE owner_kind = ? AND owner_id = ? AND collection = ?
		ORDER BY doc_id`,
		owner.Kind, owner.ID, collection)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

// DeleteOwner removes every document belonging to one owner, across all
// collections. Used when a group is dissolved.
func (s *Store) DeleteOwner(owner Owner) error {
	_, err := s.db.Exec(`
		DELETE FROM documents WHERE owner_kind = ? AND owner_id = ?`,
		owner.Kind, owner.ID)
	if err != nil {
		return fmt.Errorf("delete owner documents: %w", err)
	}
	return nil
}

// FindByField returns the documents in a collection (across all owners of
// the given kind) whose JSON data has field equal to value. Backed by
// SQLite's json_extract; fields are single keys, not paths.
func (s *Store) FindByField(kind OwnerKind, collection, field, value string) ([]Document, error) {
	rows, err := s.db.Query(`
		SELECT `+docCols+` FROM documents
		WHERE owner_kind = ? AND collection = ?
		  AND json_extract(data, '$.' || ?) = ?
		ORDER BY doc_id`,
		kind, collection, field, value)
	if err != nil {
		return nil, fmt.Errorf("find documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *d)
	}
	return docs, rows.Err()
}

// ApplyBatch executes a set of ops inside one transaction: either every op
// lands or none do.
func (s *Store) ApplyBatch(ops []Op) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer tx.Rollback()

	put, err := tx.Prepare(`
		INSERT INTO documents (owner_kind, owner_id, collection, doc_id, data, updated_at)
		VALUES (?, ?, ?, ?, ?, datetime('now'))
		ON CONFLICT(owner_kind, owner_id, collection, doc_id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("prepare put: %w", err)
	}
	defer put.Close()

	del, err := tx.Prepare(`
		DELETE FROM documents
		WHERE owner_kind = ? AND owner_id = ? AND collection = ? AND doc_id = ?`)
	if err != nil {
		return fmt.Errorf("prepare delete: %w", err)
	}
	defer del.Close()

	for i, op := range ops {
		switch op.Method {
		case "put":
			_, err = put.Exec(op.OwnerKind, op.OwnerID, op.Collection, op.DocID, string(op.Data))
		case "delete":
			_, err = del.Exec(op.OwnerKind, op.OwnerID, op.Collection, op.DocID)
		default:
			return fmt.Errorf("batch op %d: unknown method %q", i, op.Method)
		}
		if err != nil {
			return fmt.Errorf("batch op %d: %w", i, err)
		}
	}
	return tx.Commit()
}
