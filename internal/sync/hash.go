package sync

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/jtroost/packmule/internal/model"
	"github.com/jtroost/packmule/internal/state"
)

// fingerprintDoc is the canonical shape hashed to decide whether a flush
// is needed. Collections are sorted by id so map/slice ordering noise
// never looks like a change. Local-only fields (initialized, seen shared
// trip ids) stay out: they never reach the server.
type fingerprintDoc struct {
	Categories       []model.Category       `json:"categories"`
	MasterItems      []model.MasterItem     `json:"masterItems"`
	Trips            []model.Trip           `json:"trips"`
	TripItems        []model.TripItem       `json:"tripItems"`
	CustomActivities []model.CustomActivity `json:"customActivities"`
}

// Fingerprint returns a stable content hash of the syncable subset of the
// state. Two states with the same fingerprint need no flush between them.
func Fingerprint(p state.Persisted) string {
	doc := fingerprintDoc{
		Categories:       append([]model.Category(nil), p.Categories...),
		MasterItems:      append([]model.MasterItem(nil), p.MasterItems...),
		Trips:            append([]model.Trip(nil), p.Trips...),
		TripItems:        append([]model.TripItem(nil), p.TripItems...),
		CustomActivities: append([]model.CustomActivity(nil), p.CustomActivities...),
	}
	sort.Slice(doc.Categories, func(i, j int) bool { return doc.Categories[i].ID < doc.Categories[j].ID })
	sort.Slice(doc.MasterItems, func(i, j int) bool { return doc.MasterItems[i].ID < doc.MasterItems[j].ID })
	sort.Slice(doc.Trips, func(i, j int) bool { return doc.Trips[i].ID < doc.Trips[j].ID })
	sort.Slice(doc.TripItems, func(i, j int) bool { return doc.TripItems[i].ID < doc.TripItems[j].ID })
	sort.Slice(doc.CustomActivities, func(i, j int) bool { return doc.CustomActivities[i].ID < doc.CustomActivities[j].ID })

	data, err := json.Marshal(doc)
	if err != nil {
		// Only unmarshalable types can fail here, and the doc is all
		// plain structs.
		panic(err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
