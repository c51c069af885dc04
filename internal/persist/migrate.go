package persist

import (
	"strings"

	"github.com/jtroost/packmule/internal/model"
	"github.com/jtroost/packmule/internal/state"
)

// Migrate upgrades a document loaded at fromVersion to the current schema.
// Steps are chained and idempotent, so re-running a step on already
// migrated data is harmless.
func Migrate(doc state.Persisted, fromVersion int) state.Persisted {
	if fromVersion < 1 {
		doc = renameLegacyShoppingCategory(doc)
	}
	if fromVersion < 2 {
		doc = ensureCustomActivities(doc)
		doc = stripRetiredActivities(doc)
	}
	return doc
}

// v0 -> v1: the shopping category originally shipped under a Dutch name,
// usually as "Shopping / Voorbereiding". Match the seeded id or the Dutch
// word anywhere in the name, however the user cased or combined it.
func renameLegacyShoppingCategory(doc state.Persisted) state.Persisted {
	for i := range doc.Categories {
		c := doc.Categories[i]
		if c.ID == model.ShoppingCategoryID || strings.Contains(strings.ToLower(c.Name), "voorbereiding") {
			doc.Categories[i].Name = "Shopping"
		}
	}
	return doc
}

// v1 -> v2: customActivities joined the document; older docs lack the field.
func ensureCustomActivities(doc state.Persisted) state.Persisted {
	if doc.CustomActivities == nil {
		doc.CustomActivities = []model.CustomActivity{}
	}
	return doc
}

// v1 -> v2: the surfing tag left the built-in set; drop stored references
// so no condition or trip points at an activity that no longer exists.
func stripRetiredActivities(doc state.Persisted) state.Persisted {
	for i := range doc.MasterItems {
		doc.MasterItems[i].Conditions.Activities = withoutActivity(
			doc.MasterItems[i].Conditions.Activities, model.RetiredActivitySurfing)
	}
	for i := range doc.Trips {
		doc.Trips[i].Activities = withoutActivity(
			doc.Trips[i].Activities, model.RetiredActivitySurfing)
	}
	return doc
}

func withoutActivity(ids []model.ActivityID, drop model.ActivityID) []model.ActivityID {
	out := ids[:0]
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}
