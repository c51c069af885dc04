// Package catalog assigns a default category to ad-hoc items by name, so a
// quickly typed item lands in a sensible place instead of the shopping list.
package catalog

import "strings"

// FallbackCategoryID is returned when no keyword matches.
const FallbackCategoryID = "cat-camping"

// Categorize returns the category id for the given item name.
// Case-insensitive matching: exact match first, then substring match.
func Categorize(itemName string) string {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return FallbackCategoryID
	}

	if cat, ok := exactMatch[name]; ok {
		return cat
	}

	for _, entry := range substringMatches {
		if strings.Contains(name, entry.keyword) {
			return entry.category
		}
	}

	return FallbackCategoryID
}

var exactMatch = map[string]string{
	// Clothing
	"t-shirt":    "cat-clothing",
	"t-shirts":   "cat-clothing",
	"socks":      "cat-clothing",
	"underwear":  "cat-clothing",
	"jeans":      "cat-clothing",
	"shorts":     "cat-clothing",
	"sweater":    "cat-clothing",
	"jacket":     "cat-clothing",
	"raincoat":   "cat-clothing",
	"swimwear":   "cat-clothing",
	"pyjamas":    "cat-clothing",
	"cap":        "cat-clothing",
	"hat":        "cat-clothing",
	"gloves":     "cat-clothing",
	"scarf":      "cat-clothing",
	"boots":      "cat-clothing",
	"sandals":    "cat-clothing",
	"flip flops": "cat-clothing",

	// Toiletries
	"toothbrush":  "cat-toiletries",
	"toothpaste":  "cat-toiletries",
	"shampoo":     "cat-toiletries",
	"conditioner": "cat-toiletries",
	"soap":        "cat-toiletries",
	"deodorant":   "cat-toiletries",
	"sunscreen":   "cat-toiletries",
	"razor":       "cat-toiletries",
	"towel":       "cat-toiletries",
	"towels":      "cat-toiletries",
	"medication":  "cat-toiletries",
	"painkillers": "cat-toiletries",
	"plasters":    "cat-toiletries",

	// Camping gear
	"tent":          "cat-camping",
	"sleeping bag":  "cat-camping",
	"air mattress":  "cat-camping",
	"camping chair": "cat-camping",
	"camping table": "cat-camping",
	"awning":        "cat-camping",
	"groundsheet":   "cat-camping",
	"pegs":          "cat-camping",
	"mallet":        "cat-camping",
	"lantern":       "cat-camping",
	"gas bottle":    "cat-camping",

	// Kitchen
	"cutlery":      "cat-kitchen",
	"plates":       "cat-kitchen",
	"mugs":         "cat-kitchen",
	"pan":          "cat-kitchen",
	"kettle":       "cat-kitchen",
	"cool box":     "cat-kitchen",
	"corkscrew":    "cat-kitchen",
	"can opener":   "cat-kitchen",
	"washing up":   "cat-kitchen",
	"tea towels":   "cat-kitchen",
	"coffee maker": "cat-kitchen",

	// Electronics
	"charger":        "cat-electronics",
	"power bank":     "cat-electronics",
	"camera":         "cat-electronics",
	"extension cord": "cat-electronics",
	"adapter":        "cat-electronics",
	"headlamp":       "cat-electronics",
	"flashlight":     "cat-electronics",
	"batteries":      "cat-electronics",

	// Documents
	"passport":        "cat-documents",
	"passports":       "cat-documents",
	"id card":         "cat-documents",
	"insurance card":  "cat-documents",
	"driving licence": "cat-documents",
	"tickets":         "cat-documents",

	// Activities
	"bike":        "cat-activities",
	"bikes":       "cat-activities",
	"fishing rod": "cat-activities",
	"football":    "cat-activities",
	"frisbee":     "cat-activities",
	"board game":  "cat-activities",
	"board games": "cat-activities",
	"e-reader":    "cat-activities",
}

type substringEntry struct {
	keyword  string
	category string
}

// Ordered with longer/more-specific keywords first for deterministic priority.
var substringMatches = []substringEntry{
	// Clothing
	{"rain jacket", "cat-clothing"},
	{"hiking boot", "cat-clothing"},
	{"ski ", "cat-clothing"},
	{"shirt", "cat-clothing"},
	{"trousers", "cat-clothing"},
	{"sock", "cat-clothing"},
	{"shoe", "cat-clothing"},
	{"jacket", "cat-clothing"},
	{"sweater", "cat-clothing"},
	{"fleece", "cat-clothing"},
	{"swim", "cat-clothing"},

	// Toiletries
	{"sun cream", "cat-toiletries"},
	{"first aid", "cat-toiletries"},
	{"insect", "cat-toiletries"},
	{"tooth", "cat-toiletries"},
	{"shampoo", "cat-toiletries"},
	{"lotion", "cat-toiletries"},
	{"medicine", "cat-toiletries"},
	{"towel", "cat-toiletries"},

	// Camping gear
	{"sleeping", "cat-camping"},
	{"camping", "cat-camping"},
	{"tent", "cat-camping"},
	{"mattress", "cat-camping"},
	{"chair", "cat-camping"},
	{"heater", "cat-camping"},
	{"parasol", "cat-camping"},
	{"rope", "cat-camping"},

	// Kitchen
	{"coffee", "cat-kitchen"},
	{"cooking", "cat-kitchen"},
	{"barbecue", "cat-kitchen"},
	{"bbq", "cat-kitchen"},
	{"pan", "cat-kitchen"},
	{"cup", "cat-kitchen"},
	{"plate", "cat-kitchen"},
	{"knife", "cat-kitchen"},

	// Electronics
	{"charg", "cat-electronics"},
	{"cable", "cat-electronics"},
	{"camera", "cat-electronics"},
	{"battery", "cat-electronics"},
	{"power", "cat-electronics"},
	{"lamp", "cat-electronics"},

	// Documents
	{"passport", "cat-documents"},
	{"insurance", "cat-documents"},
	{"ticket", "cat-documents"},
	{"papers", "cat-documents"},
	{"booking", "cat-documents"},

	// Activities
	{"fishing", "cat-activities"},
	{"bike", "cat-activities"},
	{"game", "cat-activities"},
	{"book", "cat-activities"},
	{"ball", "cat-activities"},
}
