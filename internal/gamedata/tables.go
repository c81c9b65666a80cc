// Package gamedata holds the static lookup tables for the Relic API's
// numeric identifiers. Tables are constructed explicitly and handed to the
// components that need them rather than read as package globals.
package gamedata

import "fmt"

// Civilizations in Relic API index order (alphabetical over the standard
// civ roster; index 26 is Lithuanians, index 41 is Teutons).
var civilizations = []string{
	"Armenians", "Aztecs", "Bengalis", "Berbers", "Bohemians", "Britons",
	"Bulgarians", "Burgundians", "Burmese", "Byzantines", "Celts", "Chinese",
	"Cumans", "Dravidians", "Ethiopians", "Franks", "Georgians", "Goths",
	"Gurjaras", "Hindustanis", "Huns", "Incas", "Italians", "Japanese",
	"Khmer", "Koreans", "Lithuanians", "Magyars", "Malay", "Malians",
	"Mayans", "Mongols", "Persians", "Poles", "Portuguese", "Romans",
	"Saracens", "Sicilians", "Slavs", "Spanish", "Tatars", "Teutons",
	"Turks", "Vietnamese", "Vikings",
}

var modeLabels = map[int]string{
	0: "Custom",
	1: "RM 1v1", 2: "RM 1v1", 3: "RM 2v2", 4: "RM 3v3", 5: "RM 4v4",
	6: "RM 1v1", 7: "RM 2v2", 8: "RM 3v3", 9: "RM 4v4",
	10: "FFA",
	26: "EW 1v1", 27: "EW 2v2", 28: "EW 3v3", 29: "EW 4v4",
	60: "Custom DM 1v1", 61: "Custom DM Team",
	66: "RM 1v1", 67: "RM 2v2", 68: "RM 3v3", 69: "RM 4v4",
	86: "RM 1v1", 87: "RM 2v2", 88: "RM 3v3", 89: "RM 4v4",
	120: "Custom", 121: "Custom", 122: "Custom", 123: "Custom", 124: "Custom", 125: "Custom",
}

// Tables maps the Relic API's numeric civilization and match-type IDs to
// display labels.
type Tables struct {
	civs  map[int]string
	modes map[int]string
}

func NewTables() *Tables {
	civs := make(map[int]string, len(civilizations))
	for i, name := range civilizations {
		civs[i] = name
	}
	modes := make(map[int]string, len(modeLabels))
	for id, label := range modeLabels {
		modes[id] = label
	}
	return &Tables{civs: civs, modes: modes}
}

// CivName resolves a civilization ID, falling back to "Civ N" for IDs the
// table does not know.
func (t *Tables) CivName(id int) string {
	if name, ok := t.civs[id]; ok {
		return name
	}
	return fmt.Sprintf("Civ %d", id)
}

// ModeLabel resolves a match-type ID, falling back to "Mode N".
func (t *Tables) ModeLabel(id int) string {
	if label, ok := t.modes[id]; ok {
		return label
	}
	return fmt.Sprintf("Mode %d", id)
}
