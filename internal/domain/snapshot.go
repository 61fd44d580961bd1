package domain

// SnapshotItem is one captured PV entry: the channel reference, the value
// read at capture time, and an optional read-back channel with its value.
// Values are carried as serialized strings; richer typing belongs to the
// transport.
type SnapshotItem struct {
	PVName         string `json:"pvName"`
	Value          string `json:"value"`
	ReadbackPVName string `json:"readbackPvName,omitempty"`
	ReadbackValue  string `json:"readbackValue,omitempty"`
}

// SnapshotData is the ordered PV item list owned by a SNAPSHOT node.
// Item order is preserved exactly as saved, including duplicate PV names.
type SnapshotData struct {
	UniqueID string         `json:"uniqueId"`
	Items    []SnapshotItem `json:"snapshotItems"`
}

// CompositeSnapshotData is the payload of a COMPOSITE_SNAPSHOT node: an
// ordered list of unique ids of referenced SNAPSHOT or COMPOSITE_SNAPSHOT
// nodes. Nesting is permitted as long as the reference graph stays acyclic.
type CompositeSnapshotData struct {
	UniqueID        string   `json:"uniqueId"`
	ReferencedNodes []string `json:"referencedSnapshotNodes"`
}
