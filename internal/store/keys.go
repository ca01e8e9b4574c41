package store

import "strconv"

// Key schema (spec.md §4.B). These are the unnamespaced suffixes every
// caller (graphstore) builds and passes to Get/Set/GetMany/SetMany; the
// Adapter itself prepends the contract id namespace in namespaced().
const (
	LayersKey = "layers"
	EntryPointKey = "ep"
	PointsKey = "points"
)

// PointKey is the key under which a Point's encoded vector is stored.
func PointKey(id uint32) string {
	return strconv.FormatUint(uint64(id), 10)
}

// MetadataKey is the key under which a Point's opaque metadata is stored.
func MetadataKey(id uint32) string {
	return "m:" + strconv.FormatUint(uint64(id), 10)
}

// LayerNodeKey is the key under which one Point's adjacency at one layer
// is stored.
func LayerNodeKey(layer int, id uint32) string {
	return strconv.Itoa(layer) + "__" + strconv.FormatUint(uint64(id), 10)
}

func (a *Adapter) namespaced(suffix string) string {
	return a.contractID + "/" + suffix
}
