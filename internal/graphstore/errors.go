package graphstore

import "fmt"

// NotFoundError reports a read of a key that the caller expected to
// exist: a point, a layer node, or (via the batched helpers) one entry
// within a batch. Kind is one of "point", "layer_node".
type NotFoundError struct {
	Kind  string
	Layer int // only meaningful when Kind == "layer_node"
	ID    uint32
}

func (e *NotFoundError) Error() string {
	if e.Kind == "layer_node" {
		return fmt.Sprintf("graphstore: not found: layer_node(layer=%d, id=%d)", e.Layer, e.ID)
	}
	return fmt.Sprintf("graphstore: not found: %s(id=%d)", e.Kind, e.ID)
}
