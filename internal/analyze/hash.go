package analyze

import (
	"fmt"
	"hash/fnv"
	"sort"

	"github.com/rand/homer-sub001/internal/models"
)

// inputHash is the FNV-1a digest of a deterministic serialization of a
// node's relevant inputs (spec §4.5 "input hashing"): its own content
// hash plus its neighborhood's (id, weight) pairs sorted by id so the
// hash is order-independent. Neighbors are passed as a node-to-weight
// map built by the caller, so callers control which edge kind
// contributed them (Calls, Imports, Modifies...).
func inputHash(contentHash *uint64, neighbors map[models.NodeID]float64) uint64 {
	h := fnv.New64a()
	if contentHash != nil {
		fmt.Fprintf(h, "self:%d;", *contentHash)
	}

	ids := make([]models.NodeID, 0, len(neighbors))
	for id := range neighbors {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		fmt.Fprintf(h, "n:%d=%f;", id, neighbors[id])
	}
	return h.Sum64()
}
