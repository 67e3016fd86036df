package badger

import (
	"fmt"

	"github.com/poiesic/askit/core"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix   = "docrec"
	exampleRecordPrefix = "exrec"
)

// makeChunkKey generates a key for a chunk by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", chunkRecordPrefix, id))
}

// makeExampleKey generates a key for an example by ID.
func makeExampleKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", exampleRecordPrefix, id))
}
