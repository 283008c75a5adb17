package queue

import (
	"encoding/json"
	"fmt"
)

// Encoder appends the deterministic representation of item to dst.
// The integrity hash is computed over the concatenation of every item's encoding.
type Encoder[T any] func(dst []byte, item T) []byte

// GoSyntaxEncoder encodes items with their Go-syntax representation (%#v).
// Pointers and maps of pointers print addresses, so they are not stable across processes.
func GoSyntaxEncoder[T any](dst []byte, item T) []byte {
	return fmt.Appendf(dst, "%#v", item)
}

// JSONEncoder encodes items as JSON. Items that fail to marshal fall back to %#v.
func JSONEncoder[T any](dst []byte, item T) []byte {
	b, err := json.Marshal(item)
	if err != nil {
		return GoSyntaxEncoder(dst, item)
	}
	return append(dst, b...)
}
