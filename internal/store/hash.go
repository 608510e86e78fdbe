package store

import (
	"crypto/sha256"
	"fmt"
)

// ComputeSignatureHash computes a deterministic hash from a declaration's
// identity: key, kind, type, signature, parent and parameter labels.
// Location and documentation changes do NOT affect the hash.
func ComputeSignatureHash(d Declaration) string {
	h := sha256.New()

	fmt.Fprintf(h, "key:%s\n", d.Key)
	fmt.Fprintf(h, "kind:%s\n", d.Kind)
	fmt.Fprintf(h, "type:%s\n", d.Type)
	fmt.Fprintf(h, "signature:%s\n", d.Signature)
	fmt.Fprintf(h, "parent:%s\n", d.Parent)

	// Params keep their declared order.
	for i, p := range d.Params {
		fmt.Fprintf(h, "param:%d:%s\n", i, p.Label)
	}

	return fmt.Sprintf("%x", h.Sum(nil))
}
