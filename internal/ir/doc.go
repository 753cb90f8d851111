// Package ir provides the value types shared by query predicates, scenario
// documents and result digests.
//
// ir imports nothing internal. Every other internal package may import it.
//
// Key constraints:
//   - NO float types (scenario literals are strings, integers or booleans)
//   - Canonical JSON (RFC 8785 key order, NFC strings) is the only encoding
//     used for digests
//   - Digests are SHA-256 with a versioned domain prefix
package ir
