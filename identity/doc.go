// Package identity implements the per-object, per-isolate identity cache.
//
// Every native object may carry one small hash table per Purpose (wrapper
// lookup, callable adapters). Each table holds at most one entry per isolate
// token:
//
//	cache := identity.NewWithDefaults[goja.Object]()
//
//	// Lookup never mutates
//	w, ok := cache.Get(identity.PurposeWrapper, obj, token)
//
//	// Insert fails with a protocol violation if the pair exists
//	err := cache.Set(identity.PurposeWrapper, obj, token, w)
//
// # Collision Policy
//
// Tables are open-addressed. Probing starts at token.HashCode() masked to the
// table capacity and moves forward one slot at a time, comparing token
// identity, until an empty slot or an exact match. Entries are permanent for
// the object's lifetime, so there are no tombstones; tables double in size
// when the load factor would be exceeded. A value implementing Expirer that
// has expired reads as absent, and the next insert for its token reuses the
// slot.
//
// # Association
//
// Tables are not stored on the object. A process-wide map keyed by a weak
// pointer to the object holds a side table, and a runtime cleanup removes
// the map entry when the object becomes unreachable. Values that reference
// their own object must be stored as Weak, or the object is never
// unreachable.
package identity
