package identity

import "github.com/wippyai/hostbridge/isolate"

type slot struct {
	token *isolate.Token
	value any
}

// table is an open-addressed array of per-isolate entries.
// Slots are never vacated, so probing stops at the first empty slot.
type table struct {
	slots []slot
	count int
}

func newTable(capacity int) *table {
	return &table{slots: make([]slot, capacity)}
}

// find scans forward from the token's hash code. It returns the matching slot index,
// or the first empty slot when the token has no entry.
func (t *table) find(tok *isolate.Token) (idx int, found bool, steps int) {
	mask := len(t.slots) - 1
	idx = int(tok.HashCode()) & mask
	for {
		s := &t.slots[idx]
		if s.token == nil {
			return idx, false, steps
		}
		if s.token == tok {
			return idx, true, steps
		}
		steps++
		idx = (idx + 1) & mask
	}
}

// get returns the live value stamped with tok. Expired values read as absent.
func (t *table) get(tok *isolate.Token) (any, bool) {
	idx, found, _ := t.find(tok)
	if !found || !live(t.slots[idx].value) {
		return nil, false
	}
	return t.slots[idx].value, true
}

// put stores value for tok at idx, which must come from a failed find.
func (t *table) put(idx int, tok *isolate.Token, value any) {
	t.slots[idx] = slot{token: tok, value: value}
	t.count++
}

// needsGrowth reports whether one more entry would exceed loadFactor.
func (t *table) needsGrowth(loadFactor float64) bool {
	return float64(t.count+1) > loadFactor*float64(len(t.slots))
}

// grow rehashes every entry into a table of twice the capacity.
func (t *table) grow() {
	old := t.slots
	t.slots = make([]slot, len(old)*2)
	t.count = 0
	for _, s := range old {
		if s.token == nil {
			continue
		}
		idx, _, _ := t.find(s.token)
		t.put(idx, s.token, s.value)
	}
}

// replace overwrites the value of an existing slot. The slot keeps its
// token, so scan chains are unaffected.
func (t *table) replace(idx int, value any) {
	t.slots[idx].value = value
}

// entries lists the live entries in slot order.
func (t *table) entries() []Entry {
	out := make([]Entry, 0, t.count)
	for i, s := range t.slots {
		if s.token == nil || !live(s.value) {
			continue
		}
		out = append(out, Entry{Token: s.token, Value: s.value, Slot: i})
	}
	return out
}
