package domain

import (
	"bytes"
	"encoding/json"
	"slices"
)

// Ordered marshals a document with game modes and tiers in catalog order.
// Keys the catalog does not list follow in sorted order.
type Ordered struct {
	Tiers Tiers
	Order Enumeration
}

func (o Ordered) MarshalJSON() ([]byte, error) {
	if o.Tiers == nil {
		return []byte("null"), nil
	}

	var gameModes, tiers []string
	if o.Order != nil {
		gameModes = o.Order.GameModeList()
		tiers = o.Order.TierList()
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, gm := range orderedKeys(o.Tiers, gameModes) {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(&buf, gm); err != nil {
			return nil, err
		}
		if err := writeBuckets(&buf, o.Tiers[gm], tiers); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func writeBuckets(buf *bytes.Buffer, buckets TierBuckets, order []string) error {
	if buckets == nil {
		buf.WriteString("null")
		return nil
	}

	buf.WriteByte('{')
	for i, tier := range orderedKeys(buckets, order) {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(buf, tier); err != nil {
			return err
		}
		entries, err := json.Marshal(buckets[tier])
		if err != nil {
			return err
		}
		buf.Write(entries)
	}
	buf.WriteByte('}')
	return nil
}

func writeKey(buf *bytes.Buffer, key string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	buf.Write(k)
	buf.WriteByte(':')
	return nil
}

// orderedKeys lists the keys of m named in order first, then the rest sorted.
func orderedKeys[V any](m map[string]V, order []string) []string {
	keys := make([]string, 0, len(m))
	seen := make(map[string]struct{}, len(m))
	for _, k := range order {
		if _, ok := m[k]; ok {
			if _, dup := seen[k]; !dup {
				keys = append(keys, k)
				seen[k] = struct{}{}
			}
		}
	}
	all := make([]string, 0, len(m))
	for k := range m {
		all = append(all, k)
	}
	slices.Sort(all)
	for _, k := range all {
		if _, ok := seen[k]; !ok {
			keys = append(keys, k)
		}
	}
	return keys
}
