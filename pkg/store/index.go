package store

// diffStrings returns the values present only in next and only in prev.
func diffStrings(prev, next []string) (added, removed []string) {
	prevSet := make(map[string]struct{}, len(prev))
	for _, v := range prev {
		prevSet[v] = struct{}{}
	}
	nextSet := make(map[string]struct{}, len(next))
	for _, v := range next {
		nextSet[v] = struct{}{}
	}
	for _, v := range next {
		if _, ok := prevSet[v]; !ok {
			added = append(added, v)
		}
	}
	for _, v := range prev {
		if _, ok := nextSet[v]; !ok {
			removed = append(removed, v)
		}
	}
	return added, removed
}

// reconcileValueSets moves id between value-keyed index sets (tag sets,
// category sets) when an indexed field changes. keyFor maps an attribute
// value to its index set key. The writes are issued sequentially with no
// cross-key atomicity; a failure part-way leaves a partially updated index.
func (s *Store) reconcileValueSets(id string, prev, next []string, keyFor func(string) string) error {
	added, removed := diffStrings(prev, next)
	for _, v := range removed {
		if err := s.kv.SRem(keyFor(v), id); err != nil {
			return err
		}
	}
	for _, v := range added {
		if err := s.kv.SAdd(keyFor(v), id); err != nil {
			return err
		}
	}
	return nil
}

// movePartition moves id from one partition set to another. Used for the
// published/drafts pair so a record is always in exactly one of the two.
func (s *Store) movePartition(id, from, to string) error {
	if err := s.kv.SRem(from, id); err != nil {
		return err
	}
	return s.kv.SAdd(to, id)
}
