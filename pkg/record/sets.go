package record

// AddUnique appends item to set unless it is already present.
func AddUnique(set []string, item string) []string {
	for _, v := range set {
		if v == item {
			return set
		}
	}
	return append(set, item)
}

// Remove deletes every occurrence of item from set.
func Remove(set []string, item string) []string {
	out := set[:0]
	for _, v := range set {
		if v != item {
			out = append(out, v)
		}
	}
	return out
}

// Contains reports whether item is present in set.
func Contains(set []string, item string) bool {
	for _, v := range set {
		if v == item {
			return true
		}
	}
	return false
}
