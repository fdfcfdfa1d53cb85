package usecase

// Membership mutations are modeled as idempotent set-inserts/removes so
// a retried partial failure converges to the same state.

func contains(set []string, s string) bool {
	for _, e := range set {
		if e == s {
			return true
		}
	}
	return false
}

func addToSet(set []string, s string) []string {
	if contains(set, s) {
		return set
	}
	out := make([]string, 0, len(set)+1)
	out = append(out, set...)
	return append(out, s)
}

func removeFromSet(set []string, s string) []string {
	out := make([]string, 0, len(set))
	for _, e := range set {
		if e != s {
			out = append(out, e)
		}
	}
	return out
}

// intersectionSize counts the elements of a contained in b, one match
// per occurrence: a value repeated in a is counted every time. Tag
// affinity relies on this per-occurrence counting.
func intersectionSize(a, b []string) int {
	n := 0
	for _, e := range a {
		if contains(b, e) {
			n++
		}
	}
	return n
}
