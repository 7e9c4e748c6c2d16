package bracket

// Enclosing returns the innermost pair containing cursor. Containment is
// inclusive at both ends and measured in editor code units:
// Open.Unit <= cursor <= Close.Unit. Among candidates the one with the
// largest open offset wins.
func Enclosing(pairs []Pair, cursor int) (Pair, bool) {
	var (
		best  Pair
		found bool
	)
	for _, p := range pairs {
		if p.Open.Unit > cursor || cursor > p.Close.Unit {
			continue
		}
		if !found || p.Open.Unit > best.Open.Unit {
			best = p
			found = true
		}
	}
	return best, found
}
