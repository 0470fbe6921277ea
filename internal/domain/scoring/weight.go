package scoring

// Priority weight bounds, in percent of influence given to votes.
// Both inputs keep at least MinWeight percent of influence when a signal exists.
const (
	MinWeight     = 30
	MaxWeight     = 70
	DefaultWeight = 55
)

// ClampWeight forces w into [MinWeight, MaxWeight].
func ClampWeight(w int) int {
	return max(MinWeight, min(MaxWeight, w))
}
