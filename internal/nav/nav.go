// Package nav implements the prev/next navigation policy over the loaded
// sequence numbers. Out-of-range navigation clamps to the nearest loaded
// number instead of failing, so the caller can never land on a missing
// item.
package nav

// Action is a navigation request relative to the current item.
type Action string

const (
	Advance Action = "next"
	Retreat Action = "prev"
	Stay    Action = "stay"
)

// Next computes the sequence number to show after applying action at
// current. If the candidate is not among the existing sequence numbers —
// at a boundary, or after the item set shrank — Advance clamps to the
// maximum existing number and Retreat to the minimum. With no items loaded
// the current number is returned unchanged.
func Next(existing []int64, current int64, action Action) int64 {
	candidate := current
	switch action {
	case Advance:
		candidate = current + 1
	case Retreat:
		candidate = current - 1
	}

	if len(existing) == 0 {
		return current
	}

	min, max := existing[0], existing[0]
	for _, n := range existing {
		if n == candidate {
			return candidate
		}
		if n < min {
			min = n
		}
		if n > max {
			max = n
		}
	}

	switch action {
	case Advance:
		return max
	case Retreat:
		return min
	default:
		return current
	}
}
