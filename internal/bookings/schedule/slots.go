package schedule

import "iter"

// SlotStep is the distance between consecutive candidate slot starts.
const SlotStep = 60

// Slots yields every bookable window of the given length inside
// [open, close), stepping one hour from open, skipping windows that
// overlap a booked interval. The sequence is empty when length does not fit.
func Slots(open, close, length int, booked []Interval) iter.Seq[Interval] {
	return func(yield func(Interval) bool) {
		if length <= 0 {
			return
		}
		for start := open; start+length <= close; start += SlotStep {
			slot := Interval{Start: start, End: start + length}
			if overlapsAny(slot, booked) {
				continue
			}
			if !yield(slot) {
				return
			}
		}
	}
}

func overlapsAny(slot Interval, booked []Interval) bool {
	for _, b := range booked {
		if slot.Overlaps(b) {
			return true
		}
	}
	return false
}
