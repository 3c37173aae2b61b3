package fingerprint

import "sort"

const (
	f1Shift   = 23
	f2Shift   = 14
	fieldMask = 0x1FF  // 9 bits
	dtMask    = 0x3FFF // 14 bits
)

// PackHash lays out (f1, f2, dt) into the 32-bit landmark hash.
func PackHash(f1, f2, dt int) uint32 {
	return uint32(f1&fieldMask)<<f1Shift | uint32(f2&fieldMask)<<f2Shift | uint32(dt&dtMask)
}

// UnpackHash reverses PackHash, used by tests to assert the round-trip
// invariant and by diagnostics.
func UnpackHash(h uint32) (f1, f2, dt int) {
	f1 = int((h >> f1Shift) & fieldMask)
	f2 = int((h >> f2Shift) & fieldMask)
	dt = int(h & dtMask)
	return
}

// GenerateHashes pairs each peak (the anchor) with later peaks within
// the target zone [anchor.T+MinTargetDelta, anchor.T+MaxTargetDelta]
// and emits one landmark hash per surviving pair. Peaks are sorted
// ascending by T first (stable, so same-T peaks keep picker order);
// pairs whose anchor or target bin lands at or above MaxHashBin are
// dropped since the 9-bit field can't represent them.
func GenerateHashes(peaks []Peak) []Hash {
	sorted := make([]Peak, len(peaks))
	copy(sorted, peaks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].T < sorted[j].T })

	var hashes []Hash
	for i, anchor := range sorted {
		for j := i + 1; j < len(sorted); j++ {
			target := sorted[j]
			dt := target.T - anchor.T

			if dt < MinTargetDelta {
				continue
			}
			if dt > MaxTargetDelta {
				break
			}

			if anchor.F >= MaxHashBin || target.F >= MaxHashBin {
				continue
			}

			hashes = append(hashes, Hash{
				Value:  PackHash(anchor.F, target.F, dt),
				Offset: uint32(anchor.T),
			})
		}
	}

	return hashes
}
