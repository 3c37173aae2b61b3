package fingerprint

// PickPeaks selects one candidate landmark per frequency band per
// frame: the band's maximum magnitude bin, provided it clears the
// noise floor and is a temporal local maximum at lag 1 and 2.
func PickPeaks(spec [][]float64) []Peak {
	var peaks []Peak

	for t, row := range spec {
		for _, band := range bands {
			start, end := band[0], band[1]
			if start >= len(row) {
				continue
			}
			if end > len(row) {
				end = len(row)
			}

			maxVal := 0.0
			maxBin := -1
			for f := start; f < end; f++ {
				if row[f] > maxVal {
					maxVal = row[f]
					maxBin = f
				}
			}

			if maxBin == -1 || maxVal <= NoiseFloor {
				continue
			}

			if !isTemporalLocalMax(spec, t, maxBin, maxVal) {
				continue
			}

			peaks = append(peaks, Peak{T: t, F: maxBin})
		}
	}

	return peaks
}

// isTemporalLocalMax checks that neighboring frames at lag 1 and 2,
// where they exist, don't exceed the candidate's magnitude.
func isTemporalLocalMax(spec [][]float64, t, f int, val float64) bool {
	for _, dt := range [2]int{1, 2} {
		if t-dt >= 0 && spec[t-dt][f] > val {
			return false
		}
		if t+dt < len(spec) && spec[t+dt][f] > val {
			return false
		}
	}
	return true
}
