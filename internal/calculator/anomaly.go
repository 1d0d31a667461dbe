package calculator

// VolumeSpikes returns the indexes whose volume exceeds mean + k standard deviations
// (sample std), in input order, together with the threshold used.
func VolumeSpikes(volumes []float64, k float64) ([]int, float64) {
	if len(volumes) == 0 {
		return nil, 0
	}
	threshold := Mean(volumes) + k*SampleStd(volumes)
	var idx []int
	for i, v := range volumes {
		if v > threshold {
			idx = append(idx, i)
		}
	}
	return idx, threshold
}
