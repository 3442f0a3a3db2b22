package dht

// resetOffsetMs is how far back ResetSamplingTimer moves the last-read stamp.
// It exceeds both minimum intervals so the next call always samples.
const resetOffsetMs = 3000

// shouldSample reports whether the model's minimum interval has elapsed since
// last. The difference is taken as unsigned so a wrapped millisecond counter
// still compares correctly.
func shouldSample(now, last int32, m Model) bool {
	return uint32(now-last) >= m.minIntervalMs()
}
