package dedupe

// Option applies a configuration option to the Detector.
type Option func(*Detector)

// WithThreshold sets the minimum similarity percentage reported as a duplicate.
// Values outside (0, 100] are ignored.
func WithThreshold(threshold float64) Option {
	return func(d *Detector) {
		if threshold > 0 && threshold <= fullSimilarity {
			d.threshold = threshold
		}
	}
}
