// Package analysis provides frequency analysis of recorded structure runs.
//
// Stored frames carry node positions and segment lengths over time. A
// structure that bounces or sways shows up as a peak in the spectrum of
// one of those columns:
//
//	spectrum, err := analysis.NewSpectrum(ys, analysis.SampleInterval(times))
//	if err != nil {
//	    return err
//	}
//	freq, _ := spectrum.Dominant()
//
// [NewSpectrum] removes the mean and zero-pads to a power of two before
// transforming, so the DC bin never wins and any sample count is accepted.
package analysis
