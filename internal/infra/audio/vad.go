package audio

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// VAD measures spectral flux over successive capture frames. Speech onsets
// show up as a sharp rise in flux against the ambient noise floor; the
// capture loop compares successive readings to decide when an utterance
// starts and ends.
type VAD struct {
	prev []float64
}

func NewVAD(frameSize int) *VAD {
	return &VAD{prev: make([]float64, frameSize/2+1)}
}

// Flux returns the sum of positive magnitude differences between this
// frame's spectrum and the previous one. Steady noise (a fan, a fridge)
// yields a near-constant spectrum and therefore near-zero flux.
func (v *VAD) Flux(samples []int16) float64 {
	signal := make([]float64, len(samples))
	for i, s := range samples {
		signal[i] = float64(s) / 32768.0
	}

	spectrum := fft.FFTReal(signal)
	half := len(spectrum)/2 + 1
	if len(v.prev) != half {
		v.prev = make([]float64, half)
	}

	var flux float64
	for i := 0; i < half; i++ {
		mag := cmplx.Abs(spectrum[i])
		if d := mag - v.prev[i]; d > 0 {
			flux += d
		}
		v.prev[i] = mag
	}
	return flux
}
