// Energy-based voice activity detection.
//
// A frame counts as voiced when its RMS energy clears a threshold. This is
// deliberately simple: the assistant runs close to the microphone, and the
// listener's silence window absorbs flutter at the boundary.

package audio

import "math"

// DefaultVoiceThreshold is the RMS energy above which a frame counts as
// speech, on the int16 sample scale.
const DefaultVoiceThreshold = 500.0

// voiceActive reports whether the frame's RMS energy clears the threshold.
func voiceActive(samples []int16, threshold float64) bool {
	if len(samples) == 0 {
		return false
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	rms := math.Sqrt(sum / float64(len(samples)))
	return rms >= threshold
}
