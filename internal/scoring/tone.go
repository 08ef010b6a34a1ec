package scoring

import "strings"

// Tone is the display colour hint for a rationale.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneWarning Tone = "warning"
)

var (
	positiveMarkers = []string{"apta", "puntuación"}
	warningMarkers  = []string{"no apta", "no ser apta", "omitida", "problema", "insuficiente", "necesita mejorar"}
)

// ToneOf picks a tone from rationale text by substring checks.
func ToneOf(rationale string) Tone {
	text := strings.ToLower(rationale)
	for _, marker := range warningMarkers {
		if strings.Contains(text, marker) {
			return ToneWarning
		}
	}
	for _, marker := range positiveMarkers {
		if strings.Contains(text, marker) {
			return ToneSuccess
		}
	}
	return ToneWarning
}
