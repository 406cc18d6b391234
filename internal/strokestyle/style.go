// Package strokestyle holds the plumbing around the stroke-style classifier:
// building sensor windows, turning model scores into labels and
// summarising the labels of a session.
package strokestyle

import "strings"

// Style is a swimming stroke label
type Style string

const (
	Backstroke   Style = "Backstroke"
	Breaststroke Style = "Breaststroke"
	Butterfly    Style = "Butterfly"
	Freestyle    Style = "Freestyle"
	Unknown      Style = "Unknown"
)

// Styles lists the known strokes in model output order
func Styles() []Style {
	return []Style{Backstroke, Breaststroke, Butterfly, Freestyle}
}

// Parse maps a label to a Style, case-insensitively. Anything else is Unknown.
func Parse(label string) Style {
	for _, s := range Styles() {
		if strings.EqualFold(strings.TrimSpace(label), string(s)) {
			return s
		}
	}
	return Unknown
}

// FromIndex maps a model output index to a Style
func FromIndex(i int) Style {
	styles := Styles()
	if i < 0 || i >= len(styles) {
		return Unknown
	}
	return styles[i]
}

// Distribution is the share of each known style in percent
type Distribution map[Style]float64

// Percentages counts labels and returns each known style as a percentage of
// all labels, Unknown included in the total. Empty input gives an empty map.
func Percentages(labels []Style) Distribution {
	if len(labels) == 0 {
		return Distribution{}
	}
	counts := make(map[Style]int)
	for _, l := range labels {
		counts[l]++
	}

	total := float64(len(labels))
	d := make(Distribution, len(Styles()))
	for _, s := range Styles() {
		d[s] = float64(counts[s]) / total * 100
	}
	return d
}

// Dominant returns the style with the largest share, or Unknown if none
func (d Distribution) Dominant() Style {
	best, bestPct := Unknown, 0.0
	for _, s := range Styles() {
		if d[s] > bestPct {
			best, bestPct = s, d[s]
		}
	}
	return best
}
