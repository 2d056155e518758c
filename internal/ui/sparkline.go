package ui

// sparkBlocks are the eighth-height bar runes used for rate history.
var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// Sparkline renders rate samples as a fixed-width run of block runes.
// The output is exactly width runes: the newest sample is the rightmost
// rune and short histories are left-padded with the empty block. Heights
// are scaled against the largest sample in the window.
func Sparkline(data []float64, width int) string {
	if width <= 0 {
		return ""
	}

	start := 0
	if len(data) > width {
		start = len(data) - width
	}
	window := data[start:]

	var peak float64
	for _, v := range window {
		peak = max(peak, v)
	}

	out := make([]rune, width)
	pad := width - len(window)
	for i := range pad {
		out[i] = sparkBlocks[0]
	}
	for i, v := range window {
		level := 0
		if peak > 0 && v > 0 {
			level = min(int(v/peak*float64(len(sparkBlocks)-1)), len(sparkBlocks)-1)
		}
		out[pad+i] = sparkBlocks[level]
	}
	return string(out)
}
