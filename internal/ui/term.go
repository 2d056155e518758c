package ui

import "golang.org/x/term"

// Terminal probes the file descriptor the presenters draw to. It reports
// the width in columns and whether the descriptor is a terminal at all;
// pipes and files get the 80-column fallback width.
func Terminal(fd uintptr) (width int, isTTY bool) {
	if !term.IsTerminal(int(fd)) {
		return 80, false
	}
	w, _, err := term.GetSize(int(fd))
	if err != nil || w <= 0 {
		w = 80
	}
	return w, true
}
