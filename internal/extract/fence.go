package extract

import "strings"

// stripFence returns the body of a markdown code block that spans all of s,
// such as a ```json block wrapped around a component tree.
func stripFence(s string) (string, bool) {
	if !strings.HasPrefix(s, "```") {
		return s, false
	}

	lines := strings.Split(s, "\n")
	endIdx := -1
	for i := len(lines) - 1; i > 0; i-- {
		if strings.TrimSpace(lines[i]) == "```" {
			endIdx = i
			break
		}
	}
	if endIdx < 0 {
		return s, false
	}
	// Trailing prose after the closing fence means this is not a bare block.
	if strings.TrimSpace(strings.Join(lines[endIdx+1:], "\n")) != "" {
		return s, false
	}
	return strings.TrimSpace(strings.Join(lines[1:endIdx], "\n")), true
}
