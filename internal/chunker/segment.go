package chunker

import "strings"

// DefaultSegmentLength is the description window size in runes. It bounds
// embedding-model input size while keeping enough context per segment.
const DefaultSegmentLength = 120

// DefaultSegmentOverlap is the number of runes shared between adjacent
// windows, preserving cross-boundary context.
const DefaultSegmentOverlap = 30

// SplitWindows splits text into fixed-size rune windows with overlap.
// Empty or whitespace-only text yields nil; text shorter than the window
// yields exactly one segment. Every rune of the input appears in at least
// one segment.
func SplitWindows(text string, window, overlap int) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if overlap >= window {
		overlap = window / 4
	}

	runes := []rune(text)
	if len(runes) <= window {
		return []string{text}
	}

	step := window - overlap
	segments := make([]string, 0, (len(runes)-window)/step+2)
	for start := 0; start < len(runes); start += step {
		end := start + window
		if end > len(runes) {
			end = len(runes)
		}
		seg := string(runes[start:end])
		if strings.TrimSpace(seg) != "" {
			segments = append(segments, seg)
		}
		if end == len(runes) {
			break
		}
	}

	return segments
}
