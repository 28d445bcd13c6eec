// Package cpuinfo reports host SIMD-width hints at startup, grounded
// on janpfeifer-go-highway's hwy/dispatch_amd64.go use of
// golang.org/x/sys/cpu for feature detection. The kernel in
// internal/swar is a plain word-at-a-time SWAR implementation, not
// hand-written SIMD, so this is informational logging only: it tells
// an operator what width of hardware SIMD the naive byte/word loops in
// internal/swar are leaving on the table, not a dispatch decision.
package cpuinfo

import "golang.org/x/sys/cpu"

// Hint describes one wide-register feature present on the host.
type Hint struct {
	Name    string
	Present bool
}

// Hints reports the SIMD feature set relevant to the nibble/word-wide
// arithmetic internal/swar performs by hand.
func Hints() []Hint {
	return []Hint{
		{Name: "x86.SSE2", Present: cpu.X86.HasSSE2},
		{Name: "x86.AVX", Present: cpu.X86.HasAVX},
		{Name: "x86.AVX2", Present: cpu.X86.HasAVX2},
		{Name: "x86.AVX512F", Present: cpu.X86.HasAVX512F},
		{Name: "arm64.NEON", Present: cpu.ARM64.HasASIMD},
	}
}

// Summary formats Hints as a short comma-joined string of the
// features actually present, e.g. "x86.SSE2, x86.AVX2" — used in the
// coordinator's startup log line.
func Summary() string {
	var present []string
	for _, h := range Hints() {
		if h.Present {
			present = append(present, h.Name)
		}
	}
	if len(present) == 0 {
		return "none detected"
	}

	out := present[0]
	for _, s := range present[1:] {
		out += ", " + s
	}
	return out
}
