package engine

import (
	"strconv"
	"strings"
)

// infoLine is one parsed "info ... score ... pv ..." record from the
// engine. Scores are from the mover's perspective, as UCI reports them.
type infoLine struct {
	depth    int
	multiPV  int
	cp       int
	hasScore bool
	pv       []string
}

// parseInfo parses a UCI info line. It returns ok=false for lines that
// carry no score (e.g. "info string ...", currmove updates). Mate scores
// are clamped to ±MateScore. A missing multipv field means rank 1.
func parseInfo(line string) (infoLine, bool) {
	if !strings.HasPrefix(line, "info ") {
		return infoLine{}, false
	}

	info := infoLine{multiPV: 1}
	parts := strings.Fields(line)

	for i := 1; i < len(parts); i++ {
		switch parts[i] {
		case "depth":
			if i+1 < len(parts) {
				info.depth = atoi(parts[i+1])
				i++
			}
		case "multipv":
			if i+1 < len(parts) {
				info.multiPV = atoi(parts[i+1])
				i++
			}
		case "score":
			if i+2 >= len(parts) {
				return infoLine{}, false
			}
			switch parts[i+1] {
			case "cp":
				info.cp = atoi(parts[i+2])
				info.hasScore = true
			case "mate":
				// "mate 0" means the mover is already checkmated.
				if mate := atoi(parts[i+2]); mate > 0 {
					info.cp = MateScore
				} else {
					info.cp = -MateScore
				}
				info.hasScore = true
			default:
				return infoLine{}, false
			}
			i += 2
		case "pv":
			info.pv = append([]string(nil), parts[i+1:]...)
			i = len(parts)
		}
	}

	if !info.hasScore {
		return infoLine{}, false
	}
	return info, true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
