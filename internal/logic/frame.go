package logic

import "fmt"

// MaxFrameLen is the longest frame ever written. Longer encodings are cut
// short; this only happens for values outside the digit budget.
const MaxFrameLen = 63

// AppendFrame appends the status frame <TT,SS,H,EEEE> for c to dst.
func AppendFrame(dst []byte, c Cycle) []byte {
	heat := 0
	if c.Heat {
		heat = 1
	}
	start := len(dst)
	dst = fmt.Appendf(dst, "<%02d,%02d,%d,%04d>", c.Temperature.Whole(), c.SetPoint, heat, c.Elapsed)
	if len(dst)-start > MaxFrameLen {
		dst = dst[:start+MaxFrameLen]
	}
	return dst
}

// FormatFrame returns the status frame for c.
func FormatFrame(c Cycle) string {
	return string(AppendFrame(make([]byte, 0, 16), c))
}
