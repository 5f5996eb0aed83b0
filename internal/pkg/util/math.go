package util

import "math"

// Round1 四舍五入保留一位小数
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
