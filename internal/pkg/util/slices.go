package util

// PtrInt64 用于将 int64 转换为 *int64
func PtrInt64(i int64) *int64 {
	return &i
}

// PtrFloat64 用于将 float64 转换为 *float64
func PtrFloat64(f float64) *float64 {
	return &f
}
