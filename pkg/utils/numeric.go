package utils

import (
	"math"
	"strconv"
)

// 数值安全工具
//
// 调教数据（tuning data）来自外部 YAML，字段类型和取值都不可信。
// 这里提供安全的类型提取与范围约束函数，供配置归一化层使用。
// 所有函数都不会 panic，解析失败时返回调用方提供的默认值。

// ClampFloat 将 v 限制在 [min, max] 范围内
// NaN 和 ±Inf 被视为非法值，返回 min
func ClampFloat(v, min, max float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return min
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ClampInt 将 v 限制在 [min, max] 范围内
func ClampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// CoerceFloat 从任意类型值中安全提取浮点数
//
// 支持的输入类型：float64、float32、int、int64、uint64、数字字符串。
// 其他类型或解析失败时返回 fallback。
func CoerceFloat(v interface{}, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return fallback
		}
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return fallback
		}
		return parsed
	default:
		return fallback
	}
}

// CoerceInt 从任意类型值中安全提取整数
//
// 浮点输入向零取整；解析失败时返回 fallback。
func CoerceInt(v interface{}, fallback int) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return fallback
		}
		return int(n)
	case float32:
		return int(n)
	case string:
		parsed, err := strconv.Atoi(n)
		if err != nil {
			return fallback
		}
		return parsed
	default:
		return fallback
	}
}

// CoerceString 从任意类型值中安全提取字符串
// 非字符串类型返回 fallback（不做 fmt.Sprint 转换，避免把数字当成ID）
func CoerceString(v interface{}, fallback string) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fallback
}

// CoerceBool 从任意类型值中安全提取布尔值
func CoerceBool(v interface{}, fallback bool) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return fallback
		}
		return parsed
	default:
		return fallback
	}
}

// CoerceStringSlice 从任意类型值中安全提取字符串列表
//
// 输入应为 []interface{}，其中非字符串和空字符串元素被跳过。
// 输入类型不符时返回 nil。
func CoerceStringSlice(v interface{}) []string {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	result := make([]string, 0, len(list))
	for _, item := range list {
		if s, ok := item.(string); ok && s != "" {
			result = append(result, s)
		}
	}
	return result
}

// CoerceFloatSlice 从任意类型值中安全提取浮点数列表
// 负数被截断为 0（份额类数据不允许负值）
func CoerceFloatSlice(v interface{}) []float64 {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	result := make([]float64, 0, len(list))
	for _, item := range list {
		f := CoerceFloat(item, 0)
		if f < 0 {
			f = 0
		}
		result = append(result, f)
	}
	return result
}
