package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

// 调教数据加载
//
// 与项目其他配置保持一致使用 YAML。和常规配置加载器不同，
// 这里刻意不向上返回 error：文件缺失、YAML 损坏、字段类型错误
// 都降级为兜底调教数据，波次调度必须始终可用。

// LoadTuningFile 从 YAML 文件加载并归一化调教数据
//
// 参数：
//
//	filepath - 调教文件路径（相对或绝对路径）
//
// 返回：
//
//	*TuningConfig - 永不为 nil；文件不可读或解析失败时为兜底配置
func LoadTuningFile(filepath string) *TuningConfig {
	data, err := os.ReadFile(filepath)
	if err != nil {
		log.Printf("[TuningLoader] WARNING: Failed to read tuning file %s: %v (using fallback)", filepath, err)
		return NormalizeTuning(nil)
	}

	return LoadTuningBytes(data)
}

// LoadTuningBytes 从 YAML 字节流加载并归一化调教数据
//
// 反序列化到无类型 map 再逐字段安全提取，
// 单个字段类型错误只影响该字段，不会让整份配置失效。
func LoadTuningBytes(data []byte) *TuningConfig {
	var raw map[string]interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		log.Printf("[TuningLoader] WARNING: Failed to parse tuning YAML: %v (using fallback)", err)
		return NormalizeTuning(nil)
	}

	return NormalizeTuning(raw)
}
