package utils

import "math/rand"

// 加权随机工具
//
// 波次生成的所有抽样都走这里：行选择、兵种选择、Boss选择。
// 统一使用累积和（cumulative sum）方式，权重 <= 0 的候选永远不会被选中。
// 所有函数接受注入的 *rand.Rand，保证固定种子下结果可复现。

// WeightedIndex 按权重随机选择一个下标
//
// 参数：
//   - rng: 随机数生成器
//   - weights: 候选权重列表（<=0 的候选被忽略）
//
// 返回：
//   - 选中的下标；所有权重均 <=0 或列表为空时返回 -1
func WeightedIndex(rng *rand.Rand, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return -1
	}

	randNum := rng.Float64() * total
	cumulative := 0.0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cumulative += w
		if cumulative >= randNum {
			return i
		}
	}

	// 浮点误差兜底：返回最后一个正权重候选
	for i := len(weights) - 1; i >= 0; i-- {
		if weights[i] > 0 {
			return i
		}
	}
	return -1
}

// SampleWithoutReplacement 加权不放回抽样
//
// 每轮按当前权重选出一个下标并将其权重置零，重复 count 轮。
// 返回的下标互不重复。count 超过正权重候选数时，返回所有正权重候选。
func SampleWithoutReplacement(rng *rand.Rand, weights []float64, count int) []int {
	remaining := make([]float64, len(weights))
	copy(remaining, weights)

	result := make([]int, 0, count)
	for len(result) < count {
		idx := WeightedIndex(rng, remaining)
		if idx < 0 {
			break
		}
		result = append(result, idx)
		remaining[idx] = 0
	}
	return result
}

// Combinations 枚举从 n 个元素中取 k 个的所有下标组合
//
// 反重复搜索（anti-repeat search）用它枚举备选兵种组合。
// 组合数是指数级的，调用方必须保证 k 和 n 都很小（当前 k≈3, n≤12）。
// k <= 0 或 k > n 时返回空列表。
func Combinations(n, k int) [][]int {
	if k <= 0 || k > n {
		return nil
	}

	result := make([][]int, 0)
	combo := make([]int, k)

	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == k {
			picked := make([]int, k)
			copy(picked, combo)
			result = append(result, picked)
			return
		}
		for i := start; i <= n-(k-depth); i++ {
			combo[depth] = i
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)

	return result
}

// ShuffleStrings 均匀打乱字符串切片（原地修改）
func ShuffleStrings(rng *rand.Rand, items []string) {
	rng.Shuffle(len(items), func(i, j int) {
		items[i], items[j] = items[j], items[i]
	})
}
