package parser

import "math"

// PoolTokenStates 将逐token隐状态压缩为一个定长向量
// strategy为cls时取首token向量，否则对全部token取均值。
// 空输入返回nil，调用方按零向量处理。
func PoolTokenStates(tokenStates [][]float64, strategy string) []float64 {
	if len(tokenStates) == 0 {
		return nil
	}

	if strategy == PoolingCLS {
		out := make([]float64, len(tokenStates[0]))
		copy(out, tokenStates[0])
		return out
	}

	// 均值池化
	dim := len(tokenStates[0])
	out := make([]float64, dim)
	for _, state := range tokenStates {
		for i := 0; i < dim && i < len(state); i++ {
			out[i] += state[i]
		}
	}
	n := float64(len(tokenStates))
	for i := range out {
		out[i] /= n
	}
	return out
}

// CosineSimilarity 两个向量的余弦相似度，取值[-1,1]
// 任一向量为零向量时余弦未定义，统一返回0.0而不是除零
func CosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0.0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0.0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
