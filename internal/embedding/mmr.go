package embedding

import (
	"encoding/binary"
	"fmt"
	"math"
)

// MMR picks k of the fetchK candidates most similar to query, trading
// relevance against redundancy. lambda=1 is pure relevance, lambda=0 pure
// diversity. Returned matches carry the query similarity, in pick order.
func MMR(query []float32, candidates [][]float32, k, fetchK int, lambda float32) []Match {
	if fetchK < k {
		fetchK = k
	}
	pool := TopN(query, candidates, fetchK)
	if k > len(pool) {
		k = len(pool)
	}

	picked := make([]Match, 0, k)
	used := make([]bool, len(pool))
	for len(picked) < k {
		best := -1
		var bestScore float32
		for i, m := range pool {
			if used[i] {
				continue
			}
			var redundancy float32
			for _, p := range picked {
				if sim := Cosine(candidates[m.Index], candidates[p.Index]); sim > redundancy {
					redundancy = sim
				}
			}
			score := lambda*m.Similarity - (1-lambda)*redundancy
			if best < 0 || score > bestScore {
				best, bestScore = i, score
			}
		}
		used[best] = true
		picked = append(picked, pool[best])
	}
	return picked
}

// VecAsBytes converts a float32 vector to a raw byte blob (for DB storage).
func VecAsBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// BytesAsVec is the inverse of VecAsBytes.
func BytesAsVec(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("embedding: blob length %d is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v, nil
}
