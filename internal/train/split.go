package train

import (
	"math"
	"math/rand/v2"
)

// DefaultSeed fixes the shuffle so splits are reproducible.
const DefaultSeed = 42

// #region split
// StratifiedSplit partitions indices 0..len(labels)-1 into train and test
// sets, sampling testSize of each class into test. Every class with at
// least two members keeps at least one example on each side.
func StratifiedSplit(labels []int, testSize float64, seed uint64) (trainIdx, testIdx []int) {
	rng := rand.New(rand.NewPCG(seed, seed))

	byClass := make(map[int][]int)
	for i, label := range labels {
		byClass[label] = append(byClass[label], i)
	}

	for _, class := range []int{0, 1} {
		idx := byClass[class]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })

		nTest := int(math.Round(testSize * float64(len(idx))))
		if len(idx) >= 2 {
			nTest = max(1, min(nTest, len(idx)-1))
		} else {
			nTest = 0
		}
		testIdx = append(testIdx, idx[:nTest]...)
		trainIdx = append(trainIdx, idx[nTest:]...)
	}
	return trainIdx, testIdx
}

// #endregion split
