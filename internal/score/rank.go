package score

type Rank string

const (
	SS Rank = "SS"
	S  Rank = "S"
	A  Rank = "A"
	B  Rank = "B"
	C  Rank = "C"
	D  Rank = "D"
)

var ladder = []struct {
	Rank     Rank
	Accuracy float64
}{
	{S, 0.95},
	{A, 0.90},
	{B, 0.80},
	{C, 0.70},
}

// RankFor walks the ladder from the top. SS also requires a play without
// misses.
func RankFor(accuracy float64, misses int) Rank {
	if accuracy >= 0.98 && misses == 0 {
		return SS
	}
	for _, step := range ladder {
		if accuracy >= step.Accuracy {
			return step.Rank
		}
	}
	return D
}
