package analyzer

import "github.com/loupe-dev/loupe/pkg/models"

// ScoreFile folds a profile into a complexity score. The formula weighs
// nesting double because deep nesting hurts readability more than raw
// branch count, and only the excess over the function-length threshold
// contributes.
func ScoreFile(path string, p *FileProfile, functionThreshold int) models.ComplexityScore {
	score := models.ComplexityScore{
		Path:            path,
		Branches:        p.Branches,
		MaxNesting:      p.MaxNesting,
		LongestFunction: p.LongestFunction(),
	}

	excess := score.LongestFunction - functionThreshold
	if excess < 0 {
		excess = 0
	}
	score.Score = score.Branches + 2*score.MaxNesting + excess

	return score
}
