package orchestrator

import (
	"mockmate/interview/internal/models"
)

// Hand-authored substitutes used whenever an agent call fails or returns
// unusable output. The interview must always move forward, so every
// agent-dependent step has a deterministic local stand-in.

var fallbackVideoQuestions = map[string]models.QuestionRecord{
	models.DifficultyEasy: {
		Type:       models.QuestionTypeVideo,
		Title:      "Recent project",
		Text:       "Tell me about a recent project you worked on. What was your role, and what part are you most proud of?",
		Difficulty: models.DifficultyEasy,
	},
	models.DifficultyMedium: {
		Type:       models.QuestionTypeVideo,
		Title:      "Hard technical problem",
		Text:       "Describe the most challenging technical problem you have solved recently. What made it hard, and how did you approach it?",
		Difficulty: models.DifficultyMedium,
	},
	models.DifficultyHard: {
		Type:       models.QuestionTypeVideo,
		Title:      "Scaling under pressure",
		Text:       "Walk me through how you would redesign a service to survive a sudden 10x traffic spike without downtime. What do you change first, and what trade-offs do you accept?",
		Difficulty: models.DifficultyHard,
	},
}

func fallbackVideoQuestion(difficulty string) models.QuestionRecord {
	q, ok := fallbackVideoQuestions[difficulty]
	if !ok {
		q = fallbackVideoQuestions[models.DifficultyMedium]
	}
	return q
}

func fallbackCodeQuestion(difficulty, language string) models.QuestionRecord {
	return models.QuestionRecord{
		Type:  models.QuestionTypeCode,
		Title: "Pair With Target Sum",
		Text: "Given an array of integers and a target value, return the indices of two distinct elements " +
			"that add up to the target, or an empty result if no such pair exists. " +
			"Aim for better than quadratic time and explain your complexity in comments.",
		Difficulty:  difficulty,
		StarterCode: models.StarterCodePlaceholder,
		Language:    language,
	}
}

// skippedEvaluation is the zero-score evaluation synthesized locally when
// the candidate passes on a question. No agent is consulted and difficulty
// is held constant.
func skippedEvaluation(currentDifficulty string) models.Evaluation {
	return models.Evaluation{
		Score:          0,
		NextDifficulty: currentDifficulty,
		Strengths:      []string{},
		Weaknesses:     []string{"Question was skipped"},
		Brief:          "The candidate skipped this question.",
	}
}

func unavailableEvaluation(currentDifficulty string) models.Evaluation {
	return models.Evaluation{
		Score:          0,
		NextDifficulty: currentDifficulty,
		Strengths:      []string{},
		Weaknesses:     []string{"Evaluation unavailable"},
		Brief:          "The evaluation service was unavailable, so this answer could not be scored.",
	}
}

func noCodeReview() models.CodeReview {
	return models.CodeReview{
		Score:           0,
		Correctness:     false,
		TimeComplexity:  "N/A",
		SpaceComplexity: "N/A",
		Strengths:       []string{},
		Issues:          []string{"No code submitted"},
		Brief:           "No code was submitted.",
	}
}

func unavailableCodeReview() models.CodeReview {
	return models.CodeReview{
		Score:           0,
		Correctness:     false,
		TimeComplexity:  "N/A",
		SpaceComplexity: "N/A",
		Strengths:       []string{},
		Issues:          []string{"Code review unavailable"},
		Brief:           "The code review service was unavailable, so this submission could not be scored.",
	}
}

// Fixed skill labels for the locally computed analysis. The first three
// reuse the average video-question score, the last reuses the code score.
var videoSkillLabels = []string{"Communication", "Technical Knowledge", "Problem Solving"}

const codeSkillLabel = "Code Quality"

// localAnalysis derives a full report from recorded scores alone, used when
// the analyst agent fails. totalTime is the locally computed duration.
func localAnalysis(session *models.InterviewSession, totalTime string) models.Analysis {
	videoTotal, videoCount := 0, 0
	codeScore := 0
	for _, q := range session.Questions {
		switch q.Type {
		case models.QuestionTypeVideo:
			if q.Evaluation != nil {
				videoTotal += q.Evaluation.Score
				videoCount++
			}
		case models.QuestionTypeCode:
			if q.CodeReview != nil {
				codeScore = q.CodeReview.Score
			}
		}
	}

	videoAvg := 0
	if videoCount > 0 {
		videoAvg = (videoTotal + videoCount/2) / videoCount
	}
	overall := (videoAvg + codeScore + 1) / 2

	skillScores := make([]models.SkillScore, 0, len(videoSkillLabels)+1)
	for _, skill := range videoSkillLabels {
		skillScores = append(skillScores, models.SkillScore{Skill: skill, Score: videoAvg})
	}
	skillScores = append(skillScores, models.SkillScore{Skill: codeSkillLabel, Score: codeScore})

	feedback := []models.FeedbackItem{}
	for _, q := range session.Questions {
		for _, s := range collectStrengths(&q) {
			feedback = append(feedback, models.FeedbackItem{Type: models.FeedbackStrength, Text: s})
		}
	}
	for _, q := range session.Questions {
		for _, w := range collectWeaknesses(&q) {
			feedback = append(feedback, models.FeedbackItem{Type: models.FeedbackImprovement, Text: w})
		}
	}

	return models.Analysis{
		OverallScore:   overall,
		Recommendation: recommendationFor(overall),
		TotalTime:      totalTime,
		SkillScores:    skillScores,
		Feedback:       feedback,
		Summary:        "Report generated from recorded scores; the analyst service was unavailable.",
	}
}

func collectStrengths(q *models.QuestionRecord) []string {
	var out []string
	if q.Evaluation != nil {
		out = append(out, q.Evaluation.Strengths...)
	}
	if q.CodeReview != nil {
		out = append(out, q.CodeReview.Strengths...)
	}
	return out
}

func collectWeaknesses(q *models.QuestionRecord) []string {
	var out []string
	if q.Evaluation != nil {
		out = append(out, q.Evaluation.Weaknesses...)
	}
	if q.CodeReview != nil {
		out = append(out, q.CodeReview.Issues...)
	}
	return out
}

func recommendationFor(score int) string {
	switch {
	case score >= 80:
		return models.RecommendationStrongHire
	case score >= 65:
		return models.RecommendationHire
	case score >= 50:
		return models.RecommendationMaybe
	default:
		return models.RecommendationNoHire
	}
}
