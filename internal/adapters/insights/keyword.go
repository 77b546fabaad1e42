package insights

// Package insights implements feedback analysis with a deterministic
// keyword heuristic. It stands in for an external AI provider and keeps
// the same output shape, so swapping in a real provider only means
// adding another implementation of the same port.

import (
	"context"
	"strings"

	"github.com/progresshq/progress-api/internal/domain/model"
)

// Canned analysis outputs. Text mentioning difficulty gets the
// task-management track; everything else is treated as praise.
const (
	difficultyCategory = "Gestão de Tarefas"
	difficultyGoal     = "Melhorar organização em 20% no próximo mês."
	difficultyCourse   = "Curso de Produtividade Avançada"
	praiseGoal         = "Continuar o excelente trabalho!"
)

var difficultyMarkers = []string{"difícil", "dificil", "dificuldade"}

// KeywordAnalyzer classifies feedback text by keyword matching.
type KeywordAnalyzer struct{}

// NewKeywordAnalyzer constructs a KeywordAnalyzer.
func NewKeywordAnalyzer() *KeywordAnalyzer {
	return &KeywordAnalyzer{}
}

// Analyze derives sentiment and recommendations from the feedback text
// and the difficulties field. It never fails.
func (a *KeywordAnalyzer) Analyze(_ context.Context, req model.CreateFeedbackRequest) model.FeedbackInsights {
	text := strings.ToLower(req.Text)
	if req.Difficulties != nil {
		text += " " + strings.ToLower(*req.Difficulties)
	}

	if containsAny(text, difficultyMarkers) {
		negative := model.SentimentNegative
		return model.FeedbackInsights{
			Sentiment:          &negative,
			DifficultyCategory: strPtr(difficultyCategory),
			SuggestedGoal:      strPtr(difficultyGoal),
			RecommendedCourse:  strPtr(difficultyCourse),
		}
	}

	positive := model.SentimentPositive
	return model.FeedbackInsights{
		Sentiment:     &positive,
		SuggestedGoal: strPtr(praiseGoal),
	}
}

// SuggestGoals produces a starter goal pair for a development plan built
// around the given objective.
func (a *KeywordAnalyzer) SuggestGoals(_ context.Context, objective string) []model.CreatePDIGoalRequest {
	objective = strings.TrimSpace(objective)
	if objective == "" {
		return nil
	}
	return []model.CreatePDIGoalRequest{
		{
			Description: "Concluir curso de " + objective + " online",
			Actions:     strPtr("Pesquisar cursos, inscrever-se, dedicar 5h/semana"),
			Resources:   strPtr("Plataforma de cursos online (ex: Alura, Coursera)"),
		},
		{
			Description: "Aplicar conhecimentos de " + objective + " em um projeto prático",
			Actions:     strPtr("Identificar projeto, definir escopo, executar e apresentar resultados"),
			Resources:   strPtr("Mentoria de um colega sênior"),
		},
	}
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

func strPtr(s string) *string { return &s }
