package plans

import (
	"context"
	"log/slog"
	"strings"

	"github.com/learnai-app/learnai-backend/internal/hook"
)

const (
	fallbackEmptyPlan      = "Plan par défaut: Nous vous recommandons de suivre un apprentissage progressif adapté à votre niveau et vos difficultés."
	fallbackTechnicalError = "Plan par défaut: Nous n'avons pas pu générer un plan personnalisé en raison d'une erreur technique. Veuillez réessayer ultérieurement."
)

// generatePayload is the wire shape the plan webhook expects. The
// profile form never collects a name, so it is sent as a constant.
type generatePayload struct {
	Name                 string `json:"nom"`
	Age                  string `json:"age"`
	SchoolLevel          string `json:"niveau"`
	AverageGrade         string `json:"moyenne"`
	LearningDifficulties string `json:"difficultes"`
	Subject              string `json:"matiere"`
	SpecificRequests     string `json:"demande"`
}

// Generator produces plan text by calling the external plan webhook.
// It never returns an error for webhook failures; callers always get
// usable French text, falling back to a canned plan when the webhook
// is down or answers with nothing.
type Generator struct {
	client *hook.Client
	url    string
}

func NewGenerator(client *hook.Client, url string) *Generator {
	return &Generator{client: client, url: url}
}

func (g *Generator) Generate(ctx context.Context, req CreatePlanRequest) (string, error) {
	payload := generatePayload{
		Name:                 "Utilisateur",
		Age:                  req.Age,
		SchoolLevel:          SchoolLevelLabel(req.SchoolLevel),
		AverageGrade:         req.AverageGrade,
		LearningDifficulties: req.LearningDifficulties,
		Subject:              req.Subject,
		SpecificRequests:     req.SpecificRequests,
	}

	raw, err := g.client.Post(ctx, g.url, payload)
	if err != nil {
		slog.Error("plan webhook call failed", "error", err)
		return fallbackTechnicalError, nil
	}

	text := hook.ExtractText(raw)
	if strings.TrimSpace(text) == "" {
		slog.Warn("plan webhook returned empty response")
		return fallbackEmptyPlan, nil
	}
	return text, nil
}
