package plans

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnai-app/learnai-backend/internal/hook"
)

func TestGeneratePayloadShape(t *testing.T) {
	var got map[string]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		fmt.Fprint(w, `{"response": "plan généré"}`)
	}))
	defer ts.Close()

	gen := NewGenerator(hook.NewClient(0), ts.URL)
	text, err := gen.Generate(context.Background(), CreatePlanRequest{
		Age:                  "14",
		SchoolLevel:          "college",
		AverageGrade:         "11",
		LearningDifficulties: "mémoire",
		Subject:              "Français",
		SpecificRequests:     "dictées",
	})
	require.NoError(t, err)
	assert.Equal(t, "plan généré", text)

	assert.Equal(t, map[string]string{
		"nom":         "Utilisateur",
		"age":         "14",
		"niveau":      "Collège",
		"moyenne":     "11",
		"difficultes": "mémoire",
		"matiere":     "Français",
		"demande":     "dictées",
	}, got)
}

func TestGenerateFallbackOnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	gen := NewGenerator(hook.NewClient(0), ts.URL)
	text, err := gen.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, fallbackTechnicalError, text)
}

func TestGenerateFallbackOnUnreachable(t *testing.T) {
	gen := NewGenerator(hook.NewClient(0), "http://127.0.0.1:1")
	text, err := gen.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, fallbackTechnicalError, text)
}

func TestGenerateFallbackOnEmptyResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "")
	}))
	defer ts.Close()

	gen := NewGenerator(hook.NewClient(0), ts.URL)
	text, err := gen.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, fallbackEmptyPlan, text)
}

func TestGeneratePlainTextResponse(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Semaine 1: réviser les bases")
	}))
	defer ts.Close()

	gen := NewGenerator(hook.NewClient(0), ts.URL)
	text, err := gen.Generate(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "Semaine 1: réviser les bases", text)
}
