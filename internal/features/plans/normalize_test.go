package plans

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"heading", "## Semaine 1", "Semaine 1"},
		{"bold", "**important**", "important"},
		{"italic", "*note*", "note"},
		{"bold underscore", "__gras__", "gras"},
		{"inline code", "utiliser `go test`", "utiliser go test"},
		{"list marker", "- Réviser les équations", "• Réviser les équations"},
		{"plus marker", "+ Exercice", "• Exercice"},
		{"link", "voir [ce cours](https://example.com)", "voir ce cours"},
		{"escaped newline", `ligne 1\nligne 2`, "ligne 1\nligne 2"},
		{"collapses blank runs", "a\n\n\n\n\nb", "a\n\nb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeStripsBoilerplateHeader(t *testing.T) {
	input := "## Plan d'apprentissage personnalisé pour [Utilisateur]\nSemaine 1: bases"
	assert.Equal(t, "Semaine 1: bases", Normalize(input))

	// Also without the adjective and with curly apostrophe.
	input = "Plan d’apprentissage pour [Jean]\ncontenu"
	assert.Equal(t, "contenu", Normalize(input))
}

func TestNormalizeLatex(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"fraction", `$\frac{1}{2}$`, "(1/2)"},
		{"superscript digit", "$x^2$", "x²"},
		{"superscript braced", "$x^{10}$", "x¹⁰"},
		{"subscript", "$a_1$", "a₁"},
		{"square root", `$\sqrt{16}$`, "√(16)"},
		{"nth root", `$\sqrt[3]{8}$`, "∛(8)"},
		{"greek", `$\alpha + \pi$`, "α + π"},
		{"operators", `$a \times b \leq c$`, "a × b ≤ c"},
		{"functions", `$\cos x$`, "cos x"},
		{"leftover braces stripped", `${a}$`, "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"## Semaine 1\n**Objectif**: $x^2$\n- point un\n- point deux",
		"Plan d'apprentissage personnalisé pour [X]\ntexte\n\n\n\nfin",
		`$\frac{a}{b}$ et \n des [liens](http://x)`,
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once))
	}
}

func TestNormalizeFullDocument(t *testing.T) {
	input := "## Plan d'apprentissage personnalisé pour [Utilisateur]\n\n" +
		"### Semaine 1: Les équations\n" +
		"**Objectif**: maîtriser $x^2 + 2x = 0$\n" +
		"- Réviser le cours\n" +
		"- Faire les exercices de [ce manuel](https://example.com/manuel)\n\n\n\n" +
		"### Semaine 2\n" +
		"Calculer $\\frac{3}{4}$ de la surface"

	got := Normalize(input)
	want := "Semaine 1: Les équations\n" +
		"Objectif: maîtriser x² + 2x = 0\n" +
		"• Réviser le cours\n" +
		"• Faire les exercices de ce manuel\n\n" +
		"Semaine 2\n" +
		"Calculer (3/4) de la surface"
	assert.Equal(t, want, got)
}
