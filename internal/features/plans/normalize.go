package plans

import (
	"regexp"
	"strings"
)

// The normalization pass strips generator artifacts (markdown, LaTeX
// idioms, escape sequences, a templated boilerplate header) from plan
// text before display or export. It is pure and idempotent: running it
// twice yields the first pass's output.

var (
	// Templated header the generator sometimes echoes back verbatim,
	// placeholder brackets included.
	reBoilerplate = regexp.MustCompile(`(?mi)^#{0,6}\s*plan d['’]apprentissage(?: personnalisé)? pour \[[^\]\n]*\]\s*\n?`)

	reHeading        = regexp.MustCompile(`#{1,6}\s*`)
	reBold           = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	reItalic         = regexp.MustCompile(`\*([^*]+)\*`)
	reBoldUnderscore = regexp.MustCompile(`__([^_]+)__`)
	reUnderscore     = regexp.MustCompile(`_([^_]+)_`)
	reInlineCode     = regexp.MustCompile("`([^`]+)`")
	reCodeFence      = regexp.MustCompile("```[^`]*```")
	reMathBlock      = regexp.MustCompile(`\$\$([^$]+)\$\$`)
	reMathInline     = regexp.MustCompile(`\$([^$]+)\$`)
	reListMarker     = regexp.MustCompile(`(?m)^[-*+]\s+`)
	reMarkdownLink   = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	reExcessNewlines = regexp.MustCompile(`\n{3,}`)
	escapedSequences = strings.NewReplacer(`\n`, "\n", `\"`, `"`, `\/`, "/")
)

// Normalize cleans generated plan text for on-screen rendering and PDF
// export. Empty input yields empty output.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	t := reBoilerplate.ReplaceAllString(text, "")

	// Markdown markers, inner text preserved.
	t = reHeading.ReplaceAllString(t, "")
	t = reBold.ReplaceAllString(t, "$1")
	t = reItalic.ReplaceAllString(t, "$1")
	t = reBoldUnderscore.ReplaceAllString(t, "$1")
	t = reUnderscore.ReplaceAllString(t, "$1")
	t = reInlineCode.ReplaceAllString(t, "$1")
	t = reCodeFence.ReplaceAllString(t, "")

	// LaTeX spans to plain Unicode.
	t = reMathBlock.ReplaceAllStringFunc(t, func(m string) string {
		return latexToText(reMathBlock.FindStringSubmatch(m)[1])
	})
	t = reMathInline.ReplaceAllStringFunc(t, func(m string) string {
		return latexToText(reMathInline.FindStringSubmatch(m)[1])
	})

	// Literal escape sequences into real characters.
	t = escapedSequences.Replace(t)

	// Uniform bullets; numbered markers stay as they are.
	t = reListMarker.ReplaceAllString(t, "• ")

	// Markdown links keep only the visible text.
	t = reMarkdownLink.ReplaceAllString(t, "$1")

	t = reExcessNewlines.ReplaceAllString(t, "\n\n")
	return strings.TrimSpace(t)
}

var (
	reFraction      = regexp.MustCompile(`\\frac\{([^}]+)\}\{([^}]+)\}`)
	reSuperscript   = regexp.MustCompile(`\^(\{[^}]+\}|\d+)`)
	reSubscript     = regexp.MustCompile(`_(\{[^}]+\}|\d+)`)
	reSquareRoot    = regexp.MustCompile(`\\sqrt\{([^}]+)\}`)
	reNthRoot       = regexp.MustCompile(`\\sqrt\[(\d+)\]\{([^}]+)\}`)
	reLatexLeftover = regexp.MustCompile(`[{}\\]`)

	superscripts = map[rune]string{
		'0': "⁰", '1': "¹", '2': "²", '3': "³", '4': "⁴",
		'5': "⁵", '6': "⁶", '7': "⁷", '8': "⁸", '9': "⁹",
		'n': "ⁿ", 'x': "ˣ",
	}
	subscripts = map[rune]string{
		'0': "₀", '1': "₁", '2': "₂", '3': "₃", '4': "₄",
		'5': "₅", '6': "₆", '7': "₇", '8': "₈", '9': "₉",
	}

	latexSymbols = strings.NewReplacer(
		`\alpha`, "α", `\beta`, "β", `\gamma`, "γ",
		`\delta`, "δ", `\epsilon`, "ε", `\theta`, "θ",
		`\lambda`, "λ", `\mu`, "μ", `\pi`, "π",
		`\sigma`, "σ", `\omega`, "ω", `\phi`, "φ",
		`\Delta`, "Δ", `\Sigma`, "Σ", `\Omega`, "Ω",
		`\times`, "×", `\div`, "÷", `\pm`, "±",
		`\leq`, "≤", `\geq`, "≥", `\neq`, "≠",
		`\approx`, "≈", `\infty`, "∞",
		`\sin`, "sin", `\cos`, "cos", `\tan`, "tan",
		`\log`, "log", `\ln`, "ln", `\exp`, "exp",
	)
)

// latexToText converts common math-notation idioms to readable text.
// Idioms outside the recognized set lose their braces and backslashes
// rather than being reproduced literally.
func latexToText(latex string) string {
	t := reFraction.ReplaceAllString(latex, "($1/$2)")

	t = reSuperscript.ReplaceAllStringFunc(t, func(m string) string {
		exp := strings.NewReplacer("{", "", "}", "").Replace(m[1:])
		var b strings.Builder
		for _, c := range exp {
			if s, ok := superscripts[c]; ok {
				b.WriteString(s)
			} else {
				b.WriteString("^" + string(c))
			}
		}
		return b.String()
	})

	t = reSubscript.ReplaceAllStringFunc(t, func(m string) string {
		sub := strings.NewReplacer("{", "", "}", "").Replace(m[1:])
		var b strings.Builder
		for _, c := range sub {
			if s, ok := subscripts[c]; ok {
				b.WriteString(s)
			} else {
				b.WriteString("_" + string(c))
			}
		}
		return b.String()
	})

	t = reSquareRoot.ReplaceAllString(t, "√($1)")
	t = reNthRoot.ReplaceAllString(t, "∛($2)")
	t = latexSymbols.Replace(t)
	t = reLatexLeftover.ReplaceAllString(t, "")
	return strings.TrimSpace(t)
}
