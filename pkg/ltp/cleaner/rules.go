package cleaner

import (
	"regexp"
	"strings"

	"mercator-hq/texsolve/pkg/ltp/bracket"
	ltpErrors "mercator-hq/texsolve/pkg/ltp/errors"
)

var (
	multiplicationPattern = regexp.MustCompile(`(?i)\\cdot|\\times`)
	divisionPattern       = regexp.MustCompile(`(?i)\\div`)
	comparisonPattern     = regexp.MustCompile(`(?i)\\leq|\\lt|\\geq|\\gt`)
	sizingPattern         = regexp.MustCompile(`(?i)\\(?:left|right)\b`)
	spacingPattern        = regexp.MustCompile(`(?i)\[\d+pt\]`)
)

// matrixEnvironments are the environments in which & separates columns.
var matrixEnvironments = []string{
	"matrix", "pmatrix", "bmatrix", "Bmatrix", "vmatrix", "Vmatrix", "smallmatrix",
}

var comparisons = map[string]string{
	`\leq`: "<=",
	`\lt`:  "<",
	`\geq`: ">=",
	`\gt`:  ">",
}

func defaultRules() []Rule {
	return []Rule{
		{Name: "textcolor", Apply: func(text string) (string, error) {
			return replaceMacroWithArgument(text, `\textcolor`, 2, 2)
		}},
		{Name: "operators", Apply: convertOperators},
		{Name: "left_right", Apply: func(text string) (string, error) {
			return sizingPattern.ReplaceAllString(text, ""), nil
		}},
		{Name: "text", Apply: func(text string) (string, error) {
			return removeMacro(text, `\text`, 1)
		}},
		{Name: "spacing", Apply: func(text string) (string, error) {
			return spacingPattern.ReplaceAllString(text, ""), nil
		}},
		{Name: "ampersand", Apply: func(text string) (string, error) {
			return stripSeparators(text, '&', " "), nil
		}},
		{Name: "comma", Apply: func(text string) (string, error) {
			return removeCommas(text), nil
		}},
	}
}

// convertOperators rewrites LaTeX operator macros to plain operators.
func convertOperators(text string) (string, error) {
	text = multiplicationPattern.ReplaceAllString(text, "*")
	text = divisionPattern.ReplaceAllString(text, "/")
	text = comparisonPattern.ReplaceAllStringFunc(text, func(match string) string {
		return comparisons[strings.ToLower(match)]
	})
	return text, nil
}

// replaceMacroWithArgument replaces every invocation name{a1}...{an} with the
// verbatim contents of argument x (1-based).
func replaceMacroWithArgument(text, name string, x, n int) (string, error) {
	return rewriteMacro(text, name, n, func(args []string) string {
		return args[x-1]
	})
}

// removeMacro deletes every invocation name{a1}...{an}.
func removeMacro(text, name string, n int) (string, error) {
	return rewriteMacro(text, name, n, func([]string) string {
		return ""
	})
}

// rewriteMacro finds each occurrence of name, locates its n brace arguments
// and replaces the whole invocation with replace(args). Each argument starts
// at the next '{' after the end of the previous one (or after the name).
// Scanning resumes after the inserted replacement; anything the replacement
// exposes is handled by the next pass.
func rewriteMacro(text, name string, n int, replace func(args []string) string) (string, error) {
	start := indexMacro(text, name, 0)
	for start != -1 {
		end := start + len(name) - 1
		args := make([]string, 0, n)

		for i := 1; i <= n; i++ {
			argStart := indexFrom(text, "{", end)
			if argStart == -1 {
				return "", ltpErrors.NewCleaningError(text, name, i, start)
			}
			argEnd, err := bracket.FindEnd(text, argStart)
			if err != nil {
				return "", err
			}
			args = append(args, text[argStart+1:argEnd])
			end = argEnd
		}

		var resume int
		text, resume = replaceRange(text, start, end+1, replace(args))
		start = indexMacro(text, name, resume)
	}
	return text, nil
}

// indexMacro finds the next invocation of the macro name at or after from.
// A match followed by a letter is a longer macro name (\text inside
// \textcolor or \textbf) and is skipped.
func indexMacro(text, name string, from int) int {
	for {
		i := indexFrom(text, name, from)
		if i == -1 {
			return -1
		}
		end := i + len(name)
		if end >= len(text) || !isASCIILetter(text[end]) {
			return i
		}
		from = i + 1
	}
}

func isASCIILetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// removeCommas deletes separator commas. The control symbol \, (a comma
// after an odd run of backslashes) is a spacing command and is kept; after
// a row break \\ the comma is an ordinary separator.
func removeCommas(text string) string {
	if strings.IndexByte(text, ',') == -1 {
		return text
	}

	var sb strings.Builder
	sb.Grow(len(text))
	backslashes := 0
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c == ',' && backslashes%2 == 0 {
			backslashes = 0
			continue
		}
		if c == '\\' {
			backslashes++
		} else {
			backslashes = 0
		}
		sb.WriteByte(c)
	}
	return sb.String()
}

// replaceRange substitutes text[start:end] with replacement and returns the
// new text together with the index just past the replacement.
func replaceRange(text string, start, end int, replacement string) (string, int) {
	return text[:start] + replacement + text[end:], start + len(replacement)
}

// indexFrom is strings.Index starting at from; it returns an absolute index.
func indexFrom(text, substr string, from int) int {
	if from < 0 {
		from = 0
	}
	if from > len(text) {
		return -1
	}
	i := strings.Index(text[from:], substr)
	if i == -1 {
		return -1
	}
	return from + i
}

// region is a half-open byte range.
type region struct {
	start, end int
}

// stripSeparators replaces every sep outside matrix environments with
// replacement. Separators inside \begin{M}...\end{M} are kept.
func stripSeparators(text string, sep byte, replacement string) string {
	if strings.IndexByte(text, sep) == -1 {
		return text
	}

	protected := matrixRegions(text)

	var sb strings.Builder
	sb.Grow(len(text))
	for i := 0; i < len(text); i++ {
		if text[i] == sep && !inRegions(protected, i) {
			sb.WriteString(replacement)
			continue
		}
		sb.WriteByte(text[i])
	}
	return sb.String()
}

func inRegions(regions []region, i int) bool {
	for _, r := range regions {
		if i >= r.start && i < r.end {
			return true
		}
	}
	return false
}

// matrixRegions returns the spans of all matrix environments in text.
func matrixRegions(text string) []region {
	var regions []region
	for _, env := range matrixEnvironments {
		regions = append(regions, environmentRegions(text, env)...)
	}
	return regions
}

// environmentRegions finds every \begin{env}...\end{env} span, honouring
// nesting of the same environment. Unterminated environments are skipped.
func environmentRegions(text, env string) []region {
	beginTag := `\begin{` + env + `}`
	endTag := `\end{` + env + `}`

	var regions []region
	from := 0
	for {
		begin := indexFrom(text, beginTag, from)
		if begin == -1 {
			break
		}
		end := environmentEnd(text, begin, beginTag, endTag)
		if end == -1 {
			from = begin + len(beginTag)
			continue
		}
		regions = append(regions, region{start: begin, end: end})
		from = end
	}
	return regions
}

// environmentEnd returns the index just past the \end tag matching the
// \begin tag at begin, or -1.
func environmentEnd(text string, begin int, beginTag, endTag string) int {
	depth := 1
	pos := begin + len(beginTag)
	for depth > 0 && pos < len(text) {
		nextBegin := indexFrom(text, beginTag, pos)
		nextEnd := indexFrom(text, endTag, pos)
		if nextEnd == -1 {
			return -1
		}
		if nextBegin != -1 && nextBegin < nextEnd {
			depth++
			pos = nextBegin + len(beginTag)
			continue
		}
		depth--
		pos = nextEnd + len(endTag)
	}
	if depth != 0 {
		return -1
	}
	return pos
}
