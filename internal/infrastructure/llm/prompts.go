package llm

import (
	"fmt"
	"strings"
)

func scorePrompt(titles []string) string {
	var b strings.Builder
	b.WriteString(`You are a senior news editor. For each headline below, first pick the single best category:
- tech: technology, company and industry news, finance, funding
- world: international relations, geopolitics, macro developments of major economies
- society: daily life, law, education, environment, public health, culture
- policy: regulations, ordinances and guidance issued by national government bodies

Then rate its importance from 1 to 10 (10 = most important), weighing industry impact, public interest, novelty and long-term significance.

Respond with strict JSON only: an array of objects, each with the fields "title" (the original headline, unchanged), "score" (integer) and "category" (one of the four names above).

Headlines:
`)
	for _, title := range titles {
		fmt.Fprintf(&b, "- %s\n", title)
	}
	return b.String()
}

func summaryPrompt(content string) string {
	return fmt.Sprintf(`You are a professional news editor. Condense the following article into a standalone summary of at most 200 words. Cover who, what, when and where; include why and how when the story involves policy, conflict or decisions. Attribute claims to their sources, keep key figures and trends, drop filler words and non-essential background, and prefer active voice. If the article leaves the cause or method unclear, say so rather than guessing.

Article:
%s`, content)
}
