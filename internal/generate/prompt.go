// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generate

import (
	"bytes"
	"text/template"
)

// promptData is the template input shared by every prompt.
type promptData struct {
	Topic       string
	Title       string
	Subtitle    string
	Author      string
	Section     string
	Purpose     string
	MaxAbstract int
}

var subTopicTmpl = template.Must(template.New("subtopic").Parse(`Given this main research topic: "{{.Topic}}"

Identify ONE specific sub-niche or focused aspect that would make an excellent standalone academic paper.

Requirements:
- Must be a narrower, more specific aspect of the main topic
- Should be substantive enough for a full paper
- Use academic terminology
- Be specific and concrete
- Maximum 8 words

Examples:
- Main: "Climate risk in financial markets" -> Sub-niche: "Carbon pricing effects on equity valuations"
- Main: "Cryptocurrency market microstructure" -> Sub-niche: "Order flow toxicity in Bitcoin exchanges"
- Main: "ESG investing performance" -> Sub-niche: "Green bond premium determinants"

Return ONLY the sub-niche topic, nothing else.`))

var titleTmpl = template.Must(template.New("title").Parse(`Generate a compelling academic paper title about {{.Topic}} that uses contra-suggestive phrasing (opposing concepts).

Examples of contra-suggestive titles:
- "Rational Irrationality: How Quantum Cognition Challenges Classical Investor Biases"
- "Efficient Inefficiency: Market Microstructure and Price Discovery Paradoxes"
- "Predictable Unpredictability: Chaos Theory in Financial Time Series"

Requirements:
- Use opposing or paradoxical concepts
- Sound academic and professional
- Be specific to {{.Topic}}
- Maximum 15 words
- Do NOT include any AI-related terms

Return ONLY the title, nothing else.`))

var subtitleTmpl = template.Must(template.New("subtitle").Parse(`Given this paper title: "{{.Title}}"

Generate a compelling subtitle that:
- Expands on the main title
- Sounds natural and human-written
- Is specific and informative
- Maximum 12 words
- Uses active, engaging language

Return ONLY the subtitle, nothing else.`))

var keywordsTmpl = template.Must(template.New("keywords").Parse(`Generate 5-7 SEO-optimized keywords for this academic paper:

Title: {{.Title}}
Topic: {{.Topic}}

Requirements:
- Relevant to finance, economics, or business research
- Mix of broad and specific terms
- Natural academic terminology
- Comma-separated list
- No AI-related terms

Return ONLY the keywords as a comma-separated list.`))

var jelTmpl = template.Must(template.New("jel").Parse(`Generate 3-4 appropriate JEL classification codes for this paper:

Title: {{.Title}}
Topic: {{.Topic}}

Return ONLY the JEL codes as a comma-separated list (e.g., D83, G11, C91, D81).`))

var abstractTmpl = template.Must(template.New("abstract").Parse(`Write a professional academic abstract for this paper:

Title: {{.Title}}
Subtitle: {{.Subtitle}}
Topic: {{.Topic}}

Requirements:
- Maximum {{.MaxAbstract}} words
- Written in authentic human academic voice
- Clear research question and findings
- No AI-related terms or phrases
- Use active voice where appropriate
- Be specific and substantive

Write the abstract now:`))

var sectionTmpl = template.Must(template.New("section").Parse(`You are writing a section for an academic paper. Write in the authentic voice of an experienced researcher.

Paper Title: {{.Title}}
Subtitle: {{.Subtitle}}
Topic: {{.Topic}}

Section: {{.Section}}
Purpose: {{.Purpose}}

Requirements:
- Write as the researcher ({{.Author}})
- Use natural academic language
- No filler phrases like "it's important to note" or "it is worth noting"
- No author name in the body text
- Use specific examples and substantive analysis
- Write 3-4 paragraphs (600-800 words), separated by blank lines
- Sound confident and authoritative

Write the {{.Section}} section now:`))

func render(t *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
