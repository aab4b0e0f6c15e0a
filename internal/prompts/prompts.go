// Package prompts builds the natural language instructions sent to Gemini.
// Every builder is a pure function of its inputs.
package prompts

import (
	"encoding/json"
	"fmt"
	"strings"

	"giga/internal/core"
)

const (
	// DefaultLanguage is the output language used when none is given.
	DefaultLanguage = "English"
	// DefaultMetricLabel is the growth metric named in the insights prompt.
	DefaultMetricLabel = "YoY"

	// DefaultClusterTemplate opens the clustering prompt.
	DefaultClusterTemplate = "You are a search marketing analyst. Group the following Google Ads keyword ideas into coherent topics. " +
		"Only use keywords from the list, spelled exactly as given.\n\nKeywords:"
	// DefaultTrendsTemplate opens the trend keywords prompt.
	DefaultTrendsTemplate = "Use Google Search to find search terms that are currently trending around the following keywords. " +
		"Return up to 20 short, generic search terms."
)

// GrowthLine renders an idea as "<text>, <growth in percent>%".
func GrowthLine(idea core.IdeaGrowth) string {
	return fmt.Sprintf("%s, %.1f%%", idea.Text, idea.Growth*100)
}

// Insights builds the trend insights prompt. ideas are expected to be
// sorted by growth, descending.
func Insights(ideas []core.IdeaGrowth, seeds []string, metricLabel, language string) string {
	if metricLabel == "" {
		metricLabel = DefaultMetricLabel
	}
	if language == "" {
		language = DefaultLanguage
	}

	lines := make([]string, len(ideas))
	for i, idea := range ideas {
		lines[i] = GrowthLine(idea)
	}
	data, _ := json.MarshalIndent(lines, "", "  ")

	var b strings.Builder
	fmt.Fprintf(&b, "You are a marketing and strategy analyst looking for interesting insights on the topic(s) [%s] "+
		"in the list provided in the <DATA> section. Cluster this comma-separated list of search terms and their %s "+
		"search growth and identify the overall trends. The list is sorted descending by growth rate.\n\n",
		strings.Join(seeds, ", "), metricLabel)
	fmt.Fprintf(&b, "Output in %s.\n\n", language)
	b.WriteString("Output as HTML using standard elements like <h1> and <ul> for captions and lists.\n")
	b.WriteString("Do NOT add an introduction such as \"Of course! Here is the HTML\". Only output the HTML code.\n\n")
	b.WriteString(insightsExample)
	b.WriteString("\n\n<DATA>\n")
	b.Write(data)
	b.WriteString("\n</DATA>")
	return b.String()
}

const insightsExample = `<EXAMPLE>
INPUT:
[
  "dog pool, 12242.3%",
  "dog games, 3602.5%",
  "pet health, 1014.9%"
]

OUTPUT:
<h1>Decoding Pet-Related Search Trends: Insights for Marketing &amp; Strategy</h1>

<p>This analysis looks at Google Ads keywords related to "pets", sorted by descending YoY growth, to uncover consumer trends and marketing opportunities.</p>

<h2>Overall Trends:</h2>
<ul>
  <li><b>Explosive growth in pet products and activities:</b> "dog pool" (+12242.3%), "dog games" (+3602.5%) and "pet health" (+1014.9%) all show exceptional YoY increases, pointing to owners investing more in their pets' lives.</li>
</ul>

<h2>Cluster Insights &amp; Marketing Takeaways:</h2>

<h3>1. Pet Enrichment &amp; Entertainment:</h3>
<ul>
  <li><b>Focus:</b> Products and activities that keep pets, especially dogs, mentally and physically engaged.</li>
  <li><b>Keywords:</b> "dog pool", "dog games"</li>
  <li><b>Strategy:</b>
    <ul>
      <li>Extend the range from simple wading pools to larger setups.</li>
      <li>Promote interactive games such as puzzle toys and agility equipment.</li>
    </ul>
  </li>
</ul>

<h3>2. Pet Health &amp; Wellness:</h3>
<ul>
  <li><b>Focus:</b> Preventative care, nutrition and veterinary services.</li>
  <li><b>Keywords:</b> "pet health"</li>
  <li><b>Strategy:</b>
    <ul>
      <li>Offer supplements, grooming tools and first-aid kits.</li>
      <li>Partner with veterinarians on educational content.</li>
    </ul>
  </li>
</ul>

<h2>Recommendations for Future Analysis:</h2>
<ul>
  <li><b>Expand the keyword list:</b> Add pet types, breeds and health concerns for a fuller picture.</li>
  <li><b>Investigate seasonality:</b> Look for seasonal patterns to time campaigns and inventory.</li>
</ul>

<h2>Conclusion:</h2>
<p>Interest in pet enrichment and health is growing fast, and businesses that act on it early can capture a thriving market.</p>
</EXAMPLE>`

// ClusteringOutputFormat is appended to every clustering prompt.
const ClusteringOutputFormat = `Output as a list of topics where each topic has a name and up to 10 keywords as JSON with this format:
[
  {
    "topic": "A descriptive name of topic 1",
    "keywords": ["a1", "b1", "c1"]
  },
  {
    "topic": "A descriptive name of topic 2",
    "keywords": ["a2", "b2", "c2"]
  }
]`

// Clustering builds the topic clustering prompt from a user template and the
// keyword universe, one keyword per line.
func Clustering(template string, keywords []string) string {
	return template + "\n" + strings.Join(keywords, "\n") + "\n\n" + ClusteringOutputFormat
}

// CampaignInput holds the inputs of the campaign generation prompt.
type CampaignInput struct {
	BrandName string
	// AdExamples is a rendered block of existing ads, see AdExamples.
	AdExamples string
	// StyleGuide defaults to DefaultStyleGuide.
	StyleGuide string
	Language   string
	// Insights is the HTML produced by the insights step.
	Insights string
}

// Campaigns builds the search campaign generation prompt.
func Campaigns(in CampaignInput) string {
	styleGuide := in.StyleGuide
	if styleGuide == "" {
		styleGuide = DefaultStyleGuide
	}
	language := in.Language
	if language == "" {
		language = DefaultLanguage
	}
	brand := in.BrandName
	if brand == "" {
		brand = "our brand"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "I am a SEA manager working for %s and I want to create new Google Ads search campaigns based on the following input.\n", brand)
	b.WriteString("For each cluster in the \"Cluster Insights & Marketing Takeaways\" section, generate a ready-to-use text ad campaign.\n\n")
	if strings.TrimSpace(in.AdExamples) != "" {
		b.WriteString("Make sure the new ads follow the style, wording and tonality of these ad examples:\n")
		b.WriteString(in.AdExamples)
		b.WriteString("\n\n")
	}
	b.WriteString("Follow this style guide:\n")
	b.WriteString(styleGuide)
	b.WriteString("\n\nOutput as HTML using standard elements like <h1> and <ul> for captions and lists.\n")
	fmt.Fprintf(&b, "Create the campaigns in %s.\n", language)
	b.WriteString("Style the ads so that they look like text ads shown on google.com.\n\n")
	b.WriteString("Insights:\n\n")
	b.WriteString(in.Insights)
	return b.String()
}

// DefaultStyleGuide describes responsive search ad limits and copywriting
// practice.
const DefaultStyleGuide = `### Style guide and technical specifications for Google Search Ads

**Headlines**
*   **Quantity:** Provide up to 15 headlines.
*   **Character limit:** Each headline has a maximum length of 30 characters.

**Descriptions**
*   **Quantity:** Provide up to 4 descriptions.
*   **Character limit:** Each description has a maximum length of 90 characters.

### Headline best practices

*   **Create unique headlines:** Each headline should offer something different and stand on its own. Similar phrases limit the combinations Google can test.
*   **Incorporate keywords:** Include primary keywords in some headlines to stay relevant to user searches.
*   **Use action-oriented language:** Start headlines with verbs like "Get", "Shop" or "Discover".
*   **Showcase unique value:** Highlight promotions, guarantees or exclusive features.

### Description best practices

*   **Write for modularity:** Descriptions are paired with various headlines, so each must make sense on its own and next to any headline.
*   **Focus on benefits:** State the advantages your product or service brings to the customer.
*   **Include a clear call to action:** For example "Shop Now", "Request a Quote" or "Sign Up Today".
*   **Highlight promotions:** Feature special offers or limited-time deals to create urgency.
`

// TrendKeywords builds the grounded trending keywords prompt.
func TrendKeywords(template string, seeds []string) string {
	var b strings.Builder
	b.WriteString(template)
	b.WriteString("\n\nKeywords:\n")
	b.WriteString(strings.Join(seeds, "\n"))
	b.WriteString(`

IMPORTANT:
- Do NOT add the topic keyword itself to the trends unless necessary.
- Only output the keywords, without words like "trending" or "high demand for".
- Only output the keywords without any introduction or other annotations.
- Do NOT add punctuation or unnecessary hyphens; keep each keyword simple and generic.`)
	return b.String()
}

// NewSearchTermKeywords asks for broad match keywords summarizing new
// search terms.
func NewSearchTermKeywords(terms []string, language string) string {
	if language == "" {
		language = DefaultLanguage
	}
	return fmt.Sprintf(`Given the list of Google Ads search terms in SEARCH_TERMS below,
return a list of at most 20 different broad match keywords that represent those search terms as well as possible.

Use %s for the output.
Output an array of strings.

SEARCH_TERMS:
%s`, language, strings.Join(terms, ", "))
}

// adRequest is the user turn of an ad writing exchange.
func adRequest(keywords []string) string {
	return fmt.Sprintf(`
*User:*

Please write 3 distinct ads, each with 15 headlines and 4 descriptions for the following keywords:
[%s]

Make sure the ads differ from each other and cover different angles.
Do not produce placeholders (e.g. {KeyWord: Vintage Jeans}); write readable text instead.
Output strictly a JSON array of objects, each with "headlines" (array of strings) and "descriptions" (array of strings).

*Model:*
`, strings.Join(keywords, ", "))
}

// AdExamples renders existing ads as few-shot user/model exchanges.
func AdExamples(ads []core.AdExample) string {
	var b strings.Builder
	for _, ad := range ads {
		answer, _ := json.MarshalIndent(core.AdCopy{Headlines: ad.Headlines, Descriptions: ad.Descriptions}, "", "  ")
		b.WriteString(adRequest(ad.Keywords))
		b.Write(answer)
		b.WriteString("\n")
	}
	return b.String()
}

// AdSuggestion appends a request for new ads on keywords to rendered
// examples.
func AdSuggestion(examples string, keywords []string) string {
	return examples + "\n" + adRequest(keywords)
}

// GroundedJSONSuffix is appended to grounded prompts that must answer in
// JSON, since grounding cannot be combined with a JSON response type.
func GroundedJSONSuffix(schemaJSON string) string {
	var b strings.Builder
	b.WriteString("\n\nImportant:\n")
	b.WriteString("- Output only the raw JSON string. Do not include markdown formatting (e.g. ```json) or any other text.\n")
	if schemaJSON != "" {
		b.WriteString("- Adhere to the following JSON schema definition:\n")
		b.WriteString(schemaJSON)
		b.WriteString("\n")
	}
	return b.String()
}

// ExtractJSON asks the model to recover JSON from an earlier answer.
func ExtractJSON(text string) string {
	return "Extract valid JSON from this text response:\n\n" + text
}
