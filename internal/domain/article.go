package domain

// Categories assigned by the scoring service. Anything the service returns
// outside this set collapses to CategoryUnknown.
const (
	CategoryTech    = "tech"
	CategoryWorld   = "world"
	CategorySociety = "society"
	CategoryPolicy  = "policy"
	CategoryUnknown = "unknown"
)

var knownCategories = map[string]struct{}{
	CategoryTech:    {},
	CategoryWorld:   {},
	CategorySociety: {},
	CategoryPolicy:  {},
}

// NormalizeCategory maps a scoring-service category onto the known set.
func NormalizeCategory(category string) string {
	if _, ok := knownCategories[category]; ok {
		return category
	}
	return CategoryUnknown
}

// Article is the unit flowing through the pipeline: produced by a source
// adapter, filtered by the ingestion coordinator, enriched by scoring and
// summarization, exported at the end of a run.
type Article struct {
	URL               string
	Title             string
	Source            string
	PublishTime       string // raw timestamp as reported by the source
	Description       string
	Category          string
	ImportanceScore   int
	FullContent       string
	SummarizedContent string
}

// TitleScore is one row of the scoring-service response.
type TitleScore struct {
	Title    string `json:"title"`
	Score    int    `json:"score"`
	Category string `json:"category"`
}
