package verify

import "github.com/memouritsen-ui/solid-robot-sub000/internal/model"

// Static quality profiles for the known source backends. Credibility
// reflects editorial rigor: curated academic indices rank highest, open
// web search in the middle, raw crawling lowest.
var sourceQualityTable = map[string]model.SourceQuality{
	"pubmed":           {Name: "pubmed", Credibility: 0.9, PeerReviewed: true, Primary: true},
	"semantic-scholar": {Name: "semantic-scholar", Credibility: 0.85, PeerReviewed: true, Primary: true},
	"unpaywall":        {Name: "unpaywall", Credibility: 0.8, PeerReviewed: true, Primary: true},
	"arxiv":            {Name: "arxiv", Credibility: 0.7, PeerReviewed: false, Primary: true},
	"exa":              {Name: "exa", Credibility: 0.55, PeerReviewed: false, Primary: false},
	"tavily":           {Name: "tavily", Credibility: 0.5, PeerReviewed: false, Primary: false},
	"brave":            {Name: "brave", Credibility: 0.5, PeerReviewed: false, Primary: false},
	"crawler":          {Name: "crawler", Credibility: 0.4, PeerReviewed: false, Primary: false},
}

// Credibility assigned to sources absent from the table
const unknownSourceCredibility = 0.3

// SourceQuality returns the quality profile for a source name. Unknown
// sources get a low-credibility, non-peer-reviewed default rather than
// an error.
func SourceQuality(name string) model.SourceQuality {
	if q, ok := sourceQualityTable[name]; ok {
		return q
	}
	return model.SourceQuality{
		Name:        name,
		Credibility: unknownSourceCredibility,
	}
}

// KnownSources returns the names of all sources with static profiles
func KnownSources() []string {
	names := make([]string, 0, len(sourceQualityTable))
	for name := range sourceQualityTable {
		names = append(names, name)
	}
	return names
}
