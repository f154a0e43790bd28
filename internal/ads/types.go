package ads

// Account describes one Google Ads account visible to the authenticated
// user, enriched from the customer resource where possible. A bare entry
// with only the ID set means enrichment failed for that account.
type Account struct {
	CustomerID      string `json:"customer_id"`
	ResourceName    string `json:"resource_name,omitempty"`
	DescriptiveName string `json:"descriptive_name,omitempty"`
	CurrencyCode    string `json:"currency_code,omitempty"`
	TimeZone        string `json:"time_zone,omitempty"`
	Manager         bool   `json:"manager"`
	// ManagerID is the manager account this entry was discovered under,
	// empty for directly accessible accounts.
	ManagerID string `json:"manager_id,omitempty"`
	Level     int64  `json:"level"`
}

// GAQLResult is the aggregate result of a paginated GAQL search.
type GAQLResult struct {
	CustomerID  string           `json:"customer_id"`
	ResultCount int              `json:"result_count"`
	Results     []map[string]any `json:"results"`
	// Pages is how many API pages were fetched. When it equals the
	// requested maximum the result may be truncated.
	Pages int `json:"pages"`
}

// KeywordIdea is one reshaped row from generateKeywordIdeas.
type KeywordIdea struct {
	Text                   string `json:"text"`
	AvgMonthlySearches     int64  `json:"avgMonthlySearches"`
	Competition            string `json:"competition"`
	LowTopOfPageBidMicros  int64  `json:"lowTopOfPageBidMicros"`
	HighTopOfPageBidMicros int64  `json:"highTopOfPageBidMicros"`
}

// Wire types for the REST endpoints.

type listAccessibleCustomersResponse struct {
	ResourceNames []string `json:"resourceNames"`
}

type searchRequest struct {
	Query     string `json:"query"`
	PageSize  int    `json:"pageSize,omitempty"`
	PageToken string `json:"pageToken,omitempty"`
}

type searchResponse struct {
	Results       []map[string]any `json:"results"`
	NextPageToken string           `json:"nextPageToken"`
	FieldMask     string           `json:"fieldMask"`
}

type keywordSeed struct {
	Keywords []string `json:"keywords"`
}

type urlSeed struct {
	URL string `json:"url"`
}

type keywordAndURLSeed struct {
	URL      string   `json:"url"`
	Keywords []string `json:"keywords"`
}

type generateKeywordIdeasRequest struct {
	Language             string             `json:"language"`
	GeoTargetConstants   []string           `json:"geoTargetConstants"`
	KeywordPlanNetwork   string             `json:"keywordPlanNetwork"`
	PageSize             int                `json:"pageSize,omitempty"`
	IncludeAdultKeywords bool               `json:"includeAdultKeywords,omitempty"`
	KeywordSeed          *keywordSeed       `json:"keywordSeed,omitempty"`
	URLSeed              *urlSeed           `json:"urlSeed,omitempty"`
	KeywordAndURLSeed    *keywordAndURLSeed `json:"keywordAndUrlSeed,omitempty"`
}

type keywordIdeaMetrics struct {
	AvgMonthlySearches     int64  `json:"avgMonthlySearches,string"`
	Competition            string `json:"competition"`
	LowTopOfPageBidMicros  int64  `json:"lowTopOfPageBidMicros,string"`
	HighTopOfPageBidMicros int64  `json:"highTopOfPageBidMicros,string"`
}

type keywordIdeaResult struct {
	Text               string              `json:"text"`
	KeywordIdeaMetrics *keywordIdeaMetrics `json:"keywordIdeaMetrics"`
}

type generateKeywordIdeasResponse struct {
	Results []keywordIdeaResult `json:"results"`
}
