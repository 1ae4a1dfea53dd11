package models

// JobRecord is one posting as extracted by the model. Nothing here is validated.
type JobRecord struct {
	Title          string  `json:"title"`
	Company        string  `json:"company"`
	Location       string  `json:"location"`
	Description    string  `json:"description"`
	Requirements   string  `json:"requirements"`
	Salary         *string `json:"salary"`
	EmploymentType string  `json:"employment_type"`
	URL            string  `json:"url"`
	PostedDate     string  `json:"posted_date"`
}

// ScrapeResult is the final answer of one agent run.
type ScrapeResult struct {
	Jobs        []JobRecord `json:"jobs"`
	TotalFound  int         `json:"total_found"`
	SearchQuery string      `json:"search_query"`
}

// Output is the document written to disk once per run.
// Result holds a *ScrapeResult, any other decoded JSON value, or the raw final text.
type Output struct {
	Success   bool          `json:"success"`
	JobParams SearchRequest `json:"job_params"`
	Result    any           `json:"result"`
}
