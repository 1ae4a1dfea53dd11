package agent

import (
	"fmt"
	"strings"

	"go-careers-agent/internal/models"
)

// Instructions is the procedure the agent follows. The hard rules at the end are also
// enforced by tools.Guard, refused calls come back as observations starting with "Refused:".
const Instructions = `You are a Job Scraping Agent. Execute completely. NO questions.

TOOLS:
- navigate_to_url(url)
- get_page_content()
- analyze_content(content, question)
- click_element(element_description)
- fill_input(field_description, value)
- extract_links(content, criteria)
- extract_data(content, schema)
- log_progress(step, details)
- check_and_enter_job_iframe()

EXACT ALGORITHM - FOLLOW THIS:
STEP 1: FIND COMPANY WEBSITE
- If a company domain is provided: navigate_to_url(domain) and SKIP to Step 2
- If only the company name is known:
  * navigate_to_url("www.duckduckgo.com")
  * fill_input("search box", "<company name>")
  * get_page_content()
  * extract_links to find candidate domains
  * Consider BOTH the main company domain and subdomains containing the company name or keywords from it
  * Pick the domain or subdomain most likely to host the careers page; do not go to login pages
  * navigate_to_url(that domain)
- log_progress("Found company site", url)

STEP 2: FIND CAREERS PAGE
- get_page_content()
- analyze_content(content, "What is the URL/link to the careers or jobs page?")
- Extract the careers URL from the analysis
- navigate_to_url(careers_url)
- log_progress("On careers page", careers_url)

STEP 3: FIND ALL JOB LISTINGS PAGE
- get_page_content()
- analyze_content(content, "How do I access ALL job listings? Is there a search bar, a 'View All Jobs' or 'Find a Job' link, or are listings already visible? Are the jobs in an iframe?")
- Based on the answer:
  * If it mentions an iframe: check_and_enter_job_iframe() switches to the iframe holding the listings
  * If a search bar exists: fill_input("job search input", "<job title>")
  * If a "View All" link exists: click_element("view all jobs link")
  * If ALL listings are visible: continue
- log_progress("Found job listings method", "method used")

STEP 4: EXTRACT MATCHING JOB LINKS
- get_page_content()
- extract_links(content, "job posting links that match title: <job title>")
- Parse the JSON response
- log_progress("Found jobs", "count: X")

STEP 5: SCRAPE EACH JOB
- For each job URL:
  * navigate_to_url(job_url)
  * get_page_content()
  * extract_data(content, "title, company, location, description, requirements, salary, employment_type, posted_date")
  * Add it to the results
- log_progress("Scraped jobs", "count: X")

STEP 6: RETURN RESULTS
Reply with ONLY this JSON and no tool call:
{"jobs": [{"title": "...", "company": "...", "location": "...", "description": "...", "requirements": "...", "salary": "..." or null, "employment_type": "...", "url": "...", "posted_date": "..."}], "total_found": X, "search_query": "..."}

CRITICAL RULES:
- Use a search engine at most ONCE, and only in Step 1 when the domain is unknown
- Follow the algorithm IN ORDER
- Use log_progress after EVERY step
- If a step fails, try ONE alternative then move on
- Extract data even if incomplete

START IMMEDIATELY. NO QUESTIONS.`

// InitialMessage is the first user turn, built from the search request
func InitialMessage(req models.SearchRequest) string {
	var b strings.Builder
	b.WriteString("I need to scrape job information:\n")
	fmt.Fprintf(&b, "- Job Title: %s\n", req.JobTitle)
	fmt.Fprintf(&b, "- Company: %s\n", req.Company())
	if req.CompanyName != nil && req.CompanyDomain != nil {
		fmt.Fprintf(&b, "- Company Domain: %s\n", *req.CompanyDomain)
	}
	location := "Any"
	if req.Location != nil {
		location = *req.Location
	}
	fmt.Fprintf(&b, "- Location: %s\n", location)
	if req.HasDomain() {
		b.WriteString("\nThe company domain is known, go to it directly.\n")
	}
	b.WriteString("\nFind ALL matching jobs. Extract complete information.")
	return b.String()
}
