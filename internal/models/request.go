package models

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingTitle   = errors.New("job title is required")
	ErrMissingCompany = errors.New("company name or company domain is required")
)

// SearchRequest is what the user asked for. It is built once and never mutated during a scrape.
type SearchRequest struct {
	JobTitle      string  `json:"job_title"`
	CompanyName   *string `json:"company_name"`
	CompanyDomain *string `json:"company_domain"`
	Location      *string `json:"location"`
}

// NewSearchRequest builds a request from raw strings, empty strings become nil.
func NewSearchRequest(title, companyName, companyDomain, location string) SearchRequest {
	return SearchRequest{
		JobTitle:      strings.TrimSpace(title),
		CompanyName:   optional(companyName),
		CompanyDomain: optional(companyDomain),
		Location:      optional(location),
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func (r SearchRequest) Validate() error {
	if strings.TrimSpace(r.JobTitle) == "" {
		return ErrMissingTitle
	}
	if r.CompanyName == nil && r.CompanyDomain == nil {
		return ErrMissingCompany
	}
	return nil
}

// HasDomain reports whether the company domain is already known.
func (r SearchRequest) HasDomain() bool {
	return r.CompanyDomain != nil
}

// Company returns the company name, falling back to the domain.
func (r SearchRequest) Company() string {
	if r.CompanyName != nil {
		return *r.CompanyName
	}
	if r.CompanyDomain != nil {
		return *r.CompanyDomain
	}
	return ""
}

// Query is the human readable search query recorded in the result.
func (r SearchRequest) Query() string {
	q := r.JobTitle
	if c := r.Company(); c != "" {
		q = fmt.Sprintf("%s at %s", q, c)
	}
	if r.Location != nil {
		q = fmt.Sprintf("%s in %s", q, *r.Location)
	}
	return q
}
