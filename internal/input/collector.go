// Package input collects the search request interactively.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"go-careers-agent/internal/models"
	"go-careers-agent/utils"
)

// ErrNoInput means the input ended before a complete request was entered
var ErrNoInput = errors.New("input closed before the search request was complete")

type Collector struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func NewCollector(in io.Reader, out io.Writer) *Collector {
	return &Collector{scanner: bufio.NewScanner(in), out: out}
}

// Collect asks for title, company name, domain and location. The title is asked again until
// it is not empty, name and domain until at least one of them is given.
func (c *Collector) Collect() (models.SearchRequest, error) {
	fmt.Fprintln(c.out, "\n=== AI Job Scraper ===")
	fmt.Fprintln(c.out, "This system takes assistance from AI to scrape jobs.")
	fmt.Fprintln(c.out)

	title, err := c.ask("Job Title: ")
	if err != nil {
		return models.SearchRequest{}, err
	}
	for title == "" {
		if title, err = c.ask("Job Title (required): "); err != nil {
			return models.SearchRequest{}, err
		}
	}

	name, err := c.ask("Company Name: ")
	if err != nil {
		return models.SearchRequest{}, err
	}
	domain, err := c.ask("Company Domain (if known): ")
	if err != nil {
		return models.SearchRequest{}, err
	}
	for name == "" && domain == "" {
		fmt.Fprintln(c.out, "Provide at least company name OR domain!")
		if name, err = c.ask("Company Name: "); err != nil {
			return models.SearchRequest{}, err
		}
		if name == "" {
			if domain, err = c.ask("Company Domain: "); err != nil {
				return models.SearchRequest{}, err
			}
		}
	}

	location, err := c.ask("Location (optional): ")
	if err != nil {
		return models.SearchRequest{}, err
	}

	req := models.NewSearchRequest(title, name, domain, location)
	return req, req.Validate()
}

func (c *Collector) ask(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", ErrNoInput
	}
	return utils.CleanInput(c.scanner.Text()), nil
}
