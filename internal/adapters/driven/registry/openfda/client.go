// Package openfda fetches drug labeling records from the openFDA API.
package openfda

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
	"github.com/pharmaguard/pharmaguard-cli/internal/core/ports/driven"
)

const (
	// DefaultBaseURL is the openFDA drug labeling endpoint.
	DefaultBaseURL = "https://api.fda.gov/drug/label.json"

	// DefaultTimeout is the request timeout.
	DefaultTimeout = 15 * time.Second

	// Without an API key openFDA allows 240 requests per minute per IP.
	// Throttle well under that so bursts of lookups never trip it.
	requestsPerSecond = 2
	burstSize         = 4
)

// Ensure Client implements the registry port.
var _ driven.LabelRegistry = (*Client)(nil)

// Config holds openFDA client configuration.
type Config struct {
	// BaseURL overrides the drug labeling endpoint.
	BaseURL string

	// APIKey raises the rate limit; optional.
	APIKey string

	// Timeout is the request timeout (default: 15s).
	Timeout time.Duration
}

// Client queries openFDA for drug labeling records.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
}

// NewClient creates an openFDA registry client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burstSize),
	}
}

// labelResponse mirrors the openFDA drug labeling response envelope.
type labelResponse struct {
	Results []labelResult `json:"results"`
}

// labelResult holds the labeling fields used for ingestion. openFDA
// returns each section as an array of strings.
type labelResult struct {
	SetID         string   `json:"set_id"`
	EffectiveTime string   `json:"effective_time"`
	OpenFDA       openFDA  `json:"openfda"`
	Contra        []string `json:"contraindications"`
	Warnings      []string `json:"warnings"`
	WarnCautions  []string `json:"warnings_and_cautions"`
	Interactions  []string `json:"drug_interactions"`
	Adverse       []string `json:"adverse_reactions"`
	Dosage        []string `json:"dosage_and_administration"`
	Indications   []string `json:"indications_and_usage"`
}

type openFDA struct {
	BrandName   []string `json:"brand_name"`
	GenericName []string `json:"generic_name"`
}

// Fetch retrieves the most recent labeling record for a drug name,
// matching on either generic or brand name.
func (c *Client) Fetch(ctx context.Context, drugName string) (*domain.LabelRecord, error) {
	drugName = strings.TrimSpace(drugName)
	if drugName == "" {
		return nil, fmt.Errorf("%w: drug name is empty", domain.ErrInvalidInput)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("search", fmt.Sprintf(
		`openfda.generic_name:%q openfda.brand_name:%q`, drugName, drugName))
	query.Set("limit", "1")
	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openfda request failed: %w", err)
	}
	defer resp.Body.Close()

	// openFDA signals an empty result set with 404.
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: no label for %q in openFDA", domain.ErrNotFound, drugName)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("openfda returned status %d: %s", resp.StatusCode, string(body))
	}

	var parsed labelResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode openfda response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return nil, fmt.Errorf("%w: no label for %q in openFDA", domain.ErrNotFound, drugName)
	}

	return toRecord(drugName, parsed.Results[0]), nil
}

// toRecord maps an openFDA result onto a labeling record, keeping only
// non-empty sections.
func toRecord(drugName string, r labelResult) *domain.LabelRecord {
	sections := make(map[domain.Section]string)
	put := func(section domain.Section, parts []string) {
		text := strings.TrimSpace(strings.Join(parts, "\n"))
		if text != "" {
			sections[section] = text
		}
	}

	put(domain.SectionContraindications, r.Contra)
	put(domain.SectionWarnings, r.Warnings)
	put(domain.SectionWarningsAndCautions, r.WarnCautions)
	put(domain.SectionDrugInteractions, r.Interactions)
	put(domain.SectionAdverseReactions, r.Adverse)
	put(domain.SectionDosageAndAdministration, r.Dosage)
	put(domain.SectionIndicationsAndUsage, r.Indications)

	return &domain.LabelRecord{
		DrugName:      drugName,
		SetID:         r.SetID,
		EffectiveTime: r.EffectiveTime,
		Sections:      sections,
	}
}
