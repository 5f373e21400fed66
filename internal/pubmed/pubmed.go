// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pubmed queries the NCBI E-utilities API for gene-disease
// literature and returns fetched abstracts as Documents.
// Implements: prd001-retrieval (R1-R5).
package pubmed

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/curation-engine/internal/httputil"
	"github.com/pdiddy/curation-engine/pkg/types"
)

// eutilsBase is the E-utilities endpoint. Declared as a var so tests can
// substitute an httptest server.
var eutilsBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// Client queries PubMed esearch and efetch.
type Client struct {
	HTTP *http.Client
	Cfg  types.RetrievalConfig
}

// NewClient returns a Client with the HTTP timeout from cfg applied.
func NewClient(cfg types.RetrievalConfig) *Client {
	return &Client{
		HTTP: &http.Client{Timeout: cfg.Timeout},
		Cfg:  cfg,
	}
}

// Search queries esearch for PMIDs matching the gene-disease pair, sorted
// by relevance (R1.1, R1.2). A query with no hits returns an empty slice
// and a nil error (R1.4).
func (c *Client) Search(ctx context.Context, gene, disease string) ([]string, error) {
	term := fmt.Sprintf("%s[Title/Abstract] AND %s[Title/Abstract]", gene, disease)

	maxResults := c.Cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 30
	}

	params := url.Values{
		"db":      {"pubmed"},
		"term":    {term},
		"retmode": {"json"},
		"retmax":  {strconv.Itoa(maxResults)},
		"sort":    {"relevance"},
	}
	if c.Cfg.APIKey != "" {
		params.Set("api_key", c.Cfg.APIKey)
	}

	body, err := c.get(ctx, eutilsBase+"/esearch.fcgi?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("esearch: %w", err)
	}
	defer body.Body.Close()

	var sr esearchResponse
	if err := json.NewDecoder(body.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing esearch response: %w", err)
	}

	return sr.Result.IDList, nil
}

// Fetch retrieves abstracts for the given PMIDs via efetch and returns one
// Document per article that carries an abstract (R2.1-R2.4). Articles
// without abstract text are skipped. An empty PMID list returns an empty
// slice without a network call.
func (c *Client) Fetch(ctx context.Context, pmids []string) ([]types.Document, error) {
	if len(pmids) == 0 {
		return nil, nil
	}

	params := url.Values{
		"db":      {"pubmed"},
		"id":      {strings.Join(pmids, ",")},
		"retmode": {"xml"},
		"rettype": {"abstract"},
	}
	if c.Cfg.APIKey != "" {
		params.Set("api_key", c.Cfg.APIKey)
	}

	resp, err := c.get(ctx, eutilsBase+"/efetch.fcgi?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("efetch: %w", err)
	}
	defer resp.Body.Close()

	var set articleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing efetch response: %w", err)
	}

	var docs []types.Document
	for _, art := range set.Articles {
		abstract := strings.TrimSpace(strings.Join(art.AbstractParts, " "))
		if abstract == "" {
			continue
		}

		doc := types.Document{
			ID:           strings.TrimSpace(art.PMID),
			Title:        strings.TrimSpace(art.Title),
			AbstractText: abstract,
			Year:         parseYear(art.Year, art.MedlineDate),
		}
		if len(art.Authors) > 0 {
			doc.FirstAuthor = strings.TrimSpace(art.Authors[0].LastName)
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// get issues a GET with User-Agent and rate-limit retry (R5.1, R5.2) and
// verifies the status code.
func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.Cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, c.Cfg.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("E-utilities request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("E-utilities returned HTTP %d", resp.StatusCode)
	}
	return resp, nil
}

// esearch JSON structures.
type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	IDList []string `json:"idlist"`
}

// efetch XML structures.
type articleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	PMID          string         `xml:"MedlineCitation>PMID"`
	Title         string         `xml:"MedlineCitation>Article>ArticleTitle"`
	AbstractParts []string       `xml:"MedlineCitation>Article>Abstract>AbstractText"`
	Year          string         `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>Year"`
	MedlineDate   string         `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate>MedlineDate"`
	Authors       []pubmedAuthor `xml:"MedlineCitation>Article>AuthorList>Author"`
}

type pubmedAuthor struct {
	LastName string `xml:"LastName"`
}

// parseYear extracts the publication year from <Year>, falling back to the
// leading digits of <MedlineDate> (e.g. "1998 Dec-1999 Jan"). Returns 0
// when no year can be determined (R2.4).
func parseYear(year, medlineDate string) int {
	if y, err := strconv.Atoi(strings.TrimSpace(year)); err == nil {
		return y
	}
	md := strings.TrimSpace(medlineDate)
	if len(md) >= 4 {
		if y, err := strconv.Atoi(md[:4]); err == nil {
			return y
		}
	}
	return 0
}
