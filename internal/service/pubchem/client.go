// Package pubchem talks to the PubChem PUG REST API.
package pubchem

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/chemassist/assistant/backend/internal/config"
	"github.com/chemassist/assistant/backend/internal/logging"
	"github.com/chemassist/assistant/backend/internal/model/compound"
)

const maxErrorBody = 4 << 10

// propertyNames maps attributes onto PUG REST property names. The name
// attribute asks for the IUPAC name; synonyms are fetched only as a fallback.
var propertyNames = map[compound.Attribute]string{
	compound.Weight:  "MolecularWeight",
	compound.Formula: "MolecularFormula",
	compound.SMILES:  "CanonicalSMILES",
	compound.Name:    "IUPACName",
}

// Client performs single-compound lookups by CID.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logging.OrNop(logger)
	}
}

// NewClient creates a PUG REST client from configuration.
func NewClient(cfg config.PubChemConfig, opts ...Option) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = config.DefaultPubChemBaseURL
	}

	c := &Client{
		baseURL:    baseURL,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type propertyResponse struct {
	PropertyTable struct {
		Properties []propertyRow `json:"Properties"`
	} `json:"PropertyTable"`
}

type propertyRow struct {
	CID                json.Number     `json:"CID"`
	MolecularWeight    json.RawMessage `json:"MolecularWeight"`
	MolecularFormula   string          `json:"MolecularFormula"`
	CanonicalSMILES    string          `json:"CanonicalSMILES"`
	ConnectivitySMILES string          `json:"ConnectivitySMILES"`
	SMILES             string          `json:"SMILES"`
	IUPACName          string          `json:"IUPACName"`
}

type synonymResponse struct {
	InformationList struct {
		Information []struct {
			CID     json.Number `json:"CID"`
			Synonym []string    `json:"Synonym"`
		} `json:"Information"`
	} `json:"InformationList"`
}

type faultResponse struct {
	Fault struct {
		Code    string   `json:"Code"`
		Message string   `json:"Message"`
		Details []string `json:"Details"`
	} `json:"Fault"`
}

// Lookup fetches the single property needed for attr. The only case with a
// second request is a name lookup whose IUPAC name is empty.
func (c *Client) Lookup(ctx context.Context, cid string, attr compound.Attribute) (compound.Record, error) {
	property, ok := propertyNames[attr]
	if !ok {
		return compound.Record{}, fmt.Errorf("unsupported attribute %q", attr)
	}

	endpoint := fmt.Sprintf("%s/compound/cid/%s/property/%s/JSON", c.baseURL, url.PathEscape(cid), property)

	var payload propertyResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return compound.Record{}, err
	}

	rows := payload.PropertyTable.Properties
	if len(rows) == 0 {
		return compound.Record{}, fmt.Errorf("%w: empty property table for CID %s", compound.ErrNotFound, cid)
	}
	row := rows[0]

	record := compound.Record{CID: cid}
	switch attr {
	case compound.Weight:
		weight, err := parseWeight(row.MolecularWeight)
		if err != nil {
			return compound.Record{}, fmt.Errorf("%w: %v", compound.ErrTransport, err)
		}
		record.MolecularWeight = weight
	case compound.Formula:
		record.MolecularFormula = row.MolecularFormula
	case compound.SMILES:
		record.CanonicalSMILES = firstNonEmpty(row.CanonicalSMILES, row.ConnectivitySMILES, row.SMILES)
	case compound.Name:
		record.IUPACName = strings.TrimSpace(row.IUPACName)
		if record.IUPACName == "" {
			synonyms, err := c.synonyms(ctx, cid)
			if err != nil {
				return compound.Record{}, err
			}
			record.Synonyms = synonyms
		}
	}

	c.logger.Debug("pubchem lookup succeeded", zap.String("cid", cid), zap.String("attribute", string(attr)))
	return record, nil
}

func (c *Client) synonyms(ctx context.Context, cid string) ([]string, error) {
	endpoint := fmt.Sprintf("%s/compound/cid/%s/synonyms/JSON", c.baseURL, url.PathEscape(cid))

	var payload synonymResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		// A compound without synonyms is reported as not found; that is
		// a missing name, not a missing compound.
		if errors.Is(err, compound.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	info := payload.InformationList.Information
	if len(info) == 0 {
		return nil, nil
	}
	return info[0].Synonym, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %v", compound.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("pubchem request failed", zap.String("url", endpoint), zap.Error(err))
		return fmt.Errorf("%w: %v", compound.ErrTransport, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("pubchem response",
		zap.String("url", endpoint),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(started)),
	)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return classifyFailure(resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", compound.ErrTransport, err)
	}
	return nil
}

// classifyFailure turns a non-200 response into a sentinel-wrapped error.
// PUG REST rejects malformed CIDs with PUGREST.BadRequest; those are treated
// as not found since no record can match them.
func classifyFailure(status int, body []byte) error {
	var fault faultResponse
	_ = json.Unmarshal(body, &fault)

	message := strings.TrimSpace(fault.Fault.Message)
	if message == "" {
		message = http.StatusText(status)
	}

	switch {
	case status == http.StatusNotFound, fault.Fault.Code == "PUGREST.NotFound":
		return fmt.Errorf("%w: %s", compound.ErrNotFound, message)
	case status == http.StatusBadRequest, fault.Fault.Code == "PUGREST.BadRequest":
		return fmt.Errorf("%w: %s", compound.ErrNotFound, message)
	default:
		return fmt.Errorf("%w: status %d: %s", compound.ErrTransport, status, message)
	}
}

func parseWeight(raw json.RawMessage) (float64, error) {
	text := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	if text == "" || text == "null" {
		return 0, nil
	}
	weight, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid molecular weight %q", text)
	}
	return weight, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
