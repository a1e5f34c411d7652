package segments

import (
	"bytes"
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

	dashboard "github.com/goliatone/go-rfm-dashboard/components/dashboard"
)

// DefaultTimeout bounds every backend request when no client is supplied.
const DefaultTimeout = 10 * time.Second

// HTTPConfig configures the HTTP segmentation client.
type HTTPConfig struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// HTTPClient calls the segmentation backend with plain GET requests.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient builds a client for the backend at cfg.BaseURL.
func NewHTTPClient(cfg HTTPConfig) (*HTTPClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("segments: base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("segments: parse base url: %w", err)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{baseURL: base, client: httpClient}, nil
}

// FetchCustomer implements CustomerClient via GET /customer?code=.
func (c *HTTPClient) FetchCustomer(ctx context.Context, code string) (dashboard.CustomerRecord, error) {
	params := url.Values{"code": {code}}
	var rows []customerRow
	if err := c.get(ctx, "/customer", params, dashboard.MsgCustomerNotFound, &rows); err != nil {
		return dashboard.CustomerRecord{}, err
	}
	if rows == nil {
		return dashboard.CustomerRecord{}, dashboard.NewFormatError(dashboard.MsgInvalidFormat, errors.New("segments: decode /customer: body is not an array"))
	}
	return toCustomerRecord(code, rows), nil
}

// CalculateClusters implements CalculationClient via GET /calculate.
func (c *HTTPClient) CalculateClusters(ctx context.Context, query dashboard.CalculationQuery) (dashboard.ClusterMetrics, error) {
	params := url.Values{
		"k":        {strconv.Itoa(query.K)},
		"cluster":  {query.Cluster},
		"year":     {query.Year},
		"function": {query.Function},
	}
	var metrics dashboard.ClusterMetrics
	if err := c.get(ctx, "/calculate", params, dashboard.MsgBackendUnavailable, &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// FetchClusters implements ClusterClient via GET /clusters.
func (c *HTTPClient) FetchClusters(ctx context.Context, query dashboard.ClusterQuery) (dashboard.ClusterMetrics, error) {
	params := url.Values{
		"k":           {strconv.Itoa(query.K)},
		"metric":      {query.Metric},
		"aggregation": {query.Aggregation},
	}
	var metrics dashboard.ClusterMetrics
	if err := c.get(ctx, "/clusters", params, dashboard.MsgBackendUnavailable, &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// get issues one request. Rejected requests become network errors, non-2xx
// statuses not-found errors and undecodable bodies format errors.
func (c *HTTPClient) get(ctx context.Context, path string, params url.Values, notFound string, target any) error {
	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return dashboard.NewNetworkError(dashboard.MsgBackendUnavailable, fmt.Errorf("segments: build request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return dashboard.NewNetworkError(dashboard.MsgBackendUnavailable, fmt.Errorf("segments: http request: %w", err))
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, io.LimitReader(resp.Body, 4096))
		return dashboard.NewNotFoundError(notFound, fmt.Errorf("segments: remote error %d: %s", resp.StatusCode, strings.TrimSpace(buf.String())))
	}
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return dashboard.NewFormatError(dashboard.MsgInvalidFormat, fmt.Errorf("segments: decode %s: %w", path, err))
	}
	return nil
}

// customerRow is one element of the /customer array; demographics repeat
// on every row.
type customerRow struct {
	Gender           int     `json:"gender"`
	Age              float64 `json:"age"`
	LastPurchaseDate string  `json:"last_purchase_date"`
	Recency          float64 `json:"recency"`
	Monetary         float64 `json:"monetary"`
	Frequency        float64 `json:"frequency"`
}

func toCustomerRecord(code string, rows []customerRow) dashboard.CustomerRecord {
	record := dashboard.CustomerRecord{
		Code:         code,
		Transactions: make([]dashboard.TransactionSummary, len(rows)),
	}
	if len(rows) > 0 {
		record.Gender = dashboard.Gender(rows[0].Gender)
		record.Age = rows[0].Age
	}
	for i, row := range rows {
		record.Transactions[i] = dashboard.TransactionSummary{
			LastPurchaseDate: row.LastPurchaseDate,
			Recency:          row.Recency,
			Monetary:         row.Monetary,
			Frequency:        row.Frequency,
		}
	}
	return record
}
