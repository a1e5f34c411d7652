package dashboard

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Well-known metric fields returned by the backend.
const (
	FieldMonetary           = "Monetary"
	FieldRecency            = "Recency"
	FieldFrequency          = "Frequency"
	FieldGenderDistribution = "Gender_Distribution"
)

// DefaultCurrency suffixes monetary values when none is configured.
const DefaultCurrency = "JPY"

var preferredFieldOrder = []string{FieldRecency, FieldFrequency, FieldMonetary}

// MetricFormat sets the precision and unit suffix of a numeric metric.
type MetricFormat struct {
	Decimals int
	Suffix   string
}

// Formatter turns ClusterMetrics into display rows.
type Formatter struct {
	fields map[string]MetricFormat
}

// NewFormatter builds the default formatter: currency fields to 2 decimals
// followed by the currency code, day-count fields to 0 decimals.
func NewFormatter(currency string) *Formatter {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &Formatter{
		fields: map[string]MetricFormat{
			FieldMonetary: {Decimals: 2, Suffix: " " + currency},
			FieldRecency:  {Decimals: 0, Suffix: " days"},
		},
	}
}

// WithField registers or overrides a metric format.
func (f *Formatter) WithField(name string, format MetricFormat) *Formatter {
	f.fields[name] = format
	return f
}

// FormattedCluster is one result card of the parameter panel.
type FormattedCluster struct {
	Key    string           `json:"key"`
	Title  string           `json:"title"`
	Fields []FormattedField `json:"fields"`
}

// FormattedField is one metric line; Distribution is set for gender breakdowns.
type FormattedField struct {
	Name         string              `json:"name"`
	Value        string              `json:"value,omitempty"`
	Distribution []DistributionEntry `json:"distribution,omitempty"`
}

// DistributionEntry is one gender share line.
type DistributionEntry struct {
	Code    string `json:"code"`
	Label   string `json:"label"`
	Percent int    `json:"percent"`
	Text    string `json:"text"`
}

// FormatClusters renders every cluster in display order.
func (f *Formatter) FormatClusters(metrics ClusterMetrics) []FormattedCluster {
	out := make([]FormattedCluster, 0, len(metrics))
	for _, key := range metrics.Keys() {
		record := metrics[key]
		fields := make([]FormattedField, 0, len(record))
		for _, name := range fieldOrder(record) {
			fields = append(fields, f.FormatField(name, record[name]))
		}
		out = append(out, FormattedCluster{
			Key:    key,
			Title:  "Cluster " + key,
			Fields: fields,
		})
	}
	return out
}

// FormatField renders a single metric value.
func (f *Formatter) FormatField(name string, value any) FormattedField {
	if name == FieldGenderDistribution {
		if dist, ok := value.(map[string]any); ok {
			return FormattedField{Name: name, Distribution: FormatDistribution(dist)}
		}
	}
	format, ok := f.fields[name]
	if !ok {
		return FormattedField{Name: name, Value: RawValue(value)}
	}
	if number, ok := finiteNumber(value); ok {
		return FormattedField{Name: name, Value: ToFixed(number, format.Decimals) + format.Suffix}
	}
	return FormattedField{Name: name, Value: RawValue(value) + format.Suffix}
}

// FormatDistribution renders gender shares as whole percentages in [0,100].
func FormatDistribution(dist map[string]any) []DistributionEntry {
	codes := make([]string, 0, len(dist))
	for code := range dist {
		codes = append(codes, code)
	}
	sortClusterKeys(codes)
	out := make([]DistributionEntry, 0, len(codes))
	for _, code := range codes {
		label := "Unknown"
		if n, err := strconv.Atoi(strings.TrimSpace(code)); err == nil {
			label = GenderLabel(n)
		}
		percent := 0
		if share, ok := finiteNumber(dist[code]); ok {
			percent = int(roundHalfAway(share*100, 0))
			percent = min(max(percent, 0), 100)
		}
		out = append(out, DistributionEntry{
			Code:    code,
			Label:   label,
			Percent: percent,
			Text:    fmt.Sprintf("%s: %d%%", label, percent),
		})
	}
	return out
}

// ToFixed formats v with exactly digits decimals, rounding ties away from zero.
func ToFixed(v float64, digits int) string {
	if digits < 0 {
		digits = 0
	}
	return strconv.FormatFloat(roundHalfAway(v, digits), 'f', digits, 64)
}

func roundHalfAway(v float64, digits int) float64 {
	pow := math.Pow10(digits)
	return math.Round(v*pow) / pow
}

// RawValue renders a decoded JSON value without any unit handling.
func RawValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func finiteNumber(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// fieldOrder lists RFM fields first, other fields alphabetically, and the
// gender breakdown last.
func fieldOrder(record MetricRecord) []string {
	names := make([]string, 0, len(record))
	seen := make(map[string]struct{}, len(record))
	for _, name := range preferredFieldOrder {
		if _, ok := record[name]; ok {
			names = append(names, name)
			seen[name] = struct{}{}
		}
	}
	rest := make([]string, 0, len(record))
	for name := range record {
		if _, ok := seen[name]; ok || name == FieldGenderDistribution {
			continue
		}
		rest = append(rest, name)
	}
	sort.Strings(rest)
	names = append(names, rest...)
	if _, ok := record[FieldGenderDistribution]; ok {
		names = append(names, FieldGenderDistribution)
	}
	return names
}

// sortClusterKeys orders integer keys numerically ahead of other keys.
func sortClusterKeys(keys []string) {
	sort.SliceStable(keys, func(i, j int) bool {
		a, aErr := strconv.ParseFloat(keys[i], 64)
		b, bErr := strconv.ParseFloat(keys[j], 64)
		switch {
		case aErr == nil && bErr == nil:
			if a != b {
				return a < b
			}
			return keys[i] < keys[j]
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		}
		return keys[i] < keys[j]
	})
}
