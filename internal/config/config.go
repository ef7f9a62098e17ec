// Package config defines the YAML configuration model for the retail
// pipeline. A Pipeline is decoded once by the CLI and passed explicitly to
// every component; nothing in the pipeline reads configuration on its own.
//
// Example (trimmed):
//
//	job: retail_etl
//	source: local
//	local: { folder: data }
//	warehouse: { kind: postgres, dsn: "postgres://..." }
//	snowflake:
//	  database: RETAIL
//	  targets:
//	    sales: { schema: RAW, table: SALES }
//	runtime: { workers: 4, batch_size: 1000 }
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// SourceKind selects the extraction strategy.
type SourceKind string

const (
	SourceLocal SourceKind = "local"
	SourceS3    SourceKind = "S3"
)

// Target keys, one per output table.
const (
	TargetSales                = "sales"
	TargetProduct              = "product"
	TargetMerged               = "merged_sales_products"
	TargetEnriched             = "enriched_sales_products"
	TargetHourlyTrends         = "sales_hourly_trends"
	TargetProductPerformance   = "products_sales_performance"
	TargetSeasonalPatterns     = "seasonal_sales_patterns"
	TargetRevenueConcentration = "revenue_concentration_analysis"
	TargetOrderStatusOverTime  = "order_status_over_time"
)

// TargetKeys lists every target key in load order.
var TargetKeys = []string{
	TargetSales,
	TargetProduct,
	TargetMerged,
	TargetEnriched,
	TargetHourlyTrends,
	TargetProductPerformance,
	TargetSeasonalPatterns,
	TargetRevenueConcentration,
	TargetOrderStatusOverTime,
}

// Pipeline is the top-level object decoded from a pipeline file.
type Pipeline struct {
	// Job names the pipeline in logs and metrics.
	Job string `yaml:"job"`

	// Source selects where raw files are read from. Empty means local.
	Source SourceKind `yaml:"source"`
	Local  Local      `yaml:"local"`
	S3     S3         `yaml:"s3"`

	// Parsers holds per-format parser options keyed by file extension
	// ("csv", "json").
	Parsers map[string]Options `yaml:"parsers"`

	Warehouse Warehouse     `yaml:"warehouse"`
	Snowflake Snowflake     `yaml:"snowflake"`
	Runtime   RuntimeConfig `yaml:"runtime"`
	Metrics   Metrics       `yaml:"metrics"`
	Log       Log           `yaml:"log"`
}

// Local configures the "local" source.
type Local struct {
	Folder string `yaml:"folder"`
}

// S3 configures the "S3" source.
type S3 struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	// AWSConnID names the shared-config profile used for credentials.
	AWSConnID string `yaml:"aws_conn_id"`
	Region    string `yaml:"region"`
	// Endpoint overrides the S3 endpoint, e.g. for MinIO or LocalStack.
	// Requests then use path-style addressing.
	Endpoint string `yaml:"endpoint"`
}

// Warehouse selects the storage backend the outputs are written to.
type Warehouse struct {
	// Kind is a registered storage backend: postgres, sqlite or mssql.
	Kind string `yaml:"kind"`
	DSN  string `yaml:"dsn"`
}

// Snowflake holds the output coordinates. The key name is kept from the
// original warehouse; the coordinates apply to whichever backend is used.
type Snowflake struct {
	Database string            `yaml:"database"`
	Targets  map[string]Target `yaml:"targets"`
}

// Target is a (schema, table) coordinate inside Snowflake.Database.
type Target struct {
	Schema string `yaml:"schema"`
	Table  string `yaml:"table"`
}

// RuntimeConfig controls concurrency and batching.
type RuntimeConfig struct {
	// Workers bounds concurrent aggregators and loads. Zero means 4.
	Workers int `yaml:"workers"`
	// BatchSize is the number of rows per warehouse copy. Zero means 1000.
	BatchSize int `yaml:"batch_size"`
	// EscalateViolations turns schema contract violations into stage errors.
	EscalateViolations bool `yaml:"escalate_violations"`
	// DryRun runs every stage but skips the warehouse load.
	DryRun bool `yaml:"dry_run"`
}

// Metrics selects a metrics backend: none, pushgateway or datadog.
type Metrics struct {
	Backend        string `yaml:"backend"`
	PushgatewayURL string `yaml:"pushgateway_url"`
	DatadogAddr    string `yaml:"datadog_addr"`
}

// Log configures the logger mode: dev or prod.
type Log struct {
	Mode string `yaml:"mode"`
}

const (
	defaultWorkers   = 4
	defaultBatchSize = 1000
)

// Load reads, decodes and applies environment overrides to the pipeline file
// at path.
func Load(path string) (Pipeline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("read config: %w", err)
	}
	p, err := Decode(data)
	if err != nil {
		return Pipeline{}, err
	}
	return ApplyEnv(p, os.LookupEnv), nil
}

// Decode parses YAML into a Pipeline and fills defaults. Unknown keys are
// rejected.
func Decode(data []byte) (Pipeline, error) {
	var p Pipeline
	dec := yaml.NewDecoder(strings.NewReader(string(data)))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return Pipeline{}, fmt.Errorf("parse config: %w", err)
	}
	return p.withDefaults(), nil
}

func (p Pipeline) withDefaults() Pipeline {
	if p.Job == "" {
		p.Job = "retail_etl"
	}
	if p.Source == "" {
		p.Source = SourceLocal
	}
	if p.Runtime.Workers == 0 {
		p.Runtime.Workers = defaultWorkers
	}
	if p.Runtime.BatchSize == 0 {
		p.Runtime.BatchSize = defaultBatchSize
	}
	return p
}

// ApplyEnv overrides fields from ETL_WAREHOUSE_DSN, ETL_WORKERS and
// ETL_SOURCE. lookup is usually os.LookupEnv. Invalid ETL_WORKERS values are
// ignored.
func ApplyEnv(p Pipeline, lookup func(string) (string, bool)) Pipeline {
	if v, ok := lookup("ETL_WAREHOUSE_DSN"); ok && v != "" {
		p.Warehouse.DSN = v
	}
	if v, ok := lookup("ETL_WORKERS"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			p.Runtime.Workers = n
		}
	}
	if v, ok := lookup("ETL_SOURCE"); ok && v != "" {
		p.Source = SourceKind(v)
	}
	return p
}

// Options is a small helper to fetch typed values from free-form YAML maps.
// It performs minimal coercion and returns defaults when a key is absent or
// of an unexpected type.
type Options map[string]any

// Bool returns the bool value for key or def.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns the string values of an object value for key. Non-string
// values are ignored.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// UnmarshalYAML decodes a null or empty mapping to a non-nil empty Options.
func (o *Options) UnmarshalYAML(n *yaml.Node) error {
	var tmp map[string]any
	if err := n.Decode(&tmp); err != nil {
		return err
	}
	if tmp == nil {
		tmp = map[string]any{}
	}
	*o = Options(tmp)
	return nil
}

// Parser returns the options for format, never nil.
func (p Pipeline) Parser(format string) Options {
	if o, ok := p.Parsers[format]; ok && o != nil {
		return o
	}
	return Options{}
}

// Coordinate returns database, schema and table for target key.
func (p Pipeline) Coordinate(key string) (database, schema, table string, ok bool) {
	t, ok := p.Snowflake.Targets[key]
	if !ok {
		return "", "", "", false
	}
	return p.Snowflake.Database, t.Schema, t.Table, true
}
