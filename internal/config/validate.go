package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning is surfaced to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation/lint finding for a Pipeline.
//
// Path is a dotted path into the config (e.g. "s3.bucket",
// "snowflake.targets.sales.table"). Message is human-readable.
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect error.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// HasErrors reports whether any issue has SeverityError.
func HasErrors(issues []Issue) bool {
	for _, iss := range issues {
		if iss.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ValidatePipeline performs static validation of a decoded Pipeline. It does
// not mutate p; callers decide whether warnings are fatal.
func ValidatePipeline(p Pipeline) []Issue {
	var issues []Issue

	if strings.TrimSpace(p.Job) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "job",
			Message:  "job must not be empty; it is used for metrics labeling and identifying runs",
		})
	}
	issues = append(issues, validateSource(p)...)
	issues = append(issues, validateWarehouse(p.Warehouse, p.Runtime.DryRun)...)
	issues = append(issues, validateTargets(p.Snowflake)...)
	issues = append(issues, validateRuntime(p.Runtime)...)
	issues = append(issues, validateMetrics(p.Metrics)...)

	return issues
}

func validateSource(p Pipeline) []Issue {
	var issues []Issue

	switch p.Source {
	case SourceLocal, "":
		if strings.TrimSpace(p.Local.Folder) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "local.folder",
				Message:  "local source requires a non-empty folder",
			})
		}
	case SourceS3:
		if strings.TrimSpace(p.S3.Bucket) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     "s3.bucket",
				Message:  "S3 source requires a bucket",
			})
		}
		if p.S3.Prefix != "" && !strings.HasSuffix(p.S3.Prefix, "/") {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "s3.prefix",
				Message:  fmt.Sprintf("prefix %q does not end with '/'; keys sharing the prefix text will also match", p.S3.Prefix),
			})
		}
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "source",
			Message:  fmt.Sprintf("unsupported data source %q; want %q or %q", p.Source, SourceLocal, SourceS3),
		})
	}

	for format := range p.Parsers {
		if format != "csv" && format != "json" {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "parsers." + format,
				Message:  fmt.Sprintf("no parser for format %q; options are ignored", format),
			})
		}
	}
	return issues
}

func validateWarehouse(w Warehouse, dryRun bool) []Issue {
	var issues []Issue

	if strings.TrimSpace(w.Kind) == "" {
		if dryRun {
			return nil
		}
		return append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.kind",
			Message:  "warehouse.kind must not be empty",
		})
	}

	known := map[string]struct{}{
		"postgres": {},
		"mssql":    {},
		"sqlite":   {},
	}
	if _, ok := known[w.Kind]; !ok {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "warehouse.kind",
			Message:  fmt.Sprintf("unknown warehouse kind %q; ensure a matching backend is registered", w.Kind),
		})
	}
	if strings.TrimSpace(w.DSN) == "" && !dryRun {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "warehouse.dsn",
			Message:  "warehouse.dsn must not be empty",
		})
	}
	return issues
}

func validateTargets(s Snowflake) []Issue {
	var issues []Issue

	if strings.TrimSpace(s.Database) == "" {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "snowflake.database",
			Message:  "database is empty; tables are created in the connection's default database",
		})
	}
	for _, key := range TargetKeys {
		path := "snowflake.targets." + key
		t, ok := s.Targets[key]
		if !ok {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path,
				Message:  fmt.Sprintf("missing target for output %q", key),
			})
			continue
		}
		if strings.TrimSpace(t.Table) == "" {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Path:     path + ".table",
				Message:  "target table must not be empty",
			})
		}
	}
	for key := range s.Targets {
		if !isTargetKey(key) {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     "snowflake.targets." + key,
				Message:  fmt.Sprintf("unknown target %q; no stage produces it", key),
			})
		}
	}
	return issues
}

func isTargetKey(key string) bool {
	for _, k := range TargetKeys {
		if k == key {
			return true
		}
	}
	return false
}

func validateRuntime(r RuntimeConfig) []Issue {
	var issues []Issue

	if r.Workers < 0 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "runtime.workers",
			Message:  "workers must not be negative",
		})
	}
	if r.BatchSize <= 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "runtime.batch_size",
			Message:  fmt.Sprintf("batch_size=%d; non-positive batch sizes may hurt throughput", r.BatchSize),
		})
	}
	return issues
}

func validateMetrics(m Metrics) []Issue {
	switch m.Backend {
	case "", "none":
	case "pushgateway":
		if m.PushgatewayURL == "" {
			return []Issue{{
				Severity: SeverityWarning,
				Path:     "metrics.pushgateway_url",
				Message:  "pushgateway backend without URL; PUSHGATEWAY_URL or the default is used",
			}}
		}
	case "datadog":
		if m.DatadogAddr == "" {
			return []Issue{{
				Severity: SeverityError,
				Path:     "metrics.datadog_addr",
				Message:  "datadog backend requires datadog_addr",
			}}
		}
	default:
		return []Issue{{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown metrics backend %q; metrics disabled", m.Backend),
		}}
	}
	return nil
}
