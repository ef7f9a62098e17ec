// Package s3source implements the object-store source: every .csv and .json
// object under a bucket prefix becomes one raw table keyed by the object's
// file stem.
package s3source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"retailetl/internal/config"
	"retailetl/internal/datasource"
	"retailetl/internal/logging"
)

func init() {
	datasource.Register(config.SourceS3, func(p config.Pipeline, log *logging.Logger) (datasource.Extractor, error) {
		if p.S3.Bucket == "" {
			return nil, ErrNoBucket
		}
		client, err := NewClient(context.Background(), p.S3)
		if err != nil {
			return nil, err
		}
		return NewBucket(client, p, log), nil
	})
}

// ErrNoBucket is returned when the S3 source has no bucket configured.
var ErrNoBucket = errors.New("s3source: bucket not specified in config")

// API is the subset of the S3 client used for extraction.
type API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// NewClient builds an S3 client from the source settings. AWSConnID selects
// a shared-config profile. A non-empty Endpoint switches to path-style
// addressing for S3-compatible stores.
func NewClient(ctx context.Context, c config.S3) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if c.AWSConnID != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(c.AWSConnID))
	}
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3source: load aws config: %w", err)
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	var s3Opts []func(*s3.Options)
	if c.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(c.Endpoint)
			o.UsePathStyle = true
		})
	}
	return s3.NewFromConfig(cfg, s3Opts...), nil
}

// Bucket extracts objects under a prefix.
type Bucket struct {
	api    API
	bucket string
	prefix string
	p      config.Pipeline
	log    *logging.Logger
}

// NewBucket returns a Bucket reading p.S3.Bucket/p.S3.Prefix through api.
func NewBucket(api API, p config.Pipeline, log *logging.Logger) *Bucket {
	return &Bucket{
		api:    api,
		bucket: p.S3.Bucket,
		prefix: p.S3.Prefix,
		p:      p,
		log:    logging.OrNop(log).With("source", "s3", "bucket", p.S3.Bucket, "prefix", p.S3.Prefix),
	}
}

// Extract lists the prefix and parses every supported object. Unlike the
// local source, any object that fails to download or parse aborts the
// extraction.
func (b *Bucket) Extract(ctx context.Context) (datasource.RawTables, error) {
	if b.bucket == "" {
		return nil, ErrNoBucket
	}
	keys, err := b.list(ctx)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		b.log.Warn("no files found in bucket")
		return datasource.RawTables{}, nil
	}

	out := datasource.RawTables{}
	for _, key := range keys {
		stem, ext, ok := datasource.SplitName(key)
		if !ok {
			continue
		}
		tbl, err := datasource.Read(ctx, b.p, b.log, object{api: b.api, bucket: b.bucket, key: key}, ext)
		if err != nil {
			b.log.Error("failed to load object", "key", key, "error", err)
			return nil, fmt.Errorf("s3source: load %q: %w", key, err)
		}
		out[stem] = tbl
		b.log.Info("loaded object", "key", key, "rows", tbl.Len())
	}
	if len(out) == 0 {
		b.log.Warn("no valid files found in bucket", "extensions", "csv,json")
	}
	return out, nil
}

func (b *Bucket) list(ctx context.Context) ([]string, error) {
	in := &s3.ListObjectsV2Input{Bucket: aws.String(b.bucket)}
	if b.prefix != "" {
		in.Prefix = aws.String(b.prefix)
	}
	var keys []string
	pages := s3.NewListObjectsV2Paginator(b.api, in)
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3source: list %s/%s: %w", b.bucket, b.prefix, err)
		}
		for _, o := range page.Contents {
			if k := aws.ToString(o.Key); k != "" && !strings.HasSuffix(k, "/") {
				keys = append(keys, k)
			}
		}
	}
	return keys, nil
}

// object is a datasource.Source over a single S3 object.
type object struct {
	api    API
	bucket string
	key    string
}

func (o object) Open(ctx context.Context) (io.ReadCloser, error) {
	out, err := o.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.bucket),
		Key:    aws.String(o.key),
	})
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}
