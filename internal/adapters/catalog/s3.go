// Package catalog loads the per-season item catalog.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/mvidal/destino/internal/domain/model"
)

// S3Source reads season catalogs from an S3 (or S3-compatible) bucket,
// one object per season at <prefix><season>.json.
type S3Source struct {
	client  *s3.Client
	bucket  string
	prefix  string
	idField string
}

// S3Config holds the connection settings for an S3Source.
type S3Config struct {
	Region    string
	Bucket    string
	Prefix    string
	IDField   string
	Endpoint  string // optional, for S3-compatible stores
	AccessKey string // optional, falls back to the default chain
	SecretKey string
}

// NewS3Source builds the S3 client and returns a catalog source.
func NewS3Source(ctx context.Context, cfg S3Config) (*S3Source, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load s3 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	idField := cfg.IDField
	if idField == "" {
		idField = DefaultIDField
	}

	return &S3Source{
		client:  client,
		bucket:  cfg.Bucket,
		prefix:  cfg.Prefix,
		idField: idField,
	}, nil
}

// Items implements Source.
func (s *S3Source) Items(ctx context.Context, season string) ([]model.Item, error) {
	key := s.prefix + season + ".json"
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch catalog s3://%s/%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read catalog s3://%s/%s: %w", s.bucket, key, err)
	}
	return parseItems(data, s.idField)
}
