package backup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/yndnr/medrec/internal/core/domain"
)

// DefaultS3Key is the object key used when none is configured.
const DefaultS3Key = "medrec/backup.dat"

// S3Config holds the S3 / MinIO target parameters.
type S3Config struct {
	Region          string
	Bucket          string
	Key             string
	Endpoint        string // optional; enables a custom endpoint such as MinIO
	AccessKeyID     string // optional (falls back to the default credentials chain)
	SecretAccessKey string // optional
	PathStyle       bool

	// HTTPClient overrides the transport (tests).
	HTTPClient *http.Client
}

// S3Target stores the backup as one object.
type S3Target struct {
	client *s3.Client
	bucket string
	key    string
}

// NewS3Target creates an S3 target from cfg.
func NewS3Target(ctx context.Context, cfg S3Config) (*S3Target, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("backup: s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	key := cfg.Key
	if key == "" {
		key = DefaultS3Key
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("backup: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
		// MinIO and older gateways reject streaming checksum trailers.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})

	return &S3Target{client: client, bucket: cfg.Bucket, key: key}, nil
}

func (t *S3Target) Driver() Driver { return DriverS3 }

func (t *S3Target) location() string {
	return "s3://" + t.bucket + "/" + t.key
}

func (t *S3Target) Put(ctx context.Context, r io.Reader, size int64) (Info, error) {
	input := &s3.PutObjectInput{
		Bucket:      &t.bucket,
		Key:         &t.key,
		Body:        r,
		ContentType: aws.String("application/octet-stream"),
	}
	if size >= 0 {
		input.ContentLength = aws.Int64(size)
	}
	if _, err := t.client.PutObject(ctx, input); err != nil {
		return Info{}, domain.ErrUnwritable.WithDetails(t.location()).WithCause(err)
	}
	return t.Stat(ctx)
}

func (t *S3Target) Get(ctx context.Context) (io.ReadCloser, error) {
	out, err := t.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &t.bucket, Key: &t.key})
	if err != nil {
		if isNotFound(err) {
			return nil, domain.ErrNoBackupFound.WithDetails(t.location())
		}
		return nil, domain.ErrUnreadable.WithDetails(t.location()).WithCause(err)
	}
	return out.Body, nil
}

func (t *S3Target) Stat(ctx context.Context) (Info, error) {
	out, err := t.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &t.bucket, Key: &t.key})
	if err != nil {
		if isNotFound(err) {
			return Info{}, domain.ErrNoBackupFound.WithDetails(t.location())
		}
		return Info{}, domain.ErrUnreadable.WithDetails(t.location()).WithCause(err)
	}
	return Info{
		Location:     t.location(),
		Size:         aws.ToInt64(out.ContentLength),
		LastModified: aws.ToTime(out.LastModified),
	}, nil
}

func isNotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return true
	}
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
