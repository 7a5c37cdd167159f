// Package media issues short-lived presigned URLs for lesson media kept in
// S3-compatible object storage.
package media

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/signify/internal/server/config"
)

// URLValidity is how long a presigned URL stays usable.
const URLValidity = 15 * time.Minute

var ErrStorageDisabled = errors.New("object storage not configured")

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// Presigner turns an object key into a temporary download URL.
type Presigner interface {
	PresignGet(ctx context.Context, key string) (string, error)
}

type S3Presigner struct {
	bucket string
	client *s3.PresignClient
}

// NewS3Presigner builds a presign client for the configured bucket. An empty
// bucket yields ErrStorageDisabled.
func NewS3Presigner(ctx context.Context, cfg *sc.Config) (*S3Presigner, error) {
	if cfg.S3Bucket == "" {
		return nil, ErrStorageDisabled
	}

	awsCfg, err := loadDefaultAWSConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Presigner{bucket: cfg.S3Bucket, client: newS3PresignClient(client)}, nil
}

func (p *S3Presigner) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := presignGetObject(p.client, ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(URLValidity))
	if err != nil {
		return "", err
	}
	return req.URL, nil
}
