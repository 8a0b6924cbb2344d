package contentstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"medledger/pkg/domain"
	"medledger/pkg/platform/sentinel"
)

// S3API is the subset of the S3 client the store uses.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

// S3 stores blobs as objects under an optional key prefix.
type S3 struct {
	client S3API
	bucket string
	prefix string
}

func NewS3(client S3API, bucket, prefix string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

// NewS3Client builds a path-style client from the default AWS config chain.
// region and endpoint override the chain when set; endpoint is for MinIO or
// LocalStack.
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
		o.UsePathStyle = true
	}), nil
}

func (s *S3) key(ref domain.ContentRef) string {
	return s.prefix + ref.String()
}

func (s *S3) Put(ctx context.Context, data []byte) (domain.ContentRef, error) {
	ref := RefFor(data)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.key(ref)),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/octet-stream"),
	})
	if err != nil {
		return "", fmt.Errorf("%w: s3 put %s: %v", sentinel.ErrUnavailable, ref, err)
	}
	return ref, nil
}

func (s *S3) Get(ctx context.Context, ref domain.ContentRef) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("%w: s3 get %s: %v", sentinel.ErrUnavailable, ref, err)
	}
	defer out.Body.Close()
	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: s3 read %s: %v", sentinel.ErrUnavailable, ref, err)
	}
	return data, nil
}

func (s *S3) Has(ctx context.Context, ref domain.ContentRef) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(ref)),
	})
	if err != nil {
		if isS3NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("%w: s3 head %s: %v", sentinel.ErrUnavailable, ref, err)
	}
	return true, nil
}

func isS3NotFound(err error) bool {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noKey) || errors.As(err, &notFound)
}
