package infra

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3PutObjectAPI is the subset of the S3 client the image store needs.
type S3PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3ImageStore uploads recipe images to a bucket. Calls go through a circuit
// breaker so an unreachable bucket fails fast instead of stalling requests.
type S3ImageStore struct {
	client  S3PutObjectAPI
	bucket  string
	baseURL string
	cb      *CircuitBreaker
}

// NewS3ImageStore loads the default AWS credential chain for region.
// baseURL is the public prefix (CDN or bucket website) objects are served
// from; when empty the virtual-hosted bucket URL is used.
func NewS3ImageStore(ctx context.Context, bucket, region, baseURL string) (*S3ImageStore, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return NewS3ImageStoreWithClient(s3.NewFromConfig(cfg), bucket, baseURL,
		NewCircuitBreaker(DefaultCBConfig("s3"))), nil
}

// NewS3ImageStoreWithClient builds a store around an existing client.
func NewS3ImageStoreWithClient(client S3PutObjectAPI, bucket, baseURL string, cb *CircuitBreaker) *S3ImageStore {
	return &S3ImageStore{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
		cb:      cb,
	}
}

// Put uploads body under key and returns its public URL.
func (s *S3ImageStore) Put(ctx context.Context, key, contentType string, body []byte) (string, error) {
	err := s.cb.Execute(func() error {
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String(contentType),
			ACL:         s3types.ObjectCannedACLPublicRead,
		})
		return err
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return s.baseURL + "/" + key, nil
}

// Breaker exposes the circuit breaker for the health endpoint.
func (s *S3ImageStore) Breaker() *CircuitBreaker { return s.cb }
