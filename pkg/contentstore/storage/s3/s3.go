// Package s3 implements the contentstore.BlobStore interface on any
// S3-compatible object service. Each logical container maps to one bucket,
// created on first use with anonymous read access; writes always go through
// the credentialed client.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/edupath/content-store/pkg/contentstore"
)

// Config options for the S3 store.
type Config struct {
	Region          string // region (default: us-east-1)
	AccessKeyID     string // static access key ID
	SecretAccessKey string // static secret access key
	Endpoint        string // optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // use path-style addressing (MinIO et al.)

	// UseDefaultCredentialChain authenticates through the ambient AWS
	// credential chain instead of a static key pair. One of the two modes
	// must be active or every container operation fails with
	// ErrStoreUnavailable.
	UseDefaultCredentialChain bool
}

// Store is an S3-compatible implementation of contentstore.BlobStore. The
// client is expensive to construct and safe to share; build one per process
// and inject it where needed.
type Store struct {
	client     *s3.Client
	uploader   *manager.Uploader
	region     string
	credential bool
}

// New creates the store client. Construction does not touch the network;
// the first container operation does.
func New(cfg Config) (*Store, error) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}

	hasStaticCreds := cfg.AccessKeyID != "" && cfg.SecretAccessKey != ""

	var (
		awsCfg aws.Config
		err    error
	)
	if hasStaticCreds {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.Region),
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			)),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.Background(),
			awsconfig.WithRegion(cfg.Region),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var s3Options []func(*s3.Options)
	if cfg.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = cfg.UsePathStyle
		})
	}

	client := s3.NewFromConfig(awsCfg, s3Options...)
	return &Store{
		client:     client,
		uploader:   manager.NewUploader(client),
		region:     cfg.Region,
		credential: hasStaticCreds || cfg.UseDefaultCredentialChain,
	}, nil
}

// EnsureContainer creates the bucket if it does not exist and applies the
// anonymous-read policy. Idempotent.
func (s *Store) EnsureContainer(ctx context.Context, container string) error {
	if !s.credential {
		return &contentstore.StoreError{Container: container, Op: "ensure", Err: contentstore.ErrStoreUnavailable}
	}

	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(container),
	})
	if err == nil {
		return nil
	}
	if !isBucketMissing(err) {
		return &contentstore.StoreError{Container: container, Op: "ensure", Err: err}
	}

	createInput := &s3.CreateBucketInput{
		Bucket: aws.String(container),
	}
	if s.region != "us-east-1" {
		createInput.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.region),
		}
	}
	if _, err := s.client.CreateBucket(ctx, createInput); err != nil {
		if !isBucketOwned(err) {
			return &contentstore.StoreError{Container: container, Op: "ensure", Err: err}
		}
	}

	policy := fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Sid":"PublicRead","Effect":"Allow","Principal":"*","Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, container)
	if _, err := s.client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(container),
		Policy: aws.String(policy),
	}); err != nil {
		return &contentstore.StoreError{Container: container, Op: "ensure", Err: err}
	}

	return nil
}

// Put writes a blob with overwrite semantics. Content type, cache control
// and metadata are set at write time and served verbatim on the public read
// path.
func (s *Store) Put(ctx context.Context, container, key string, data []byte, opts contentstore.PutOptions) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
		Body:   bytes.NewReader(data),
	}
	if opts.ContentType != "" {
		input.ContentType = aws.String(opts.ContentType)
	}
	if opts.CacheControl != "" {
		input.CacheControl = aws.String(opts.CacheControl)
	}
	if len(opts.Metadata) > 0 {
		input.Metadata = opts.Metadata
	}

	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return &contentstore.StoreError{Container: container, Key: key, Op: "put", Err: err}
	}
	return nil
}

// Get reads a blob.
func (s *Store) Get(ctx context.Context, container, key string) ([]byte, error) {
	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	})
	if err != nil {
		if isKeyMissing(err) {
			return nil, &contentstore.StoreError{Container: container, Key: key, Op: "get", Err: contentstore.ErrNotFound}
		}
		return nil, &contentstore.StoreError{Container: container, Key: key, Op: "get", Err: err}
	}
	defer result.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(result.Body); err != nil {
		return nil, &contentstore.StoreError{Container: container, Key: key, Op: "get", Err: err}
	}
	return buf.Bytes(), nil
}

// Delete removes a blob. S3 deletes are idempotent and report nothing about
// prior existence, so a HeadObject probe decides the return value; deleting
// a missing key is success.
func (s *Store) Delete(ctx context.Context, container, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	})
	if err != nil {
		if isKeyMissing(err) {
			return false, nil
		}
		return false, &contentstore.StoreError{Container: container, Key: key, Op: "delete", Err: err}
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(container),
		Key:    aws.String(key),
	}); err != nil {
		return false, &contentstore.StoreError{Container: container, Key: key, Op: "delete", Err: err}
	}
	return true, nil
}

// ListKeys returns all keys under a prefix, paging through the listing API
// transparently.
func (s *Store) ListKeys(ctx context.Context, container, prefix string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(container),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, &contentstore.StoreError{Container: container, Op: "list", Err: err}
		}
		for _, obj := range page.Contents {
			if obj.Key != nil {
				keys = append(keys, *obj.Key)
			}
		}
	}
	return keys, nil
}

func isKeyMissing(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound"
}

func isBucketMissing(err error) bool {
	var notFound *types.NotFound
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &notFound) || errors.As(err, &noSuchBucket) {
		return true
	}
	// MinIO surfaces missing buckets through generic API errors.
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		return code == "NotFound" || code == "NoSuchBucket" || code == "BadRequest"
	}
	return false
}

func isBucketOwned(err error) bool {
	return strings.Contains(err.Error(), "BucketAlreadyExists") ||
		strings.Contains(err.Error(), "BucketAlreadyOwnedByYou")
}
