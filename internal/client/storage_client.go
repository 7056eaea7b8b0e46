package client

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dubflow/api/internal/config"
)

const r2EndpointFmt = "https://%s.r2.cloudflarestorage.com"

// StorageClient is the object-store surface the pipeline publishes through.
type StorageClient interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, key string) error
	GetSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	GetPublicURL(key string) string
}

// S3Client talks to any S3-compatible store; in production that is
// Cloudflare R2, whose endpoint is derived from the account ID.
type S3Client struct {
	api       *s3.Client
	presigner *s3.PresignClient
	bucket    string
	publicURL string
}

func NewS3Client(cfg *config.StorageConfig) (*S3Client, error) {
	if cfg.AccountID == "" || cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, &CredentialError{Service: "storage", Reason: "configuration incomplete"}
	}

	endpoint := fmt.Sprintf(r2EndpointFmt, cfg.AccountID)
	creds := credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithEndpointResolverWithOptions(
			aws.EndpointResolverWithOptionsFunc(func(string, string, ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{URL: endpoint}, nil
			})),
		awsconfig.WithCredentialsProvider(creds),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := s3.NewFromConfig(awsCfg)
	return &S3Client{
		api:       api,
		presigner: s3.NewPresignClient(api),
		bucket:    cfg.BucketName,
		publicURL: cfg.PublicURL,
	}, nil
}

// Upload puts an object under key and returns its public URL. Re-uploading
// the same key replaces the prior object.
func (c *S3Client) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		// The SDK does not expose a clean status here; treat every put
		// failure as retryable and let the caller's single retry decide.
		return "", transportError("storage", err)
	}
	return c.GetPublicURL(key), nil
}

func (c *S3Client) Delete(ctx context.Context, key string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return transportError("storage", err)
	}
	return nil
}

// GetSignedURL issues a time-limited GET URL for private access to key.
func (c *S3Client) GetSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign object: %w", err)
	}
	return req.URL, nil
}

// GetPublicURL prefers the configured CDN domain over the raw bucket URL.
func (c *S3Client) GetPublicURL(key string) string {
	if c.publicURL != "" {
		return c.publicURL + "/" + key
	}
	return fmt.Sprintf(r2EndpointFmt, c.bucket) + "/" + key
}

func (c *S3Client) IsConfigured() bool {
	return c.api != nil && c.bucket != ""
}
