// Package backup uploads inventory snapshots to Cloudflare R2 through its
// S3-compatible API.
package backup

import (
	"bytes"
	"context"
	"fmt"
	"log"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type R2Client struct {
	client *s3.Client
	bucket string
}

// NewR2Client builds an R2 uploader. Returns nil when the account id is
// empty so callers can treat the feature as disabled.
func NewR2Client(ctx context.Context, accountID, accessKeyID, secretAccessKey, bucket string) (*R2Client, error) {
	if accountID == "" {
		log.Println("[Backup] R2 not configured, snapshot export disabled")
		return nil, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("load R2 config: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = &endpoint
	})
	return &R2Client{client: client, bucket: bucket}, nil
}

// Upload stores the body under key and returns the object location.
func (c *R2Client) Upload(ctx context.Context, key string, body []byte) (string, error) {
	contentType := "application/json"
	_, err := c.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &c.bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return fmt.Sprintf("%s/%s", c.bucket, key), nil
}
