package output

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"path"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// DefaultUploadTimeout bounds a single upload
const DefaultUploadTimeout = 30 * time.Second

// S3Config describes where rendered images are published
type S3Config struct {
	Bucket    string
	Prefix    string // Key prefix, e.g. "renders/"
	Region    string
	Endpoint  string // Custom endpoint for S3-compatible stores; enables path-style addressing
	AccessKey string // Static credentials; empty uses the default AWS credential chain
	SecretKey string
	ACL       string // Canned ACL such as "public-read"; empty leaves the bucket default
	Timeout   time.Duration
}

// S3Uploader publishes encoded images to an S3 bucket
type S3Uploader struct {
	client  s3iface.S3API
	config  S3Config
	timeout time.Duration
}

// NewS3Uploader creates an uploader backed by a new AWS session
func NewS3Uploader(config S3Config) (*S3Uploader, error) {
	if config.Bucket == "" {
		return nil, errors.New("S3 bucket is required")
	}

	awsConfig := aws.Config{}
	if config.Region != "" {
		awsConfig.Region = aws.String(config.Region)
	}
	if config.Endpoint != "" {
		awsConfig.Endpoint = aws.String(config.Endpoint)
		awsConfig.S3ForcePathStyle = aws.Bool(true)
	}
	if config.AccessKey != "" {
		awsConfig.Credentials = credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, "")
	}

	sess, err := session.NewSession(&awsConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 session: %w", err)
	}
	return NewS3UploaderWithClient(s3.New(sess), config), nil
}

// NewS3UploaderWithClient creates an uploader around an existing client
func NewS3UploaderWithClient(client s3iface.S3API, config S3Config) *S3Uploader {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultUploadTimeout
	}
	return &S3Uploader{client: client, config: config, timeout: timeout}
}

// Key returns the object key for a file name
func (u *S3Uploader) Key(name string) string {
	return path.Join(u.config.Prefix, name)
}

// Upload stores data under the prefixed key and returns its s3:// location
func (u *S3Uploader) Upload(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	key := u.Key(name)
	size := int64(len(data))
	input := &s3.PutObjectInput{
		Bucket:        aws.String(u.config.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(size),
		ContentType:   aws.String(contentType),
	}
	if u.config.ACL != "" {
		input.ACL = aws.String(u.config.ACL)
	}

	if _, err := u.client.PutObjectWithContext(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	log.Printf("Uploaded %s to S3 (%d bytes)", key, size)
	return fmt.Sprintf("s3://%s/%s", u.config.Bucket, key), nil
}

// UploadImage encodes img in the given format and uploads it
func (u *S3Uploader) UploadImage(ctx context.Context, name string, img image.Image, format Format) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, format); err != nil {
		return "", fmt.Errorf("error encoding %s: %w", format, err)
	}
	return u.Upload(ctx, name, buf.Bytes(), format.ContentType())
}
