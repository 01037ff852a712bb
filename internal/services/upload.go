package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"strings"

	appconfig "fitfeed-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// ImageStore persists uploaded images and returns the path clients use to
// fetch them.
type ImageStore interface {
	Save(ctx context.Context, fh *multipart.FileHeader) (string, error)
	Remove(ctx context.Context, storedPath string) error
}

// uploadName builds a unique file name keeping the original extension
func uploadName(original, defaultExt string) string {
	ext := strings.ToLower(filepath.Ext(original))
	if ext == "" || ext == "." {
		ext = defaultExt
	}
	return uuid.NewString() + ext
}

// DiskStore keeps uploads in a local directory served under publicPath
type DiskStore struct {
	dir        string
	publicPath string
	defaultExt string
}

// NewDiskStore creates dir if needed
func NewDiskStore(dir, publicPath, defaultExt string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &DiskStore{
		dir:        dir,
		publicPath: strings.TrimRight(publicPath, "/"),
		defaultExt: defaultExt,
	}, nil
}

// Save copies the upload into the directory under a generated name
func (s *DiskStore) Save(_ context.Context, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	name := uploadName(fh.Filename, s.defaultExt)
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	return s.publicPath + "/" + name, nil
}

// Remove deletes a file previously returned by Save
func (s *DiskStore) Remove(_ context.Context, storedPath string) error {
	name := path.Base(storedPath)
	if name == "." || name == "/" {
		return fmt.Errorf("invalid stored path %q", storedPath)
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

type s3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps uploads in an S3 bucket under the uploads/ prefix
type S3Store struct {
	client     s3API
	bucket     string
	publicURL  string
	defaultExt string
}

// NewS3Store builds an S3 client from cfg. Static credentials are used when
// an access key is configured, the default AWS chain otherwise.
func NewS3Store(ctx context.Context, cfg appconfig.AWSConfig, defaultExt string) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.PublicURL
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.S3Bucket, cfg.Region)
	}

	return &S3Store{
		client:     client,
		bucket:     cfg.S3Bucket,
		publicURL:  strings.TrimRight(publicURL, "/"),
		defaultExt: defaultExt,
	}, nil
}

// Save uploads the file and returns its public URL
func (s *S3Store) Save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	key := "uploads/" + uploadName(fh.Filename, s.defaultExt)
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          src,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(fh.Size),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload to S3: %w", err)
	}

	return s.publicURL + "/" + key, nil
}

// Remove deletes the object behind a URL returned by Save
func (s *S3Store) Remove(ctx context.Context, storedPath string) error {
	key, ok := strings.CutPrefix(storedPath, s.publicURL+"/")
	if !ok {
		return fmt.Errorf("path %q does not belong to bucket %s", storedPath, s.bucket)
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from S3: %w", err)
	}
	return nil
}
