package utils

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/google/uuid"

	"varirunBack/internal/models"
)

type S3Config struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	// PublicURL is the prefix of returned object URLs. Defaults to endpoint/bucket.
	PublicURL string
}

// S3Storage stores images in an S3 compatible bucket.
type S3Storage struct {
	client    s3iface.S3API
	bucket    string
	publicURL string
}

func NewS3Storage(cfg S3Config) (*S3Storage, error) {
	sess, err := session.NewSession(&aws.Config{
		Region:           aws.String(cfg.Region),
		Endpoint:         aws.String(cfg.Endpoint),
		S3ForcePathStyle: aws.Bool(true),
		Credentials:      credentials.NewStaticCredentials(cfg.AccessKey, cfg.SecretKey, ""),
	})
	if err != nil {
		return nil, fmt.Errorf("s3 session: %w", err)
	}
	return NewS3StorageWithClient(s3.New(sess), cfg), nil
}

func NewS3StorageWithClient(client s3iface.S3API, cfg S3Config) *S3Storage {
	public := strings.TrimRight(cfg.PublicURL, "/")
	if public == "" {
		public = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return &S3Storage{client: client, bucket: cfg.Bucket, publicURL: public}
}

func (s *S3Storage) Upload(ctx context.Context, folder string, file models.Upload) (models.StoredFile, error) {
	key := objectKey(folder, file)
	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(file.Data),
		ContentLength: aws.Int64(int64(len(file.Data))),
		ContentType:   aws.String(contentType(file)),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return models.StoredFile{}, fmt.Errorf("unable to upload file to S3: %w", err)
	}
	return models.StoredFile{URL: s.publicURL + "/" + key, Ref: key}, nil
}

func (s *S3Storage) Delete(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(ref),
	})
	if err != nil {
		return fmt.Errorf("unable to delete file from S3: %w", err)
	}
	return nil
}

// LocalStorage writes images under a directory served at BaseURL.
type LocalStorage struct {
	Dir     string
	BaseURL string
}

func (s *LocalStorage) Upload(_ context.Context, folder string, file models.Upload) (models.StoredFile, error) {
	key := objectKey(folder, file)
	full := filepath.Join(s.Dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return models.StoredFile{}, err
	}
	if err := os.WriteFile(full, file.Data, 0o644); err != nil {
		return models.StoredFile{}, err
	}
	return models.StoredFile{URL: strings.TrimRight(s.BaseURL, "/") + "/" + key, Ref: key}, nil
}

func (s *LocalStorage) Delete(_ context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	clean := path.Clean("/" + ref)
	err := os.Remove(filepath.Join(s.Dir, filepath.FromSlash(clean)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func objectKey(folder string, file models.Upload) string {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if ext == "" {
		if exts, _ := mime.ExtensionsByType(file.ContentType); len(exts) > 0 {
			ext = exts[0]
		}
	}
	return path.Join(folder, uuid.NewString()+ext)
}

func contentType(file models.Upload) string {
	if file.ContentType != "" {
		return file.ContentType
	}
	if ct := mime.TypeByExtension(filepath.Ext(file.Filename)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
