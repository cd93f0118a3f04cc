package file

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/google/uuid"
	"github.com/jsphweid/midiscore/util"
	"github.com/pkg/errors"
)

const (
	Stdout      = "-"
	s3Scheme    = "s3://"
	ContentType = "audio/midi"
)

var (
	ErrS3URL      = errors.New("invalid s3 url")
	ErrNoUploader = errors.New("no s3 uploader configured")
)

func DefaultName() string {
	return uuid.NewString() + ".mid"
}

func DefaultPath(dir string) string {
	return filepath.Join(dir, DefaultName())
}

func IsS3(dest string) bool {
	return strings.HasPrefix(dest, s3Scheme)
}

// ParseS3URL splits s3://bucket/some/key into its bucket and key.
func ParseS3URL(dest string) (string, string, error) {
	if !IsS3(dest) {
		return "", "", errors.Wrapf(ErrS3URL, "%q does not start with %s", dest, s3Scheme)
	}
	bucket, key, found := strings.Cut(strings.TrimPrefix(dest, s3Scheme), "/")
	if !found || bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return "", "", errors.Wrapf(ErrS3URL, "%q should look like s3://bucket/key", dest)
	}
	return bucket, key, nil
}

type S3Config struct {
	Region   string
	Endpoint string
}

func NewS3Uploader(c S3Config) (s3manageriface.UploaderAPI, error) {
	cfg := &aws.Config{Region: aws.String(c.Region)}
	if c.Endpoint != "" {
		cfg.Endpoint = aws.String(c.Endpoint)
		cfg.S3ForcePathStyle = aws.Bool(true)
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "could not create an AWS session")
	}
	return s3manager.NewUploader(sess), nil
}

func WriteLocal(path string, data []byte) error {
	if err := util.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Sink delivers rendered files to a local path, Stdout or an s3:// url.
// Errors from the destination are returned as they are.
type Sink struct {
	Stdout   io.Writer
	Uploader s3manageriface.UploaderAPI
}

func (s *Sink) Write(ctx context.Context, dest string, data []byte) error {
	switch {
	case dest == Stdout:
		_, err := s.Stdout.Write(data)
		return err
	case IsS3(dest):
		bucket, key, err := ParseS3URL(dest)
		if err != nil {
			return err
		}
		if s.Uploader == nil {
			return errors.Wrap(ErrNoUploader, dest)
		}
		_, err = s.Uploader.UploadWithContext(ctx, &s3manager.UploadInput{
			Bucket:      aws.String(bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(ContentType),
		})
		return err
	default:
		return WriteLocal(dest, data)
	}
}
