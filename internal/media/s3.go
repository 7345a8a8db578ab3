package media

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"streamhub-backend-go/internal/core"
)

const uploadURLTTL = time.Hour

// S3Store issues presigned PUT URLs for video uploads and deletes stored
// objects. Keys are namespaced under videos/ with a uuid prefix so repeated
// uploads of the same file never collide.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	logger  *zap.Logger
}

// NewS3Store builds the S3 client. Static credentials are used when provided;
// otherwise the default chain (env, instance profile) applies.
func NewS3Store(ctx context.Context, region, accessKeyID, secretAccessKey, bucket string, logger *zap.Logger) (*S3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKeyID != "" && secretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		logger:  logger,
	}, nil
}

var _ core.MediaStore = (*S3Store)(nil)

func (s *S3Store) PresignUpload(ctx context.Context, fileName, contentType string) (*core.UploadTarget, error) {
	key := fmt.Sprintf("videos/%s-%s", uuid.NewString(), sanitizeFileName(fileName))

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(uploadURLTTL))
	if err != nil {
		return nil, fmt.Errorf("failed to presign put object: %w", err)
	}

	s.logger.Debug("upload URL presigned",
		zap.String("key", key),
		zap.String("contentType", contentType))
	return &core.UploadTarget{
		UploadURL: req.URL,
		Key:       key,
		ExpiresIn: int(uploadURLTTL.Seconds()),
	}, nil
}

func (s *S3Store) DeleteObject(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %q: %w", key, err)
	}
	return nil
}

// sanitizeFileName keeps the base name and squashes characters that are
// awkward in object keys or presigned URLs.
func sanitizeFileName(name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}
