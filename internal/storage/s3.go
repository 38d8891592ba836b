package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/0xMishra/social-media-backend/internal/config"
	"github.com/0xMishra/social-media-backend/internal/logging"
)

// ErrUnsupportedContentType indicates an upload for a file type posts cannot carry.
var ErrUnsupportedContentType = errors.New("unsupported image content type")

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// Upload describes a presigned request the client performs to store an image,
// and the URL the image is served from afterwards.
type Upload struct {
	UploadURL string      `json:"uploadUrl"`
	Method    string      `json:"method"`
	Headers   http.Header `json:"headers,omitempty"`
	ImageURL  string      `json:"imageUrl"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// ImageStore hands out presigned PUT URLs for post images in an S3-compatible bucket.
type ImageStore struct {
	presigner *s3.PresignClient
	bucket    string
	baseURL   string
	ttl       time.Duration
	now       func() time.Time
}

// NewImageStore configures a presign client targeting the provided object store.
func NewImageStore(ctx context.Context, cfg config.ObjectStoreConfig) (*ImageStore, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("s3 storage: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	endpoint := strings.TrimSuffix(strings.TrimSpace(cfg.Endpoint), "/")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	ttl := cfg.UploadURLTTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	baseURL := strings.TrimSuffix(strings.TrimSpace(cfg.PublicBaseURL), "/")
	if baseURL == "" {
		switch {
		case endpoint != "":
			baseURL = fmt.Sprintf("%s/%s", endpoint, cfg.Bucket)
		default:
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	return &ImageStore{
		presigner: s3.NewPresignClient(client, s3.WithPresignExpires(ttl)),
		bucket:    cfg.Bucket,
		baseURL:   baseURL,
		ttl:       ttl,
		now:       time.Now,
	}, nil
}

// PresignUpload returns a short-lived PUT request for a new image owned by userID.
func (s *ImageStore) PresignUpload(ctx context.Context, userID, contentType string) (upload Upload, err error) {
	op := logging.StartOp(ctx, "images.presign")
	defer func() { op.End(err) }()

	key, err := ImageKey(userID, contentType)
	if err != nil {
		return Upload{}, err
	}

	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return Upload{}, fmt.Errorf("s3 storage presign %s: %w", key, err)
	}

	return Upload{
		UploadURL: req.URL,
		Method:    req.Method,
		Headers:   req.SignedHeader,
		ImageURL:  fmt.Sprintf("%s/%s", s.baseURL, key),
		ExpiresAt: s.now().UTC().Add(s.ttl),
	}, nil
}

// ImageKey builds the object key posts/<userID>/<random>.<ext> for an upload.
func ImageKey(userID, contentType string) (string, error) {
	ext, ok := imageExtensions[strings.ToLower(strings.TrimSpace(contentType))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedContentType, contentType)
	}
	userID = strings.Trim(strings.TrimSpace(userID), "/")
	if userID == "" {
		return "", errors.New("s3 storage: user id is required")
	}
	return fmt.Sprintf("posts/%s/%s.%s", userID, uuid.NewString(), ext), nil
}
