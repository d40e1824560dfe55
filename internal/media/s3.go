package media

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"

	"github.com/viewtube/backend/internal/config"
	"github.com/viewtube/backend/internal/logging"
)

// DurationProber reports the duration in seconds of a local video file.
type DurationProber interface {
	Probe(ctx context.Context, path string) (float64, error)
}

// S3Provider stores assets in an S3-compatible bucket. Objects are keyed
// <folder>/<uuid> with no extension so that PublicID applied to the returned
// URL yields the object key exactly.
type S3Provider struct {
	uploader *manager.Uploader
	client   *s3.Client
	bucket   string
	baseURL  string
	prober   DurationProber
}

func kindFolder(kind Kind) string {
	if kind == KindVideo {
		return "videos"
	}
	return "images"
}

// NewS3Provider configures an uploader and deleter targeting the provided
// object store. The prober is consulted for video uploads and may be nil.
func NewS3Provider(ctx context.Context, cfg config.ObjectStoreConfig, prober DurationProber) (*S3Provider, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("media: bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}

	if strings.TrimSpace(cfg.Endpoint) != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if service == s3.ServiceID {
				return aws.Endpoint{
					URL:           cfg.Endpoint,
					SigningRegion: cfg.Region,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 5 * 1024 * 1024
		u.LeavePartsOnError = false
	})

	return &S3Provider{
		uploader: uploader,
		client:   client,
		bucket:   cfg.Bucket,
		baseURL:  strings.TrimSuffix(cfg.PublicBaseURL, "/"),
		prober:   prober,
	}, nil
}

// Upload transmits the file at localPath to the bucket and returns its public
// URL, probing duration for video assets. The local file is removed when the
// upload fails.
func (p *S3Provider) Upload(ctx context.Context, localPath string, kind Kind) (Asset, error) {
	if p == nil {
		return Asset{}, ErrProviderUnavailable
	}
	if strings.TrimSpace(localPath) == "" {
		return Asset{}, fmt.Errorf("media: empty file path")
	}

	file, err := os.Open(localPath)
	if err != nil {
		_ = os.Remove(localPath)
		return Asset{}, fmt.Errorf("open upload file: %w", err)
	}

	var duration float64
	if kind == KindVideo && p.prober != nil {
		duration, err = p.prober.Probe(ctx, localPath)
		if err != nil {
			file.Close()
			_ = os.Remove(localPath)
			return Asset{}, fmt.Errorf("probe video duration: %w", err)
		}
	}

	key := fmt.Sprintf("%s/%s", kindFolder(kind), uuid.NewString())
	contentType := mime.TypeByExtension(filepath.Ext(localPath))

	input := &s3.PutObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
		Body:   file,
		ACL:    s3types.ObjectCannedACLPublicRead,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	_, err = p.uploader.Upload(ctx, input)
	file.Close()
	if err != nil {
		_ = os.Remove(localPath)
		return Asset{}, fmt.Errorf("media upload %s: %w", key, err)
	}

	url := key
	if p.baseURL != "" {
		url = fmt.Sprintf("%s/%s", p.baseURL, key)
	}

	return Asset{URL: url, Duration: duration}, nil
}

// Remove issues a best-effort delete for the asset addressed by publicID.
// Failures are logged and reported but callers are expected to swallow them.
func (p *S3Provider) Remove(ctx context.Context, publicID string, kind Kind) error {
	if p == nil {
		return ErrProviderUnavailable
	}
	if strings.TrimSpace(publicID) == "" {
		return nil
	}

	_, err := p.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(publicID),
	})
	if err != nil {
		logging.FromContext(ctx).Warn("media delete failed", "publicId", publicID, "kind", string(kind), "error", err)
		return fmt.Errorf("media delete %s: %w", publicID, err)
	}

	return nil
}

var _ Provider = (*S3Provider)(nil)
