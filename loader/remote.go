package loader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// maxRemoteBytes caps the size of a remote body.
const maxRemoteBytes = 64 << 20

// fetchURL downloads a remote CSV. Failures are reported once, never
// retried.
func (l *Loader) fetchURL(ctx context.Context, rawURL string) ([]byte, error) {
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteFetch, err)
	}

	client := l.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemoteFetch, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %s", ErrRemoteFetch, rawURL, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrRemoteFetch, err)
	}
	return data, nil
}

// ObjectGetter is the subset of the S3 client used by the loader.
type ObjectGetter interface {
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Config configures the client built when Loader.S3 is nil.
type S3Config struct {
	Region   string
	Endpoint string
	// UsePathStyle is required by most S3-compatible endpoints.
	UsePathStyle bool
}

func (l *Loader) s3Client(ctx context.Context) (ObjectGetter, error) {
	if l.S3 != nil {
		return l.S3, nil
	}
	region := l.S3Config.Region
	if region == "" {
		region = "us-east-1"
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("%w: load aws config: %w", ErrMissingDependency, err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = l.S3Config.UsePathStyle
		if l.S3Config.Endpoint != "" {
			o.BaseEndpoint = aws.String(l.S3Config.Endpoint)
		}
	})
	return client, nil
}

// fetchS3 downloads s3://bucket/key.
func (l *Loader) fetchS3(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse s3 url: %w", err)
	}
	bucket, key := u.Host, strings.TrimPrefix(u.Path, "/")
	if bucket == "" || key == "" {
		return nil, fmt.Errorf("s3 url %q: expected s3://bucket/key", rawURL)
	}

	client, err := l.s3Client(ctx)
	if err != nil {
		return nil, err
	}
	if l.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.Timeout)
		defer cancel()
	}
	out, err := client.GetObject(ctx, &s3.GetObjectInput{Bucket: &bucket, Key: &key})
	if err != nil {
		return nil, fmt.Errorf("%w: get object: %w", ErrRemoteFetch, err)
	}
	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxRemoteBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read object: %w", ErrRemoteFetch, err)
	}
	return data, nil
}

func isJSONKey(rawURL string) bool {
	return strings.EqualFold(path.Ext(rawURL), ".json")
}
