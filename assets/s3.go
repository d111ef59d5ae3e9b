package assets

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"bgloop/background"
	"bgloop/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config contains minimal configuration for creating an S3 client.
// Values are optional and fall back to the standard AWS config/credential chain.
type S3Config struct {
	Region       string
	Profile      string
	UsePathStyle bool
}

type presigner interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// S3Resolver hands out presigned GET URLs for clips stored in a bucket
type S3Resolver struct {
	lister  s3.ListObjectsV2APIClient
	presign presigner
	bucket  string
	prefix  string
	ttl     time.Duration
}

// NewS3Resolver creates a resolver using the default AWS configuration chain,
// with optional overrides from S3Config.
func NewS3Resolver(ctx context.Context, cfg S3Config, bucket, prefix string, ttl time.Duration) (*S3Resolver, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3Resolver(client, s3.NewPresignClient(client), bucket, prefix, ttl), nil
}

func newS3Resolver(lister s3.ListObjectsV2APIClient, presign presigner, bucket, prefix string, ttl time.Duration) *S3Resolver {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix = prefix + "/"
	}
	if ttl <= 0 {
		ttl = config.PresignTTL
	}
	return &S3Resolver{
		lister:  lister,
		presign: presign,
		bucket:  bucket,
		prefix:  prefix,
		ttl:     ttl,
	}
}

// Resolve returns a presigned URL for prefix+name. The object is not fetched.
func (r *S3Resolver) Resolve(ctx context.Context, name string) (background.SourceAsset, error) {
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if name == "" {
		return "", fmt.Errorf("asset name is required")
	}

	req, err := r.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(r.bucket),
		Key:    aws.String(r.prefix + name),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = r.ttl
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	return background.SourceAsset(req.URL), nil
}

// List returns clip names under the prefix, following pagination
func (r *S3Resolver) List(ctx context.Context) ([]string, error) {
	paginator := s3.NewListObjectsV2Paginator(r.lister, &s3.ListObjectsV2Input{
		Bucket: aws.String(r.bucket),
		Prefix: aws.String(r.prefix),
	})

	var names []string
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list s3://%s/%s: %w", r.bucket, r.prefix, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, config.AssetExtension) {
				continue
			}
			names = append(names, strings.TrimPrefix(key, r.prefix))
		}
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("no background videos found in s3://%s/%s", r.bucket, r.prefix)
	}
	sort.Strings(names)
	return names, nil
}
