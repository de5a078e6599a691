package store

import (
	"bytes"
	"context"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	cftypes "github.com/aws/aws-sdk-go-v2/service/cloudfront/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/dmorgan81/promptshot/internal/log"
	"github.com/samber/do"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type S3Uploader struct {
	Client *s3.Client
	Bucket string
}

func NewS3Uploader(i *do.Injector) (Uploader, error) {
	return &S3Uploader{
		Client: do.MustInvoke[*s3.Client](i),
		Bucket: do.MustInvokeNamed[string](i, "bucket"),
	}, nil
}

func (u *S3Uploader) Upload(ctx context.Context, params UploadParams) error {
	log := log.FromContextOrDiscard(ctx).WithGroup("s3").With(
		"name", params.Name,
		"content-type", params.ContentType,
		"metadata", params.Metadata,
		"bucket", u.Bucket,
	)
	log.Info("uploading to s3")

	_, err := u.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(u.Bucket),
		Key:          aws.String(params.Name),
		ContentType:  aws.String(params.ContentType),
		Body:         bytes.NewReader(params.Data),
		Metadata:     params.Metadata,
		StorageClass: s3types.StorageClassIntelligentTiering,
	})
	return err
}

type S3Lister struct {
	Client *s3.Client
	Bucket string
}

func NewS3Lister(i *do.Injector) (Lister, error) {
	return &S3Lister{
		Client: do.MustInvoke[*s3.Client](i),
		Bucket: do.MustInvokeNamed[string](i, "bucket"),
	}, nil
}

func (l *S3Lister) List(ctx context.Context) ([]Object, error) {
	log := log.FromContextOrDiscard(ctx).WithGroup("s3").With("bucket", l.Bucket)
	log.Info("listing images")

	pager := s3.NewListObjectsV2Paginator(l.Client, &s3.ListObjectsV2Input{
		Bucket: aws.String(l.Bucket),
	})

	var (
		mu   sync.Mutex
		objs []Object
	)
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(8)
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			_ = group.Wait()
			return nil, err
		}

		contents := lo.Filter(page.Contents, func(o s3types.Object, _ int) bool {
			return isImage(aws.ToString(o.Key))
		})

		for _, obj := range contents {
			group.Go(func() error {
				out, err := l.Client.HeadObject(ctx, &s3.HeadObjectInput{
					Bucket: aws.String(l.Bucket),
					Key:    obj.Key,
				})
				if err != nil {
					return err
				}
				mu.Lock()
				objs = append(objs, Object{
					Name:        aws.ToString(obj.Key),
					ContentType: aws.ToString(out.ContentType),
					Size:        aws.ToInt64(out.ContentLength),
					Updated:     aws.ToTime(out.LastModified),
					Metadata:    out.Metadata,
				})
				mu.Unlock()
				return nil
			})
		}
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return objs, nil
}

type CloudFrontInvalidator struct {
	Client       *cloudfront.Client
	Distribution string
}

func NewCloudFrontInvalidator(i *do.Injector) (Invalidator, error) {
	return &CloudFrontInvalidator{
		Client:       do.MustInvoke[*cloudfront.Client](i),
		Distribution: do.MustInvokeNamed[string](i, "distribution"),
	}, nil
}

func (i *CloudFrontInvalidator) Invalidate(ctx context.Context, paths []string) error {
	log := log.FromContextOrDiscard(ctx).WithGroup("cloudfront").With("paths", paths, "distribution", i.Distribution)
	log.Info("invalidating paths in cloudfront")

	_, err := i.Client.CreateInvalidation(ctx, &cloudfront.CreateInvalidationInput{
		DistributionId: aws.String(i.Distribution),
		InvalidationBatch: &cftypes.InvalidationBatch{
			CallerReference: aws.String(time.Now().UTC().Format("20060102150405")),
			Paths: &cftypes.Paths{
				Quantity: aws.Int32(int32(len(paths))),
				Items:    paths,
			},
		},
	})
	return err
}
