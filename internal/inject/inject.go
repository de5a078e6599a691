package inject

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudfront"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/dmorgan81/promptshot/internal/config"
	"github.com/dmorgan81/promptshot/internal/controller"
	"github.com/dmorgan81/promptshot/internal/display"
	"github.com/dmorgan81/promptshot/internal/feed"
	"github.com/dmorgan81/promptshot/internal/handler"
	"github.com/dmorgan81/promptshot/internal/image"
	"github.com/dmorgan81/promptshot/internal/log"
	"github.com/dmorgan81/promptshot/internal/page"
	"github.com/dmorgan81/promptshot/internal/param"
	"github.com/dmorgan81/promptshot/internal/prompt"
	"github.com/dmorgan81/promptshot/internal/server"
	"github.com/dmorgan81/promptshot/internal/session"
	"github.com/dmorgan81/promptshot/internal/store"
	"github.com/samber/do"
	"github.com/samber/lo"
)

// Setup registers every service lazily. AWS clients are only built when a
// service that needs them is invoked.
func Setup(ctx context.Context, cfg *config.Config) *do.Injector {
	log := log.FromContextOrDiscard(ctx)

	injector := do.NewWithOpts(&do.InjectorOpts{
		Logf: func(format string, args ...any) {
			log.Debug(fmt.Sprintf(format, args...))
		},
	})
	do.Provide[aws.Config](injector, func(i *do.Injector) (aws.Config, error) {
		return awsconfig.LoadDefaultConfig(ctx)
	})
	do.Provide[*ssm.Client](injector, func(i *do.Injector) (*ssm.Client, error) {
		return ssm.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*s3.Client](injector, func(i *do.Injector) (*s3.Client, error) {
		return s3.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.Provide[*cloudfront.Client](injector, func(i *do.Injector) (*cloudfront.Client, error) {
		return cloudfront.NewFromConfig(do.MustInvoke[aws.Config](i)), nil
	})
	do.ProvideValue[*http.Client](injector, &http.Client{Timeout: cfg.HTTPTimeout})

	do.Provide[param.Fetcher](injector, param.NewParameterStoreFetcher)

	do.ProvideNamed[string](injector, "api_key", func(i *do.Injector) (string, error) {
		if cfg.APIKey != "" || cfg.APIKeyParam == "" {
			return cfg.APIKey, nil
		}
		return param.Value(ctx, do.MustInvoke[param.Fetcher](i), cfg.APIKey, cfg.APIKeyParam)
	})
	do.ProvideNamed[[]string](injector, "prompts", func(i *do.Injector) ([]string, error) {
		if len(cfg.Prompts) > 0 || cfg.PromptsParam == "" {
			return cfg.Prompts, nil
		}
		return param.Values(ctx, do.MustInvoke[param.Fetcher](i), cfg.Prompts, cfg.PromptsParam)
	})
	do.ProvideNamedValue[string](injector, "endpoint", cfg.Endpoint)
	do.ProvideNamedValue[int](injector, "attempts", cfg.Attempts)
	do.ProvideNamedValue[time.Duration](injector, "retry_delay", cfg.RetryDelay)
	do.ProvideNamedValue[string](injector, "listen_addr", cfg.ListenAddr)
	do.ProvideNamedValue[string](injector, "base_url", strings.TrimSuffix(cfg.BaseURL, "/"))
	do.ProvideNamedValue[string](injector, "image_base_url",
		lo.Ternary(cfg.UseS3(), strings.TrimSuffix(cfg.BaseURL, "/"), strings.TrimSuffix(cfg.BaseURL, "/")+"/saved"))
	do.ProvideNamedValue[string](injector, "output_dir", cfg.OutputDir)
	do.ProvideNamedValue[string](injector, "bucket", cfg.Bucket)
	do.ProvideNamedValue[string](injector, "distribution", cfg.Distribution)

	switch cfg.Generator {
	case "stub":
		do.ProvideValue[image.Generator](injector, &image.StubGenerator{LoadingFailures: cfg.StubWarmup})
	default:
		do.Provide[image.Generator](injector, image.NewHuggingFaceGenerator)
	}

	do.ProvideValue[*session.Session](injector, session.New())
	do.Provide[*display.Registry](injector, func(i *do.Injector) (*display.Registry, error) {
		return display.NewRegistry(), nil
	})
	do.Provide[*controller.Controller](injector, controller.NewController)

	if cfg.UseS3() {
		do.Provide[store.Uploader](injector, store.NewS3Uploader)
		do.Provide[store.Lister](injector, store.NewS3Lister)
	} else {
		do.ProvideValue[store.Uploader](injector, &store.FileUploader{Dir: cfg.OutputDir})
		do.ProvideValue[store.Lister](injector, &store.FileLister{Dir: cfg.OutputDir})
	}
	if cfg.Distribution != "" {
		do.Provide[store.Invalidator](injector, store.NewCloudFrontInvalidator)
	} else {
		do.ProvideValue[store.Invalidator](injector, store.NoopInvalidator{})
	}

	do.Provide[*prompt.Randomizer](injector, prompt.NewRandomizer)
	do.Provide[*page.Templator](injector, page.NewTemplator)
	do.Provide[*feed.Generator](injector, feed.NewGenerator)
	do.Provide[*server.Server](injector, server.NewServer)
	do.Provide[*handler.Handler](injector, handler.NewHandler)

	return injector
}
