package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/redis/go-redis/v9"

	appconfig "github.com/corstar/site-intake/internal/config"
	"github.com/corstar/site-intake/internal/inquiry"
	"github.com/corstar/site-intake/internal/ratelimit"
	"github.com/corstar/site-intake/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		_ = client.Close()
		return nil
	}
	return client
}

// BuildLimiters returns one limiter per intake endpoint. Each endpoint keeps its
// own window, shared through Redis when a client is given.
func BuildLimiters(cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger) map[inquiry.Endpoint]ratelimit.Limiter {
	limiters := make(map[inquiry.Endpoint]ratelimit.Limiter, len(inquiry.Profiles))
	var shared *ratelimit.RedisLimiter
	if redisClient != nil {
		shared = ratelimit.NewRedisLimiter(redisClient, cfg.RateLimitWindow, logger)
	}
	for _, p := range inquiry.Profiles {
		if shared != nil {
			limiters[p.Endpoint] = shared.Scoped(string(p.Endpoint))
			continue
		}
		limiters[p.Endpoint] = ratelimit.NewWindowLimiter(cfg.RateLimitWindow, cfg.RateLimitCapacity)
	}
	return limiters
}

// LoadAWSConfig centralizes AWS SDK initialization so both binaries share the
// same LocalStack/production wiring.
func LoadAWSConfig(ctx context.Context, cfg *appconfig.Config) (aws.Config, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(cfg.AWSRegion)}
	if strings.TrimSpace(cfg.AWSAccessKeyID) != "" && strings.TrimSpace(cfg.AWSSecretAccessKey) != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, err
	}

	if endpoint := cfg.AWSEndpointOverride; endpoint != "" {
		awsCfg.EndpointResolverWithOptions = aws.EndpointResolverWithOptionsFunc(
			func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
				switch service {
				case sqs.ServiceID, s3.ServiceID, sesv2.ServiceID:
					return aws.Endpoint{
						URL:               endpoint,
						PartitionID:       "aws",
						SigningRegion:     cfg.AWSRegion,
						HostnameImmutable: true,
					}, nil
				default:
					return aws.Endpoint{}, &aws.EndpointNotFoundError{}
				}
			},
		)
	}

	return awsCfg, nil
}

// needsAWS reports whether any configured feature talks to AWS.
func needsAWS(cfg *appconfig.Config) bool {
	return cfg.EventsQueueURL != "" || cfg.ExportBucket != "" ||
		(cfg.SESFromEmail != "" && cfg.SendGridAPIKey == "")
}
