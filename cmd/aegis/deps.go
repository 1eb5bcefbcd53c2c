package main

import (
	"context"
	"fmt"

	"github.com/openefficiency/aegisv11-sub000/internal/db"
	"github.com/openefficiency/aegisv11-sub000/internal/intake"
	"github.com/openefficiency/aegisv11-sub000/internal/ratelimit"
	"github.com/openefficiency/aegisv11-sub000/internal/report"
	"github.com/openefficiency/aegisv11-sub000/internal/storage"
	"github.com/openefficiency/aegisv11-sub000/internal/store"
	"github.com/openefficiency/aegisv11-sub000/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
)

// openCaseStore returns the configured case store and a func releasing it.
// The none backend returns a nil store, which keeps the pipeline in demo
// mode.
func openCaseStore(ctx context.Context, config *types.Config, logger *logrus.Logger) (intake.CaseStore, func(), error) {
	switch config.StoreBackend {
	case types.StoreBackendPostgres:
		pool, err := db.Connect(ctx, config)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("connected to database")
		return store.NewCaseRepository(pool), pool.Close, nil
	case types.StoreBackendSupabase:
		logger.WithField("table", config.SupabaseCasesTable).Info("using supabase rest store")
		return storage.NewSupabaseRecords(config.SupabaseURL, config.SupabaseServiceKey, config.SupabaseCasesTable), func() {}, nil
	}

	logger.Warn("no case store configured, submissions run in demo mode")
	return nil, func() {}, nil
}

// openLimiterStore shares counters through Redis when REDIS_URL is set and
// keeps them in memory otherwise.
func openLimiterStore(ctx context.Context, config *types.Config, logger *logrus.Logger) (ratelimit.Store, func(), error) {
	if config.RedisURL == "" {
		logger.Info("rate limits kept in process memory")
		return ratelimit.NewMemoryStore(), func() {}, nil
	}

	rs, err := ratelimit.NewRedisStore(ctx, config.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("rate limits shared through redis")
	return rs, func() { _ = rs.Close() }, nil
}

func newNormalizer(config *types.Config) *report.Normalizer {
	classifier := report.NewClassifier(report.WithWordBoundaries(config.ClassifierWholeWords))
	return report.NewNormalizer(report.NewGenerator(), classifier, report.WithTitleLength(config.TitleMaxLength))
}

func newLimiters(config *types.Config, limits ratelimit.Store) map[types.ReportSource]*ratelimit.Limiter {
	return map[types.ReportSource]*ratelimit.Limiter{
		types.ReportSourceManual: ratelimit.New(limits, "manual", config.ManualRateLimit, config.RateLimitWindow),
		types.ReportSourceMap:    ratelimit.New(limits, "map", config.MapRateLimit, config.RateLimitWindow),
		types.ReportSourceVoice:  ratelimit.New(limits, "voice", config.VoiceRateLimit, config.RateLimitWindow),
	}
}

// newRecordingArchive builds the S3 client from the default AWS credential
// chain. S3_ENDPOINT points it at an S3 compatible store such as MinIO or
// Supabase Storage, which need path-style addressing.
func newRecordingArchive(ctx context.Context, config *types.Config) (*storage.RecordingArchive, error) {
	awsConfig, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if config.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(config.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return storage.NewRecordingArchive(client, config.RecordingsBucket, config.RecordingsPrefix, config.RecordingsAllowedHosts), nil
}
