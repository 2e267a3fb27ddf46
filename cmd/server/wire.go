package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	authhandler "certifly/internal/auth/handler"
	authservice "certifly/internal/auth/service"
	"certifly/internal/auth/signature"
	"certifly/internal/auth/store/revocation"
	userstore "certifly/internal/auth/store/user"
	certhandler "certifly/internal/certificate/handler"
	certmetrics "certifly/internal/certificate/metrics"
	"certifly/internal/certificate/ports"
	certservice "certifly/internal/certificate/service"
	certstore "certifly/internal/certificate/store/certificate"
	logstore "certifly/internal/certificate/store/verificationlog"
	"certifly/internal/integrations/documents"
	"certifly/internal/integrations/ledger"
	"certifly/internal/integrations/minting"
	"certifly/internal/integrations/oracle"
	jwttoken "certifly/internal/jwt_token"
	"certifly/internal/platform/config"
	"certifly/internal/platform/kafka"
	"certifly/internal/platform/metrics"
	"certifly/internal/platform/postgres"
	redisclient "certifly/internal/platform/redis"
	ratelimitmetrics "certifly/internal/ratelimit/metrics"
	ratelimitmw "certifly/internal/ratelimit/middleware"
	rlmodels "certifly/internal/ratelimit/models"
	"certifly/internal/ratelimit/store/bucket"
	httptransport "certifly/internal/transport/http"
	"certifly/pkg/platform/audit"
	"certifly/pkg/platform/audit/publisher"
	auditmemory "certifly/pkg/platform/audit/store/memory"
	auditpostgres "certifly/pkg/platform/audit/store/postgres"
	"certifly/pkg/platform/circuit"
)

const (
	auditBufferSize      = 1024
	kafkaPartitions      = 3
	kafkaReplication     = 1
	revocationPurgeEvery = time.Hour
	bucketSweepEvery     = 5 * time.Minute
)

// app is the fully wired process. Zero-valued backends mean the in-memory
// implementation was selected.
type app struct {
	handler http.Handler
	pgTRL   *revocation.PostgresTRL
	buckets *bucket.InMemoryBucketStore
	closers []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

type userStore interface {
	authservice.UserStore
	ports.UserLookup
}

type revocationList interface {
	authservice.RevocationList
	jwttoken.RevocationList
}

func build(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if db != nil {
		a.closers = append(a.closers, func() { _ = db.Close() })
		if err := postgres.Migrate(ctx, db, log); err != nil {
			return nil, err
		}
	}

	rc, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	if rc != nil {
		a.closers = append(a.closers, func() { _ = rc.Close() })
		rc.RegisterPoolMetrics(reg)
	}

	var sinks []audit.Sink
	if db != nil {
		sinks = append(sinks, auditpostgres.New(db))
	} else {
		sinks = append(sinks, auditmemory.NewInMemoryStore())
	}
	producer, err := kafka.NewProducer(cfg.Kafka, log)
	if err != nil {
		return nil, err
	}
	if producer != nil {
		a.closers = append(a.closers, producer.Close)
		if err := producer.EnsureTopic(ctx, kafkaPartitions, kafkaReplication); err != nil {
			return nil, err
		}
		sinks = append(sinks, kafka.NewAuditSink(producer))
	}
	auditPub := publisher.NewFanout(sinks,
		publisher.WithAsyncBuffer(auditBufferSize),
		publisher.WithLogger(log),
	)
	a.closers = append(a.closers, auditPub.Close)

	var (
		users userStore
		certs certservice.CertificateStore
		logs  certservice.LogStore
		tx    certservice.Transactor
	)
	if db != nil {
		users = userstore.NewPostgres(db)
		certs = certstore.NewPostgres(db)
		logs = logstore.NewPostgres(db)
		tx = newPostgresTx(db)
	} else {
		log.WarnContext(ctx, "database.url not set, using in-memory stores")
		users = userstore.New()
		certs = certstore.New()
		logs = logstore.New()
	}

	var trl revocationList
	switch {
	case rc != nil:
		trl = revocation.NewRedisTRL(rc.Client)
	case db != nil:
		a.pgTRL = revocation.NewPostgresTRL(db)
		trl = a.pgTRL
	default:
		trl = revocation.NewInMemoryTRL()
	}

	docs, err := buildDocuments(ctx, cfg.Storage, log)
	if err != nil {
		return nil, err
	}

	jwtSvc := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	authSvc, err := authservice.New(users, jwtSvc, signature.New(log),
		authservice.WithLogger(log),
		authservice.WithAuditPublisher(auditPub),
		authservice.WithMetrics(metrics.New(reg)),
		authservice.WithRevocationList(trl),
		authservice.WithSessionTTL(cfg.Auth.SessionTTL),
	)
	if err != nil {
		return nil, fmt.Errorf("build auth service: %w", err)
	}

	certSvc, err := certservice.New(certs, logs, certservice.Config{
		PublicVerifyBaseURL: cfg.Storage.VerifyBaseURL,
		MaxDocumentBytes:    cfg.Storage.MaxDocumentSize,
		OracleTimeout:       cfg.Oracle.Timeout,
		LedgerTimeout:       cfg.Ledger.Timeout,
		MinterTimeout:       cfg.Minter.Timeout,
	},
		certservice.WithLogger(log),
		certservice.WithMetrics(certmetrics.New(reg)),
		certservice.WithAuditPublisher(auditPub),
		certservice.WithDocumentStore(docs),
		certservice.WithOracle(buildOracle(cfg.Oracle, log)),
		certservice.WithLedger(buildLedger(cfg.Ledger, log)),
		certservice.WithMinter(buildMinter(cfg.Minter, log)),
		certservice.WithUserLookup(users),
		certservice.WithTransactor(tx),
	)
	if err != nil {
		return nil, fmt.Errorf("build certificate service: %w", err)
	}

	var bucketStore ratelimitmw.BucketStore
	if rc != nil {
		bucketStore = bucket.NewRedisBucketStore(rc.Client)
	} else {
		a.buckets = bucket.NewInMemoryBucketStore()
		bucketStore = a.buckets
	}
	limiter := ratelimitmw.New(bucketStore, log,
		ratelimitmw.WithDisabled(cfg.RateLimit.Disabled),
		ratelimitmw.WithMetrics(ratelimitmetrics.New(reg)),
		ratelimitmw.WithLimit(rlmodels.ClassAuth, perMinute(cfg.RateLimit.AuthPerMinute)),
		ratelimitmw.WithLimit(rlmodels.ClassRead, perMinute(cfg.RateLimit.ReadPerMinute)),
		ratelimitmw.WithLimit(rlmodels.ClassWrite, perMinute(cfg.RateLimit.WritePerMinute)),
	)

	readiness := map[string]httptransport.ReadinessCheck{}
	if db != nil {
		readiness["postgres"] = db.PingContext
	}
	if rc != nil {
		readiness["redis"] = rc.Health
	}

	a.handler = httptransport.NewRouter(httptransport.Deps{
		Logger:     log,
		Gatherer:   reg,
		Validator:  jwttoken.NewJWTServiceAdapter(jwtSvc),
		Revocation: jwttoken.NewRevocationCheckerAdapter(trl),
		Auth:       authhandler.New(authSvc, log),
		Features: []httptransport.Registrar{
			certhandler.New(certSvc, log, cfg.Storage.MaxDocumentSize),
		},
		Readiness:   readiness,
		RateLimiter: limiter,
	})
	ok = true
	return a, nil
}

func buildDocuments(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (ports.DocumentStore, error) {
	if cfg.Bucket == "" {
		log.WarnContext(ctx, "storage.bucket not set, using in-memory document store")
		return documents.NewMemory(cfg.PublicBaseURL), nil
	}
	return documents.NewS3(ctx, cfg)
}

func buildOracle(cfg config.UpstreamConfig, log *slog.Logger) ports.Oracle {
	if cfg.BaseURL == "" {
		log.Warn("oracle.baseURL not set, every certificate verifies locally")
		return oracle.NewFake()
	}
	breaker := circuit.New("oracle")
	return oracle.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout,
		oracle.WithBreaker(breaker),
		oracle.WithLogger(log),
	)
}

func buildLedger(cfg config.UpstreamConfig, log *slog.Logger) ports.LedgerUploader {
	if cfg.BaseURL == "" {
		log.Warn("ledger.baseURL not set, documents are anchored in memory")
		return ledger.NewMemory()
	}
	return ledger.NewBundlrUploader(cfg.BaseURL, cfg.GatewayURL, cfg.APIKey, cfg.Timeout)
}

func buildMinter(cfg config.UpstreamConfig, log *slog.Logger) ports.Minter {
	if cfg.BaseURL == "" {
		log.Warn("minter.baseURL not set, mint identifiers are derived locally")
		return minting.NewFake()
	}
	return minting.NewClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout)
}

func perMinute(n int) rlmodels.Limit {
	return rlmodels.Limit{Requests: n, Window: time.Minute}
}
