package config

import (
	"fmt"

	"memoria-server/internal/domain"
	"memoria-server/internal/repository"
	"memoria-server/internal/service"
	"memoria-server/internal/storage"
	"memoria-server/internal/viewer"
	"memoria-server/pkg/logger"
)

// Container wires configuration, clients, repositories and services.
type Container struct {
	config            domain.Config
	logger            domain.Logger
	supabaseClient    domain.SupabaseClient
	loader            *viewer.Loader
	brochureService   domain.BrochureService
	funeralService    domain.FuneralService
	condolenceService domain.CondolenceService
	donationService   domain.DonationService
}

// NewContainer builds the full dependency graph.
func NewContainer() (*Container, error) {
	cfg := NewConfig()
	log := logger.NewLogger(cfg.GetLogLevel())

	supabaseClient := repository.NewSupabaseClient(cfg, log)
	if err := supabaseClient.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing supabase client: %w", err)
	}

	// Storage pipeline: classifier routes by size, compressor shrinks
	// oversized PDFs, orchestrator walks the provider fallback chain.
	policy := cfg.GetStoragePolicy()
	classifier := storage.NewSizeClassifier(policy)
	compressor := storage.NewCompressor(storage.NewPdfcpuRewriter(), log)

	cdnAdapter := storage.NewCDNAdapter(cfg.GetCDNUploadURL(), cfg.GetCDNUploadPreset(), policy, log)
	bulkAdapter := storage.NewBulkAdapter(cfg.GetSupabaseURL(), cfg.GetSupabaseKey(), cfg.GetBulkBucket(), policy, log)

	orchestrator := storage.NewOrchestrator(classifier, compressor, []domain.StorageAdapter{cdnAdapter, bulkAdapter}, log)

	// Repositories
	brochureRepo := repository.NewBrochureRepository(supabaseClient, log)
	funeralRepo := repository.NewFuneralRepository(supabaseClient, log)
	condolenceRepo := repository.NewCondolenceRepository(supabaseClient, log)
	donationRepo := repository.NewDonationRepository(supabaseClient, log)

	// Services
	pageCount := func(pdf []byte) (int, error) {
		raster, err := viewer.NewFitzRasterizer(pdf)
		if err != nil {
			return 0, err
		}
		defer raster.Close()
		return raster.PageCount(), nil
	}

	return &Container{
		config:            cfg,
		logger:            log,
		supabaseClient:    supabaseClient,
		loader:            viewer.NewLoader(),
		brochureService:   service.NewBrochureService(orchestrator, brochureRepo, pageCount, log),
		funeralService:    service.NewFuneralService(funeralRepo, log),
		condolenceService: service.NewCondolenceService(condolenceRepo, log),
		donationService:   service.NewDonationService(donationRepo, log),
	}, nil
}

func (c *Container) GetConfig() domain.Config {
	return c.config
}

func (c *Container) GetLogger() domain.Logger {
	return c.logger
}

func (c *Container) GetSupabaseClient() domain.SupabaseClient {
	return c.supabaseClient
}

func (c *Container) GetLoader() *viewer.Loader {
	return c.loader
}

func (c *Container) GetBrochureService() domain.BrochureService {
	return c.brochureService
}

func (c *Container) GetFuneralService() domain.FuneralService {
	return c.funeralService
}

func (c *Container) GetCondolenceService() domain.CondolenceService {
	return c.condolenceService
}

func (c *Container) GetDonationService() domain.DonationService {
	return c.donationService
}
