package storage

import (
	"context"
	"time"

	"memoria-server/internal/domain"
)

// attemptTimeout bounds a single provider attempt. A timed-out attempt is
// a provider failure and the next candidate is tried.
const attemptTimeout = 30 * time.Second

// Orchestrator is the upload decision engine: classify, compress when the
// routing threshold is exceeded, then walk an ordered candidate list of
// adapters until one succeeds.
//
// Attempts run strictly sequentially. A successful early attempt
// short-circuits the remaining network calls, which also avoids storing
// the same content under two providers.
type Orchestrator struct {
	classifier *SizeClassifier
	compressor *Compressor
	adapters   []domain.StorageAdapter
	logger     domain.Logger
}

// NewOrchestrator wires the upload pipeline. The adapter order given here
// is the configured provider priority; the classifier's recommendation is
// moved to the front per call.
func NewOrchestrator(
	classifier *SizeClassifier,
	compressor *Compressor,
	adapters []domain.StorageAdapter,
	logger domain.Logger,
) *Orchestrator {
	return &Orchestrator{
		classifier: classifier,
		compressor: compressor,
		adapters:   adapters,
		logger:     logger,
	}
}

// UploadSmart runs the full pipeline for one candidate payload.
//
// Two calls with identical bytes produce two independent stored objects at
// two generated paths; uploads are not content-addressed.
func (o *Orchestrator) UploadSmart(ctx context.Context, candidate domain.UploadCandidate, routingHint string) (*domain.UploadResult, error) {
	if candidate.MediaType != "application/pdf" {
		return nil, &domain.UnsupportedTypeError{MediaType: candidate.MediaType}
	}

	working := candidate.Data
	classification := o.classifier.Classify(candidate.Size())

	var compressionInfo *domain.CompressionOutcome
	if classification.NeedsCompression {
		outcome, compressed, err := o.compressor.Compress(ctx, working, o.classifier.Policy().RoutingThresholdMB)
		if err != nil {
			return nil, err
		}
		working = compressed
		compressionInfo = &outcome

		// Routing must follow the post-compression size, not the stale
		// classification computed before the bytes changed.
		classification = o.classifier.Classify(int64(len(working)))

		o.logger.Info("Brochure compressed before upload",
			"original_size", outcome.OriginalSize,
			"compressed_size", outcome.CompressedSize,
			"recommended", classification.RecommendedProvider,
		)
	} else {
		compressionInfo = &domain.CompressionOutcome{
			OriginalSize:   candidate.Size(),
			CompressedSize: candidate.Size(),
			Ratio:          1.0,
			WasCompressed:  false,
		}
	}

	candidates := o.candidateList(classification.RecommendedProvider, int64(len(working)))

	attempts := make([]*domain.ProviderError, 0, len(candidates))
	for _, adapter := range candidates {
		stored, err := adapter.Store(ctx, working, routingHint)
		if err == nil {
			return &domain.UploadResult{
				URL:             stored.URL,
				Provider:        stored.Provider,
				CompressionInfo: compressionInfo,
				Metadata:        stored.Metadata,
			}, nil
		}

		providerErr, ok := err.(*domain.ProviderError)
		if !ok {
			providerErr = &domain.ProviderError{Provider: adapter.Provider(), Cause: err}
		}
		attempts = append(attempts, providerErr)
		o.logger.Warn("Storage provider attempt failed",
			"provider", adapter.Provider(),
			"error", providerErr.Cause,
		)
	}

	return nil, &domain.AllProvidersFailedError{Attempts: attempts}
}

// candidateList orders adapters as [recommended, others...], excluding the
// CDN entirely while the current byte size exceeds its hard ceiling. Never
// attempt a provider that is certain to reject by precondition.
func (o *Orchestrator) candidateList(recommended domain.Provider, currentSize int64) []domain.StorageAdapter {
	cdnEligible := float64(currentSize)/bytesPerMB <= o.classifier.Policy().CDNMaxSizeMB

	ordered := make([]domain.StorageAdapter, 0, len(o.adapters))
	for _, adapter := range o.adapters {
		if adapter.Provider() == domain.ProviderCDN && !cdnEligible {
			continue
		}
		if adapter.Provider() == recommended {
			ordered = append([]domain.StorageAdapter{adapter}, ordered...)
		} else {
			ordered = append(ordered, adapter)
		}
	}
	return ordered
}
