package storage

import (
	"memoria-server/internal/domain"
)

const bytesPerMB = 1024 * 1024

// SizeClassifier decides which storage backend is recommended for a given
// byte size. Pure arithmetic over an immutable policy; no I/O, no failure
// modes. Classify must be called fresh on every upload attempt since the
// byte size can change after compression.
type SizeClassifier struct {
	policy domain.StoragePolicy
}

// NewSizeClassifier creates a classifier bound to the given policy.
func NewSizeClassifier(policy domain.StoragePolicy) *SizeClassifier {
	return &SizeClassifier{policy: policy}
}

// Classify derives the routing decision for a payload of byteSize bytes.
func (c *SizeClassifier) Classify(byteSize int64) domain.SizeClassification {
	sizeMB := float64(byteSize) / bytesPerMB

	classification := domain.SizeClassification{
		SizeMB:           sizeMB,
		NeedsCompression: sizeMB > c.policy.RoutingThresholdMB,
	}

	if sizeMB <= c.policy.RoutingThresholdMB {
		classification.RecommendedProvider = domain.ProviderCDN
		classification.MaxAllowedSizeMB = c.policy.CDNMaxSizeMB
	} else {
		classification.RecommendedProvider = domain.ProviderBulk
		classification.MaxAllowedSizeMB = c.policy.BulkMaxSizeMB
	}

	return classification
}

// Policy returns the thresholds this classifier routes with.
func (c *SizeClassifier) Policy() domain.StoragePolicy {
	return c.policy
}
