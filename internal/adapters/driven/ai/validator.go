package ai

import (
	"context"

	"github.com/custodia-labs/rfpvault/internal/core/domain"
	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator builds a throwaway service from settings and checks that
// it answers. Used by `rfpvault settings validate`.
type ConfigValidator struct{}

func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

func (v *ConfigValidator) ValidateEmbedding(cfg *domain.EmbeddingSettings) error {
	svc, err := NewEmbedder(cfg)
	if err != nil || svc == nil {
		return err
	}
	defer svc.Close()
	return ping(context.Background(), svc)
}

// ValidateNER loads local models and releases them; remote ones are pinged.
func (v *ConfigValidator) ValidateNER(cfg *domain.NERSettings) error {
	model, err := NewEntityModel(cfg, nil)
	if err != nil || model == nil {
		return err
	}
	defer model.Close()
	return ping(context.Background(), model)
}
