package repositoryimpl

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/onboardflow/onboardflow/internal/settings"
	"github.com/onboardflow/onboardflow/pkg/cerr"
	"github.com/onboardflow/onboardflow/pkg/storage"
)

const settingsPath = "settings/app.yaml"

type YAMLRepository struct {
	storage storage.Storage
}

func NewYAMLRepository(s storage.Storage) *YAMLRepository {
	return &YAMLRepository{storage: s}
}

// Load returns stored settings, or defaults when none were saved yet.
func (r *YAMLRepository) Load(ctx context.Context) (*settings.AppSettings, error) {
	data, err := r.storage.Read(ctx, settingsPath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return settings.Default(), nil
		}
		return nil, cerr.WrapStorageReadError("settings", err)
	}
	var s settings.AppSettings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to unmarshal settings: %w", err))
	}
	if s.WorkflowDeadlines == nil {
		s.WorkflowDeadlines = map[string]int{}
	}
	return &s, nil
}

func (r *YAMLRepository) Save(ctx context.Context, s *settings.AppSettings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to marshal settings: %w", err))
	}
	if err := r.storage.Write(ctx, settingsPath, data); err != nil {
		return cerr.WrapStorageWriteError("settings", err)
	}
	return nil
}
