package settings

import "context"

type Repository interface {
	Load(ctx context.Context) (*AppSettings, error)
	Save(ctx context.Context, s *AppSettings) error
}
