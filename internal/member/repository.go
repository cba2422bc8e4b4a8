package member

import "context"

type Repository interface {
	Create(ctx context.Context, m *TeamMember) error
	Get(ctx context.Context, id string) (*TeamMember, error)
	List(ctx context.Context) ([]*TeamMember, error)
	Update(ctx context.Context, m *TeamMember) error
	Delete(ctx context.Context, id string) error
}
