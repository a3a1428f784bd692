package contract

import (
	"context"

	"ai-webchat-be/internal/entity"
	"ai-webchat-be/internal/repository/specification"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	MarkVerified(ctx context.Context, userId string) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
