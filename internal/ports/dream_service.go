package ports

import "context"

type DreamService interface {
	Add(ctx context.Context, d NewDream) (*DreamRecord, error)
	List(ctx context.Context, ownerID string) ([]DreamRecord, error)
}
