package api

import (
	"context"

	"github.com/dev3-labs/assetsnap/snapshot"
	"github.com/google/uuid"
)

//go:generate mockgen -source interfaces.go -destination interfaces_mocks.go -package api

// SnapshotService accepts and reports asset snapshots. It is implemented by
// *snapshot.Queue.
type SnapshotService interface {
	Submit(ctx context.Context, params snapshot.CreateParams) (uuid.UUID, error)
	GetByID(ctx context.Context, id uuid.UUID) (*snapshot.FullSnapshot, bool, error)
	GetAllByProjectAndStatuses(ctx context.Context, projectID uuid.UUID, statuses []snapshot.Status) ([]snapshot.FullSnapshot, error)
}
