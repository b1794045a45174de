package sterilization

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	CreateCycle(ctx context.Context, c *Cycle) error
	GetCycle(ctx context.Context, id uuid.UUID) (*Cycle, error)
	UpdateCycle(ctx context.Context, c *Cycle) error
	SearchCycles(ctx context.Context, params map[string]string, limit, offset int) ([]*Cycle, int, error)
	// NextCycleNumber returns the next per-autoclave sequence number for the
	// given day, starting at 1.
	NextCycleNumber(ctx context.Context, autoclave string, day time.Time) (int, error)

	CreatePackage(ctx context.Context, p *Package) error
	GetPackage(ctx context.Context, id uuid.UUID) (*Package, error)
	UpdatePackage(ctx context.Context, p *Package) error
	ListPackagesByCycle(ctx context.Context, cycleID uuid.UUID) ([]*Package, error)
	CountPackagesByStatus(ctx context.Context, status string) (int, error)

	CreateBIResult(ctx context.Context, b *BIResult) error
	UpdateBIResult(ctx context.Context, b *BIResult) error
	ListBIResultsByCycle(ctx context.Context, cycleID uuid.UUID) ([]*BIResult, error)
	CountPendingBIs(ctx context.Context) (int, error)
}
