package permission

import (
	"context"

	"github.com/askdex/askdex/internal/domain"
)

// Checker asks the authorization service for a single access decision.
type Checker interface {
	CanAccess(ctx context.Context, identity domain.Identity, passageID string) (bool, error)
}
