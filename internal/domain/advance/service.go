package advance

import "context"

type AdvanceService interface {
	// Create records an advance after the cap check against the month's gross.
	Create(ctx context.Context, req CreateAdvanceRequest) (AdvanceResponse, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter AdvanceFilter) ([]AdvanceResponse, error)
}
