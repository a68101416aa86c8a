package domain

import (
	"context"
	"errors"
)

type Service interface {
	// TryMyLuck runs one draw attempt for the client identified by its
	// session token.
	TryMyLuck(ctx context.Context, clientToken string) (DrawResult, error)
}

var (
	ErrClientNotFound = errors.New("client_not_found")
	ErrNoOpportunity  = errors.New("no_opportunity")
	ErrClaimInFlight  = errors.New("claim_in_flight")
)
