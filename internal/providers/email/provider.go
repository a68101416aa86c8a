package email

import "context"

// Provider sends campaign notifications to participants.
type Provider interface {
	SendWelcome(ctx context.Context, to, name string) error
	SendSecurityAuthorization(ctx context.Context, to, name, token string) error
	SendVoucherWinner(ctx context.Context, to, name, coupon string) error
	SendAdjustmentVoucher(ctx context.Context, to, name, coupon string) error
	SendDrawWinner(ctx context.Context, to, name string) error
}

type NoOpProvider struct{}

func (p *NoOpProvider) SendWelcome(ctx context.Context, to, name string) error {
	return nil
}

func (p *NoOpProvider) SendSecurityAuthorization(ctx context.Context, to, name, token string) error {
	return nil
}

func (p *NoOpProvider) SendVoucherWinner(ctx context.Context, to, name, coupon string) error {
	return nil
}

func (p *NoOpProvider) SendAdjustmentVoucher(ctx context.Context, to, name, coupon string) error {
	return nil
}

func (p *NoOpProvider) SendDrawWinner(ctx context.Context, to, name string) error {
	return nil
}
