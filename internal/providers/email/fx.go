package email

import (
	"github.com/sortelabs/promo/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("providers.email",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config) (Provider, error) {
	if cfg.Email.SMTPHost == "" {
		return &NoOpProvider{}, nil
	}
	return NewSMTP(Config{
		Host:            cfg.Email.SMTPHost,
		Port:            cfg.Email.SMTPPort,
		Username:        cfg.Email.SMTPUsername,
		Password:        cfg.Email.SMTPPassword,
		From:            cfg.Email.SMTPFrom,
		CampaignName:    cfg.CampaignName,
		FrontendBaseURL: cfg.FrontendBaseURL,
	})
}
