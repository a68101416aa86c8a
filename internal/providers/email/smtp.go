package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"

	gomail "gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

type Config struct {
	Host            string
	Port            int
	Username        string
	Password        string
	From            string
	CampaignName    string
	FrontendBaseURL string
}

type SMTPProvider struct {
	cfg       Config
	dialer    *gomail.Dialer
	templates *template.Template
}

func NewSMTP(cfg Config) (*SMTPProvider, error) {
	templates, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}
	return &SMTPProvider{
		cfg:       cfg,
		dialer:    gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		templates: templates,
	}, nil
}

func (p *SMTPProvider) SendWelcome(ctx context.Context, to, name string) error {
	return p.send(ctx, to, fmt.Sprintf("Bem-vindo à %s", p.cfg.CampaignName), "welcome.html", map[string]any{
		"Name":         name,
		"CampaignName": p.cfg.CampaignName,
	})
}

func (p *SMTPProvider) SendSecurityAuthorization(ctx context.Context, to, name, token string) error {
	link := p.cfg.FrontendBaseURL + "/consentir-alteracao-seguranca?q=" + token
	return p.send(ctx, to, "Notificação de Segurança Importante", "security_authorization.html", map[string]any{
		"Name":              name,
		"CampaignName":      p.cfg.CampaignName,
		"AuthorizationLink": link,
	})
}

func (p *SMTPProvider) SendVoucherWinner(ctx context.Context, to, name, coupon string) error {
	return p.send(ctx, to, "Código premiado "+p.cfg.CampaignName, "voucher_winner.html", map[string]any{
		"Name":         name,
		"Coupon":       coupon,
		"CampaignName": p.cfg.CampaignName,
	})
}

func (p *SMTPProvider) SendAdjustmentVoucher(ctx context.Context, to, name, coupon string) error {
	return p.send(ctx, to, "Ajuste de código premiado", "adjustment_voucher.html", map[string]any{
		"Name":         name,
		"Coupon":       coupon,
		"CampaignName": p.cfg.CampaignName,
	})
}

func (p *SMTPProvider) SendDrawWinner(ctx context.Context, to, name string) error {
	return p.send(ctx, to, "Você foi sorteado!", "draw_winner.html", map[string]any{
		"Name":         name,
		"CampaignName": p.cfg.CampaignName,
	})
}

func (p *SMTPProvider) send(ctx context.Context, to, subject, templateName string, data map[string]any) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	var body bytes.Buffer
	if err := p.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return fmt.Errorf("failed to render template %s: %w", templateName, err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", fmt.Sprintf("[%s] <%s>", p.cfg.CampaignName, p.cfg.From))
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body.String())

	return p.dialer.DialAndSend(msg)
}
