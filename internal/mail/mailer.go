package mail

import (
	"context"

	log "github.com/sirupsen/logrus"
	gomail "gopkg.in/gomail.v2"

	"github.com/vladislavdragonenkov/payment-relay/internal/domain"
)

// Config — SMTP-учётка почтового транспорта.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	// From — адрес отправителя; по умолчанию совпадает с Username.
	From string
}

// Complete сообщает, достаточно ли конфигурации для отправки писем.
func (c Config) Complete() bool {
	return c.Host != "" && c.Port > 0 && c.Username != "" && c.Password != ""
}

// SMTPSender доставляет письма через gomail. Одна попытка на письмо,
// ретраи и backoff сознательно не реализованы.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	logger *log.Entry
}

// NewSMTPSender создаёт SMTP-транспорт. Возвращает ErrMailNotConfigured,
// если учётка неполная: лучше упасть на старте, чем на первом письме.
func NewSMTPSender(cfg Config) (*SMTPSender, error) {
	if !cfg.Complete() {
		return nil, domain.ErrMailNotConfigured
	}

	from := cfg.From
	if from == "" {
		from = cfg.Username
	}

	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   from,
		logger: log.WithField("component", "smtp-sender"),
	}, nil
}

// Send доставляет одно письмо. gomail не принимает context, поэтому
// отмена проверяется только до начала доставки.
func (s *SMTPSender) Send(ctx context.Context, msg domain.MailMessage) error {
	if msg.To == "" {
		return domain.ErrMailRecipientRequired
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTML)

	if err := s.dialer.DialAndSend(m); err != nil {
		s.logger.WithError(err).WithField("to", msg.To).Warn("mail delivery failed")
		return err
	}

	return nil
}

// DisabledSender подставляется, когда SMTP не сконфигурирован:
// каждая попытка отправки сразу завершается описательной ошибкой.
type DisabledSender struct{}

// Send всегда возвращает ErrMailNotConfigured.
func (DisabledSender) Send(context.Context, domain.MailMessage) error {
	return domain.ErrMailNotConfigured
}

var (
	_ domain.MailSender = (*SMTPSender)(nil)
	_ domain.MailSender = DisabledSender{}
)
