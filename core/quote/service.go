// Package quote prices, stores, renders and mails quotes.
package quote

import (
	"bytes"
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/pricing"
)

var (
	ErrNotFound = core.NewNotFoundError("quote not found")

	mailTemplate = "quote"
	nowFunc      = time.Now // mockable
)

type (
	Repository interface {
		CountQuotes(ctx context.Context, userID int64, exec ...core.DBExecutor) (int, error)
		CreateQuote(ctx context.Context, q Quote, exec ...core.DBExecutor) (Quote, error)
		CreateItem(ctx context.Context, it Item, exec ...core.DBExecutor) (Item, error)
		// QueryQuotes returns the quote headers, without items.
		QueryQuotes(ctx context.Context, userID int64, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Quote, error)
		// GetQuote returns the quote with its items.
		GetQuote(ctx context.Context, userID, id int64, exec ...core.DBExecutor) (Quote, error)
		DeleteQuote(ctx context.Context, userID, id int64, exec ...core.DBExecutor) error
	}

	// Renderer produces the quote documents.
	Renderer interface {
		PDF(q Quote) ([]byte, error)
		Excel(q Quote) ([]byte, error)
	}

	Service struct {
		db             core.DB
		repo           Repository
		renderer       Renderer
		mailSvc        core.EmailService
		appName        string
		defaultVATRate decimal.Decimal
	}
)

func NewService(db core.DB, repo Repository, renderer Renderer, mailSvc core.EmailService, conf *core.Config) *Service {
	rate := conf.DefaultVATRate
	if rate.IsZero() {
		rate = pricing.DefaultVATRate
	}
	return &Service{
		db:             db,
		repo:           repo,
		renderer:       renderer,
		mailSvc:        mailSvc,
		appName:        conf.AppName,
		defaultVATRate: rate,
	}
}

// Preview prices a validated NewQuote without storing it.
func (svc *Service) Preview(nq NewQuote) (Quote, error) {
	q, err := Calculate(nq, svc.defaultVATRate)
	if err != nil {
		return Quote{}, err
	}
	q.CreatedAt = nowFunc().UTC()
	return q, nil
}

// Create prices a validated NewQuote and stores it with its items atomically.
func (svc *Service) Create(ctx context.Context, userID int64, nq NewQuote) (Quote, error) {
	q, err := Calculate(nq, svc.defaultVATRate)
	if err != nil {
		return Quote{}, err
	}
	q.UserID = userID
	q.CreatedAt = nowFunc().UTC()

	err = core.RunInTx(ctx, svc.db, func(tx core.DBExecutor) error {
		cnt, err := svc.repo.CountQuotes(ctx, userID, tx)
		if err != nil {
			return errors.Wrap(err, "counting quotes")
		}
		q.QuoteNumber = pricing.QuoteNumber(q.CreatedAt, cnt)

		items := q.Items
		if q, err = svc.repo.CreateQuote(ctx, q, tx); err != nil {
			return errors.Wrap(err, "inserting quote")
		}
		q.Items = make([]Item, 0, len(items))
		for _, it := range items {
			it.QuoteID = q.ID
			if it, err = svc.repo.CreateItem(ctx, it, tx); err != nil {
				return errors.Wrap(err, "inserting quote item")
			}
			q.Items = append(q.Items, it)
		}
		return nil
	})
	if err != nil {
		return Quote{}, err
	}
	return q, nil
}

// List returns the user's quotes, newest first unless ordering says otherwise.
func (svc *Service) List(ctx context.Context, userID int64, ordering []core.DBOrdering) ([]Quote, error) {
	return svc.repo.QueryQuotes(ctx, userID, ordering)
}

func (svc *Service) Get(ctx context.Context, userID, id int64) (Quote, error) {
	return svc.repo.GetQuote(ctx, userID, id)
}

// Delete removes the quote and its items.
func (svc *Service) Delete(ctx context.Context, userID, id int64) error {
	return svc.repo.DeleteQuote(ctx, userID, id)
}

func (svc *Service) PDF(ctx context.Context, userID, id int64) (Quote, []byte, error) {
	q, err := svc.Get(ctx, userID, id)
	if err != nil {
		return Quote{}, nil, err
	}
	doc, err := svc.renderer.PDF(q)
	return q, doc, errors.Wrap(err, "rendering pdf")
}

func (svc *Service) Excel(ctx context.Context, userID, id int64) (Quote, []byte, error) {
	q, err := svc.Get(ctx, userID, id)
	if err != nil {
		return Quote{}, nil, err
	}
	doc, err := svc.renderer.Excel(q)
	return q, doc, errors.Wrap(err, "rendering xlsx")
}

// Send mails the quote PDF to the validated SendRequest's recipient.
func (svc *Service) Send(ctx context.Context, userID, id int64, sr SendRequest) error {
	to, err := sr.Address()
	if err != nil {
		return core.NewFieldError("to", "to must be a valid email address")
	}

	q, doc, err := svc.PDF(ctx, userID, id)
	if err != nil {
		return err
	}

	msg := &core.EmailMessage{
		To:           []mail.Address{to},
		Subject:      fmt.Sprintf("Quote %s for %s", q.QuoteNumber, q.VendorName),
		TemplateName: mailTemplate,
		TemplateData: MailData{
			AppName:      svc.appName,
			Number:       q.QuoteNumber,
			VendorName:   q.VendorName,
			Message:      sr.Message,
			TotalAmount:  pricing.FormatAmount(q.TotalAmount),
			IsSignQuote:  q.IsSignQuote,
			VATAmount:    pricing.FormatAmount(q.VATAmount),
			TotalWithVAT: pricing.FormatAmount(q.TotalWithVAT),
		},
	}
	if err := msg.Attach(bytes.NewReader(doc), q.QuoteNumber+".pdf", "application/pdf"); err != nil {
		return errors.Wrap(err, "attaching pdf")
	}
	svc.mailSvc.SendMessages(msg)
	return nil
}
