package quote_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/quote"
	sqlxrepos "github.com/signquick/signquick/storage/database/sqlx"
	"github.com/signquick/signquick/tests"
)

var errItemInsert = errors.New("disk full")

// flakyRepository fails the nth CreateItem call.
type flakyRepository struct {
	quote.Repository
	failAt int
	calls  int
}

func (r *flakyRepository) CreateItem(ctx context.Context, it quote.Item, exec ...core.DBExecutor) (quote.Item, error) {
	r.calls++
	if r.calls == r.failAt {
		return quote.Item{}, errItemInsert
	}
	return r.Repository.CreateItem(ctx, it, exec...)
}

func newQuote() quote.NewQuote {
	return quote.NewQuote{
		VendorName:  "ACME Signs",
		IsSignQuote: true,
		Items: []quote.NewItem{
			{ProductName: "Vinyl banner", CalcType: "m2", UnitPrice: decimal.NewFromInt(50000), Quantity: decimal.NewFromInt(1), WidthMM: decimal.NewFromInt(1000), HeightMM: decimal.NewFromInt(1000)},
			{ProductName: "Grommets", UnitPrice: decimal.NewFromInt(500), IsFinishing: true, UnitType: "ea"},
		},
	}
}

func TestService_Create_atomic(t *testing.T) {
	db := testutil.PrepareDB(t)
	usr := testutil.CreateUser(t, sqlxrepos.NewUserRepository(db), "printshop", "pwd")
	repo := sqlxrepos.NewQuoteRepository(db)
	ctx := context.Background()

	flaky := &flakyRepository{Repository: repo, failAt: 2}
	svc := quote.NewService(db, flaky, nil, nil, testutil.Config())

	_, err := svc.Create(ctx, usr.ID, newQuote())
	require.Error(t, err)
	assert.Equal(t, errItemInsert, errors.Cause(err))

	n, err := repo.CountQuotes(ctx, usr.ID)
	require.NoError(t, err)
	assert.Zero(t, n, "the quote header is rolled back")

	var items int
	require.NoError(t, db.Get(&items, "SELECT COUNT(*) FROM quote_items"))
	assert.Zero(t, items, "no orphan items")

	t.Run("next quote keeps the numbering", func(t *testing.T) {
		svc := quote.NewService(db, repo, nil, nil, testutil.Config())
		q, err := svc.Create(ctx, usr.ID, newQuote())
		require.NoError(t, err)
		assert.Contains(t, q.QuoteNumber, "-0001")
		require.Len(t, q.Items, 2)

		got, err := repo.GetQuote(ctx, usr.ID, q.ID)
		require.NoError(t, err)
		assert.Len(t, got.Items, 2)
	})
}
