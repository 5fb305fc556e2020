package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/pricing"
	"github.com/signquick/signquick/core/quote"
	"github.com/signquick/signquick/core/sign"
	"github.com/signquick/signquick/core/user"
	"github.com/signquick/signquick/tests"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestUserRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	usr := testutil.CreateUser(t, repo, "printshop", "pwd")
	assert.NotZero(t, usr.ID)

	t.Run("exists", func(t *testing.T) {
		ok, err := repo.UsernameExists(ctx, "printshop")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.UsernameExists(ctx, "PrintShop")
		require.NoError(t, err)
		assert.False(t, ok, "usernames are case sensitive")
	})

	t.Run("unique username", func(t *testing.T) {
		_, err := repo.CreateUser(ctx, user.User{Username: "printshop", PasswordHash: []byte("x"), CreatedAt: time.Now()})
		assert.Error(t, err)
	})

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetUserByUsername(ctx, "printshop")
		require.NoError(t, err)
		assert.Equal(t, usr.ID, got.ID)
		assert.NoError(t, got.CheckPassword("pwd"))

		_, err = repo.GetUserByID(ctx, usr.ID+100)
		assert.Equal(t, user.ErrNotFound, err)
		_, err = repo.GetUserByUsername(ctx, "nobody")
		assert.Equal(t, user.ErrNotFound, err)
	})

	t.Run("update", func(t *testing.T) {
		login := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
		usr.LastLogin = null.TimeFrom(login)
		_, err := repo.UpdateUser(ctx, usr)
		require.NoError(t, err)
		got, err := repo.GetUserByID(ctx, usr.ID)
		require.NoError(t, err)
		require.True(t, got.LastLogin.Valid)
		assert.True(t, got.LastLogin.Time.Equal(login))

		_, err = repo.UpdateUser(ctx, user.User{ID: usr.ID + 100, Username: "ghost"})
		assert.Equal(t, user.ErrNotFound, err)
	})
}

func TestRunInTx(t *testing.T) {
	db := testutil.PrepareDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := core.RunInTx(ctx, db, func(tx core.DBExecutor) error {
		if _, err := repo.CreateUser(ctx, user.User{Username: "rolledback", PasswordHash: []byte("x"), CreatedAt: time.Now()}, tx); err != nil {
			return err
		}
		return boom
	})
	assert.Equal(t, boom, errors.Cause(err))

	ok, err := repo.UsernameExists(ctx, "rolledback")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestQuoteRepository(t *testing.T) {
	db := testutil.PrepareDB(t)
	usrRepo := NewUserRepository(db)
	repo := NewQuoteRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, usrRepo, "printshop", "pwd")
	other := testutil.CreateUser(t, usrRepo, "othershop", "pwd")

	create := func(number, vendor string, createdAt time.Time, total string) quote.Quote {
		q, err := repo.CreateQuote(ctx, quote.Quote{
			UserID:       owner.ID,
			QuoteNumber:  number,
			VendorName:   vendor,
			TotalAmount:  dec(total),
			VATRate:      dec("0.1"),
			VATAmount:    dec(total).Mul(dec("0.1")),
			TotalWithVAT: dec(total).Mul(dec("1.1")),
			IsSignQuote:  true,
			CreatedAt:    createdAt,
		})
		require.NoError(t, err)
		return q
	}

	now := time.Now().UTC().Truncate(time.Second)
	q1 := create("Q-1", "Beta", now.Add(-time.Hour), "270000")
	q2 := create("Q-2", "Alpha", now, "50000")

	it, err := repo.CreateItem(ctx, quote.Item{
		QuoteID:     q1.ID,
		ProductName: "Vinyl banner",
		UnitPrice:   dec("50000"),
		Quantity:    dec("2"),
		TotalPrice:  dec("270000"),
		CalcType:    pricing.Area,
		WidthMM:     dec("3000"),
		HeightMM:    dec("900"),
		AreaM2:      dec("2.7"),
	})
	require.NoError(t, err)
	assert.NotZero(t, it.ID)

	t.Run("count", func(t *testing.T) {
		n, err := repo.CountQuotes(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		n, err = repo.CountQuotes(ctx, other.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	ids := func(quotes []quote.Quote) []int64 {
		res := make([]int64, 0, len(quotes))
		for _, q := range quotes {
			res = append(res, q.ID)
		}
		return res
	}

	t.Run("query ordering", func(t *testing.T) {
		tests := []struct {
			name     string
			ordering []core.DBOrdering
			want     []int64
		}{
			{name: "default: newest first", want: []int64{q2.ID, q1.ID}},
			{name: "vendor", ordering: []core.DBOrdering{{Field: "vendor_name", Ascending: true}}, want: []int64{q2.ID, q1.ID}},
			{name: "-total", ordering: []core.DBOrdering{{Field: "total_amount"}}, want: []int64{q1.ID, q2.ID}},
			{name: "unknown field", ordering: []core.DBOrdering{{Field: "user_id; DROP TABLE quotes", Ascending: true}}, want: []int64{q2.ID, q1.ID}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				quotes, err := repo.QueryQuotes(ctx, owner.ID, tt.ordering)
				require.NoError(t, err)
				assert.Equal(t, tt.want, ids(quotes))
			})
		}
	})

	t.Run("get", func(t *testing.T) {
		got, err := repo.GetQuote(ctx, owner.ID, q1.ID)
		require.NoError(t, err)
		assert.Equal(t, "Q-1", got.QuoteNumber)
		assert.True(t, got.VATRate.Equal(dec("0.1")))
		assert.True(t, got.CreatedAt.Equal(now.Add(-time.Hour)))
		require.Len(t, got.Items, 1)
		assert.Equal(t, pricing.Area, got.Items[0].CalcType)
		assert.True(t, got.Items[0].AreaM2.Equal(dec("2.7")))

		_, err = repo.GetQuote(ctx, other.ID, q1.ID)
		assert.Equal(t, quote.ErrNotFound, err)
	})

	t.Run("delete cascades to items", func(t *testing.T) {
		assert.Equal(t, quote.ErrNotFound, repo.DeleteQuote(ctx, other.ID, q1.ID))
		require.NoError(t, repo.DeleteQuote(ctx, owner.ID, q1.ID))

		var n int
		require.NoError(t, db.Get(&n, db.Rebind("SELECT COUNT(*) FROM quote_items WHERE quote_id = ?"), q1.ID))
		assert.Zero(t, n)
		assert.Equal(t, quote.ErrNotFound, repo.DeleteQuote(ctx, owner.ID, q1.ID))
	})

	t.Run("user delete cascades to quotes", func(t *testing.T) {
		_, err := db.Exec(db.Rebind("DELETE FROM users WHERE id = ?"), owner.ID)
		require.NoError(t, err)
		n, err := repo.CountQuotes(ctx, owner.ID)
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}

func TestSignRepository_scoping(t *testing.T) {
	db := testutil.PrepareDB(t)
	usrRepo := NewUserRepository(db)
	repo := NewSignRepository(db)
	ctx := context.Background()

	owner := testutil.CreateUser(t, usrRepo, "printshop", "pwd")
	other := testutil.CreateUser(t, usrRepo, "othershop", "pwd")

	cat, err := repo.CreateCategory(ctx, sign.Category{UserID: owner.ID, Name: "현수막"})
	require.NoError(t, err)
	sub, err := repo.CreateSubcategory(ctx, sign.Subcategory{CategoryID: cat.ID, Name: "일반 현수막"})
	require.NoError(t, err)
	mat, err := repo.CreateMaterial(ctx, sign.Material{SubcategoryID: sub.ID, Name: "현수막 (일반)", CalcType: pricing.Area, UnitPrice: dec("8000")})
	require.NoError(t, err)

	t.Run("owner", func(t *testing.T) {
		got, err := repo.GetCategoryByName(ctx, owner.ID, "현수막")
		require.NoError(t, err)
		assert.Equal(t, cat.ID, got.ID)

		gotSub, err := repo.GetSubcategoryByName(ctx, cat.ID, "일반 현수막")
		require.NoError(t, err)
		assert.Equal(t, sub.ID, gotSub.ID)

		gotMat, err := repo.GetMaterial(ctx, owner.ID, mat.ID)
		require.NoError(t, err)
		assert.True(t, gotMat.UnitPrice.Equal(dec("8000")))

		mats, err := repo.QueryMaterials(ctx, owner.ID, &sub.ID)
		require.NoError(t, err)
		assert.Len(t, mats, 1)
	})

	t.Run("other user", func(t *testing.T) {
		_, err := repo.GetCategory(ctx, other.ID, cat.ID)
		assert.Equal(t, sign.ErrCategoryNotFound, err)
		_, err = repo.GetCategoryByName(ctx, other.ID, "현수막")
		assert.Equal(t, sign.ErrCategoryNotFound, err)
		_, err = repo.GetSubcategory(ctx, other.ID, sub.ID)
		assert.Equal(t, sign.ErrSubcategoryNotFound, err)
		_, err = repo.GetMaterial(ctx, other.ID, mat.ID)
		assert.Equal(t, sign.ErrMaterialNotFound, err)

		mats, err := repo.QueryMaterials(ctx, other.ID, nil)
		require.NoError(t, err)
		assert.Empty(t, mats)

		assert.Equal(t, sign.ErrMaterialNotFound, repo.DeleteMaterial(ctx, other.ID, mat.ID))
		assert.Equal(t, sign.ErrSubcategoryNotFound, repo.DeleteSubcategory(ctx, other.ID, sub.ID))
	})

	t.Run("counts", func(t *testing.T) {
		n, err := repo.CountCategories(ctx, owner.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		n, err = repo.CountSubcategories(ctx, cat.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
		n, err = repo.CountMaterials(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}
