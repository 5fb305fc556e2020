package sign_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/signquick/signquick/core"
	"github.com/signquick/signquick/core/pricing"
	"github.com/signquick/signquick/core/sign"
	docsvc "github.com/signquick/signquick/services/document"
	sqlxrepos "github.com/signquick/signquick/storage/database/sqlx"
	"github.com/signquick/signquick/tests"
)

func setup(t *testing.T) (*sign.Service, *sqlx.DB, int64) {
	db := testutil.PrepareDB(t)
	usr := testutil.CreateUser(t, sqlxrepos.NewUserRepository(db), "printshop", "pwd")
	return sign.NewService(db, sqlxrepos.NewSignRepository(db), docsvc.NewSheetCodec()), db, usr.ID
}

func TestService_SeedDefaults(t *testing.T) {
	svc, db, userID := setup(t)
	ctx := context.Background()

	seed := func() {
		t.Helper()
		err := core.RunInTx(ctx, db, func(tx core.DBExecutor) error {
			return svc.SeedDefaults(ctx, tx, userID)
		})
		require.NoError(t, err)
	}

	seed()
	cats, err := svc.QueryCategories(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cats, 15)
	assert.Equal(t, "현수막", cats[0].Name)

	opts, err := svc.QueryFinishingOptions(ctx, userID)
	require.NoError(t, err)
	require.Len(t, opts, 8)
	assert.Equal(t, pricing.Each, opts[0].UnitType)
	assert.True(t, opts[0].IsActive)

	// seeding again leaves existing data alone
	seed()
	cats, err = svc.QueryCategories(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, cats, 15)
	opts, err = svc.QueryFinishingOptions(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, opts, 8)
}

func TestService_BulkImport(t *testing.T) {
	svc, _, userID := setup(t)
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		_, err := svc.BulkImport(ctx, userID, nil)
		assert.Equal(t, sign.ErrNothingToImport, err)
	})

	var rows []sign.ImportRow
	require.NoError(t, json.Unmarshal([]byte(`[
		{"category_name": "배너", "subcategory_name": "X배너", "name": "X배너 600x1800", "calc_type": "UNIT", "unit_price": 25000},
		{"category_name": "배너", "subcategory_name": "X배너", "name": "X배너 거치대", "calc_type": "weird", "unit_price": "8000", "note": " stand "},
		{"category_name": "배너", "subcategory_name": "", "name": "nameless"},
		{"category_name": "배너", "subcategory_name": "롤업", "name": "롤업 850", "unit_price": "-1"},
		{"category_name": "배너", "subcategory_name": "롤업", "name": "롤업 1000", "unit_price": null}
	]`), &rows))

	res, err := svc.BulkImport(ctx, userID, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Success)
	assert.Equal(t, []string{
		"row 4: category, subcategory and material name are required",
		"row 5 (롤업 850): invalid unit price",
		"row 6 (롤업 1000): invalid unit price",
	}, res.Errors)

	cats, err := svc.QueryCategories(ctx, userID)
	require.NoError(t, err)
	require.Len(t, cats, 1, "one category per name")

	subs, err := svc.QuerySubcategories(ctx, userID, &cats[0].ID)
	require.NoError(t, err)
	require.Len(t, subs, 1, "rows with errors create nothing")

	mats, err := svc.QueryMaterials(ctx, userID, &subs[0].ID)
	require.NoError(t, err)
	require.Len(t, mats, 2)
	byName := map[string]sign.Material{mats[0].Name: mats[0], mats[1].Name: mats[1]}
	assert.Equal(t, pricing.Unit, byName["X배너 600x1800"].CalcType)
	assert.Equal(t, "25000", byName["X배너 600x1800"].UnitPrice.String())
	assert.Equal(t, pricing.Unit, byName["X배너 거치대"].CalcType, "unknown calc types fall back to unit")
	assert.Equal(t, "stand", byName["X배너 거치대"].Note)

	t.Run("reuses existing category and subcategory", func(t *testing.T) {
		res, err := svc.BulkImport(ctx, userID, []sign.ImportRow{
			{CategoryName: "배너", SubcategoryName: "X배너", Name: "X배너 고급", CalcType: "m2", UnitPrice: "12000"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Success)
		assert.Empty(t, res.Errors)

		subs, err := svc.QuerySubcategories(ctx, userID, nil)
		require.NoError(t, err)
		assert.Len(t, subs, 1)
		mats, err := svc.QueryMaterials(ctx, userID, nil)
		require.NoError(t, err)
		assert.Len(t, mats, 3)
	})
}

func TestCell_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: `"  abc "`, want: "abc"},
		{in: `12000`, want: "12000"},
		{in: `1.5`, want: "1.5"},
		{in: `null`, want: ""},
		{in: `true`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var c sign.Cell
			err := json.Unmarshal([]byte(tt.in), &c)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, c.String())
		})
	}
}
