package tests

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/signquick/signquick/core/pricing"
	"github.com/signquick/signquick/core/quote"
	"github.com/signquick/signquick/services/email"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDec(t *testing.T, want string, got decimal.Decimal, msg string) {
	t.Helper()
	assert.True(t, got.Equal(dec(want)), "%s = %s; want %s", msg, got, want)
}

func bannerQuote() quote.NewQuote {
	return quote.NewQuote{
		VendorName:  "ACME Signs",
		Note:        "front entrance",
		IsSignQuote: true,
		Items: []quote.NewItem{
			{ProductName: "Vinyl banner", Spec: "outdoor", CalcType: "m2", UnitPrice: dec("50000"), Quantity: dec("2"), WidthMM: dec("3000"), HeightMM: dec("900")},
		},
	}
}

func Test_quoteApi_create(t *testing.T) {
	app := setup(t)
	_, token := app.createUser(t, "printshop")
	_, otherToken := app.createUser(t, "othershop")

	t.Run("m2 sign quote with default vat", func(t *testing.T) {
		var q quote.Quote
		app.doJSON(t, http.MethodPost, "/api/quotes", token, bannerQuote(), http.StatusCreated, &q)

		assert.NotZero(t, q.ID)
		assert.Equal(t, fmt.Sprintf("Q-%s-0001", time.Now().UTC().Format("20060102")), q.QuoteNumber)
		assert.Equal(t, "ACME Signs", q.VendorName)
		assertDec(t, "270000", q.TotalAmount, "total_amount")
		assertDec(t, "0.1", q.VATRate, "vat_rate")
		assertDec(t, "27000", q.VATAmount, "vat_amount")
		assertDec(t, "297000", q.TotalWithVAT, "total_with_vat")

		require.Len(t, q.Items, 1)
		assert.Equal(t, q.ID, q.Items[0].QuoteID)
		assertDec(t, "2.7", q.Items[0].AreaM2, "area_m2")
		assertDec(t, "270000", q.Items[0].TotalPrice, "total_price")
	})

	t.Run("char quote without vat", func(t *testing.T) {
		var q quote.Quote
		app.doJSON(t, http.MethodPost, "/api/quotes", token, quote.NewQuote{
			VendorName: "ACME Signs",
			Items: []quote.NewItem{
				{ProductName: "Channel letters", CalcType: "CHAR", UnitPrice: dec("5000"), Quantity: dec("1"), CharCount: 10},
			},
		}, http.StatusCreated, &q)

		assert.True(t, strings.HasSuffix(q.QuoteNumber, "-0002"), q.QuoteNumber)
		assert.Equal(t, pricing.Char, q.Items[0].CalcType)
		assertDec(t, "50000", q.TotalAmount, "total_amount")
		assertDec(t, "0", q.VATAmount, "vat_amount")
		assertDec(t, "50000", q.TotalWithVAT, "total_with_vat")
	})

	t.Run("finishing quantities derive from the base item", func(t *testing.T) {
		rate := dec("0.05")
		var q quote.Quote
		app.doJSON(t, http.MethodPost, "/api/quotes", token, quote.NewQuote{
			VendorName:  "ACME Signs",
			IsSignQuote: true,
			VATRate:     &rate,
			Items: []quote.NewItem{
				{ProductName: "Banner", CalcType: "m2", UnitPrice: dec("10000"), Quantity: dec("1"), WidthMM: dec("1000"), HeightMM: dec("1000")},
				{ProductName: "Coating", UnitPrice: dec("2000"), IsFinishing: true, UnitType: "m2"},
				{ProductName: "Hemming", UnitPrice: dec("1000"), IsFinishing: true, UnitType: "m"},
				{ProductName: "Grommets", UnitPrice: dec("500"), IsFinishing: true, UnitType: "ea"},
			},
		}, http.StatusCreated, &q)

		require.Len(t, q.Items, 4)
		assertDec(t, "1", q.Items[1].Quantity, "coating quantity")
		assertDec(t, "4", q.Items[2].Quantity, "hemming quantity")
		assertDec(t, "1", q.Items[3].Quantity, "grommets quantity")
		assertDec(t, "16500", q.TotalAmount, "total_amount")
		assertDec(t, "825", q.VATAmount, "vat_amount")
		assertDec(t, "17325", q.TotalWithVAT, "total_with_vat")
	})

	t.Run("client totals are ignored", func(t *testing.T) {
		body := []byte(`{"vendor_name":"ACME Signs","total_amount":"1","items":[
			{"product_name":"Poster","unit_price":3000,"quantity":3,"total_price":"1"}
		]}`)
		var q quote.Quote
		app.doJSON(t, http.MethodPost, "/api/quotes", token, rawJSON(body), http.StatusCreated, &q)
		assertDec(t, "9000", q.TotalAmount, "total_amount")
		assertDec(t, "9000", q.Items[0].TotalPrice, "total_price")
	})

	t.Run("numeric flags and money", func(t *testing.T) {
		body := []byte(`{"vendor_name":"ACME Signs","note":"","is_sign_quote":1,"vat_rate":0.1,"items":[
			{"product_name":"Vinyl banner","spec":"outdoor","unit_price":50000,"quantity":2,"total_price":270000,
			 "calc_type":"m2","width_mm":3000,"height_mm":900,"area_m2":2.7,"is_finishing":0},
			{"product_name":"[후가공] 코팅","spec":"2.7m²","unit_price":1000,"quantity":2.7,"total_price":2700,
			 "calc_type":"m2","is_finishing":1}
		]}`)
		rec := app.do(http.MethodPost, "/api/quotes", token, body)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

		var raw struct {
			IsSignQuote bool            `json:"is_sign_quote"`
			TotalAmount json.RawMessage `json:"total_amount"`
			VATRate     json.RawMessage `json:"vat_rate"`
			Items       []struct {
				IsFinishing bool             `json:"is_finishing"`
				CalcType    pricing.CalcType `json:"calc_type"`
				TotalPrice  json.RawMessage  `json:"total_price"`
			} `json:"items"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
		assert.True(t, raw.IsSignQuote)
		assert.Equal(t, "272700", string(raw.TotalAmount), "money is sent as a JSON number")
		assert.Equal(t, "0.1", string(raw.VATRate))
		require.Len(t, raw.Items, 2)
		assert.False(t, raw.Items[0].IsFinishing)
		assert.True(t, raw.Items[1].IsFinishing)
		assert.Equal(t, pricing.Unit, raw.Items[1].CalcType)
		assert.Equal(t, "2700", string(raw.Items[1].TotalPrice))
	})

	tests := []httpTest{
		{name: "auth required", method: http.MethodPost, path: "/api/quotes", body: marchallObj(t, bannerQuote()), wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "vendor required", method: http.MethodPost, path: "/api/quotes", token: token,
			body: []byte(`{"items":[{"product_name":"x","unit_price":1,"quantity":1}]}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpFieldsErr{Error: "vendor_name is required", Fields: map[string]string{"vendor_name": "vendor_name is required"}}),
		},
		{
			name: "items required", method: http.MethodPost, path: "/api/quotes", token: token,
			body: []byte(`{"vendor_name":"ACME","items":[]}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpFieldsErr{Error: "items must contain at least 1 item(s)", Fields: map[string]string{"items": "items must contain at least 1 item(s)"}}),
		},
		{
			name: "item product required", method: http.MethodPost, path: "/api/quotes", token: token,
			body: []byte(`{"vendor_name":"ACME","items":[{"unit_price":1,"quantity":1}]}`), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpFieldsErr{Error: "product_name is required", Fields: map[string]string{"items[0].product_name": "product_name is required"}}),
		},
		{
			name: "unknown calc type", method: http.MethodPost, path: "/api/quotes", token: token,
			body: []byte(`{"vendor_name":"ACME","items":[{"product_name":"x","calc_type":"volume","unit_price":1,"quantity":1}]}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "m2 without dimensions", method: http.MethodPost, path: "/api/quotes", token: token,
			body: []byte(`{"vendor_name":"ACME","items":[{"product_name":"x","calc_type":"m2","unit_price":1,"quantity":1}]}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "zero quantity", method: http.MethodPost, path: "/api/quotes", token: token,
			body: []byte(`{"vendor_name":"ACME","items":[{"product_name":"x","unit_price":1,"quantity":0}]}`), wantCode: http.StatusBadRequest,
		},
		{
			name: "finishing without base dimensions", method: http.MethodPost, path: "/api/quotes", token: token,
			body: []byte(`{"vendor_name":"ACME","items":[{"product_name":"x","unit_price":1,"quantity":1},{"product_name":"coat","unit_price":1,"is_finishing":true,"unit_type":"m2"}]}`),
			wantCode: http.StatusBadRequest,
		},
		{name: "list (other user)", path: "/api/quotes", token: otherToken, wantCode: http.StatusOK, wantData: []byte(`[]`)},
	}
	for _, tt := range tests {
		tt.run(t, app)
	}
}

func Test_quoteApi_preview(t *testing.T) {
	app := setup(t)
	_, token := app.createUser(t, "printshop")

	var q quote.Quote
	app.doJSON(t, http.MethodPost, "/api/quotes/preview", token, bannerQuote(), http.StatusOK, &q)
	assert.Zero(t, q.ID)
	assert.Empty(t, q.QuoteNumber)
	assertDec(t, "297000", q.TotalWithVAT, "total_with_vat")

	httpTest{name: "nothing stored", path: "/api/quotes", token: token, wantCode: http.StatusOK, wantData: []byte(`[]`)}.run(t, app)
}

func Test_quoteApi_detail(t *testing.T) {
	app := setup(t)
	_, token := app.createUser(t, "printshop")
	_, otherToken := app.createUser(t, "othershop")

	var q1, q2 quote.Quote
	app.doJSON(t, http.MethodPost, "/api/quotes", token, bannerQuote(), http.StatusCreated, &q1)
	nq := bannerQuote()
	nq.VendorName = "Zeta Print"
	app.doJSON(t, http.MethodPost, "/api/quotes", token, nq, http.StatusCreated, &q2)

	detail := func(id int64, suffix ...string) string {
		return fmt.Sprintf("/api/quotes/%d", id) + strings.Join(suffix, "")
	}

	t.Run("list", func(t *testing.T) {
		var quotes []quote.Quote
		app.doJSON(t, http.MethodGet, "/api/quotes", token, nil, http.StatusOK, &quotes)
		require.Len(t, quotes, 2)
		assert.Equal(t, q2.ID, quotes[0].ID, "newest first")
		assert.Empty(t, quotes[0].Items, "items only come with the detail")

		app.doJSON(t, http.MethodGet, "/api/quotes?ordering=vendor_name", token, nil, http.StatusOK, &quotes)
		require.Len(t, quotes, 2)
		assert.Equal(t, q1.ID, quotes[0].ID)

		app.doJSON(t, http.MethodGet, "/api/quotes?ordering=-vendor_name,password", token, nil, http.StatusOK, &quotes)
		require.Len(t, quotes, 2)
		assert.Equal(t, q2.ID, quotes[0].ID, "unknown fields are ignored")
	})

	t.Run("get", func(t *testing.T) {
		var q quote.Quote
		app.doJSON(t, http.MethodGet, detail(q1.ID), token, nil, http.StatusOK, &q)
		assert.Equal(t, q1.QuoteNumber, q.QuoteNumber)
		require.Len(t, q.Items, 1)
		assertDec(t, "270000", q.Items[0].TotalPrice, "total_price")
	})

	t.Run("pdf", func(t *testing.T) {
		rec := app.do(http.MethodGet, detail(q1.ID, "/pdf"), token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
		assert.Contains(t, rec.Header().Get("Content-Disposition"), q1.QuoteNumber+".pdf")
		assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
	})

	t.Run("xlsx", func(t *testing.T) {
		rec := app.do(http.MethodGet, detail(q1.ID, "/xlsx"), token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Disposition"), q1.QuoteNumber+".xlsx")

		f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
		require.NoError(t, err)
		defer f.Close()
		name, err := f.GetCellValue("Quote", "A8")
		require.NoError(t, err)
		assert.Equal(t, "Vinyl banner", name)
	})

	t.Run("send", func(t *testing.T) {
		emailsvc.ResetSentMessages()

		rec := app.do(http.MethodPost, detail(q1.ID, "/send"), token, []byte(`{"to":"not-an-email"}`))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Empty(t, emailsvc.SentMessages)

		rec = app.do(http.MethodPost, detail(q1.ID, "/send"), token,
			[]byte(`{"to":" Buyer@Example.com ","name":"Kim","message":"Please find our quote attached."}`))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		require.Len(t, emailsvc.SentMessages, 1)
		msg := emailsvc.SentMessages[0]
		require.Len(t, msg.To, 1)
		assert.Equal(t, "buyer@example.com", msg.To[0].Address)
		assert.Equal(t, "Kim", msg.To[0].Name)
		assert.Equal(t, "Quote "+q1.QuoteNumber+" for "+q1.VendorName, msg.Subject)
		assert.Contains(t, msg.TextContent, "Please find our quote attached.")
		require.Len(t, msg.Attachments, 1)
		assert.Equal(t, q1.QuoteNumber+".pdf", msg.Attachments[0].Filename)
	})

	tests := []httpTest{
		{name: "get (other user)", path: detail(q1.ID), token: otherToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "quote not found"})},
		{name: "pdf (other user)", path: detail(q1.ID, "/pdf"), token: otherToken, wantCode: http.StatusNotFound},
		{name: "xlsx (other user)", path: detail(q1.ID, "/xlsx"), token: otherToken, wantCode: http.StatusNotFound},
		{
			name: "send (other user)", method: http.MethodPost, path: detail(q1.ID, "/send"), token: otherToken,
			body: []byte(`{"to":"buyer@example.com"}`), wantCode: http.StatusNotFound,
		},
		{name: "get (bad id)", path: "/api/quotes/abc", token: token, wantCode: http.StatusNotFound},
		{name: "delete (other user)", method: http.MethodDelete, path: detail(q1.ID), token: otherToken, wantCode: http.StatusNotFound},
		{name: "delete", method: http.MethodDelete, path: detail(q1.ID), token: token, wantCode: http.StatusOK, wantData: []byte(`{"success":true}`)},
		{name: "get (deleted)", path: detail(q1.ID), token: token, wantCode: http.StatusNotFound},
	}
	for _, tt := range tests {
		tt.run(t, app)
	}

	t.Run("items are deleted with the quote", func(t *testing.T) {
		var cnt int
		require.NoError(t, app.db.Get(&cnt, app.db.Rebind("SELECT COUNT(*) FROM quote_items WHERE quote_id = ?"), q1.ID))
		assert.Zero(t, cnt)
	})
}
