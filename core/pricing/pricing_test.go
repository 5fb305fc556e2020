package pricing

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/signquick/signquick/core"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name string
		line Line
		want string
	}{
		{
			name: "unit",
			line: Line{CalcType: Unit, UnitPrice: dec("12000"), Quantity: dec("3")},
			want: "36000",
		},
		{
			name: "m2",
			line: Line{CalcType: Area, UnitPrice: dec("50000"), Quantity: dec("2"), WidthMM: dec("3000"), HeightMM: dec("900")},
			want: "270000",
		},
		{
			name: "m2 fractional area",
			line: Line{CalcType: Area, UnitPrice: dec("10000"), Quantity: dec("1"), WidthMM: dec("1250"), HeightMM: dec("333")},
			want: "4162.5",
		},
		{
			name: "char",
			line: Line{CalcType: Char, UnitPrice: dec("5000"), Quantity: dec("1"), CharCount: 10},
			want: "50000",
		},
		{
			name: "char ignores dimensions",
			line: Line{CalcType: Char, UnitPrice: dec("5000"), Quantity: dec("2"), CharCount: 3, WidthMM: dec("900")},
			want: "30000",
		},
		{
			name: "unknown mode prices per unit",
			line: Line{CalcType: "lol", UnitPrice: dec("700"), Quantity: dec("1.5")},
			want: "1050",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineTotal(tt.line)
			assert.Truef(t, got.Equal(dec(tt.want)), "LineTotal() = %s, want %s", got, tt.want)
		})
	}
}

func TestAreaM2(t *testing.T) {
	assert.True(t, AreaM2(dec("3000"), dec("900")).Equal(dec("2.7")))
	assert.True(t, AreaM2(dec("0"), dec("900")).IsZero())
}

func TestComputeTotals(t *testing.T) {
	rate := dec("0.05")
	tests := []struct {
		name      string
		lines     []string
		signQuote bool
		rate      *decimal.Decimal
		wantTotal string
		wantRate  string
		wantVAT   string
		wantGross string
	}{
		{name: "sign quote default rate", lines: []string{"60000", "40000"}, signQuote: true, wantTotal: "100000", wantRate: "0.1", wantVAT: "10000", wantGross: "110000"},
		{name: "sign quote custom rate", lines: []string{"100000"}, signQuote: true, rate: &rate, wantTotal: "100000", wantRate: "0.05", wantVAT: "5000", wantGross: "105000"},
		{name: "vat rounds half up", lines: []string{"12345"}, signQuote: true, wantTotal: "12345", wantRate: "0.1", wantVAT: "1235", wantGross: "13580"},
		{name: "vat rounds down", lines: []string{"12344"}, signQuote: true, wantTotal: "12344", wantRate: "0.1", wantVAT: "1234", wantGross: "13578"},
		{name: "regular quote has no vat", lines: []string{"100000"}, rate: &rate, wantTotal: "100000", wantRate: "0", wantVAT: "0", wantGross: "100000"},
		{name: "no lines", signQuote: true, wantTotal: "0", wantRate: "0.1", wantVAT: "0", wantGross: "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines := make([]decimal.Decimal, 0, len(tt.lines))
			for _, l := range tt.lines {
				lines = append(lines, dec(l))
			}
			got := ComputeTotals(lines, tt.signQuote, tt.rate)
			assert.Truef(t, got.TotalAmount.Equal(dec(tt.wantTotal)), "TotalAmount = %s", got.TotalAmount)
			assert.Truef(t, got.VATRate.Equal(dec(tt.wantRate)), "VATRate = %s", got.VATRate)
			assert.Truef(t, got.VATAmount.Equal(dec(tt.wantVAT)), "VATAmount = %s", got.VATAmount)
			assert.Truef(t, got.TotalWithVAT.Equal(dec(tt.wantGross)), "TotalWithVAT = %s", got.TotalWithVAT)
		})
	}
}

func TestFinishingQuantity(t *testing.T) {
	tests := []struct {
		name   string
		unit   UnitType
		w, h   string
		expect string
	}{
		{name: "m2 uses area", unit: SquareMeter, w: "3000", h: "900", expect: "2.7"},
		{name: "m2 rounds to 2 decimals", unit: SquareMeter, w: "1234", h: "567", expect: "0.7"},
		{name: "m uses perimeter", unit: Meter, w: "3000", h: "900", expect: "7.8"},
		{name: "m rounds to 2 decimals", unit: Meter, w: "1001", h: "1", expect: "2"},
		{name: "ea is one", unit: Each, w: "3000", h: "900", expect: "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FinishingQuantity(tt.unit, dec(tt.w), dec(tt.h))
			assert.Truef(t, got.Equal(dec(tt.expect)), "FinishingQuantity() = %s, want %s", got, tt.expect)
		})
	}
}

func TestQuoteNumber(t *testing.T) {
	now := time.Date(2024, time.March, 5, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "Q-20240305-0001", QuoteNumber(now, 0))
	assert.Equal(t, "Q-20240305-0042", QuoteNumber(now, 41))
	assert.Equal(t, "Q-20240305-12345", QuoteNumber(now, 12344))

	seoul := time.FixedZone("KST", 9*60*60)
	assert.Equal(t, "Q-20240305-0001", QuoteNumber(now.In(seoul), 0), "dates are taken in UTC")
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, Area, NormalizeCalcType("m2"))
	assert.Equal(t, Unit, NormalizeCalcType(""))
	assert.Equal(t, Unit, NormalizeCalcType("M2"))
	assert.Equal(t, Meter, NormalizeUnitType("m"))
	assert.Equal(t, Each, NormalizeUnitType("cm"))
}

func TestRegisterValidators(t *testing.T) {
	validate, translator := core.NewValidator()
	RegisterValidators(validate, translator)

	type item struct {
		CalcType CalcType `json:"calc_type" validate:"omitempty,calctype"`
		UnitType UnitType `json:"unit_type" validate:"omitempty,unittype"`
	}

	assert.NoError(t, validate.Struct(item{CalcType: Char, UnitType: Meter}))
	assert.NoError(t, validate.Struct(item{}))
	assert.Error(t, validate.Struct(item{CalcType: "sqft"}))
	assert.Error(t, validate.Struct(item{UnitType: "cm"}))
}
