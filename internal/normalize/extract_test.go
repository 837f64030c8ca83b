package normalize

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want int
	}{
		{name: "plain", in: "5200", want: 5200},
		{name: "thousands separator", in: "1,234", want: 1234},
		{name: "multiple separators", in: "1,234,567", want: 1234567},
		{name: "dash placeholder", in: "-", want: 0},
		{name: "empty", in: "", want: 0},
		{name: "whitespace", in: "  3,800 ", want: 3800},
		{name: "fractional rounds", in: "1234.6", want: 1235},
		{name: "garbage", in: "N/A", want: 0},
		{name: "negative clamps", in: "-500", want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParsePrice(tt.in))
		})
	}
}

func TestParseVolume(t *testing.T) {
	assert.Equal(t, 120.5, ParseVolume("120.5"))
	assert.Equal(t, 1234.0, ParseVolume("1,234"))
	assert.Equal(t, 0.0, ParseVolume("-"))
	assert.Equal(t, 0.0, ParseVolume(""))
	assert.Equal(t, 0.0, ParseVolume("abc"))
	assert.Equal(t, 0.0, ParseVolume("-3.5"))
}

func TestRecordStrNumericLiteral(t *testing.T) {
	rec := Record{
		"qty":  json.RawMessage(`3800`),
		"name": json.RawMessage(`" 토마토 "`),
	}
	assert.Equal(t, "3800", rec.Str("qty"))
	assert.Equal(t, "토마토", rec.Str("name"))
	assert.Equal(t, "", rec.Str("missing"))
}

func TestBackfillTiers(t *testing.T) {
	t.Run("high derived from mid", func(t *testing.T) {
		got := BackfillTiers(0, 3800)
		assert.Equal(t, 4940, got.High)
		assert.Equal(t, 3800, got.Mid)
		assert.True(t, got.DerivedHigh)
		assert.False(t, got.DerivedMid)
	})

	t.Run("mid derived from high", func(t *testing.T) {
		got := BackfillTiers(4500, 0)
		assert.Equal(t, 4500, got.High)
		assert.Equal(t, 3375, got.Mid)
		assert.True(t, got.DerivedMid)
		assert.False(t, got.DerivedHigh)
	})

	t.Run("both observed pass through", func(t *testing.T) {
		got := BackfillTiers(5200, 3800)
		assert.Equal(t, PriceTiers{High: 5200, Mid: 3800}, got)
	})

	t.Run("both absent stay zero", func(t *testing.T) {
		got := BackfillTiers(0, 0)
		assert.Equal(t, PriceTiers{}, got)
	})
}

func TestGradeOf(t *testing.T) {
	assert.Equal(t, GradeHigh, GradeOf("상품"))
	assert.Equal(t, GradeHigh, GradeOf("특"))
	assert.Equal(t, GradeHigh, GradeOf("1등급"))
	assert.Equal(t, GradeMid, GradeOf("중품"))
	assert.Equal(t, GradeMid, GradeOf(""))
}

func TestStripBold(t *testing.T) {
	assert.Equal(t, "완숙 토마토 1kg", StripBold("완숙 <b>토마토</b> 1kg"))
	assert.Equal(t, "토마토", StripBold("<b>토마토</b>"))
	assert.Equal(t, "no markers", StripBold("no markers"))
}

func TestAuctionRecordNameChain(t *testing.T) {
	tests := []struct {
		name string
		rec  Record
		want string
	}{
		{
			name: "small class wins",
			rec: Record{
				"smlcls_nm": json.RawMessage(`"완숙토마토"`),
				"mdcls_nm":  json.RawMessage(`"토마토"`),
				"lrg_clsf_nm": json.RawMessage(`"채소류"`),
			},
			want: "완숙토마토",
		},
		{
			name: "falls back to mid class",
			rec: Record{
				"mdcls_nm":    json.RawMessage(`"토마토"`),
				"lrg_clsf_nm": json.RawMessage(`"채소류"`),
			},
			want: "토마토",
		},
		{
			name: "falls back to large class",
			rec:  Record{"lrg_clsf_nm": json.RawMessage(`"채소류"`)},
			want: "채소류",
		},
		{
			name: "all empty yields sentinel",
			rec:  Record{"qty": json.RawMessage(`"10"`)},
			want: UnknownName,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AuctionRecord(tt.rec).ProductName)
		})
	}
}

func TestAuctionRecordFallbacks(t *testing.T) {
	rec := AuctionRecord(Record{
		"smlcls_nm": json.RawMessage(`"토마토"`),
		"qty":       json.RawMessage(`"120.5"`),
	})
	assert.Equal(t, "미상", rec.MarketName)
	assert.Equal(t, "미상", rec.Origin)
	assert.Equal(t, "기타", rec.Category)
	assert.Equal(t, 120.5, rec.Volume)
}

func TestMatchesProduct(t *testing.T) {
	tomato := Record{"mdcls_nm": json.RawMessage(`"토마토"`)}
	apple := Record{"mdcls_nm": json.RawMessage(`"사과"`)}
	cherry := Record{"smlcls_nm": json.RawMessage(`"방울토마토"`)}

	assert.True(t, MatchesProduct(tomato, "토마토"))
	assert.False(t, MatchesProduct(apple, "토마토"))
	assert.True(t, MatchesProduct(cherry, "토마토"), "substring containment, not equality")
	assert.True(t, MatchesProduct(apple, ""), "empty filter matches everything")
}
