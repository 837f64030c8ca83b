// Package catalog holds the immutable code tables shared by the upstream
// clients and the normalization layer: KAMIS item codes, Naver search
// configuration per product, Seoul open-data classification codes, and the
// curated reference prices used when live data is unavailable.
//
// Everything here is fixed at compile time and injected into callers; nothing
// mutates these tables after process start.
package catalog

// Product describes one supported agricultural product: its KAMIS codes, the
// Naver Shopping query used for online price sampling, and the guardrails for
// filtering search noise (processed goods, seeds, fertilizer listings).
type Product struct {
	Key          string // stable API key, e.g. "tomato"
	Name         string // Korean display name matched against upstream records
	CategoryCode string // KAMIS p_item_category_code
	ItemCode     string // KAMIS p_item_code
	KindCode     string // KAMIS p_kindcode for trend/region lookups

	NaverQuery      string   // shopping search query, unit-normalized (1kg 등)
	ExcludeKeywords []string // listings containing any of these are dropped
	MinPrice        int      // plausible online price floor (won)
	MaxPrice        int      // plausible online price ceiling (won)

	// Reference prices substituted when KAMIS yields nothing. These are
	// hand-curated plausible magnitudes, not measured data; responses built
	// from them are always tagged as dummy.
	FallbackHigh int
	FallbackMid  int
	BasePrice    int // base for synthetic series generation
}

// Products maps API product keys to their full configuration. The KAMIS
// category/item/kind codes follow the published KAMIS code book.
var Products = map[string]Product{
	"tomato": {
		Key: "tomato", Name: "토마토",
		CategoryCode: "200", ItemCode: "225", KindCode: "01",
		NaverQuery: "완숙 토마토 1kg",
		ExcludeKeywords: []string{
			"퇴비", "비료", "계분", "상토", "화분", "씨앗", "종자", "모종",
			"방울", "대추", "체리", "소스", "케첩", "페이스트", "주스",
			"통조림", "캔", "건조", "분말",
		},
		MinPrice: 3000, MaxPrice: 25000,
		FallbackHigh: 5200, FallbackMid: 3800, BasePrice: 5000,
	},
	"apple": {
		Key: "apple", Name: "사과",
		CategoryCode: "400", ItemCode: "411", KindCode: "01",
		NaverQuery:      "사과 1kg",
		ExcludeKeywords: []string{"주스", "잼", "식초", "칩", "말랭이", "건조", "통조림", "퓨레"},
		MinPrice:        3000, MaxPrice: 30000,
		FallbackHigh: 8000, FallbackMid: 6000, BasePrice: 8000,
	},
	"pear": {
		Key: "pear", Name: "배",
		CategoryCode: "400", ItemCode: "412", KindCode: "01",
		NaverQuery:      "배 1kg",
		ExcludeKeywords: []string{"주스", "잼", "식초", "칩", "말랭이", "건조", "통조림", "배추", "배합"},
		MinPrice:        3000, MaxPrice: 35000,
		FallbackHigh: 7000, FallbackMid: 5000, BasePrice: 7000,
	},
	"grape": {
		Key: "grape", Name: "포도",
		CategoryCode: "400", ItemCode: "413", KindCode: "01",
		NaverQuery:      "포도 1kg",
		ExcludeKeywords: []string{"주스", "잼", "와인", "건포도", "씨앗"},
		MinPrice:        5000, MaxPrice: 40000,
		FallbackHigh: 12000, FallbackMid: 9000, BasePrice: 12000,
	},
	"strawberry": {
		Key: "strawberry", Name: "딸기",
		CategoryCode: "400", ItemCode: "415", KindCode: "01",
		NaverQuery:      "딸기 1kg",
		ExcludeKeywords: []string{"잼", "주스", "아이스크림", "케이크", "건조", "냉동"},
		MinPrice:        8000, MaxPrice: 50000,
		FallbackHigh: 20000, FallbackMid: 15000, BasePrice: 20000,
	},
	"watermelon": {
		Key: "watermelon", Name: "수박",
		CategoryCode: "400", ItemCode: "414", KindCode: "00",
		NaverQuery:      "수박 1통",
		ExcludeKeywords: []string{"주스", "씨앗", "화채"},
		MinPrice:        10000, MaxPrice: 50000,
		FallbackHigh: 25000, FallbackMid: 18000, BasePrice: 25000,
	},
	"cucumber": {
		Key: "cucumber", Name: "오이",
		CategoryCode: "200", ItemCode: "221", KindCode: "01",
		NaverQuery:      "오이 1kg",
		ExcludeKeywords: []string{"피클", "절임", "씨앗", "종자", "모종", "소스"},
		MinPrice:        2000, MaxPrice: 15000,
		FallbackHigh: 4500, FallbackMid: 3500, BasePrice: 4500,
	},
	"pepper": {
		Key: "pepper", Name: "고추",
		CategoryCode: "200", ItemCode: "212", KindCode: "01",
		NaverQuery:      "청양고추 1kg",
		ExcludeKeywords: []string{"가루", "분말", "소스", "장", "씨앗", "종자", "모종", "건조", "말린"},
		MinPrice:        5000, MaxPrice: 40000,
		FallbackHigh: 15000, FallbackMid: 12000, BasePrice: 15000,
	},
	"cabbage": {
		Key: "cabbage", Name: "배추",
		CategoryCode: "200", ItemCode: "211", KindCode: "01",
		NaverQuery:      "배추 1포기",
		ExcludeKeywords: []string{"김치", "절임", "씨앗", "종자", "모종"},
		MinPrice:        2000, MaxPrice: 15000,
		FallbackHigh: 4000, FallbackMid: 3000, BasePrice: 4000,
	},
	"onion": {
		Key: "onion", Name: "양파",
		CategoryCode: "200", ItemCode: "215", KindCode: "01",
		NaverQuery:      "양파 1kg",
		ExcludeKeywords: []string{"링", "튀김", "가루", "분말", "씨앗", "종자", "모종", "절임"},
		MinPrice:        1000, MaxPrice: 10000,
		FallbackHigh: 2500, FallbackMid: 1800, BasePrice: 2500,
	},
	"potato": {
		Key: "potato", Name: "감자",
		// Trend lookups use the food-crop category for potato; the daily
		// category listing still answers under 200.
		CategoryCode: "100", ItemCode: "152", KindCode: "01",
		NaverQuery:      "감자 1kg",
		ExcludeKeywords: []string{"칩", "튀김", "전분", "가루", "분말", "씨앗", "씨감자"},
		MinPrice:        2000, MaxPrice: 15000,
		FallbackHigh: 4000, FallbackMid: 3000, BasePrice: 4000,
	},
	"garlic": {
		Key: "garlic", Name: "마늘",
		CategoryCode: "200", ItemCode: "214", KindCode: "01",
		NaverQuery:      "마늘 1kg",
		ExcludeKeywords: []string{"가루", "분말", "다진", "장아찌", "씨앗", "종구"},
		MinPrice:        5000, MaxPrice: 30000,
		FallbackHigh: 12000, FallbackMid: 9000, BasePrice: 12000,
	},
}

// ProductKeys returns the supported product keys in a stable order, for
// error responses that list what the API accepts.
func ProductKeys() []string {
	return []string{
		"tomato", "apple", "pear", "grape", "strawberry", "watermelon",
		"cucumber", "pepper", "cabbage", "onion", "potato", "garlic",
	}
}

// GradeQueries maps a quality-grade key to the Naver search query that
// approximates that grade online. Unknown grades fall back to the generic
// 1kg query.
var GradeQueries = map[string]string{
	"high":  "토마토 특 1kg",
	"mid":   "토마토 중 1kg",
	"low":   "토마토 소 1kg",
	"juice": "토마토 주스용 1kg",
}

// RegionNames maps KAMIS county codes to display names, used when a record
// carries only the code.
var RegionNames = map[string]string{
	"1101": "서울",
	"2100": "부산",
	"2200": "대구",
	"2300": "인천",
	"2401": "광주",
	"2501": "대전",
	"2601": "울산",
	"3111": "수원",
	"3211": "춘천",
	"3311": "청주",
	"3511": "전주",
	"3711": "포항",
	"3911": "제주",
}

// SyntheticRegions is the fixed region list for synthetic region-price series.
var SyntheticRegions = []string{
	"서울", "부산", "대구", "인천", "광주", "대전", "울산", "수원", "청주", "전주", "제주",
}

// Corporation identifies one of the six wholesale corporations operating in
// the Garak market settlement feed (CORP_CD_1..CORP_CD_6 columns).
type Corporation struct {
	Column string // upstream column name
	Key    string // stable JSON key
	Name   string
}

// Corporations lists the settlement feed corporations in column order.
var Corporations = []Corporation{
	{Column: "CORP_CD_1", Key: "seoul", Name: "서울청과"},
	{Column: "CORP_CD_2", Key: "nonghyup", Name: "농협"},
	{Column: "CORP_CD_3", Key: "jungang", Name: "중앙청과"},
	{Column: "CORP_CD_4", Key: "donghwa", Name: "동화청과"},
	{Column: "CORP_CD_5", Key: "hankook", Name: "한국청과"},
	{Column: "CORP_CD_6", Key: "daea", Name: "대아청과"},
}

// SortClass describes a SORT_CD rollup row in the settlement feed.
type SortClass struct {
	Name string
	Key  string
}

// SortClasses maps the settlement feed rollup codes: 00 is the grand total,
// 01..03 are the per-class subtotals. Individual products carry longer codes
// whose leading digit selects the class.
var SortClasses = map[string]SortClass{
	"00": {Name: "합계", Key: "total"},
	"01": {Name: "과일류", Key: "fruits"},
	"02": {Name: "과일과채류", Key: "fruitVegetables"},
	"03": {Name: "일반채소류", Key: "vegetables"},
}

// SyntheticProduct is one entry of the fixed product list used for synthetic
// per-product volume data.
type SyntheticProduct struct {
	Name     string
	Category string
}

// SyntheticProducts is the fixed product list for synthetic volume views.
var SyntheticProducts = []SyntheticProduct{
	{"배추", "채소류"}, {"무", "채소류"}, {"양배추", "채소류"}, {"시금치", "채소류"},
	{"상추", "채소류"}, {"토마토", "채소류"}, {"오이", "채소류"}, {"고추", "채소류"},
	{"사과", "과일류"}, {"배", "과일류"}, {"포도", "과일류"}, {"딸기", "과일류"},
	{"감귤", "과일류"}, {"수박", "과일류"}, {"참외", "과일류"}, {"바나나", "과일류"},
}

// SyntheticMarket is one entry of the fixed wholesale market list used for
// synthetic per-market volume data. Garak is listed first and synthesized
// with the largest volume.
type SyntheticMarket struct {
	Name   string
	Region string
}

// SyntheticMarkets is the fixed market list for synthetic volume views.
var SyntheticMarkets = []SyntheticMarket{
	{"가락시장", "서울 송파구"},
	{"강서시장", "서울 강서구"},
	{"영등포시장", "서울 영등포구"},
	{"구리농산물시장", "경기 구리시"},
	{"안양농산물시장", "경기 안양시"},
	{"수원농산물시장", "경기 수원시"},
	{"부산엄궁농산물시장", "부산 사상구"},
	{"대구북부농산물시장", "대구 북구"},
	{"대전오정농산물시장", "대전 대덕구"},
	{"광주각화농산물시장", "광주 서구"},
	{"인천구월농산물시장", "인천 남동구"},
	{"울산농산물시장", "울산 남구"},
}

// WeekdayNames maps time.Weekday ordinals (Sunday==0) to Korean short names.
var WeekdayNames = []string{"일", "월", "화", "수", "목", "금", "토"}
