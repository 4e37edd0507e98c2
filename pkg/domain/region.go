package domain

// Region is a prefecture the directory covers. Stored verbatim under the
// document field "pref" (a contract with the backing store's query filters).
type Region string

// The seven Kyushu prefectures served by the directory.
const (
	RegionFukuoka   Region = "福岡"
	RegionSaga      Region = "佐賀"
	RegionNagasaki  Region = "長崎"
	RegionKumamoto  Region = "熊本"
	RegionOita      Region = "大分"
	RegionMiyazaki  Region = "宮崎"
	RegionKagoshima Region = "鹿児島"
)

// Regions lists all covered prefectures in display order.
func Regions() []Region {
	return []Region{
		RegionFukuoka, RegionSaga, RegionNagasaki, RegionKumamoto,
		RegionOita, RegionMiyazaki, RegionKagoshima,
	}
}

// IsValid reports whether the region is one of the covered prefectures.
func (r Region) IsValid() bool {
	for _, known := range Regions() {
		if r == known {
			return true
		}
	}
	return false
}

func (r Region) String() string { return string(r) }
