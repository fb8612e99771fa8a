package catalog

import (
	"fmt"
	"strings"
)

// カテゴリ未選択
const AllCategories = "all"

const DefaultPageSize = 12

type SortKey string

const (
	SortDefault   SortKey = "default"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortNameAsc   SortKey = "name-asc"
	SortStockDesc SortKey = "stock-desc"
)

var sortKeys = []SortKey{SortDefault, SortPriceAsc, SortPriceDesc, SortNameAsc, SortStockDesc}

func SortKeys() []SortKey {
	return append([]SortKey(nil), sortKeys...)
}

// 空文字はdefault扱い
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return SortDefault, nil
	}
	for _, k := range sortKeys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("invalid sort %q", s)
}

// ViewStateは一覧画面の検索・絞り込み・並び替え・ページ。画面を開くたびに初期値
type ViewState struct {
	Search   string // debounce後の検索文字列
	Category string
	Sort     SortKey
	Page     int // 1始まり
}

func DefaultViewState() ViewState {
	return ViewState{
		Category: AllCategories,
		Sort:     SortDefault,
		Page:     1,
	}
}
