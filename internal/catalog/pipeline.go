// Package catalog は商品カタログから、検索・カテゴリ・並び替え・ページングを掛けた一覧を作る。
// 全てメモリ上の純粋な変換で、失敗しない。
package catalog

import (
	"sort"
	"strings"

	"storefront/internal/domain/model"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Pageは表示する1ページ分の結果
type Page struct {
	Items      []model.Product
	Total      int // 絞り込み後の件数
	Page       int
	PageSize   int
	TotalPages int
}

type Pipeline struct {
	pageSize int
	locale   language.Tag
}

type Option func(*Pipeline)

func WithPageSize(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.pageSize = n
		}
	}
}

// 名前順ソートのロケール
func WithLocale(tag language.Tag) Option {
	return func(p *Pipeline) {
		p.locale = tag
	}
}

func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		pageSize: DefaultPageSize,
		locale:   language.Spanish,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) PageSize() int {
	return p.pageSize
}

// Deriveはカテゴリ→検索→並び替え→ページングの順で適用する
func (p *Pipeline) Derive(products []model.Product, vs ViewState) Page {
	items := FilterCategory(products, vs.Category)
	items = p.filterText(items, vs.Search)
	p.sortProducts(items, vs.Sort)
	return p.paginate(items, vs.Page)
}

// カテゴリの完全一致（大文字小文字を区別）。"all"はそのまま
func FilterCategory(products []model.Product, category string) []model.Product {
	out := make([]model.Product, 0, len(products))
	if category == "" || category == AllCategories {
		return append(out, products...)
	}
	for _, pr := range products {
		if pr.Category == category {
			out = append(out, pr)
		}
	}
	return out
}

// titleに対する大文字小文字を無視した部分一致
func (p *Pipeline) filterText(products []model.Product, search string) []model.Product {
	q := strings.TrimSpace(search)
	if q == "" {
		return products
	}
	// caserは並行利用できないので呼び出しごとに作る
	fold := cases.Fold()
	q = fold.String(q)

	out := products[:0]
	for _, pr := range products {
		if strings.Contains(fold.String(pr.Title), q) {
			out = append(out, pr)
		}
	}
	return out
}

// 安定ソート。defaultはカタログ順のまま
func (p *Pipeline) sortProducts(products []model.Product, key SortKey) {
	switch key {
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	case SortNameAsc:
		col := collate.New(p.locale)
		sort.SliceStable(products, func(i, j int) bool {
			return col.CompareString(products[i].Title, products[j].Title) < 0
		})
	case SortStockDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Stock > products[j].Stock })
	}
}

// 範囲外のページは空のItemsを返す
func (p *Pipeline) paginate(products []model.Product, page int) Page {
	total := len(products)
	totalPages := (total + p.pageSize - 1) / p.pageSize
	if page < 1 {
		page = 1
	}

	out := Page{
		Items:      []model.Product{},
		Total:      total,
		Page:       page,
		PageSize:   p.pageSize,
		TotalPages: totalPages,
	}

	start := (page - 1) * p.pageSize
	if start >= total {
		return out
	}
	end := start + p.pageSize
	if end > total {
		end = total
	}
	out.Items = append(out.Items, products[start:end]...)
	return out
}

// Categoriesは空でないカテゴリの重複なし一覧（アルファベット順）
func Categories(products []model.Product) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, pr := range products {
		if pr.Category == "" {
			continue
		}
		if _, ok := seen[pr.Category]; ok {
			continue
		}
		seen[pr.Category] = struct{}{}
		out = append(out, pr.Category)
	}
	sort.Strings(out)
	return out
}

// PageNumbersはページ送りに出す番号。7ページ以下なら全部、
// それ以上なら先頭・末尾・現在とその前後だけ（間は省略）
func PageNumbers(current, totalPages int) []int {
	if totalPages <= 0 {
		return []int{}
	}
	out := make([]int, 0, 7)
	if totalPages <= 7 {
		for i := 1; i <= totalPages; i++ {
			out = append(out, i)
		}
		return out
	}
	for i := 1; i <= totalPages; i++ {
		if i == 1 || i == totalPages || (i >= current-1 && i <= current+1) {
			out = append(out, i)
		}
	}
	return out
}
