package catalog_test

import (
	"fmt"
	"testing"

	"storefront/internal/catalog"
	"storefront/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id, title, category string, price float64, stock int) model.Product {
	return model.Product{ID: id, Title: title, Category: category, Price: price, Stock: stock, Status: true}
}

func ids(products []model.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

// 15商品、カテゴリa/b。aのうち奇数番目はwidget
func fifteen() []model.Product {
	out := make([]model.Product, 0, 15)
	for i := 1; i <= 15; i++ {
		cat := "a"
		if i%3 == 0 {
			cat = "b"
		}
		title := fmt.Sprintf("Gadget %02d", i)
		if i%2 == 1 {
			title = fmt.Sprintf("Blue Widget %02d", i)
		}
		out = append(out, product(fmt.Sprintf("p%02d", i), title, cat, float64(100-i*3), i))
	}
	return out
}

func TestDerive_DeterministicAndIdempotent(t *testing.T) {
	p := catalog.NewPipeline()
	vs := catalog.ViewState{Search: "widget", Category: "a", Sort: catalog.SortNameAsc, Page: 1}

	first := p.Derive(fifteen(), vs)
	second := p.Derive(fifteen(), vs)

	assert.Equal(t, first, second)
}

func TestDerive_DoesNotMutateCatalog(t *testing.T) {
	p := catalog.NewPipeline()
	products := fifteen()
	before := ids(products)

	p.Derive(products, catalog.ViewState{Category: "a", Sort: catalog.SortPriceAsc, Search: "widget", Page: 1})

	assert.Equal(t, before, ids(products))
}

func TestDerive_AllCategoriesKeepsCatalogOrder(t *testing.T) {
	p := catalog.NewPipeline(catalog.WithPageSize(100))
	products := fifteen()

	page := p.Derive(products, catalog.DefaultViewState())

	assert.Equal(t, ids(products), ids(page.Items))
	assert.Equal(t, ids(products), ids(catalog.FilterCategory(products, catalog.AllCategories)))
}

func TestDerive_CategoryIsExactAndCaseSensitive(t *testing.T) {
	p := catalog.NewPipeline()
	products := []model.Product{
		product("1", "Shirt", "Ropa", 10, 1),
		product("2", "Hat", "ropa", 10, 1),
		product("3", "Shoe", "Ropa ", 10, 1),
	}

	page := p.Derive(products, catalog.ViewState{Category: "Ropa", Sort: catalog.SortDefault, Page: 1})

	assert.Equal(t, []string{"1"}, ids(page.Items))
}

func TestDerive_SearchIsCaseInsensitiveSubstring(t *testing.T) {
	p := catalog.NewPipeline()
	products := []model.Product{
		product("ps5", "PS5 Console", "consoles", 500, 3),
		product("xb", "Xbox Series X", "consoles", 450, 3),
	}

	for _, q := range []string{"ps5", "PS5", "console", "  Console  "} {
		page := p.Derive(products, catalog.ViewState{Search: q, Category: catalog.AllCategories, Page: 1})
		assert.Equal(t, []string{"ps5"}, ids(page.Items), "query %q", q)
	}

	page := p.Derive(products, catalog.ViewState{Search: "   ", Category: catalog.AllCategories, Page: 1})
	assert.Len(t, page.Items, 2)
}

func TestDerive_PriceAscIsReverseOfPriceDesc(t *testing.T) {
	p := catalog.NewPipeline()
	products := []model.Product{
		product("1", "A", "x", 30, 1),
		product("2", "B", "x", 10, 1),
		product("3", "C", "x", 20, 1),
		product("4", "D", "x", 40, 1),
	}

	asc := p.Derive(products, catalog.ViewState{Category: catalog.AllCategories, Sort: catalog.SortPriceAsc, Page: 1})
	desc := p.Derive(products, catalog.ViewState{Category: catalog.AllCategories, Sort: catalog.SortPriceDesc, Page: 1})

	assert.Equal(t, []string{"2", "3", "1", "4"}, ids(asc.Items))

	reversed := ids(desc.Items)
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	assert.Equal(t, ids(asc.Items), reversed)
}

func TestDerive_SortIsStable(t *testing.T) {
	p := catalog.NewPipeline()
	products := []model.Product{
		product("1", "A", "x", 10, 5),
		product("2", "B", "x", 10, 5),
		product("3", "C", "x", 5, 9),
		product("4", "D", "x", 10, 5),
	}

	byPrice := p.Derive(products, catalog.ViewState{Category: catalog.AllCategories, Sort: catalog.SortPriceAsc, Page: 1})
	assert.Equal(t, []string{"3", "1", "2", "4"}, ids(byPrice.Items))

	byStock := p.Derive(products, catalog.ViewState{Category: catalog.AllCategories, Sort: catalog.SortStockDesc, Page: 1})
	assert.Equal(t, []string{"3", "1", "2", "4"}, ids(byStock.Items))
}

func TestDerive_NameAscIsLocaleAware(t *testing.T) {
	p := catalog.NewPipeline()
	products := []model.Product{
		product("c", "cámara", "x", 1, 1),
		product("b", "Banana", "x", 1, 1),
		product("a", "árbol", "x", 1, 1),
	}

	page := p.Derive(products, catalog.ViewState{Category: catalog.AllCategories, Sort: catalog.SortNameAsc, Page: 1})

	assert.Equal(t, []string{"a", "b", "c"}, ids(page.Items))
}

func TestDerive_Pagination(t *testing.T) {
	p := catalog.NewPipeline()
	products := fifteen()

	first := p.Derive(products, catalog.ViewState{Category: catalog.AllCategories, Page: 1})
	second := p.Derive(products, catalog.ViewState{Category: catalog.AllCategories, Page: 2})
	outOfRange := p.Derive(products, catalog.ViewState{Category: catalog.AllCategories, Page: 3})

	assert.Len(t, first.Items, 12)
	assert.Len(t, second.Items, 3)
	assert.Equal(t, 15, first.Total)
	assert.Equal(t, 2, first.TotalPages)
	assert.Equal(t, 12, first.PageSize)
	assert.Empty(t, outOfRange.Items)
	assert.Equal(t, 2, outOfRange.TotalPages)
}

func TestDerive_EmptyCatalog(t *testing.T) {
	page := catalog.NewPipeline().Derive(nil, catalog.DefaultViewState())

	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 0, page.TotalPages)
}

// カテゴリa → "widget" → 価格昇順
func TestDerive_CategorySearchSortScenario(t *testing.T) {
	p := catalog.NewPipeline()
	products := fifteen()

	page := p.Derive(products, catalog.ViewState{
		Category: "a",
		Search:   "widget",
		Sort:     catalog.SortPriceAsc,
		Page:     1,
	})

	//a かつ奇数（3の倍数以外）: 1,5,7,11,13 → 価格は i が大きいほど安い
	require.Equal(t, []string{"p13", "p11", "p07", "p05", "p01"}, ids(page.Items))
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 1, page.TotalPages)
	for i := 1; i < len(page.Items); i++ {
		assert.LessOrEqual(t, page.Items[i-1].Price, page.Items[i].Price)
	}
	for _, it := range page.Items {
		assert.Equal(t, "a", it.Category)
		assert.Contains(t, it.Title, "Widget")
	}
}

func TestCategories_DistinctSortedNonEmpty(t *testing.T) {
	products := []model.Product{
		product("1", "x", "zapatos", 1, 1),
		product("2", "x", "", 1, 1),
		product("3", "x", "audio", 1, 1),
		product("4", "x", "zapatos", 1, 1),
		product("5", "x", "Audio", 1, 1),
	}

	assert.Equal(t, []string{"Audio", "audio", "zapatos"}, catalog.Categories(products))
	assert.Empty(t, catalog.Categories(nil))
}

func TestPageNumbers(t *testing.T) {
	assert.Equal(t, []int{}, catalog.PageNumbers(1, 0))
	assert.Equal(t, []int{1, 2, 3, 4, 5, 6, 7}, catalog.PageNumbers(4, 7))
	assert.Equal(t, []int{1, 2, 10}, catalog.PageNumbers(1, 10))
	assert.Equal(t, []int{1, 4, 5, 6, 10}, catalog.PageNumbers(5, 10))
	assert.Equal(t, []int{1, 9, 10}, catalog.PageNumbers(10, 10))
}

func TestParseSortKey(t *testing.T) {
	k, err := catalog.ParseSortKey("PRICE-ASC")
	assert.NoError(t, err)
	assert.Equal(t, catalog.SortPriceAsc, k)

	k, err = catalog.ParseSortKey("")
	assert.NoError(t, err)
	assert.Equal(t, catalog.SortDefault, k)

	_, err = catalog.ParseSortKey("cheapest")
	assert.Error(t, err)
}
