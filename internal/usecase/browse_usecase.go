package usecase

import (
	"context"
	"sync"
	"time"

	"storefront/internal/catalog"
	"storefront/internal/debounce"
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
	"storefront/internal/session"
)

// 検索入力のデバウンス
const DefaultSearchDebounce = 300 * time.Millisecond

// 一覧画面の描画に必要なもの一式
type HomeView struct {
	State       catalog.ViewState
	RawSearch   string
	Categories  []string
	Page        catalog.Page
	PageNumbers []int
	// カタログ取得の失敗。画面内にエラーとして出す
	Err error
}

// BrowseUsecaseは一覧画面のViewStateを持つ。
// 検索はrawが即時更新、フィルタに使う値はデバウンス後に更新
type BrowseUsecase struct {
	store    *session.Store
	products repo.ProductRepository
	pipeline *catalog.Pipeline
	search   *debounce.Debouncer[string]

	mu         sync.Mutex
	state      catalog.ViewState
	raw        string
	version    uint64
	hasVersion bool
	categories []string
	totalPages int
	onChange   func()
}

// DI
func NewBrowseUsecase(store *session.Store, products repo.ProductRepository, pipeline *catalog.Pipeline, searchDelay time.Duration) *BrowseUsecase {
	if pipeline == nil {
		pipeline = catalog.NewPipeline()
	}
	u := &BrowseUsecase{
		store:    store,
		products: products,
		pipeline: pipeline,
		state:    catalog.DefaultViewState(),
	}
	u.search = debounce.New(searchDelay, u.applySearch)
	return u
}

// デバウンス後の検索値が反映されたときに呼ばれる
func (u *BrowseUsecase) OnChange(fn func()) {
	u.mu.Lock()
	u.onChange = fn
	u.mu.Unlock()
}

// 入力中の検索文字列。フィルタへの反映はデバウンス後
func (u *BrowseUsecase) SetSearch(raw string) {
	u.mu.Lock()
	u.raw = raw
	u.mu.Unlock()
	u.search.Push(raw)
}

// 待たずに反映する
func (u *BrowseUsecase) FlushSearch() {
	u.search.Flush()
}

func (u *BrowseUsecase) applySearch(v string) {
	u.mu.Lock()
	u.state.Search = v
	u.state.Page = 1
	fn := u.onChange
	u.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (u *BrowseUsecase) SetCategory(category string) {
	if category == "" {
		category = catalog.AllCategories
	}
	u.mu.Lock()
	u.state.Category = category
	u.state.Page = 1
	u.mu.Unlock()
}

func (u *BrowseUsecase) SetSort(key catalog.SortKey) {
	u.mu.Lock()
	u.state.Sort = key
	u.state.Page = 1
	u.mu.Unlock()
}

// SetPageは直近の表示のページ数で丸める
func (u *BrowseUsecase) SetPage(page int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.Page = clampPage(page, u.totalPages)
}

func (u *BrowseUsecase) NextPage() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.Page = clampPage(u.state.Page+1, u.totalPages)
}

func (u *BrowseUsecase) PrevPage() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.state.Page = clampPage(u.state.Page-1, u.totalPages)
}

// 画面を開き直したときの初期状態
func (u *BrowseUsecase) Reset() {
	u.search.Cancel()
	u.mu.Lock()
	u.state = catalog.DefaultViewState()
	u.raw = ""
	u.mu.Unlock()
}

func (u *BrowseUsecase) State() catalog.ViewState {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.state
}

// Viewはストアのカタログ（未取得なら取得）から現在のページを作る。
// カタログの世代が変わっていたらカテゴリを作り直してページを1に戻す
func (u *BrowseUsecase) View(ctx context.Context) HomeView {
	products, version, err := u.store.EnsureProducts(ctx)

	u.mu.Lock()
	defer u.mu.Unlock()

	if err != nil {
		return HomeView{State: u.state, RawSearch: u.raw, Categories: u.categories, Err: err}
	}

	if !u.hasVersion || version != u.version {
		if u.hasVersion {
			u.state.Page = 1
		}
		u.version = version
		u.hasVersion = true
		u.categories = catalog.Categories(products)
	}

	page := u.pipeline.Derive(products, u.state)
	u.totalPages = page.TotalPages

	return HomeView{
		State:       u.state,
		RawSearch:   u.raw,
		Categories:  append([]string(nil), u.categories...),
		Page:        page,
		PageNumbers: catalog.PageNumbers(page.Page, page.TotalPages),
	}
}

// 商品詳細。失敗は画面内に出す
func (u *BrowseUsecase) Product(ctx context.Context, productID string) (model.Product, error) {
	return u.products.FindByID(ctx, productID)
}

func (u *BrowseUsecase) Close() {
	u.search.Stop()
}

func clampPage(page, totalPages int) int {
	if totalPages > 0 && page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}
