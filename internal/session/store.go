// Package session はuser・商品カタログ・カートを持つ共有ストア。
// 読み書きは全てStoreのメソッドを通す（利用側が直接いじらない）。
package session

import (
	"context"
	"errors"
	"sync"

	"storefront/internal/domain/model"
	repo "storefront/internal/repository"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

// ユーザーが無い、またはカートIDを持っていない
var ErrNoCart = errors.New("no cart in session")

// ErrNoUserは未ログイン
var ErrNoUser = errors.New("no user in session")

type ChangeKind int

const (
	ChangeUser ChangeKind = iota + 1
	ChangeProducts
	ChangeCart
)

// 取得中フラグ
type Loading struct {
	User     bool
	Products bool
	Cart     bool
}

type Options struct {
	CatalogLimit int
	Logger       *log.Logger
}

type Store struct {
	users    repo.SessionRepository
	products repo.ProductRepository
	carts    repo.CartRepository

	catalogLimit int
	log          *log.Logger

	mu             sync.RWMutex
	user           *model.User
	catalog        []model.Product
	catalogVersion uint64
	cart           *model.Cart
	loading        Loading
	userErr        error
	catalogErr     error
	cartErr        error

	//カート再取得の順序番号。古いレスポンスは捨てる
	cartSeq      uint64
	cartApplied  uint64
	cartInflight int

	subMu   sync.Mutex
	subs    map[int]func(ChangeKind)
	nextSub int
}

// DI
func New(users repo.SessionRepository, products repo.ProductRepository, carts repo.CartRepository, opts Options) *Store {
	if opts.CatalogLimit <= 0 {
		opts.CatalogLimit = 100
	}
	if opts.Logger == nil {
		opts.Logger = log.New("session")
		opts.Logger.SetLevel(log.OFF)
	}
	return &Store{
		users:        users,
		products:     products,
		carts:        carts,
		catalogLimit: opts.CatalogLimit,
		log:          opts.Logger,
		subs:         map[int]func(ChangeKind){},
	}
}

// Loadはuserを取得し、その後に商品とカートを並行で取得する。
// userの取得に失敗した場合はその時点で返す（未ログイン扱い）
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	s.loading.User = true
	s.mu.Unlock()

	u, err := s.users.Current(ctx)

	s.mu.Lock()
	s.loading.User = false
	if err != nil {
		s.user = nil
		s.userErr = err
		s.mu.Unlock()
		s.log.Warnf("fetch current user: %v", err)
		s.publish(ChangeUser)
		return err
	}
	s.user = &u
	s.userErr = nil
	s.mu.Unlock()
	s.publish(ChangeUser)

	//商品とカートはどちらもuserだけに依存する
	var g errgroup.Group
	var productsErr, cartErr error
	g.Go(func() error {
		productsErr = s.ReloadProducts(ctx)
		return nil
	})
	g.Go(func() error {
		if u.CartID == "" {
			return nil
		}
		cartErr = s.RefreshCart(ctx)
		return nil
	})
	_ = g.Wait()

	return errors.Join(productsErr, cartErr)
}

func (s *Store) User() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// 直近のuser取得エラー（未ログインなど）
func (s *Store) UserErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userErr
}

func (s *Store) SetUser(u *model.User) {
	s.mu.Lock()
	if u == nil {
		s.user = nil
	} else {
		cp := *u
		s.user = &cp
	}
	s.mu.Unlock()
	s.publish(ChangeUser)
}

// 現在のカタログとその世代番号。nilなら未取得
func (s *Store) Products() ([]model.Product, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.catalog == nil {
		return nil, s.catalogVersion
	}
	out := make([]model.Product, len(s.catalog))
	copy(out, s.catalog)
	return out, s.catalogVersion
}

func (s *Store) CatalogErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalogErr
}

// 世代番号を進める（カタログの同一性が変わる）
func (s *Store) SetProducts(products []model.Product) {
	s.mu.Lock()
	if products == nil {
		s.catalog = nil
	} else {
		s.catalog = make([]model.Product, len(products))
		copy(s.catalog, products)
	}
	s.catalogVersion++
	s.catalogErr = nil
	s.mu.Unlock()
	s.publish(ChangeProducts)
}

// 管理画面で商品を変更したら呼ぶ。次のEnsureProductsで取り直す
func (s *Store) InvalidateProducts() {
	s.SetProducts(nil)
}

func (s *Store) ReloadProducts(ctx context.Context) error {
	s.mu.Lock()
	s.loading.Products = true
	s.mu.Unlock()

	products, err := s.products.List(ctx, s.catalogLimit)

	if err != nil {
		s.mu.Lock()
		s.loading.Products = false
		s.catalogErr = err
		s.mu.Unlock()
		s.log.Warnf("fetch products: %v", err)
		s.publish(ChangeProducts)
		return err
	}
	if products == nil {
		products = []model.Product{}
	}

	s.mu.Lock()
	s.loading.Products = false
	s.mu.Unlock()
	s.SetProducts(products)
	return nil
}

// 未取得なら取得してから返す
func (s *Store) EnsureProducts(ctx context.Context) ([]model.Product, uint64, error) {
	if products, version := s.Products(); products != nil {
		return products, version, nil
	}
	if err := s.ReloadProducts(ctx); err != nil {
		return nil, 0, err
	}
	products, version := s.Products()
	return products, version, nil
}

func (s *Store) Cart() *model.Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Clone()
}

func (s *Store) CartErr() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cartErr
}

// ナビバーのバッジ
func (s *Store) CartCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.ItemCount()
}

func (s *Store) SetCart(c *model.Cart) {
	s.mu.Lock()
	s.cart = c.Clone()
	s.cartApplied = s.cartSeq
	s.mu.Unlock()
	s.publish(ChangeCart)
}

// CartIDはセッションユーザーのカートID
func (s *Store) CartID() (string, error) {
	u, ok := s.User()
	if !ok {
		return "", ErrNoUser
	}
	if u.CartID == "" {
		return "", ErrNoCart
	}
	return u.CartID, nil
}

// RefreshCartはカートを丸ごと取り直して置き換える。
// 失敗したらキャッシュはそのまま。後から発行したrefreshが先に反映済みなら結果を捨てる
func (s *Store) RefreshCart(ctx context.Context) error {
	cartID, err := s.CartID()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cartSeq++
	seq := s.cartSeq
	s.cartInflight++
	s.loading.Cart = true
	s.mu.Unlock()

	cart, err := s.carts.FindByID(ctx, cartID)

	s.mu.Lock()
	s.cartInflight--
	s.loading.Cart = s.cartInflight > 0
	if seq <= s.cartApplied {
		s.mu.Unlock()
		s.log.Debugf("drop stale cart refresh seq=%d applied=%d", seq, s.cartApplied)
		return nil
	}
	if err != nil {
		s.cartErr = err
		s.mu.Unlock()
		s.log.Warnf("refresh cart %s: %v", cartID, err)
		return err
	}
	s.cart = &cart
	s.cartApplied = seq
	s.cartErr = nil
	s.mu.Unlock()

	s.publish(ChangeCart)
	return nil
}

func (s *Store) Loading() Loading {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// ログアウト時に全部捨てる
func (s *Store) Reset() {
	s.mu.Lock()
	s.user = nil
	s.userErr = nil
	s.catalog = nil
	s.catalogVersion++
	s.catalogErr = nil
	s.cart = nil
	s.cartErr = nil
	s.cartApplied = s.cartSeq
	s.mu.Unlock()

	s.publish(ChangeUser)
	s.publish(ChangeProducts)
	s.publish(ChangeCart)
}

// Subscribeは変更通知を登録する。戻り値で解除
func (s *Store) Subscribe(fn func(ChangeKind)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) publish(kind ChangeKind) {
	s.subMu.Lock()
	fns := make([]func(ChangeKind), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(kind)
	}
}
