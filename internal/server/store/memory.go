package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain/model"
)

// memDataはメモリストアの中身。順序はスライスで持つ（登録順）
type memData struct {
	users        map[string]model.User
	userOrder    []string
	products     map[string]model.Product
	productOrder []string
	carts        map[string][]Line
	tickets      []model.Ticket
	auditLogs    []model.AuditLog
	auditSeq     int64
}

func newMemData() *memData {
	return &memData{
		users:    map[string]model.User{},
		products: map[string]model.Product{},
		carts:    map[string][]Line{},
	}
}

// tx用のコピー
func (d *memData) clone() *memData {
	out := &memData{
		users:        make(map[string]model.User, len(d.users)),
		userOrder:    append([]string(nil), d.userOrder...),
		products:     make(map[string]model.Product, len(d.products)),
		productOrder: append([]string(nil), d.productOrder...),
		carts:        make(map[string][]Line, len(d.carts)),
		tickets:      append([]model.Ticket(nil), d.tickets...),
		auditLogs:    append([]model.AuditLog(nil), d.auditLogs...),
		auditSeq:     d.auditSeq,
	}
	for k, v := range d.users {
		out.users[k] = v
	}
	for k, v := range d.products {
		out.products[k] = v
	}
	for k, v := range d.carts {
		out.carts[k] = append([]Line(nil), v...)
	}
	return out
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

// MemoryStoreはテスト・ローカル用のstore.Store。
// WithinTxはコピーに対して実行し、成功したときだけ差し替える
type MemoryStore struct {
	mu   sync.Mutex
	data *memData
	now  func() time.Time
}

// DI
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newMemData(), now: time.Now}
}

func (s *MemoryStore) Users() UserRepository         { return memUsers{s.repos()} }
func (s *MemoryStore) Products() ProductRepository   { return memProducts{s.repos()} }
func (s *MemoryStore) Carts() CartRepository         { return memCarts{s.repos()} }
func (s *MemoryStore) Tickets() TicketRepository     { return memTickets{s.repos()} }
func (s *MemoryStore) AuditLogs() AuditLogRepository { return memAuditLogs{s.repos()} }

func (s *MemoryStore) repos() memRepos { return memRepos{s: s} }

func (s *MemoryStore) WithinTx(ctx context.Context, fn func(r Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.data.clone()
	if err := fn(memRepos{s: s, tx: snapshot}); err != nil {
		return err
	}
	s.data = snapshot
	return nil
}

// memReposはtx中ならtxのコピーを、そうでなければロックして本体を触る
type memRepos struct {
	s  *MemoryStore
	tx *memData
}

func (r memRepos) Users() UserRepository         { return memUsers{r} }
func (r memRepos) Products() ProductRepository   { return memProducts{r} }
func (r memRepos) Carts() CartRepository         { return memCarts{r} }
func (r memRepos) Tickets() TicketRepository     { return memTickets{r} }
func (r memRepos) AuditLogs() AuditLogRepository { return memAuditLogs{r} }

func (r memRepos) with(ctx context.Context, fn func(d *memData) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.tx != nil {
		return fn(r.tx)
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return fn(r.s.data)
}

// ---- users ----

type memUsers struct{ memRepos }

func (r memUsers) Create(ctx context.Context, u *model.User) error {
	return r.with(ctx, func(d *memData) error {
		if _, ok := d.users[u.ID]; ok {
			return ErrConflict
		}
		for _, v := range d.users {
			if strings.EqualFold(v.Email, u.Email) {
				return ErrConflict
			}
		}
		now := r.s.now()
		u.CreatedAt, u.UpdatedAt = now, now
		d.users[u.ID] = *u
		d.userOrder = append(d.userOrder, u.ID)
		return nil
	})
}

func (r memUsers) FindByID(ctx context.Context, id string) (model.User, error) {
	var out model.User
	err := r.with(ctx, func(d *memData) error {
		u, ok := d.users[id]
		if !ok {
			return ErrNotFound
		}
		out = u
		return nil
	})
	return out, err
}

func (r memUsers) FindByEmail(ctx context.Context, email string) (model.User, error) {
	var out model.User
	err := r.with(ctx, func(d *memData) error {
		for _, u := range d.users {
			if strings.EqualFold(u.Email, email) {
				out = u
				return nil
			}
		}
		return ErrNotFound
	})
	return out, err
}

// プロフィール項目だけ更新
func (r memUsers) Update(ctx context.Context, u model.User) error {
	return r.with(ctx, func(d *memData) error {
		cur, ok := d.users[u.ID]
		if !ok {
			return ErrNotFound
		}
		cur.FirstName, cur.LastName, cur.Age = u.FirstName, u.LastName, u.Age
		cur.UpdatedAt = r.s.now()
		d.users[u.ID] = cur
		return nil
	})
}

func (r memUsers) List(ctx context.Context) ([]model.User, error) {
	out := []model.User{}
	err := r.with(ctx, func(d *memData) error {
		for _, id := range d.userOrder {
			out = append(out, d.users[id])
		}
		return nil
	})
	return out, err
}

func (r memUsers) Delete(ctx context.Context, id string) error {
	return r.with(ctx, func(d *memData) error {
		if _, ok := d.users[id]; !ok {
			return ErrNotFound
		}
		delete(d.users, id)
		d.userOrder = removeID(d.userOrder, id)
		return nil
	})
}

func (r memUsers) BumpTokenVersion(ctx context.Context, id string) error {
	return r.with(ctx, func(d *memData) error {
		u, ok := d.users[id]
		if !ok {
			return ErrNotFound
		}
		u.TokenVersion++
		d.users[id] = u
		return nil
	})
}

// ---- products ----

type memProducts struct{ memRepos }

func (r memProducts) List(ctx context.Context, limit int, activeOnly bool) ([]model.Product, error) {
	out := []model.Product{}
	err := r.with(ctx, func(d *memData) error {
		for _, id := range d.productOrder {
			p := d.products[id]
			if activeOnly && !p.Status {
				continue
			}
			out = append(out, p)
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func (r memProducts) FindByID(ctx context.Context, id string) (model.Product, error) {
	var out model.Product
	err := r.with(ctx, func(d *memData) error {
		p, ok := d.products[id]
		if !ok {
			return ErrNotFound
		}
		out = p
		return nil
	})
	return out, err
}

func (r memProducts) FindByIDs(ctx context.Context, ids []string) (map[string]model.Product, error) {
	out := make(map[string]model.Product, len(ids))
	err := r.with(ctx, func(d *memData) error {
		for _, id := range ids {
			if p, ok := d.products[id]; ok {
				out[id] = p
			}
		}
		return nil
	})
	return out, err
}

func codeTaken(d *memData, code, exceptID string) bool {
	for id, p := range d.products {
		if id != exceptID && p.Code == code {
			return true
		}
	}
	return false
}

func (r memProducts) Create(ctx context.Context, p *model.Product) error {
	return r.with(ctx, func(d *memData) error {
		if _, ok := d.products[p.ID]; ok || codeTaken(d, p.Code, "") {
			return ErrConflict
		}
		now := r.s.now()
		p.CreatedAt, p.UpdatedAt = now, now
		d.products[p.ID] = *p
		d.productOrder = append(d.productOrder, p.ID)
		return nil
	})
}

func (r memProducts) Update(ctx context.Context, p model.Product) error {
	return r.with(ctx, func(d *memData) error {
		cur, ok := d.products[p.ID]
		if !ok {
			return ErrNotFound
		}
		if codeTaken(d, p.Code, p.ID) {
			return ErrConflict
		}
		p.CreatedAt = cur.CreatedAt
		p.UpdatedAt = r.s.now()
		d.products[p.ID] = p
		return nil
	})
}

func (r memProducts) Delete(ctx context.Context, id string) error {
	return r.with(ctx, func(d *memData) error {
		if _, ok := d.products[id]; !ok {
			return ErrNotFound
		}
		delete(d.products, id)
		d.productOrder = removeID(d.productOrder, id)
		return nil
	})
}

func (r memProducts) DecreaseStockIfEnough(ctx context.Context, id string, qty int) (bool, error) {
	var ok bool
	err := r.with(ctx, func(d *memData) error {
		p, found := d.products[id]
		if !found || p.Stock < qty {
			return nil
		}
		p.Stock -= qty
		d.products[id] = p
		ok = true
		return nil
	})
	return ok, err
}

// ---- carts ----

type memCarts struct{ memRepos }

func (r memCarts) Create(ctx context.Context, id string) error {
	return r.with(ctx, func(d *memData) error {
		if _, ok := d.carts[id]; ok {
			return ErrConflict
		}
		d.carts[id] = []Line{}
		return nil
	})
}

func (r memCarts) Exists(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := r.with(ctx, func(d *memData) error {
		_, ok = d.carts[id]
		return nil
	})
	return ok, err
}

func (r memCarts) Lines(ctx context.Context, cartID string) ([]Line, error) {
	out := []Line{}
	err := r.with(ctx, func(d *memData) error {
		out = append(out, d.carts[cartID]...)
		return nil
	})
	return out, err
}

func (r memCarts) AddLine(ctx context.Context, cartID, productID string, qty int) error {
	if qty <= 0 {
		return errors.New("invalid quantity")
	}
	return r.with(ctx, func(d *memData) error {
		lines, ok := d.carts[cartID]
		if !ok {
			return ErrNotFound
		}
		for i := range lines {
			if lines[i].ProductID == productID {
				lines[i].Quantity += qty
				return nil
			}
		}
		d.carts[cartID] = append(lines, Line{ProductID: productID, Quantity: qty})
		return nil
	})
}

func (r memCarts) SetLine(ctx context.Context, cartID, productID string, qty int) error {
	if qty <= 0 {
		return r.RemoveLine(ctx, cartID, productID)
	}
	return r.with(ctx, func(d *memData) error {
		lines, ok := d.carts[cartID]
		if !ok {
			return ErrNotFound
		}
		for i := range lines {
			if lines[i].ProductID == productID {
				lines[i].Quantity = qty
				return nil
			}
		}
		d.carts[cartID] = append(lines, Line{ProductID: productID, Quantity: qty})
		return nil
	})
}

func (r memCarts) RemoveLine(ctx context.Context, cartID, productID string) error {
	return r.with(ctx, func(d *memData) error {
		lines := d.carts[cartID]
		for i := range lines {
			if lines[i].ProductID == productID {
				d.carts[cartID] = append(lines[:i], lines[i+1:]...)
				return nil
			}
		}
		return ErrNotFound
	})
}

func (r memCarts) Clear(ctx context.Context, cartID string) error {
	return r.with(ctx, func(d *memData) error {
		if _, ok := d.carts[cartID]; !ok {
			return ErrNotFound
		}
		d.carts[cartID] = []Line{}
		return nil
	})
}

func (r memCarts) Delete(ctx context.Context, cartID string) error {
	return r.with(ctx, func(d *memData) error {
		if _, ok := d.carts[cartID]; !ok {
			return ErrNotFound
		}
		delete(d.carts, cartID)
		return nil
	})
}

// ---- tickets ----

type memTickets struct{ memRepos }

func (r memTickets) Create(ctx context.Context, t *model.Ticket) error {
	return r.with(ctx, func(d *memData) error {
		for _, v := range d.tickets {
			if v.ID == t.ID || v.Code == t.Code {
				return ErrConflict
			}
		}
		d.tickets = append(d.tickets, *t)
		return nil
	})
}

func (r memTickets) ListByPurchaser(ctx context.Context, email string) ([]model.Ticket, error) {
	out := []model.Ticket{}
	err := r.with(ctx, func(d *memData) error {
		for i := len(d.tickets) - 1; i >= 0; i-- {
			if d.tickets[i].Purchaser == email {
				out = append(out, d.tickets[i])
			}
		}
		return nil
	})
	return out, err
}

// ---- audit logs ----

type memAuditLogs struct{ memRepos }

func (r memAuditLogs) Create(ctx context.Context, log model.AuditLog) error {
	return r.with(ctx, func(d *memData) error {
		d.auditSeq++
		log.ID = d.auditSeq
		if log.CreatedAt.IsZero() {
			log.CreatedAt = r.s.now()
		}
		d.auditLogs = append(d.auditLogs, log)
		return nil
	})
}

// 新しい順
func (r memAuditLogs) List(ctx context.Context, limit int) ([]model.AuditLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	out := []model.AuditLog{}
	err := r.with(ctx, func(d *memData) error {
		for i := len(d.auditLogs) - 1; i >= 0 && len(out) < limit; i-- {
			out = append(out, d.auditLogs[i])
		}
		return nil
	})
	return out, err
}
