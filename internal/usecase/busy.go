package usecase

import "sync"

// busyは操作ごとの実行中フラグ。同じ操作が走っている間の再実行を弾く
type busy[T any] struct {
	mu    sync.Mutex
	flags T
}

func (b *busy[T]) begin(flag func(*T) *bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	f := flag(&b.flags)
	if *f {
		return false
	}
	*f = true
	return true
}

func (b *busy[T]) end(flag func(*T) *bool) {
	b.mu.Lock()
	*flag(&b.flags) = false
	b.mu.Unlock()
}

func (b *busy[T]) snapshot() T {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.flags
}
