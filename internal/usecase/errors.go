package usecase

import "errors"

var (
	//在庫0の商品は追加できない
	ErrOutOfStock = errors.New("product is out of stock")
	//カート内の数量が在庫に達している
	ErrStockExceeded = errors.New("not enough stock")
	//購入・全削除の二重実行
	ErrBusy = errors.New("operation already in progress")
	//変更は成功したがカートの再取得に失敗した
	ErrCartRefresh = errors.New("cart refresh failed")
	//管理者が自分自身を削除しようとした
	ErrDeleteSelf = errors.New("cannot delete your own account")
)
