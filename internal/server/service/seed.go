package service

import (
	"context"
	"net/http"

	"storefront/internal/server/store"
)

// 監査ログのactor（初期データ投入）
const SeedActor = "seed"

type SeedResult struct {
	Users    int
	Products int
	Skipped  int
}

// ApplySeedは初期ユーザーと商品を作る。既にあるもの（409）は飛ばす
func ApplySeed(ctx context.Context, seed store.Seed, auth *AuthService, products *ProductService) (SeedResult, error) {
	var res SeedResult

	for _, u := range seed.Users {
		_, err := auth.createUser(ctx, RegisterInput{
			FirstName: u.FirstName,
			LastName:  u.LastName,
			Email:     u.Email,
			Age:       u.Age,
			Password:  u.Password,
			Role:      u.Role,
		})
		if isConflict(err) {
			res.Skipped++
			continue
		}
		if err != nil {
			return res, err
		}
		res.Users++
	}

	for _, p := range seed.Products {
		_, err := products.Create(ctx, SeedActor, ProductInput{
			Title:       p.Title,
			Description: p.Description,
			Price:       p.Price,
			Img:         p.Img,
			Code:        p.Code,
			Stock:       p.Stock,
			Category:    p.Category,
			Status:      p.Active(),
		})
		if isConflict(err) {
			res.Skipped++
			continue
		}
		if err != nil {
			return res, err
		}
		res.Products++
	}
	return res, nil
}

func isConflict(err error) bool {
	he, ok := AsHTTPError(err)
	return ok && he.Status == http.StatusConflict
}
