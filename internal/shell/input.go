package shell

import (
	"storefront/internal/domain/model"
	repo "storefront/internal/repository"
)

// 新規作成は公開状態で始める
func defaultProductInput() repo.ProductInput {
	return repo.ProductInput{Status: true}
}

func inputFromProduct(p model.Product) repo.ProductInput {
	return repo.ProductInput{
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price,
		Img:         p.Img,
		Code:        p.Code,
		Stock:       p.Stock,
		Category:    p.Category,
		Status:      p.Status,
	}
}
