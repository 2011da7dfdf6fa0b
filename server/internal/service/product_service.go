package service

import (
	"shelfwatch/server/internal/model"
	"shelfwatch/server/internal/repository"
)

const defaultLimit = 50

type ProductsService struct {
	repo repository.ProductRepository
}

func NewProductsService(repo repository.ProductRepository) *ProductsService {
	return &ProductsService{
		repo: repo,
	}
}

func (ps *ProductsService) GetProducts(brand, priceCategory, ratingCategory string) []model.Product {
	return ps.repo.GetProducts(brand, priceCategory, ratingCategory, defaultLimit)
}

func (ps *ProductsService) GetProduct(productID string) (*model.Product, error) {
	return ps.repo.GetProduct(productID)
}

func (ps *ProductsService) GetPriceHistory(productID string) []model.PriceHistory {
	return ps.repo.GetPriceHistory(productID, 30)
}

func (ps *ProductsService) GetCountProducts() int64 {
	return ps.repo.GetProductCount()
}

func (ps *ProductsService) GetCountPerPriceCategory() map[string]int {
	return ps.repo.GetProductCountByPriceCategory()
}

func (ps *ProductsService) GetGoodDeals() []model.PriceHistory {
	return ps.repo.GetGoodDeals(20)
}
