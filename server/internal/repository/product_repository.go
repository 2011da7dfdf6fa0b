package repository

import (
	"log"

	"shelfwatch/server/internal/model"

	"gorm.io/gorm"
)

type ProductRepository interface {
	GetProducts(brand, priceCategory, ratingCategory string, limit int) []model.Product
	GetProduct(productID string) (*model.Product, error)
	GetPriceHistory(productID string, limit int) []model.PriceHistory
	GetProductCount() int64
	GetProductCountByPriceCategory() map[string]int
	GetGoodDeals(limit int) []model.PriceHistory
}

type gormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) ProductRepository {
	return &gormProductRepository{db: db}
}

func (gpr *gormProductRepository) GetProducts(brand, priceCategory, ratingCategory string, limit int) []model.Product {
	var products []model.Product
	query := gpr.db.Order("product_id").Limit(limit)
	if brand != "" {
		query = query.Where("brand = ?", brand)
	}
	if priceCategory != "" {
		query = query.Where("price_category = ?", priceCategory)
	}
	if ratingCategory != "" {
		query = query.Where("rating_category = ?", ratingCategory)
	}
	if err := query.Find(&products).Error; err != nil {
		log.Printf("Error for query: %v", err)
		return []model.Product{}
	}
	return products
}

func (gpr *gormProductRepository) GetProduct(productID string) (*model.Product, error) {
	var product model.Product
	err := gpr.db.Where("product_id = ?", productID).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (gpr *gormProductRepository) GetPriceHistory(productID string, limit int) []model.PriceHistory {
	var history []model.PriceHistory
	err := gpr.db.Where("product_id = ?", productID).
		Order("scrape_date desc").
		Limit(limit).
		Find(&history).Error
	if err != nil {
		log.Printf("Error for query: %v", err)
		return []model.PriceHistory{}
	}
	return history
}

func (gpr *gormProductRepository) GetProductCount() int64 {
	var count int64
	if err := gpr.db.Model(&model.Product{}).Count(&count).Error; err != nil {
		log.Printf("Error for query: %v", err)
		return 0
	}
	return count
}

func (gpr *gormProductRepository) GetProductCountByPriceCategory() map[string]int {
	type CategoryCount struct {
		PriceCategory string
		Count         int
	}
	var categoryCountResult []CategoryCount
	err := gpr.db.Model(&model.Product{}).
		Select("price_category, count(*) as count").
		Group("price_category").
		Scan(&categoryCountResult).Error
	if err != nil {
		log.Printf("Error for query: %v", err)
		return make(map[string]int)
	}
	result := make(map[string]int, len(categoryCountResult))
	for _, r := range categoryCountResult {
		result[r.PriceCategory] = r.Count
	}
	return result
}

// GetGoodDeals returns the latest history row per product+category where the
// current price sits below the trailing average.
func (gpr *gormProductRepository) GetGoodDeals(limit int) []model.PriceHistory {
	subQuery := gpr.db.Model(&model.PriceHistory{}).
		Select("*, ROW_NUMBER() OVER (PARTITION BY product_id, category ORDER BY scrape_date DESC) as rn")

	var deals []model.PriceHistory
	err := gpr.db.Table("(?) as ranked_history", subQuery).
		Where("rn = 1").
		Where("price_status = ?", "Good Deal").
		Order("price_change_pct").
		Limit(limit).
		Find(&deals).Error
	if err != nil {
		log.Printf("Error for query: %v", err)
		return []model.PriceHistory{}
	}
	return deals
}
