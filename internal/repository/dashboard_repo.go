package repository

import (
	"time"

	"go-inventory-mt/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// StockMovementData is one day of purchased and sold quantities.
type StockMovementData struct {
	Date      string `json:"date"`
	Purchased int    `json:"purchased"`
	Sold      int    `json:"sold"`
}

// DashboardStats summarises a tenant's catalogue and ledgers.
type DashboardStats struct {
	TotalProducts  int64           `json:"total_products"`
	LowStockCount  int64           `json:"low_stock_count"`
	TotalValuation decimal.Decimal `json:"total_valuation"`
}

type DashboardRepository interface {
	GetDashboardStats(companyID *uuid.UUID) (*DashboardStats, error)
	GetStockMovement(companyID *uuid.UUID, startDate, endDate time.Time) ([]StockMovementData, error)
	GetLowStock(companyID *uuid.UUID, limit int) ([]model.Product, error)
}

type dashboardRepo struct {
	db *gorm.DB
}

func NewDashboardRepo(db *gorm.DB) DashboardRepository {
	return &dashboardRepo{db}
}

func (r *dashboardRepo) products(companyID *uuid.UUID) *gorm.DB {
	q := r.db.Model(&model.Product{})
	if companyID != nil {
		q = q.Where("company_id = ?", *companyID)
	}
	return q
}

func (r *dashboardRepo) GetDashboardStats(companyID *uuid.UUID) (*DashboardStats, error) {
	var stats DashboardStats

	if err := r.products(companyID).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}

	if err := r.products(companyID).Where("current_stock <= minimum_stock").Count(&stats.LowStockCount).Error; err != nil {
		return nil, err
	}

	// Total Valuation (SUM of stock * price)
	var valuation decimal.NullDecimal
	if err := r.products(companyID).Select("SUM(current_stock * price)").Row().Scan(&valuation); err != nil {
		return nil, err
	}
	stats.TotalValuation = valuation.Decimal.Round(2)

	return &stats, nil
}

type dailyQuantity struct {
	Day      string
	Quantity int
}

// GetStockMovement aggregates purchased and sold quantities per calendar day.
func (r *dashboardRepo) GetStockMovement(companyID *uuid.UUID, startDate, endDate time.Time) ([]StockMovementData, error) {
	purchased, err := r.dailyTotals(&model.PurchaseInfo{}, "purchase_infos", "purchase_date", companyID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	sold, err := r.dailyTotals(&model.SaleRecord{}, "sale_records", "sale_date", companyID, startDate, endDate)
	if err != nil {
		return nil, err
	}

	byDay := make(map[string]*StockMovementData)
	var results []StockMovementData
	for day := startDate.Truncate(24 * time.Hour); !day.After(endDate); day = day.AddDate(0, 0, 1) {
		results = append(results, StockMovementData{Date: day.Format("2006-01-02")})
	}
	for i := range results {
		byDay[results[i].Date] = &results[i]
	}
	for _, d := range purchased {
		if row, ok := byDay[d.Day]; ok {
			row.Purchased += d.Quantity
		}
	}
	for _, d := range sold {
		if row, ok := byDay[d.Day]; ok {
			row.Sold += d.Quantity
		}
	}
	return results, nil
}

func (r *dashboardRepo) dailyTotals(table interface{}, name, dateColumn string, companyID *uuid.UUID, startDate, endDate time.Time) ([]dailyQuantity, error) {
	q := r.db.Model(table).
		Select("DATE("+name+"."+dateColumn+") AS day, COALESCE(SUM("+name+".quantity), 0) AS quantity").
		Joins("JOIN products ON products.id = "+name+".product_id").
		Where(name+"."+dateColumn+" BETWEEN ? AND ?", startDate, endDate)
	if companyID != nil {
		q = q.Where("products.company_id = ?", *companyID)
	}

	rows, err := q.Group("DATE(" + name + "." + dateColumn + ")").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []dailyQuantity
	for rows.Next() {
		var d dailyQuantity
		if err := rows.Scan(&d.Day, &d.Quantity); err != nil {
			return nil, err
		}
		// postgres returns a timestamp rendering for DATE()
		if len(d.Day) > 10 {
			d.Day = d.Day[:10]
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *dashboardRepo) GetLowStock(companyID *uuid.UUID, limit int) ([]model.Product, error) {
	var products []model.Product
	err := r.products(companyID).
		Where("current_stock <= minimum_stock").
		Order("current_stock ASC, name ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}
