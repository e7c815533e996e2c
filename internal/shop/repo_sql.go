package shop

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type cartItemRecord struct {
	UserID    string `gorm:"column:user_id;primaryKey"`
	ProductID string `gorm:"column:product_id;primaryKey"`
	Quantity  int    `gorm:"column:quantity"`
	Position  int    `gorm:"column:position"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (cartItemRecord) TableName() string { return "cart_items" }

type txRunner interface {
	DB() *gorm.DB
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SQLRepository stores cart lines in the cart_items table.
type SQLRepository struct {
	db txRunner
}

func NewSQLRepository(db txRunner) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Load(ctx context.Context, userID string) ([]Line, error) {
	var records []cartItemRecord
	err := r.db.DB().WithContext(ctx).
		Where("user_id = ?", userID).
		Order("position ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(records))
	for _, rec := range records {
		lines = append(lines, Line{ProductID: rec.ProductID, Quantity: rec.Quantity})
	}
	return lines, nil
}

// Save replaces the shopper's rows in one transaction.
func (r *SQLRepository) Save(ctx context.Context, userID string, lines []Line) error {
	return r.db.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).Delete(&cartItemRecord{}).Error; err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}
		records := make([]cartItemRecord, 0, len(lines))
		for i, line := range lines {
			records = append(records, cartItemRecord{
				UserID:    userID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Position:  i,
			})
		}
		return tx.Create(&records).Error
	})
}
