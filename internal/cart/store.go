package cart

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/techfix-admin/internal/techfix"
)

// Store is the cart repository. The storage medium is swappable; the rest of
// the application only sees these operations.
type Store interface {
	// Load returns the user's cart, empty if none exists yet.
	Load(userID int64) (*Cart, error)
	// Add inserts the product with quantity 1, or increments the quantity
	// if it is already in the cart. No stock validation happens here.
	Add(userID int64, p techfix.Product) error
	// Clear removes every item from the user's cart.
	Clear(userID int64) error
}

// GormStore persists carts through gorm.
type GormStore struct {
	db *gorm.DB
}

// Open opens (or creates) the local sqlite store at path and migrates the
// cart schema. Use ":memory:" for an ephemeral store.
func Open(path string) (*GormStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open local store: %w", err)
	}
	return NewGormStore(db)
}

// NewGormStore wraps an existing gorm connection and migrates the schema.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Cart{}, &Item{}); err != nil {
		return nil, fmt.Errorf("migrate local store: %w", err)
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Load(userID int64) (*Cart, error) {
	var c Cart
	err := s.db.Preload("Items").Where("user_id = ?", userID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Cart{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *GormStore) Add(userID int64, p techfix.Product) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var c Cart
		err := tx.Where("user_id = ?", userID).First(&c).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c = Cart{UserID: userID}
			if err := tx.Create(&c).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		var item Item
		err = tx.Where("cart_id = ? AND product_id = ?", c.ID, p.ID).First(&item).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			item = Item{CartID: c.ID, ProductID: p.ID, Name: p.Name, Price: p.Price, Quantity: 1, AddedAt: time.Now()}
			return tx.Create(&item).Error
		}
		if err != nil {
			return err
		}
		item.Quantity++
		return tx.Save(&item).Error
	})
}

func (s *GormStore) Clear(userID int64) error {
	var c Cart
	err := s.db.Where("user_id = ?", userID).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.db.Where("cart_id = ?", c.ID).Delete(&Item{}).Error
}
