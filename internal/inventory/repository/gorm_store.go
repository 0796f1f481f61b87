package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfantasy/nimo-inventory/internal/inventory/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore 基于 gorm 的通用仓库
type GormStore[T any, PT recordPtr[T]] struct {
	db       *gorm.DB
	order    string
	preloads []string
}

func NewGormStore[T any, PT recordPtr[T]](db *gorm.DB, order string, preloads ...string) *GormStore[T, PT] {
	return &GormStore[T, PT]{db: db, order: order, preloads: preloads}
}

func (s *GormStore[T, PT]) query(ctx context.Context) *gorm.DB {
	q := s.db.WithContext(ctx)
	for _, p := range s.preloads {
		q = q.Preload(p)
	}
	return q
}

func (s *GormStore[T, PT]) List(ctx context.Context) ([]T, error) {
	var items []T
	q := s.query(ctx)
	if s.order != "" {
		q = q.Order(s.order)
	}
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *GormStore[T, PT]) Get(ctx context.Context, id uint) (*T, error) {
	var item T
	err := s.query(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *GormStore[T, PT]) Create(ctx context.Context, item *T) error {
	PT(item).SetID(0)
	return s.db.WithContext(ctx).Create(item).Error
}

// Update 保存主记录，明细行在创建后不再变更
func (s *GormStore[T, PT]) Update(ctx context.Context, item *T) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(new(T)).Where("id = ?", PT(item).GetID()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}
	return s.db.WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

func (s *GormStore[T, PT]) Delete(ctx context.Context, id uint) error {
	var item T
	PT(&item).SetID(id)
	result := s.db.WithContext(ctx).Select(clause.Associations).Delete(&item)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// gormNumberAllocator 使用 inv_sequences 表分配单据编号
type gormNumberAllocator struct {
	db *gorm.DB
}

func (a *gormNumberAllocator) Next(ctx context.Context, prefix string, year int) (int, error) {
	name := fmt.Sprintf("%s-%d", prefix, year)
	var seq entity.Sequence
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"value": gorm.Expr("inv_sequences.value + 1")}),
		}).Create(&entity.Sequence{Name: name, Value: 1}).Error; err != nil {
			return err
		}
		return tx.Where("name = ?", name).First(&seq).Error
	})
	if err != nil {
		return 0, fmt.Errorf("allocate %s number: %w", prefix, err)
	}
	return seq.Value, nil
}

// NewGormRepositories 创建基于数据库的仓库集合
func NewGormRepositories(db *gorm.DB) *Repositories {
	repos := newGormRepositories(db)
	repos.tx = func(ctx context.Context, fn func(repos *Repositories) error) error {
		return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(newGormRepositories(tx))
		})
	}
	return repos
}

func newGormRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Product:  NewGormStore[entity.Product](db, "id ASC"),
		Supplier: NewGormStore[entity.Supplier](db, "id ASC"),
		Movement: NewGormStore[entity.StockMovement](db, `"timestamp" DESC, id DESC`),
		Sales:    NewGormStore[entity.SalesOrder](db, "order_date DESC, id DESC", "Items"),
		Purchase: NewGormStore[entity.PurchaseOrder](db, "order_date DESC, id DESC", "Items"),
		Numbers:  &gormNumberAllocator{db: db},
	}
}
