// Package service defines the interfaces for all application services.
package service

import (
	"context"

	"github.com/Veraticus/tally-ho/internal/model"
)

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Budget operations. GetBudget returns nil when no budget exists yet.
	GetBudget(ctx context.Context) (*model.Budget, error)
	CreateBudget(ctx context.Context, budget *model.Budget) (*model.Budget, error)
	UpdateBudget(ctx context.Context, budget *model.Budget) error

	// Category operations. Categories are returned with their sub-items.
	GetCategories(ctx context.Context, budgetID int64) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	CreateCategory(ctx context.Context, category *model.Category) (*model.Category, error)
	UpdateCategory(ctx context.Context, category *model.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	// Transaction operations.
	SaveTransaction(ctx context.Context, txn *model.Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	SaveAssignments(ctx context.Context, txnID string, assignments []model.Assignment) error
	GetAssignments(ctx context.Context, txnID string) ([]model.Assignment, error)

	// Database management.
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction.
	Storage
}
