package pgdb

import (
	"context"
	"database/sql"
	"errors"
	"sourcing-negotiation-api/internal/common"
	"sourcing-negotiation-api/internal/entity"
	"sourcing-negotiation-api/internal/repo/repo_errors"
	"sourcing-negotiation-api/pkg/postgres"
	"time"

	"github.com/google/uuid"
)

type SupplierRepo struct {
	*postgres.Postgres
}

func NewSupplierRepo(pgdb *postgres.Postgres) *SupplierRepo {
	return &SupplierRepo{pgdb}
}

func (r *SupplierRepo) GetSupplierById(ctx context.Context, id string) (*entity.Supplier, error) {
	uuidForm, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}

	getSupplierSql, args, _ := r.SqlBuilder.
		Select("id", "session_id", "company_name", "industry", "initial_price", "final_price", "status", "negotiation_round", "created_at").
		From("supplier").
		Where("id = ?", uuidForm).
		ToSql()

	supplier, err := scanSupplier(r.Database.QueryRow(getSupplierSql, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repo_errors.ErrNotFound
		}

		return nil, err
	}

	return supplier, nil
}

func (r *SupplierRepo) GetSessionSuppliers(ctx context.Context, sessionId uuid.UUID) ([]entity.Supplier, error) {
	getSuppliersSql, args, _ := r.SqlBuilder.
		Select("id", "session_id", "company_name", "industry", "initial_price", "final_price", "status", "negotiation_round", "created_at").
		From("supplier").
		Where("session_id = ?", sessionId).
		OrderBy("created_at ASC", "seq ASC").
		ToSql()

	rows, err := r.Database.Query(getSuppliersSql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	suppliers := make([]entity.Supplier, 0)
	for rows.Next() {
		supplier, err := scanSupplier(rows)
		if err != nil {
			return suppliers, err
		}
		suppliers = append(suppliers, *supplier)
	}
	if err = rows.Err(); err != nil {
		return suppliers, err
	}

	return suppliers, nil
}

// RecordSupplierReply runs one advance transition in a single transaction.
// The supplier row update carries a `negotiation_round = ObservedRound` guard;
// a row that moved on since the state machine read it fails the whole
// transaction with ErrVersionConflict instead of double-appending messages.
func (r *SupplierRepo) RecordSupplierReply(ctx context.Context, input *entity.SupplierReplyInput) error {
	tx, err := r.Database.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	update := r.SqlBuilder.
		Update("supplier").
		Where("id = ?", input.SupplierId).
		Where("negotiation_round = ?", input.ObservedRound)

	if input.SetInitialPrice {
		update = update.Set("initial_price", input.PriceMentioned)
	}
	if input.NewStatus != "" {
		update = update.Set("status", input.NewStatus)
	}
	if input.NewRound != nil {
		update = update.Set("negotiation_round", *input.NewRound)
	} else {
		// No column would change otherwise; rewrite the round to keep the
		// optimistic guard effective.
		update = update.Set("negotiation_round", input.ObservedRound)
	}
	if input.FinalPrice != nil {
		update = update.Set("final_price", *input.FinalPrice)
	}

	updateSupplierSql, args, _ := update.RunWith(tx).ToSql()

	result, err := tx.Exec(updateSupplierSql, args...)
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}
	if affected == 0 {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return repo_errors.ErrVersionConflict
	}

	createReplySql, args, _ := r.SqlBuilder.
		Insert("message").
		Columns("supplier_id", "sender", "content", "price_mentioned").
		Values(input.SupplierId, common.SenderSupplier, input.Content, input.PriceMentioned).
		RunWith(tx).
		ToSql()

	if _, err = tx.Exec(createReplySql, args...); err != nil {
		if e := tx.Rollback(); e != nil {
			return e
		}

		return err
	}

	if input.NewRound != nil {
		createCounterSql, args, _ := r.SqlBuilder.
			Insert("message").
			Columns("supplier_id", "sender", "content").
			Values(input.SupplierId, common.SenderBuyer, input.BuyerContent).
			RunWith(tx).
			ToSql()

		if _, err = tx.Exec(createCounterSql, args...); err != nil {
			if e := tx.Rollback(); e != nil {
				return e
			}

			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	return nil
}

func (r *SupplierRepo) CompleteSupplier(ctx context.Context, supplierId uuid.UUID, finalPrice *float64) error {
	update := r.SqlBuilder.
		Update("supplier").
		Set("status", common.SupplierCompleted).
		Where("id = ?", supplierId)

	if finalPrice != nil {
		update = update.Set("final_price", *finalPrice)
	}

	completeSupplierSql, args, _ := update.ToSql()

	result, err := r.Database.Exec(completeSupplierSql, args...)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repo_errors.ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSupplier(row rowScanner) (*entity.Supplier, error) {
	var supplier entity.Supplier
	var initialPrice, finalPrice sql.NullFloat64
	var createdAt time.Time

	err := row.Scan(&supplier.Id, &supplier.SessionId, &supplier.CompanyName, &supplier.Industry,
		&initialPrice, &finalPrice, &supplier.Status, &supplier.NegotiationRound, &createdAt)
	if err != nil {
		return nil, err
	}

	if initialPrice.Valid {
		supplier.InitialPrice = &initialPrice.Float64
	}
	if finalPrice.Valid {
		supplier.FinalPrice = &finalPrice.Float64
	}
	supplier.CreatedAt = createdAt.Format(time.RFC3339)

	return &supplier, nil
}
