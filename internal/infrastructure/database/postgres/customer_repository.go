package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loan-origination/internal/domain/customer"
	"loan-origination/internal/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const customerSelect = `
        SELECT c.id, c.user_id, u.name, u.email, c.plafond_id, c.remaining_limit,
               c.nik, c.address, c.phone, c.mother_maiden_name, c.occupation, c.salary,
               c.bank_account_number, c.house_status, c.id_card_url, c.selfie_url, c.updated_at
        FROM customers c
        JOIN users u ON u.id = c.user_id`

const (
	sqlCustomerByID            = customerSelect + ` WHERE c.id = $1`
	sqlCustomerByUserID        = customerSelect + ` WHERE c.user_id = $1`
	sqlCustomerByIDForUpdate   = sqlCustomerByID + ` FOR UPDATE OF c`
	sqlCustomerByUserForUpdate = sqlCustomerByUserID + ` FOR UPDATE OF c`

	sqlUpdateRemainingLimit = `
        UPDATE customers
        SET remaining_limit = $1, updated_at = $2
        WHERE id = $3`
)

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.Repository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	return &CustomerRepository{db: db, logger: logger.With("component", "CustomerRepository")}
}

// Profile columns stay NULL until the customer fills them in.
func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var (
		c                                              customer.Customer
		nik, address, phone, mother, occupation        pgtype.Text
		bankAccount, houseStatus, idCardURL, selfieURL pgtype.Text
		salary                                         decimal.NullDecimal
	)
	err := row.Scan(
		&c.ID, &c.UserID, &c.Name, &c.Email, &c.PlafondID, &c.RemainingLimit,
		&nik, &address, &phone, &mother, &occupation, &salary,
		&bankAccount, &houseStatus, &idCardURL, &selfieURL, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	c.NIK = nik.String
	c.Address = address.String
	c.Phone = phone.String
	c.MotherMaidenName = mother.String
	c.Occupation = occupation.String
	c.BankAccountNumber = bankAccount.String
	c.HouseStatus = houseStatus.String
	c.IDCardURL = idCardURL.String
	c.SelfieURL = selfieURL.String
	if salary.Valid {
		c.Salary = salary.Decimal
	}
	return &c, nil
}

func (r *CustomerRepository) find(ctx context.Context, q queryRower, operation, query string, arg uuid.UUID) (*customer.Customer, error) {
	start := time.Now()
	c, err := scanCustomer(q.QueryRow(ctx, query, arg))
	observe(operation, start, err)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Customer not found", "operation", operation, "key", arg)
			return nil, fmt.Errorf("%w: customer %s", apperrors.ErrNotFound, arg)
		}
		return nil, translateDBError(err, r.logger.With("operation", operation))
	}
	return c, nil
}

type queryRower interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func (r *CustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*customer.Customer, error) {
	return r.find(ctx, r.db, "FindCustomerByID", sqlCustomerByID, id)
}

func (r *CustomerRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*customer.Customer, error) {
	return r.find(ctx, r.db, "FindCustomerByUserID", sqlCustomerByUserID, userID)
}

func (r *CustomerRepository) FindByUserIDForUpdate(ctx context.Context, tx pgx.Tx, userID uuid.UUID) (*customer.Customer, error) {
	return r.find(ctx, tx, "LockCustomerByUserID", sqlCustomerByUserForUpdate, userID)
}

func (r *CustomerRepository) FindByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*customer.Customer, error) {
	return r.find(ctx, tx, "LockCustomerByID", sqlCustomerByIDForUpdate, id)
}

func (r *CustomerRepository) UpdateRemainingLimitInTx(ctx context.Context, tx pgx.Tx, c *customer.Customer) error {
	start := time.Now()
	cmdTag, err := tx.Exec(ctx, sqlUpdateRemainingLimit, c.RemainingLimit, c.UpdatedAt, c.ID)
	observe("UpdateRemainingLimit", start, err)
	if err != nil {
		return translateDBError(err, r.logger.With("customer_id", c.ID))
	}
	if cmdTag.RowsAffected() != 1 {
		r.logger.ErrorContext(ctx, "Remaining limit update affected zero rows", "customer_id", c.ID)
		return fmt.Errorf("%w: remaining limit update affected zero rows", apperrors.ErrDatabase)
	}
	r.logger.InfoContext(ctx, "Remaining limit updated", "customer_id", c.ID, "remaining_limit", c.RemainingLimit.String())
	return nil
}
