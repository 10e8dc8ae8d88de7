package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cargoline/apiserver/internal/db"
	"github.com/cargoline/apiserver/types"
)

// UserRepository handles persistence for users and their client accounts.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetLoginRecord looks up the credentials of username and whether the user is a client.
func (r *UserRepository) GetLoginRecord(ctx context.Context, username string) (types.LoginRecord, error) {
	const query = `
		SELECT u.id, uc.password_hash, c.id IS NOT NULL AS is_client
		FROM users u
		JOIN user_credentials uc ON uc.user_id = u.id
		LEFT JOIN clients c ON c.user_id = u.id
		WHERE u.username = $1`
	var record types.LoginRecord
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&record.UserID,
		&record.PasswordHash,
		&record.IsClient,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.LoginRecord{}, ErrNotFound
		}
		return types.LoginRecord{}, err
	}
	return record, nil
}

// CreateClientAccount writes the user, client, customer details and
// credentials rows in that order inside one transaction.
func (r *UserRepository) CreateClientAccount(ctx context.Context, account types.ClientAccount) error {
	err := db.WithTx(ctx, r.db, nil, func(ctx context.Context, tx db.DBTX) error {
		if err := insertUser(ctx, tx, account.User); err != nil {
			return fmt.Errorf("insert user: %w", err)
		}
		if err := insertClient(ctx, tx, account.Client); err != nil {
			return fmt.Errorf("insert client: %w", err)
		}
		if err := insertCustomerDetails(ctx, tx, account.Details); err != nil {
			return fmt.Errorf("insert customer details: %w", err)
		}
		if err := insertCredentials(ctx, tx, account.Credentials); err != nil {
			return fmt.Errorf("insert user credentials: %w", err)
		}
		return nil
	})
	return classify(err)
}

func insertUser(ctx context.Context, tx db.DBTX, user types.User) error {
	const query = `
		INSERT INTO users (id, created_at, updated_at, username, first_name, last_name, patronymic, birthday)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := tx.ExecContext(
		ctx,
		query,
		user.ID,
		user.CreatedAt,
		user.UpdatedAt,
		user.Username,
		user.FirstName,
		user.LastName,
		user.Patronymic,
		user.Birthday,
	)
	return err
}

func insertClient(ctx context.Context, tx db.DBTX, client types.Client) error {
	const query = `
		INSERT INTO clients (id, created_at, updated_at, user_id)
		VALUES ($1, $2, $3, $4)`
	_, err := tx.ExecContext(ctx, query, client.ID, client.CreatedAt, client.UpdatedAt, client.UserID)
	return err
}

func insertCustomerDetails(ctx context.Context, tx db.DBTX, details types.CustomerDetails) error {
	const query = `
		INSERT INTO customer_details (
			client_id, created_at, updated_at,
			account_number, bik, correspondent_account,
			inn, kpp, bank_name, bank_address
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := tx.ExecContext(
		ctx,
		query,
		details.ClientID,
		details.CreatedAt,
		details.UpdatedAt,
		details.AccountNumber,
		details.BIK,
		details.CorrespondentAccount,
		details.INN,
		details.KPP,
		details.BankName,
		details.BankAddress,
	)
	return err
}

func insertCredentials(ctx context.Context, tx db.DBTX, credentials types.UserCredentials) error {
	const query = `
		INSERT INTO user_credentials (user_id, created_at, updated_at, password_hash)
		VALUES ($1, $2, $3, $4)`
	_, err := tx.ExecContext(
		ctx,
		query,
		credentials.UserID,
		credentials.CreatedAt,
		credentials.UpdatedAt,
		credentials.PasswordHash,
	)
	return err
}
