package types

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account.
// It contains identity and audit metadata; credentials live separately.
type User struct {
	// ID is the unique identifier of the user.
	ID uuid.UUID `json:"id" db:"id"`

	// Username is the unique login name chosen by the user.
	Username string `json:"username" db:"username"`

	// FirstName is the user's given name.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the user's family name.
	LastName string `json:"last_name" db:"last_name"`

	// Patronymic is optional and nil when the user has none.
	Patronymic *string `json:"patronymic,omitempty" db:"patronymic"`

	// Birthday is a calendar date; the time component is always zero.
	Birthday time.Time `json:"birthday" db:"birthday"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the user account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// UserCredentials holds the password hash of exactly one user.
type UserCredentials struct {
	UserID       uuid.UUID `json:"-" db:"user_id"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"-" db:"created_at"`
	UpdatedAt    time.Time `json:"-" db:"updated_at"`
}

// Client marks a user as a client. Users without a client row are guests.
type Client struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CustomerDetails carries the banking and legal details of a client.
type CustomerDetails struct {
	ClientID             uuid.UUID `json:"client_id" db:"client_id"`
	AccountNumber        string    `json:"account_number" db:"account_number"`
	BIK                  string    `json:"bik" db:"bik"`
	CorrespondentAccount string    `json:"correspondent_account" db:"correspondent_account"`
	INN                  string    `json:"inn" db:"inn"`
	KPP                  string    `json:"kpp" db:"kpp"`
	BankName             string    `json:"bank_name" db:"bank_name"`
	BankAddress          string    `json:"bank_address" db:"bank_address"`
	CreatedAt            time.Time `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// ClientAccount is the full set of rows written by a single registration.
type ClientAccount struct {
	User        User
	Client      Client
	Details     CustomerDetails
	Credentials UserCredentials
}

// Registration is the validated input for creating a client account.
type Registration struct {
	Username   string
	Password   string
	FirstName  string
	LastName   string
	Patronymic *string
	Birthday   time.Time
	Details    BankDetails
}

// BankDetails is the customer details part of a registration.
type BankDetails struct {
	INN                  string
	KPP                  string
	AccountNumber        string
	BIK                  string
	CorrespondentAccount string
	BankName             string
	BankAddress          string
}

// LoginRecord is what login needs to know about a stored user.
type LoginRecord struct {
	UserID       uuid.UUID
	PasswordHash string
	IsClient     bool
}
