package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money goes over the wire (and into backups) as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Role - what a user may do at the till
type Role string

const (
	RoleOwner   Role = "owner"
	RoleCashier Role = "cashier"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleOwner || r == RoleCashier
}

// User - The person operating the terminal
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"` // bcrypt, or a legacy SHA-256 hex digest
	Role         Role   `json:"role"`
	Name         string `json:"name"`
	Photo        string `json:"photo,omitempty"`
}

// Public strips the password hash before a user leaves the vault over HTTP.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

// UserInput is what a caller supplies to create a user.
type UserInput struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	Role     Role   `json:"role" validate:"required,oneof=owner cashier"`
	Name     string `json:"name"`
	Photo    string `json:"photo"`
}

// UserPatch - nil fields are left untouched. An empty Password also keeps the current hash.
type UserPatch struct {
	Username *string `json:"username"`
	Password *string `json:"password"`
	Role     *Role   `json:"role"`
	Name     *string `json:"name"`
	Photo    *string `json:"photo"`
}

// Session - the logged-in user as seen by the screens
type Session struct {
	UserID     int64     `json:"id"`
	Username   string    `json:"username"`
	Role       Role      `json:"role"`
	Name       string    `json:"name"`
	LoggedInAt time.Time `json:"loggedInAt"`
}

// Product - The Inventory
type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name" validate:"required"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Image       string          `json:"image"`
	Description string          `json:"description"`
}

// ProductPatch - partial update for a product
type ProductPatch struct {
	Name        *string          `json:"name"`
	Category    *string          `json:"category"`
	Price       *decimal.Decimal `json:"price"`
	Image       *string          `json:"image"`
	Description *string          `json:"description"`
}

// Customer - a returning buyer. Spend is maintained by the repository only.
type Customer struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name" validate:"required"`
	Phone string          `json:"phone"`
	Email string          `json:"email"`
	Spend decimal.Decimal `json:"spend"`
}

// CustomerPatch - partial update for a customer (spend is not patchable)
type CustomerPatch struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}

// TransactionStatus - lifecycle of a sale
type TransactionStatus string

const (
	StatusSuccess TransactionStatus = "Success"
	StatusPending TransactionStatus = "Pending"
	StatusVoid    TransactionStatus = "Void"
)

// LineItem - one cart line, a snapshot of the product at the time of sale
type LineItem struct {
	ProductID int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price" validate:"gte=0"`
	Quantity  int             `json:"quantity" validate:"gt=0"`
}

// Transaction - The Sale header plus its lines
type Transaction struct {
	ID         string            `json:"id"`
	Date       time.Time         `json:"date"`
	CustomerID *int64            `json:"customerId"`
	Customer   string            `json:"customer"`
	Items      []LineItem        `json:"items" validate:"dive"`
	Subtotal   decimal.Decimal   `json:"subtotal" validate:"gte=0"`
	Tax        decimal.Decimal   `json:"tax" validate:"gte=0"`
	Total      decimal.Decimal   `json:"total" validate:"gte=0"`
	Status     TransactionStatus `json:"status" validate:"omitempty,oneof=Success Pending Void"`
}

// CartLine - what the till sends when checking out
type CartLine struct {
	ProductID int64 `json:"id"`
	Quantity  int   `json:"quantity"`
}

// Settings - the store's singleton configuration
type Settings struct {
	StoreName string          `json:"storeName"`
	TaxRate   decimal.Decimal `json:"taxRate" validate:"gte=0"`
	Currency  string          `json:"currency"`
	Address   string          `json:"address"`
}

// SettingsPatch - shallow merge into Settings
type SettingsPatch struct {
	StoreName *string          `json:"storeName"`
	TaxRate   *decimal.Decimal `json:"taxRate"`
	Currency  *string          `json:"currency"`
	Address   *string          `json:"address"`
}

// AuditLog - one immutable record of a mutating action
type AuditLog struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	User      string    `json:"user"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

// Result is the outcome of a validated mutation. A failed Result is not an error:
// it carries a message meant for the person at the till.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// OK is the accepted Result.
func OK() Result { return Result{Success: true} }

// Fail is a rejected Result with a user-facing message.
func Fail(message string) Result { return Result{Success: false, Message: message} }
