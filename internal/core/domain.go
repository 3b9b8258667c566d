package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	KindExpense Kind = "expense"
	KindIncome  Kind = "income"
)

const (
	Daily   Period = "daily"
	Weekly  Period = "weekly"
	Monthly Period = "monthly"
)

const dateLayout = "2006-01-02"

const maxDescriptionLen = 200

type (
	// Kind tells whether a transaction is money going out or coming in.
	Kind string

	// Period is the recurrence granularity of a budget.
	Period string

	Date struct {
		time.Time
	}

	// Transaction is a single income or expense record. Amount is always a
	// positive magnitude; the sign is derived from Kind.
	Transaction struct {
		ID          string          `json:"id"`
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        Date            `json:"date"`
		Kind        Kind            `json:"type"`
	}

	// TransactionInput carries the fields of a transaction before an id is assigned.
	TransactionInput struct {
		Amount      decimal.Decimal `json:"amount"`
		Category    string          `json:"category"`
		Description string          `json:"description"`
		Date        Date            `json:"date"`
		Kind        Kind            `json:"type"`
	}

	Category struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Icon  string `json:"icon"`
	}

	CategoryInput struct {
		Name  string `json:"name"`
		Color string `json:"color"`
		Icon  string `json:"icon"`
	}

	// Budget constrains spending in a category, referenced by name.
	Budget struct {
		ID       string          `json:"id"`
		Category string          `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
		Period   Period          `json:"period"`
	}

	BudgetInput struct {
		Category string          `json:"category"`
		Amount   decimal.Decimal `json:"amount"`
		Period   Period          `json:"period"`
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrLongDescription  = errors.New("description too long (max 200 characters)")
	ErrEmptyCategory    = errors.New("empty category")
	ErrInvalidKind      = errors.New("invalid transaction type")
	ErrEmptyName        = errors.New("empty category name")
	ErrInvalidPeriod    = errors.New("invalid budget period")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf drops the time component of t, keeping its calendar date.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate accepts YYYY-MM-DD and, for payloads produced by browsers, RFC 3339.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(dateLayout, s); err == nil {
		return DateOf(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return DateOf(t), nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	_, month, day := d.Time.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

// InMonth reports whether the date falls within the given calendar month of year.
func (d Date) InMonth(month, year int) bool {
	return !d.IsZero() && d.Month() == month && d.Year() == year
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (k Kind) Valid() bool {
	return k == KindExpense || k == KindIncome
}

func (p Period) Valid() bool {
	switch p {
	case Daily, Weekly, Monthly:
		return true
	default:
		return false
	}
}

func validateAmount(a decimal.Decimal) error {
	if !a.IsPositive() {
		return ErrInvalidAmount
	}
	return nil
}

func (in TransactionInput) Validate() error {
	if err := validateAmount(in.Amount); err != nil {
		return err
	}
	if strings.TrimSpace(in.Category) == "" {
		return ErrEmptyCategory
	}
	if strings.TrimSpace(in.Description) == "" {
		return ErrEmptyDescription
	}
	if len(in.Description) > maxDescriptionLen {
		return ErrLongDescription
	}
	if err := in.Date.Validate(); err != nil {
		return err
	}
	if !in.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

// WithID turns the input into a transaction carrying id.
func (in TransactionInput) WithID(id string) Transaction {
	return Transaction{
		ID:          id,
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        in.Date,
		Kind:        in.Kind,
	}
}

// Input strips the id, e.g. to validate an update with the add rules.
func (t Transaction) Input() TransactionInput {
	return TransactionInput{
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date,
		Kind:        t.Kind,
	}
}

func (t Transaction) IsExpense() bool { return t.Kind == KindExpense }

func (in CategoryInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (in CategoryInput) WithID(id string) Category {
	return Category{ID: id, Name: in.Name, Color: in.Color, Icon: in.Icon}
}

func (in BudgetInput) Validate() error {
	if strings.TrimSpace(in.Category) == "" {
		return ErrEmptyCategory
	}
	if err := validateAmount(in.Amount); err != nil {
		return err
	}
	if !in.Period.Valid() {
		return ErrInvalidPeriod
	}
	return nil
}

func (in BudgetInput) WithID(id string) Budget {
	return Budget{ID: id, Category: in.Category, Amount: in.Amount, Period: in.Period}
}

func (b Budget) Input() BudgetInput {
	return BudgetInput{Category: b.Category, Amount: b.Amount, Period: b.Period}
}
