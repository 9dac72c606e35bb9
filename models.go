package kursovaya

// AdminUsername is the reserved login that opens an admin session. The admin
// has no user record of its own.
const AdminUsername = "admin"

// Transaction categories. Free-text is accepted on input; these are the
// well-known values used by expense statistics.
const (
	CategoryMedicine      = "medicine"
	CategorySport         = "sport"
	CategoryFood          = "food"
	CategoryEntertainment = "entertainment"
	CategoryOther         = "other"
)

// Transaction statuses.
const (
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Account is a money container owned by exactly one user.
// Balance is stored in cents and must stay >= 0 after any completed mutation.
type Account struct {
	AccountNumber string `json:"accountNumber"`
	Currency      string `json:"currency"`
	BalanceCents  int64  `json:"balanceCents"`
}

// Card references an account of the same owner by number. The link may dangle
// if the account disappears; accounts are never removed today.
type Card struct {
	CardNumber    string `json:"cardNumber"`
	HolderName    string `json:"holderName"`
	Expiry        string `json:"expiry"` // MM/YY
	LinkedAccount string `json:"linkedAccount"`
}

// Transaction is one entry of a user's history. Entries are append-only:
// cancellation mutates Status and CancelReason, nothing is ever deleted.
type Transaction struct {
	ID           string `json:"id"`
	FromAccount  string `json:"fromAccount"` // account number, or external reference for deposits
	ToCard       string `json:"toCard"`      // card number, account number, or arbitrary string
	Cents        int64  `json:"cents"`
	Timestamp    int64  `json:"timestamp"` // seconds since epoch
	Note         string `json:"note"`
	Category     string `json:"category"`
	Status       string `json:"status"`
	CancelReason string `json:"cancelReason"`
}

// Description implements the payment summary used by receipts.
func (t Transaction) Description() string { return t.Note }

// AmountCents reports the transaction amount.
func (t Transaction) AmountCents() int64 { return t.Cents }

// FavoritePayment is a template for repeated transfers. Names are not unique.
type FavoritePayment struct {
	Name   string `json:"name"`
	ToCard string `json:"toCard"`
	Note   string `json:"note"`
}

// User is the unit of persistence: the username keys a single flat file that
// holds the whole record graph.
type User struct {
	Username      string            `json:"username"`
	PasswordHash  string            `json:"-"` // don't expose hash
	Accounts      []Account         `json:"accounts"`
	Cards         []Card            `json:"cards"`
	History       []Transaction     `json:"history"`
	Favorites     []FavoritePayment `json:"favorites"`
	Notifications []string          `json:"notifications"`
}

// FindAccount returns a pointer into Accounts for the given number, or nil.
func (u *User) FindAccount(number string) *Account {
	for i := range u.Accounts {
		if u.Accounts[i].AccountNumber == number {
			return &u.Accounts[i]
		}
	}
	return nil
}

// FindCard returns a pointer into Cards for the given number, or nil.
func (u *User) FindCard(number string) *Card {
	for i := range u.Cards {
		if u.Cards[i].CardNumber == number {
			return &u.Cards[i]
		}
	}
	return nil
}

// FindTransaction returns a pointer into History for the given id, or nil.
func (u *User) FindTransaction(id string) *Transaction {
	for i := range u.History {
		if u.History[i].ID == id {
			return &u.History[i]
		}
	}
	return nil
}

// TotalBalanceCents sums all account balances of the user.
func (u *User) TotalBalanceCents() int64 {
	var total int64
	for _, a := range u.Accounts {
		total += a.BalanceCents
	}
	return total
}
