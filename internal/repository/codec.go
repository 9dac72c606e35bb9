package repository

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	bank "github.com/plightick/kursovaya"
)

// Flat-file record codec. Every entity is one comma-separated line; a user is
// a block of lines: username, password hash, then each child collection as a
// count line followed by that many entity lines, in the fixed order
// accounts, cards, transactions, favorites, notifications.
//
// Free-text transaction fields are written with ','->';' and '\n'->' '
// substitutions and read back with ';'->','. A literal ';' in the original
// text is therefore indistinguishable from a ',' after a round trip; the
// format accepts that ambiguity.

// parseInt64 reads a numeric field. Unparseable input decodes to 0.
func parseInt64(s string) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

// parseCount reads a collection count line. Garbage or negative counts
// decode to 0 so one bad line cannot make the reader raise.
func parseCount(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// sanitizeField makes a free-text value safe for a comma-separated line.
func sanitizeField(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, ",", ";")
}

// desanitizeField reverses sanitizeField. Lost newlines stay spaces.
func desanitizeField(s string) string {
	return strings.ReplaceAll(s, ";", ",")
}

// sanitizeLine keeps a value single-line without the comma substitution.
func sanitizeLine(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

func encodeAccount(a bank.Account) string {
	return a.AccountNumber + "," + a.Currency + "," + strconv.FormatInt(a.BalanceCents, 10)
}

func decodeAccount(line string) bank.Account {
	var a bank.Account
	parts := strings.SplitN(line, ",", 3)
	if len(parts) > 0 {
		a.AccountNumber = parts[0]
	}
	if len(parts) > 1 {
		a.Currency = parts[1]
	}
	if len(parts) > 2 {
		a.BalanceCents = parseInt64(parts[2])
	}
	return a
}

func encodeCard(c bank.Card) string {
	return c.CardNumber + "," + c.HolderName + "," + c.Expiry + "," + c.LinkedAccount
}

func decodeCard(line string) bank.Card {
	var c bank.Card
	parts := strings.SplitN(line, ",", 4)
	if len(parts) > 0 {
		c.CardNumber = parts[0]
	}
	if len(parts) > 1 {
		c.HolderName = parts[1]
	}
	if len(parts) > 2 {
		c.Expiry = parts[2]
	}
	if len(parts) > 3 {
		c.LinkedAccount = parts[3]
	}
	return c
}

func encodeFavorite(f bank.FavoritePayment) string {
	return f.Name + "," + f.ToCard + "," + f.Note
}

func decodeFavorite(line string) bank.FavoritePayment {
	var f bank.FavoritePayment
	parts := strings.SplitN(line, ",", 3)
	if len(parts) > 0 {
		f.Name = parts[0]
	}
	if len(parts) > 1 {
		f.ToCard = parts[1]
	}
	if len(parts) > 2 {
		f.Note = parts[2]
	}
	return f
}

func encodeTransaction(t bank.Transaction) string {
	fields := []string{
		t.ID,
		t.FromAccount,
		t.ToCard,
		strconv.FormatInt(t.Cents, 10),
		strconv.FormatInt(t.Timestamp, 10),
		sanitizeField(t.Note),
		sanitizeField(t.Category),
		sanitizeField(t.Status),
		sanitizeField(t.CancelReason),
	}
	return strings.Join(fields, ",")
}

func decodeTransaction(line string) bank.Transaction {
	var t bank.Transaction
	parts := strings.Split(line, ",")
	field := func(i int) (string, bool) {
		if i < len(parts) {
			return parts[i], true
		}
		return "", false
	}
	t.ID, _ = field(0)
	t.FromAccount, _ = field(1)
	t.ToCard, _ = field(2)
	if s, ok := field(3); ok {
		t.Cents = parseInt64(s)
	}
	if s, ok := field(4); ok {
		t.Timestamp = parseInt64(s)
	}
	if s, ok := field(5); ok {
		t.Note = desanitizeField(s)
	}
	if s, ok := field(6); ok && s != "" {
		t.Category = desanitizeField(s)
	} else {
		t.Category = bank.CategoryOther
	}
	if s, ok := field(7); ok && s != "" {
		t.Status = desanitizeField(s)
	} else {
		t.Status = bank.StatusCompleted
	}
	if s, ok := field(8); ok {
		t.CancelReason = desanitizeField(s)
	}
	return t
}

// EncodeUser serializes a full user record into its flat-file text form.
func EncodeUser(u bank.User) string {
	var b strings.Builder
	b.WriteString(u.Username)
	b.WriteByte('\n')
	b.WriteString(u.PasswordHash)
	b.WriteByte('\n')

	b.WriteString(strconv.Itoa(len(u.Accounts)))
	b.WriteByte('\n')
	for _, a := range u.Accounts {
		b.WriteString(encodeAccount(a))
		b.WriteByte('\n')
	}

	b.WriteString(strconv.Itoa(len(u.Cards)))
	b.WriteByte('\n')
	for _, c := range u.Cards {
		b.WriteString(encodeCard(c))
		b.WriteByte('\n')
	}

	b.WriteString(strconv.Itoa(len(u.History)))
	b.WriteByte('\n')
	for _, t := range u.History {
		b.WriteString(encodeTransaction(t))
		b.WriteByte('\n')
	}

	b.WriteString(strconv.Itoa(len(u.Favorites)))
	b.WriteByte('\n')
	for _, f := range u.Favorites {
		b.WriteString(encodeFavorite(f))
		b.WriteByte('\n')
	}

	b.WriteString(strconv.Itoa(len(u.Notifications)))
	b.WriteByte('\n')
	for _, n := range u.Notifications {
		b.WriteString(sanitizeLine(n))
		b.WriteByte('\n')
	}

	return b.String()
}

// DecodeUser reads a user record back from its flat-file text form.
// Truncated input yields zero values instead of an error; only an underlying
// read failure is reported.
func DecodeUser(r io.Reader) (bank.User, error) {
	var u bank.User
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	next := func() string {
		if sc.Scan() {
			return sc.Text()
		}
		return ""
	}

	u.Username = next()
	u.PasswordHash = next()

	if n := parseCount(next()); n > 0 {
		u.Accounts = make([]bank.Account, 0, n)
		for i := 0; i < n; i++ {
			u.Accounts = append(u.Accounts, decodeAccount(next()))
		}
	}
	if n := parseCount(next()); n > 0 {
		u.Cards = make([]bank.Card, 0, n)
		for i := 0; i < n; i++ {
			u.Cards = append(u.Cards, decodeCard(next()))
		}
	}
	if n := parseCount(next()); n > 0 {
		u.History = make([]bank.Transaction, 0, n)
		for i := 0; i < n; i++ {
			u.History = append(u.History, decodeTransaction(next()))
		}
	}
	if n := parseCount(next()); n > 0 {
		u.Favorites = make([]bank.FavoritePayment, 0, n)
		for i := 0; i < n; i++ {
			u.Favorites = append(u.Favorites, decodeFavorite(next()))
		}
	}
	if n := parseCount(next()); n > 0 {
		u.Notifications = make([]string, 0, n)
		for i := 0; i < n; i++ {
			u.Notifications = append(u.Notifications, next())
		}
	}

	return u, sc.Err()
}
