package view

import (
	"strconv"
	"strings"
	"time"

	"github.com/jwalitptl/clinic-console/internal/model"
)

// Placeholder rendered for unknown or missing fields.
const Placeholder = "N/A"

// FormatCurrency renders a value in the clinic locale: thousands separated by
// dots, comma decimals, two digits, trailing euro sign ("1.234,50 €").
func FormatCurrency(value float64) string {
	negative := value < 0
	if negative {
		value = -value
	}

	cents := int64(value*100 + 0.5)
	whole := cents / 100
	frac := cents % 100

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(digits[i : i+3])
	}

	out := b.String() + "," + pad2(int(frac)) + " €"
	if negative {
		return "-" + out
	}
	return out
}

// FormatDate renders a timestamp as dd/mm/yyyy hh:mm in local time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "Data non valida"
	}
	return t.Local().Format("02/01/2006 15:04")
}

func FormatStatus(status string) string {
	switch status {
	case "active":
		return "Attivo"
	case "inactive":
		return "Inattivo"
	case "archived":
		return "Archiviato"
	case "":
		return Placeholder
	default:
		return status
	}
}

func FormatRole(role model.Role) string {
	switch role {
	case model.RoleAdmin:
		return "Amministratore"
	case model.RoleDoctor:
		return "Dottore"
	case model.RoleStaff:
		return "Staff"
	case "":
		return Placeholder
	default:
		return string(role)
	}
}

func FormatTransactionType(t model.TransactionType) string {
	switch t {
	case model.TransactionIn:
		return "Entrata"
	case model.TransactionOut:
		return "Uscita"
	default:
		return "Aggiustamento"
	}
}

// QuantityPrefix is the sign shown before a transaction quantity.
func QuantityPrefix(t model.TransactionType) string {
	switch t {
	case model.TransactionIn:
		return "+"
	case model.TransactionOut:
		return "-"
	default:
		return ""
	}
}

// OrPlaceholder substitutes the placeholder for empty strings.
func OrPlaceholder(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}

// Capitalize upper-cases the first letter only.
func Capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func pad2(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}
