// Пакет pricing содержит чистые функции расчёта стоимости продажи.
// Вся денежная арифметика — fixed-point decimal; округление half-up
// до 2 знаков применяется один раз к сохраняемому значению.
package pricing

import "github.com/shopspring/decimal"

const moneyScale = 2

var hundred = decimal.NewFromInt(100)

// LineSubtotal возвращает подытог позиции:
// unitPrice × qty × (1 − lineDiscountPct/100), округлённый до 2 знаков.
// Это значение записывается в позицию при коммите и больше не меняется.
func LineSubtotal(unitPrice decimal.Decimal, qty int32, lineDiscountPct decimal.Decimal) decimal.Decimal {
	gross := unitPrice.Mul(decimal.NewFromInt32(qty))
	return applyDiscount(gross, lineDiscountPct).Round(moneyScale)
}

// OrderTotal применяет скидку заказа к сумме уже округлённых подытогов.
// Итог считается от сохраняемых подытогов, поэтому повторный пересчёт
// по персистентным позициям всегда даёт то же значение.
func OrderTotal(lineSubtotals []decimal.Decimal, orderDiscountPct decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, subtotal := range lineSubtotals {
		sum = sum.Add(subtotal)
	}
	return applyDiscount(sum, orderDiscountPct).Round(moneyScale)
}

// applyDiscount возвращает amount × (1 − pct/100) без округления:
// промежуточные значения сохраняют полную точность.
func applyDiscount(amount, pct decimal.Decimal) decimal.Decimal {
	if pct.IsZero() {
		return amount
	}
	factor := hundred.Sub(pct).Div(hundred)
	return amount.Mul(factor)
}
