package domain

import (
	"fmt"
	"time"
)

const (
	// CurrencyARS — единственная валюта, в которой магазин принимает оплату.
	CurrencyARS = "ARS"
	// DefaultItemTitle подставляется, если фронт прислал позицию без названия.
	DefaultItemTitle = "Producto"
	// OrderIDPrefix — префикс внутренних идентификаторов заказов.
	OrderIDPrefix = "TDC"
)

// LineItem представляет одну нормализованную позицию корзины.
type LineItem struct {
	Title string
	// Quantity — количество единиц, всегда >= 1 после нормализации.
	Quantity int
	// UnitPrice — цена за единицу, всегда >= 0 после нормализации.
	UnitPrice float64
	Currency  string
}

// Order агрегирует корзину на момент создания preference.
// Заказ нигде не персистится: он живёт только как external_reference
// на стороне платёжного провайдера.
type Order struct {
	ID         string
	Items      []LineItem
	PayerEmail string
	CreatedAt  time.Time
}

// Total возвращает сумму заказа по позициям: qty * price.
func (o Order) Total() float64 {
	var total float64
	for _, item := range o.Items {
		total += float64(item.Quantity) * item.UnitPrice
	}
	return total
}

// NewOrderID генерирует идентификатор заказа вида TDC-<unix millis>.
// Уникальность обеспечивается только разнесением вызовов во времени.
func NewOrderID(now time.Time) string {
	return fmt.Sprintf("%s-%d", OrderIDPrefix, now.UnixMilli())
}

// NormalizeItem приводит позицию к допустимому виду: пустое название
// заменяется на DefaultItemTitle, некорректное количество — на 1,
// отрицательная цена — на 0, валюта фиксируется.
func NormalizeItem(item LineItem) LineItem {
	if item.Title == "" {
		item.Title = DefaultItemTitle
	}
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	if item.UnitPrice < 0 {
		item.UnitPrice = 0
	}
	item.Currency = CurrencyARS
	return item
}

// NormalizeItems нормализует все позиции корзины.
// Возвращает ErrItemsRequired для пустой корзины.
func NormalizeItems(items []LineItem) ([]LineItem, error) {
	if len(items) == 0 {
		return nil, ErrItemsRequired
	}

	normalized := make([]LineItem, 0, len(items))
	for _, item := range items {
		normalized = append(normalized, NormalizeItem(item))
	}
	return normalized, nil
}

// NewOrder собирает заказ из уже нормализованных позиций.
func NewOrder(items []LineItem, payerEmail string, now time.Time) Order {
	return Order{
		ID:         NewOrderID(now),
		Items:      items,
		PayerEmail: payerEmail,
		CreatedAt:  now,
	}
}
