package domain

import "errors"

var (
	// Ошибка пустой корзины при создании preference.
	ErrItemsRequired = errors.New("items must contain at least one entry")
	// Ошибка отсутствующего идентификатора платежа.
	ErrPaymentIDRequired = errors.New("payment id is required")
	// ErrMailNotConfigured возвращается при попытке отправки без SMTP-учётки.
	ErrMailNotConfigured = errors.New("mail transport is not configured: SMTP credentials are missing")
	// ErrMailRecipientRequired — у письма не задан получатель.
	ErrMailRecipientRequired = errors.New("mail recipient is required")
)
