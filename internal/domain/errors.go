package domain

import "errors"

var (
	ErrOutOfStock         = errors.New("requested amount is out of stock")
	ErrProductNotFound    = errors.New("product not found")
	ErrStockUnavailable   = errors.New("stock unavailable")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrCorruptCart        = errors.New("stored cart is corrupt")
)

// User-facing notification messages.
const (
	MsgOutOfStock    = "Quantidade solicitada fora de estoque"
	MsgAddProduct    = "Erro na adição do produto"
	MsgRemoveProduct = "Erro na remoção do produto"
	MsgUpdateAmount  = "Erro na alteração de quantidade do produto"
)
