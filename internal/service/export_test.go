package service

import (
	"nexopos/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// AppendEntry exposes the ledger append so tests can feed it arithmetic no
// production caller produces and exercise the conservation assertion.
func (e *StockEngine) AppendEntry(tx *gorm.DB, actor Actor, p *model.Product,
	action string, change, old, next decimal.Decimal, reason string, ref LedgerRef) error {
	return e.appendLog(tx, actor, p, action, change, old, next, reason, ref)
}
