package storage

import (
	"context"

	"github.com/tessella/opsq/errors"
	"github.com/tessella/opsq/logger"
)

// seedStatements populate a small operational dataset. Dates are computed
// relative to the current date so window queries return rows.
var seedStatements = []string{
	`INSERT OR IGNORE INTO warehouse_master (warehouse, name, site) VALUES
		('W01', '主倉庫', '台北'),
		('W02', '原料倉', '桃園'),
		('W03', '成品倉', '桃園'),
		('W04', '包材倉', '台中'),
		('W05', '退貨倉', '台中')`,

	`INSERT OR IGNORE INTO item_master (material_id, name, category, unit) VALUES
		('RM01-001', '冷軋鋼捲', 'RM', 'KG'),
		('RM01-002', '熱軋鋼捲', 'RM', 'KG'),
		('RM02-001', '銅線', 'RM', 'M'),
		('RM05-008', '鋁擠型', 'RM', 'KG'),
		('SF01-001', '沖壓件', 'SF', 'EA'),
		('FG01-001', '成品機殼', 'FG', 'EA'),
		('FG02-001', '成品支架', 'FG', 'EA'),
		('PK01-001', '標準棧板', 'PK', 'EA'),
		('CS01-001', '切削油', 'CS', 'L')`,

	`INSERT OR IGNORE INTO inv_stock (material_id, warehouse, quantity, safety_stock, updated_at) VALUES
		('RM01-001', 'W02', 1200, 800, date('now')),
		('RM01-002', 'W02', 300, 500, date('now')),
		('RM02-001', 'W02', 4500, 2000, date('now')),
		('RM05-008', 'W01', 120, 200, date('now')),
		('SF01-001', 'W01', 650, 300, date('now')),
		('FG01-001', 'W03', 80, 150, date('now')),
		('FG02-001', 'W03', 420, 100, date('now')),
		('PK01-001', 'W04', 90, 250, date('now')),
		('CS01-001', 'W01', 60, 40, date('now'))`,

	`INSERT OR IGNORE INTO po_receipts (id, material_id, warehouse, quantity, amount, supplier, received_at) VALUES
		(1, 'RM01-001', 'W02', 500, 125000, '中鋼', date('now', '-40 days')),
		(2, 'RM01-001', 'W02', 300, 76500, '中鋼', date('now', '-12 days')),
		(3, 'RM05-008', 'W01', 200, 64000, '大亞', date('now', '-35 days')),
		(4, 'RM02-001', 'W02', 1500, 45000, '華新', date('now', '-5 days')),
		(5, 'PK01-001', 'W04', 100, 8000, '正隆', date('now', '-3 days'))`,

	`INSERT OR IGNORE INTO so_shipments (id, material_id, warehouse, quantity, amount, customer, shipped_at) VALUES
		(1, 'FG01-001', 'W03', 40, 96000, '客戶甲', date('now', '-20 days')),
		(2, 'FG01-001', 'W03', 25, 60000, '客戶乙', date('now', '-6 days')),
		(3, 'FG02-001', 'W03', 120, 84000, '客戶甲', date('now', '-2 days')),
		(4, 'SF01-001', 'W01', 200, 30000, '客戶丙', date('now', '-15 days'))`,
}

// SeedDemo loads the demo dataset. Idempotent; existing rows are kept.
func (b *SQLBackend) SeedDemo(ctx context.Context) error {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin seed tx")
	}
	for _, stmt := range seedStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			tx.Rollback()
			return errors.Wrap(err, "seed demo data")
		}
	}
	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "commit seed tx")
	}

	logger.Logger.Infow("demo data seeded",
		logger.FieldCount, len(seedStatements),
	)
	return nil
}
