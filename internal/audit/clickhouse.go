package audit

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"solana-arb-adapter/internal/models"
)

// ClickHouseAudit persists swap outcome rows for analytics.
type ClickHouseAudit struct {
	conn driver.Conn
}

type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
}

func NewClickHouseAudit(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseAudit, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseAudit{conn: conn}, nil
}

// InsertOutcome writes one audit row.
func (c *ClickHouseAudit) InsertOutcome(ctx context.Context, rec *models.SwapRecord) error {
	query := `
		INSERT INTO swap_outcomes (
			timestamp, input_mint, output_mint, in_amount, out_amount,
			price_impact_pct, slippage_bps, fee_sol, route_hops,
			context_slot, success, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := c.conn.Exec(ctx, query,
		rec.Timestamp,
		rec.InputMint,
		rec.OutputMint,
		rec.InAmount,
		rec.OutAmount,
		rec.PriceImpactPct,
		rec.SlippageBps,
		rec.FeeSOL,
		rec.RouteHops,
		rec.ContextSlot,
		rec.Success,
		rec.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to insert outcome: %w", err)
	}
	return nil
}

func (c *ClickHouseAudit) Ping(ctx context.Context) error {
	return c.conn.Ping(ctx)
}

func (c *ClickHouseAudit) Close() error {
	return c.conn.Close()
}
