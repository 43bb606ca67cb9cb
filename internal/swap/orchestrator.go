package swap

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"

	"solana-arb-adapter/internal/audit"
	"solana-arb-adapter/internal/constants"
	"solana-arb-adapter/internal/jupiter"
	"solana-arb-adapter/internal/models"
)

// Orchestrator composes quote + swap-build into one execute operation.
// The two calls form a saga with no atomicity guarantee: if the build
// fails after a successful quote, the quote is discarded and the caller
// retries from the top.
type Orchestrator struct {
	client     *jupiter.Client
	redis      *audit.RedisAudit
	clickhouse *audit.ClickHouseAudit
	logger     *logrus.Logger
}

func NewOrchestrator(client *jupiter.Client) *Orchestrator {
	return &Orchestrator{
		client: client,
		logger: logrus.New(),
	}
}

// WithAudit attaches best-effort outcome sinks. Either may be nil.
func (o *Orchestrator) WithAudit(redis *audit.RedisAudit, clickhouse *audit.ClickHouseAudit) *Orchestrator {
	o.redis = redis
	o.clickhouse = clickhouse
	return o
}

func (o *Orchestrator) WithLogger(logger *logrus.Logger) *Orchestrator {
	if logger != nil {
		o.logger = logger
	}
	return o
}

// ExecuteSwap runs the quote → build saga for one intent. Failures from
// either stage propagate verbatim; the build stage is never reached when
// quoting fails.
func (o *Orchestrator) ExecuteSwap(ctx context.Context, intent *Intent) (*Outcome, error) {
	if err := validateIntent(intent); err != nil {
		return &Outcome{Success: false, ErrorMessage: err.Error()}, err
	}

	o.logger.WithFields(logrus.Fields{
		"inputMint":  intent.InputMint,
		"outputMint": intent.OutputMint,
		"amount":     intent.Amount,
	}).Info("executing swap")

	maxAccounts := uint8(constants.DefaultMaxAccounts)
	quoteReq := jupiter.QuoteRequest{
		InputMint:    intent.InputMint,
		OutputMint:   intent.OutputMint,
		Amount:       intent.Amount,
		SlippageBps:  jupiter.PercentToBps(intent.SlippagePercent),
		SwapMode:     "ExactIn",
		Dexes:        intent.AllowedDexes,
		ExcludeDexes: intent.ExcludedDexes,
		MaxAccounts:  &maxAccounts,
	}

	quoteResp, err := o.client.Quote(ctx, quoteReq)
	if err != nil {
		out := &Outcome{Success: false, ErrorMessage: err.Error()}
		o.record(ctx, intent, nil, out)
		return out, err
	}

	quote, err := quoteResp.Normalize()
	if err != nil {
		out := &Outcome{Success: false, ErrorMessage: err.Error()}
		o.record(ctx, intent, nil, out)
		return out, err
	}

	// The quote goes back to the venue untouched; it is the venue's
	// statelessness contract, not a cache.
	swapReq := jupiter.SwapRequest{
		QuoteResponse:             *quoteResp,
		UserPublicKey:             intent.UserPublicKey,
		DynamicComputeUnitLimit:   boolPtr(true),
		PrioritizationFeeLamports: uint64Ptr(intent.PriorityFeeLamports),
		AsLegacyTransaction:       boolPtr(false),
		UseSharedAccounts:         boolPtr(true),
		AsVersionedTransaction:    boolPtr(true),
	}

	swapResp, err := o.client.Swap(ctx, swapReq)
	if err != nil {
		out := &Outcome{Success: false, ErrorMessage: err.Error(), Quote: quote}
		o.record(ctx, intent, quote, out)
		return out, err
	}

	out := &Outcome{
		Transaction:          swapResp.SwapTransaction,
		LastValidBlockHeight: swapResp.LastValidBlockHeight,
		Success:              true,
		FeeSOL:               float64(swapResp.PrioritizationFeeLamports) / constants.LamportsPerSOL,
		Quote:                quote,
	}
	o.record(ctx, intent, quote, out)

	return out, nil
}

func validateIntent(intent *Intent) error {
	if intent == nil {
		return fmt.Errorf("intent is nil")
	}
	if _, err := solana.PublicKeyFromBase58(intent.InputMint); err != nil {
		return fmt.Errorf("invalid input mint %q: %w", intent.InputMint, err)
	}
	if _, err := solana.PublicKeyFromBase58(intent.OutputMint); err != nil {
		return fmt.Errorf("invalid output mint %q: %w", intent.OutputMint, err)
	}
	if intent.InputMint == intent.OutputMint {
		return fmt.Errorf("input and output mint must differ")
	}
	if _, err := solana.PublicKeyFromBase58(intent.UserPublicKey); err != nil {
		return fmt.Errorf("invalid user public key %q: %w", intent.UserPublicKey, err)
	}
	if intent.Amount == 0 {
		return fmt.Errorf("amount must be > 0")
	}
	if intent.SlippagePercent < 0 || intent.SlippagePercent > 100 {
		return fmt.Errorf("slippage percent must be in [0, 100]")
	}
	return nil
}

// record publishes the outcome to the audit sinks. Best-effort: failures
// are logged, never propagated.
func (o *Orchestrator) record(ctx context.Context, intent *Intent, quote *jupiter.Quote, out *Outcome) {
	if o.redis == nil && o.clickhouse == nil {
		return
	}

	rec := &models.SwapRecord{
		Timestamp:  time.Now(),
		InputMint:  intent.InputMint,
		OutputMint: intent.OutputMint,
		FeeSOL:     out.FeeSOL,
		Success:    out.Success,
		Error:      out.ErrorMessage,
	}
	if quote != nil {
		rec.InAmount = quote.InAmount
		rec.OutAmount = quote.OutAmount
		rec.PriceImpactPct = quote.PriceImpactPct
		rec.SlippageBps = quote.SlippageBps
		rec.RouteHops = len(quote.RoutePlan)
		rec.ContextSlot = quote.ContextSlot
	}

	if o.redis != nil {
		if err := o.redis.AddRecentOutcome(ctx, rec); err != nil {
			o.logger.WithError(err).Warn("failed to store outcome in Redis")
		}
		if err := o.redis.PublishOutcome(ctx, rec); err != nil {
			o.logger.WithError(err).Warn("failed to publish outcome")
		}
	}
	if o.clickhouse != nil {
		if err := o.clickhouse.InsertOutcome(ctx, rec); err != nil {
			o.logger.WithError(err).Warn("failed to insert outcome into ClickHouse")
		}
	}
}

func boolPtr(b bool) *bool       { return &b }
func uint64Ptr(v uint64) *uint64 { return &v }
