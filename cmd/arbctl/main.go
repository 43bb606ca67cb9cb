package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"solana-arb-adapter/internal/config"
	"solana-arb-adapter/internal/constants"
	"solana-arb-adapter/internal/jupiter"
	"solana-arb-adapter/internal/swap"
)

func loadEnv() {
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	_ = godotenv.Load(filepath.Join(projectRoot, ".env"))
}

// resolveMint accepts either a known token symbol (SOL, USDC, ...) or a
// raw mint address.
func resolveMint(token string) string {
	if mint, ok := constants.TokenMints[strings.ToUpper(token)]; ok {
		return mint
	}
	return token
}

// toBaseUnits converts a human amount into base units when the token
// symbol has a known decimal count. Raw mints must pass base units.
func toBaseUnits(token string, amt float64) (uint64, error) {
	decimals, ok := constants.TokenDecimals[strings.ToUpper(token)]
	if !ok {
		if amt != math.Trunc(amt) {
			return 0, fmt.Errorf("unknown token %q: pass the amount in base units", token)
		}
		return uint64(amt), nil
	}
	return uint64(math.Round(amt * math.Pow10(int(decimals)))), nil
}

func buildClient(cfg *config.Config) (*jupiter.Client, error) {
	var fee *jupiter.IntegratorFee
	if cfg.IntegratorFeeAccount != "" {
		fee = &jupiter.IntegratorFee{
			FeeBps:     uint16(cfg.IntegratorFeeBps),
			FeeAccount: cfg.IntegratorFeeAccount,
		}
	}

	switch cfg.JupiterTier {
	case "pro":
		return jupiter.NewProClient(cfg.JupiterAPIKey)
	case "lite":
		return jupiter.NewLiteClient()
	case "ultra":
		return jupiter.NewUltraClient(cfg.JupiterAPIKey)
	case "self-hosted":
		return jupiter.NewSelfHostedClient(cfg.JupiterBaseURL, jupiter.YellowstoneConfig{
			GRPCEndpoint: cfg.YellowstoneEndpoint,
			XToken:       cfg.YellowstoneToken,
		}, fee)
	default:
		return jupiter.NewPublicClient()
	}
}

func printJSON(v any) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println("failed to encode output:", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func main() {
	loadEnv()

	mode := flag.String("mode", "quote", "health | info | price | quote | metis | ultra | swap")
	inTok := flag.String("in", "SOL", "input token symbol or mint")
	outTok := flag.String("out", "USDC", "output token symbol or mint")
	amt := flag.Float64("amt", 0, "amount in human units for known symbols, base units otherwise")
	slippage := flag.Float64("slippage", 0.5, "slippage in percent (e.g. 0.5)")
	priorityFee := flag.Uint64("priority-fee", 0, "prioritization fee in lamports")
	signer := flag.String("signer", "", "base58 public key of the transaction signer (swap mode)")
	ids := flag.String("ids", "", "comma-separated mints or symbols (price mode)")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Println("invalid configuration:", err)
		os.Exit(2)
	}

	client, err := buildClient(cfg)
	if err != nil {
		fmt.Println("failed to build client:", err)
		os.Exit(1)
	}

	switch *mode {
	case "health":
		status, err := client.Health(ctx)
		if err != nil {
			fmt.Println("health check failed:", err)
			os.Exit(1)
		}
		printJSON(status)

	case "info":
		info, err := client.Info(ctx)
		if err != nil {
			fmt.Println("info failed:", err)
			os.Exit(1)
		}
		printJSON(info)

	case "price":
		if *ids == "" {
			fmt.Println("missing -ids")
			os.Exit(2)
		}
		var mints []string
		for _, id := range strings.Split(*ids, ",") {
			if id = strings.TrimSpace(id); id != "" {
				mints = append(mints, resolveMint(id))
			}
		}
		prices, err := client.Price(ctx, mints)
		if err != nil {
			fmt.Println("price failed:", err)
			os.Exit(1)
		}
		printJSON(prices)

	case "quote", "metis", "ultra":
		req, err := quoteRequestFromFlags(*inTok, *outTok, *amt, *slippage)
		if err != nil {
			fmt.Println(err)
			os.Exit(2)
		}

		switch *mode {
		case "metis":
			resp, err := client.MetisQuote(ctx, jupiter.MetisQuoteRequest{QuoteRequest: *req})
			if err != nil {
				fmt.Println("metis quote failed:", err)
				os.Exit(1)
			}
			printJSON(resp)
		case "ultra":
			resp, err := client.UltraQuote(ctx, jupiter.UltraQuoteRequest{QuoteRequest: *req})
			if err != nil {
				fmt.Println("ultra quote failed:", err)
				os.Exit(1)
			}
			printJSON(resp)
		default:
			resp, err := client.Quote(ctx, *req)
			if err != nil {
				fmt.Println("quote failed:", err)
				os.Exit(1)
			}
			quote, err := resp.Normalize()
			if err != nil {
				fmt.Println("quote failed:", err)
				os.Exit(1)
			}
			fmt.Printf("in=%d out=%d price_impact=%.4f%% slippage_bps=%d hops=%d slot=%d\n",
				quote.InAmount, quote.OutAmount, quote.PriceImpactPct,
				quote.SlippageBps, len(quote.RoutePlan), quote.ContextSlot)
		}

	case "swap":
		if *signer == "" {
			fmt.Println("missing -signer")
			os.Exit(2)
		}
		amount, err := toBaseUnits(*inTok, *amt)
		if err != nil || amount == 0 {
			fmt.Println("invalid -amt (must be > 0)")
			os.Exit(2)
		}

		orchestrator := swap.NewOrchestrator(client)
		outcome, err := orchestrator.ExecuteSwap(ctx, &swap.Intent{
			InputMint:           resolveMint(*inTok),
			OutputMint:          resolveMint(*outTok),
			Amount:              amount,
			UserPublicKey:       *signer,
			SlippagePercent:     *slippage,
			PriorityFeeLamports: *priorityFee,
		})
		if err != nil {
			fmt.Println("swap failed:", err)
			os.Exit(1)
		}
		fmt.Printf("success=%v fee_sol=%.9f last_valid_block_height=%d tx_bytes=%d\n",
			outcome.Success, outcome.FeeSOL, outcome.LastValidBlockHeight, len(outcome.Transaction))

	default:
		fmt.Println("invalid -mode (use health|info|price|quote|metis|ultra|swap)")
		os.Exit(2)
	}
}

func quoteRequestFromFlags(inTok, outTok string, amt, slippage float64) (*jupiter.QuoteRequest, error) {
	amount, err := toBaseUnits(inTok, amt)
	if err != nil || amount == 0 {
		return nil, fmt.Errorf("invalid -amt (must be > 0)")
	}
	if slippage < 0 || slippage > 100 {
		return nil, fmt.Errorf("invalid -slippage (must be in [0, 100])")
	}
	return &jupiter.QuoteRequest{
		InputMint:   resolveMint(inTok),
		OutputMint:  resolveMint(outTok),
		Amount:      amount,
		SlippageBps: jupiter.PercentToBps(slippage),
		SwapMode:    "ExactIn",
	}, nil
}
