package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/electronic-shop/internal/adapter/storage"
	"github.com/rl1809/electronic-shop/internal/config"
	"github.com/rl1809/electronic-shop/internal/core/domain"
	"github.com/rl1809/electronic-shop/internal/core/service"
	"github.com/rl1809/electronic-shop/internal/logger"
)

func main() {
	initialStock := flag.Int("stock", 20, "initial inventory of the contended product")
	totalRequests := flag.Int("requests", 50, "concurrent create-order calls")
	quantity := flag.Int("quantity", 1, "units per order")
	flag.Parse()

	_ = godotenv.Load()

	log, err := logger.New(os.Getenv("ENV") == "development")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := config.Load(log)
	ctx := context.Background()

	db, err := storage.OpenMySQL(ctx, cfg.MySQL)
	if err != nil {
		log.Fatal("failed to connect mysql", zap.Error(err))
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db); err != nil {
		log.Fatal("failed to migrate", zap.Error(err))
	}

	store := storage.NewMySQLAdapter(db)
	// keep per-order logging out of the measurement
	catalog := service.NewCatalogService(store, nil, log)
	ledger := service.NewLedgerService(store, nil, zap.NewNop())

	run := uuid.NewString()[:8]
	vendorID, customerID, productID := "stress-v-"+run, "stress-c-"+run, "stress-p-"+run

	if err := catalog.AddVendor(ctx, domain.Vendor{ID: vendorID, Name: "Stress Vendor", Region: "test"}); err != nil {
		log.Fatal("failed to seed vendor", zap.Error(err))
	}
	if err := catalog.AddCustomer(ctx, domain.Customer{ID: customerID}); err != nil {
		log.Fatal("failed to seed customer", zap.Error(err))
	}
	if err := catalog.AddProduct(ctx, domain.Product{
		ID:        productID,
		VendorID:  vendorID,
		Name:      "Stress Item",
		Price:     decimal.NewFromInt(1),
		Inventory: *initialStock,
	}); err != nil {
		log.Fatal("failed to seed product", zap.Error(err))
	}

	var (
		successCount atomic.Int32
		stockCount   atomic.Int32
		retryCount   atomic.Int32
		otherCount   atomic.Int32
	)

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < *totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := ledger.CreateOrder(ctx, uuid.NewString(), customerID,
				[]domain.LineItem{{ProductID: productID, Quantity: *quantity}})
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				stockCount.Add(1)
			case errors.Is(err, domain.ErrRetryable):
				retryCount.Add(1)
			default:
				otherCount.Add(1)
				log.Error("unexpected create-order failure", zap.Error(err))
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	finalStock, err := catalog.StockLevel(ctx, productID)
	if err != nil {
		log.Fatal("failed to read final stock", zap.Error(err))
	}

	success := int(successCount.Load())

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", *initialStock)
	fmt.Printf("Total Requests:   %d\n", *totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Out of stock:     %d\n", stockCount.Load())
	fmt.Printf("Retryable:        %d\n", retryCount.Load())
	fmt.Printf("Other errors:     %d\n", otherCount.Load())
	fmt.Printf("Final Stock:      %d\n", finalStock)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if finalStock >= 0 && success*(*quantity)+finalStock == *initialStock {
		fmt.Println("PASS: inventory conserved, never negative")
	} else {
		fmt.Printf("FAIL: %d orders x %d units + %d left != %d\n", success, *quantity, finalStock, *initialStock)
	}

	want := min(*totalRequests, *initialStock/(*quantity))
	if success == want {
		fmt.Printf("PASS: exactly %d orders succeeded\n", want)
	} else {
		fmt.Printf("NOTE: expected %d orders, got %d (retryable failures are not retried)\n", want, success)
	}
}
