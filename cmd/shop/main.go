package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/rl1809/electronic-shop/internal/adapter/storage"
	"github.com/rl1809/electronic-shop/internal/config"
	"github.com/rl1809/electronic-shop/internal/core/domain"
	"github.com/rl1809/electronic-shop/internal/core/service"
	"github.com/rl1809/electronic-shop/internal/logger"
	"github.com/rl1809/electronic-shop/internal/port"
)

const usage = `usage: shop <command> [flags]

commands:
  migrate        create tables and views
  vendors        list vendors with feedback scores
  add-vendor     -id -name -region
  add-customer   -id -phone -address
  add-product    -id -vendor -name -price -inventory -tags a,b,c
  search         <keyword>
  products       -vendor
  stock          -product
  order          -id
  create-order   -customer -items P1:2,P2:1 [-id]
  cancel-order   -id
  remove-line    -order -product
  rate           -order -product -rating
`

type app struct {
	db      *sql.DB
	ledger  *service.LedgerService
	catalog *service.CatalogService
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	_ = godotenv.Load()

	log, err := logger.New(os.Getenv("ENV") == "development")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg := config.Load(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, os.Args[1], os.Args[2:]); err != nil {
		log.Error("command failed", zap.String("command", os.Args[1]), zap.Error(err))
		stop()
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger, cmd string, args []string) error {
	db, err := storage.OpenMySQL(ctx, cfg.MySQL)
	if err != nil {
		return err
	}
	defer db.Close()
	log.Debug("connected to mysql")

	var cache port.StockCache
	if cfg.Redis.Enabled {
		rdb, err := storage.OpenRedis(ctx, cfg.Redis)
		if err != nil {
			// the cache is advisory, run without it
			log.Warn("redis unavailable, stock cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			cache = storage.NewRedisAdapter(rdb, cfg.Redis.StockTTL)
		}
	}

	store := storage.NewMySQLAdapter(db)
	a := &app{
		db:      db,
		ledger:  service.NewLedgerService(store, cache, log),
		catalog: service.NewCatalogService(store, cache, log),
	}
	return a.dispatch(ctx, cmd, args)
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "migrate":
		if err := storage.Migrate(ctx, a.db); err != nil {
			return err
		}
		fmt.Println("schema up to date")
		return nil
	case "vendors":
		return a.listVendors(ctx)
	case "add-vendor":
		return a.addVendor(ctx, args)
	case "add-customer":
		return a.addCustomer(ctx, args)
	case "add-product":
		return a.addProduct(ctx, args)
	case "search":
		return a.search(ctx, args)
	case "products":
		return a.products(ctx, args)
	case "stock":
		return a.stock(ctx, args)
	case "order":
		return a.showOrder(ctx, args)
	case "create-order":
		return a.createOrder(ctx, args)
	case "cancel-order":
		return a.cancelOrder(ctx, args)
	case "remove-line":
		return a.removeLine(ctx, args)
	case "rate":
		return a.rate(ctx, args)
	}
	fmt.Fprint(os.Stderr, usage)
	return fmt.Errorf("unknown command %q", cmd)
}

func (a *app) listVendors(ctx context.Context) error {
	vendors, err := a.catalog.ListVendors(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tREGION\tSCORE")
	for _, v := range vendors {
		score := "-"
		if v.Score != nil {
			score = strconv.FormatFloat(*v.Score, 'f', 2, 64)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", v.ID, v.Name, v.Region, score)
	}
	return w.Flush()
}

func (a *app) addVendor(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-vendor", flag.ContinueOnError)
	id := fs.String("id", "", "vendor id")
	name := fs.String("name", "", "business name")
	region := fs.String("region", "", "geographical presence")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.catalog.AddVendor(ctx, domain.Vendor{ID: *id, Name: *name, Region: *region}); err != nil {
		return err
	}
	fmt.Printf("vendor %s added\n", *id)
	return nil
}

func (a *app) addCustomer(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-customer", flag.ContinueOnError)
	id := fs.String("id", "", "customer id")
	phone := fs.String("phone", "", "contact number")
	address := fs.String("address", "", "shipping address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.catalog.AddCustomer(ctx, domain.Customer{ID: *id, ContactNumber: *phone, ShippingAddress: *address}); err != nil {
		return err
	}
	fmt.Printf("customer %s added\n", *id)
	return nil
}

func (a *app) addProduct(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-product", flag.ContinueOnError)
	id := fs.String("id", "", "product id")
	vendor := fs.String("vendor", "", "vendor id")
	name := fs.String("name", "", "product name")
	price := fs.String("price", "0", "listed price")
	inventory := fs.Int("inventory", 0, "units in stock")
	tags := fs.String("tags", "", "comma separated tags, at most three are kept")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := decimal.NewFromString(*price)
	if err != nil {
		return fmt.Errorf("%w: price %q", domain.ErrInvalidProduct, *price)
	}

	product := domain.Product{
		ID:        *id,
		VendorID:  *vendor,
		Name:      *name,
		Price:     p,
		Tags:      splitList(*tags),
		Inventory: *inventory,
	}
	if err := a.catalog.AddProduct(ctx, product); err != nil {
		return err
	}
	fmt.Printf("product %s added\n", *id)
	return nil
}

func (a *app) search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("search: keyword required")
	}
	products, err := a.catalog.SearchProducts(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	return printProducts(products)
}

func (a *app) products(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	vendor := fs.String("vendor", "", "vendor id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	products, err := a.catalog.ListProductsByVendor(ctx, *vendor)
	if err != nil {
		return err
	}
	return printProducts(products)
}

func (a *app) stock(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("stock", flag.ContinueOnError)
	product := fs.String("product", "", "product id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	n, err := a.catalog.StockLevel(ctx, *product)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d in stock\n", *product, n)
	return nil
}

func (a *app) showOrder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("order", flag.ContinueOnError)
	id := fs.String("id", "", "order id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	order, err := a.ledger.GetOrder(ctx, *id)
	if err != nil {
		return err
	}
	printOrder(order)
	return nil
}

func (a *app) createOrder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-order", flag.ContinueOnError)
	id := fs.String("id", "", "order id, generated when empty")
	customer := fs.String("customer", "", "customer id")
	items := fs.String("items", "", "line items as product:quantity, comma separated")
	if err := fs.Parse(args); err != nil {
		return err
	}

	lineItems, err := parseItems(*items)
	if err != nil {
		return err
	}
	if *id == "" {
		*id = uuid.NewString()
	}

	order, err := a.ledger.CreateOrder(ctx, *id, *customer, lineItems)
	if err != nil {
		return err
	}
	printOrder(order)
	return nil
}

func (a *app) cancelOrder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cancel-order", flag.ContinueOnError)
	id := fs.String("id", "", "order id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.ledger.CancelOrder(ctx, *id); err != nil {
		return err
	}
	fmt.Printf("order %s cancelled\n", *id)
	return nil
}

func (a *app) removeLine(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("remove-line", flag.ContinueOnError)
	order := fs.String("order", "", "order id")
	product := fs.String("product", "", "product id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.ledger.RemoveLine(ctx, *order, *product); err != nil {
		return err
	}
	fmt.Printf("removed %s from order %s\n", *product, *order)
	return nil
}

func (a *app) rate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rate", flag.ContinueOnError)
	order := fs.String("order", "", "order id")
	product := fs.String("product", "", "product id")
	rating := fs.Float64("rating", -1, "rating between 0 and 5")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := a.ledger.RateLine(ctx, *order, *product, *rating); err != nil {
		return err
	}
	fmt.Printf("rated %s in order %s: %.2f\n", *product, *order, *rating)
	return nil
}

// parseItems reads "P1:2,P2:1" into line items, keeping their order.
func parseItems(s string) ([]domain.LineItem, error) {
	var items []domain.LineItem
	for _, part := range splitList(s) {
		productID, qty, ok := strings.Cut(part, ":")
		if !ok {
			return nil, fmt.Errorf("%w: item %q is not product:quantity", domain.ErrInvalidQuantity, part)
		}
		n, err := strconv.Atoi(strings.TrimSpace(qty))
		if err != nil {
			return nil, fmt.Errorf("%w: item %q", domain.ErrInvalidQuantity, part)
		}
		items = append(items, domain.LineItem{ProductID: strings.TrimSpace(productID), Quantity: n})
	}
	return items, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func printProducts(products []domain.Product) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVENDOR\tNAME\tPRICE\tSTOCK\tTAGS")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			p.ID, p.VendorID, p.Name, p.Price.StringFixed(2), p.Inventory, strings.Join(p.Tags, ","))
	}
	return w.Flush()
}

func printOrder(o *domain.Order) {
	fmt.Printf("order %s  customer %s  %s  %s\n", o.ID, o.CustomerID, o.Status, o.CreatedAt.Format("2006-01-02"))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "LINE\tPRODUCT\tQTY\tPRICE\tRATING")
	for _, l := range o.Lines {
		rating := "-"
		if l.Rating != nil {
			rating = strconv.FormatFloat(*l.Rating, 'f', 2, 64)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", l.ID, l.ProductID, l.Quantity, l.UnitPrice.StringFixed(2), rating)
	}
	w.Flush()
	fmt.Printf("total %s\n", o.Total().StringFixed(2))
}
