package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/nickyhof/ShowcaseDB"
	"github.com/nickyhof/ShowcaseDB/auth"
	"github.com/nickyhof/ShowcaseDB/core"
	"github.com/nickyhof/ShowcaseDB/dump"
	"github.com/nickyhof/ShowcaseDB/inspect"
	"github.com/nickyhof/ShowcaseDB/op"
	"github.com/nickyhof/ShowcaseDB/store"
)

const (
	HeaderColor  = "\033[36m" // Cyan
	ErrorColor   = "\033[31m" // Red
	SuccessColor = "\033[32m" // Green
	ResetColor   = "\033[0m"
	BoldColor    = "\033[1m"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	dbPath := flag.String("db", "", "Database file path (empty for in-memory)")
	numUsers := flag.Int("users", 50, "Number of users to generate")
	numProducts := flag.Int("products", 100, "Number of products to generate")
	seed := flag.Int64("seed", 42, "Random seed for data generation")
	backup := flag.String("backup", "", "Optional dump target (path, file:// or s3://)")
	secret := flag.String("secret", "showcase-dev-secret", "JWT signing secret")
	flag.Parse()

	printBanner()

	ctx := context.Background()

	var st *store.Store
	var err error
	if *dbPath == "" {
		fmt.Printf("%sUsing in-memory database%s\n", SuccessColor, ResetColor)
		st, err = store.NewMemoryStore()
	} else {
		fmt.Printf("%sUsing database file: %s%s\n", SuccessColor, *dbPath, ResetColor)
		st, err = store.NewFileStore(*dbPath)
	}
	if err != nil {
		exitErr("open database", err)
	}
	defer st.Close()

	instance := ShowcaseDB.Open(st)

	section("1. Schema setup")
	if err := st.Setup(ctx); err != nil {
		exitErr("setup", err)
	}
	if err := st.ModifySchema(ctx); err != nil {
		exitErr("modify schema", err)
	}
	fmt.Println("Tables, indexes, views and sequences created")

	section("2. Data generation")
	if err := instance.Seeder(*seed).Generate(ctx, *numUsers, *numProducts); err != nil {
		exitErr("generate data", err)
	}
	fmt.Printf("Generated %d users, %d products, 200 orders\n", *numUsers, *numProducts)

	tokens := &auth.TokenIssuer{Secret: *secret, Issuer: "showcase"}
	users := instance.Users(tokens)

	section("3. Authentication")
	adminID, err := users.Create(ctx, "demo_admin", "admin@example.com", "admin123")
	if err != nil {
		exitErr("create admin", err)
	}
	token, err := users.Authenticate(ctx, "demo_admin", "admin123")
	if err != nil {
		exitErr("authenticate", err)
	}
	identity, err := tokens.Validate(token)
	if err != nil {
		exitErr("validate token", err)
	}
	if err := users.RecordLogin(ctx, adminID); err != nil {
		exitErr("record login", err)
	}
	fmt.Printf("Issued and validated token for %s <%s>\n", identity.Name, identity.Email)

	if _, err := users.Authenticate(ctx, "demo_admin", "wrong"); errors.Is(err, op.ErrBadCredentials) {
		fmt.Println("Wrong password rejected")
	}

	if _, err := st.DB().ExecContext(ctx,
		`INSERT INTO user_roles (user_id, role) VALUES (?, 'admin')`, adminID); err != nil {
		exitErr("grant role", err)
	}
	fmt.Println("Granted admin role to demo_admin")

	reports := instance.Reports()

	section("4. Active users")
	activeUsers, err := reports.ActiveUsers(ctx, 10)
	if err != nil {
		exitErr("active users", err)
	}
	for _, u := range activeUsers {
		fmt.Printf("  %-24s %s\n", u.Username, u.Email)
	}

	section("5. Products by category")
	categories, err := reports.ProductsByCategory(ctx)
	if err != nil {
		exitErr("products by category", err)
	}
	for _, c := range categories {
		fmt.Printf("  %-12s %3d products, avg price %s, stock %d\n",
			c.Category, c.ProductCount, c.AveragePrice.StringFixed(2), c.TotalStock)
	}

	section("6. Sales statistics")
	sales, err := reports.SalesStatistics(ctx)
	if err != nil {
		exitErr("sales statistics", err)
	}
	fmt.Printf("  Orders:   %d\n", sales.OrderCount)
	fmt.Printf("  Revenue:  %s\n", sales.TotalRevenue.StringFixed(2))
	fmt.Printf("  Average:  %s\n", sales.AverageOrder.StringFixed(2))
	fmt.Printf("  Largest:  %s\n", sales.LargestOrder.StringFixed(2))
	fmt.Printf("  Smallest: %s\n", sales.SmallestOrder.StringFixed(2))
	for status, count := range sales.ByStatus {
		fmt.Printf("  %-10s %d\n", status+":", count)
	}

	section("7. User order summary")
	summaries, err := reports.UserOrderSummary(ctx, 10)
	if err != nil {
		exitErr("user order summary", err)
	}
	for _, s := range summaries {
		fmt.Printf("  %-24s %2d orders, %3d items, spent %s\n",
			s.Username, s.OrderCount, s.ItemCount, s.TotalSpent.StringFixed(2))
	}

	section("8. Top customers")
	customers, err := reports.TopCustomers(ctx, 5)
	if err != nil {
		exitErr("top customers", err)
	}
	for i, c := range customers {
		fmt.Printf("  %d. %-24s %2d completed orders, spent %s\n",
			i+1, c.Username, c.OrderCount, c.TotalSpent.StringFixed(2))
	}

	orders := instance.Orders()

	section("9. Order transaction")
	var productID int64
	var stock int
	err = st.DB().QueryRowContext(ctx,
		`SELECT id, stock FROM products WHERE stock >= 2 ORDER BY id LIMIT 1`).Scan(&productID, &stock)
	if err != nil {
		exitErr("pick product", err)
	}
	order, err := orders.Place(ctx, adminID, []core.LineItem{{ProductID: productID, Quantity: 2}})
	if err != nil {
		exitErr("place order", err)
	}
	fmt.Printf("%sOrder %d placed, total %s, stock %d -> %d%s\n",
		SuccessColor, order.ID, order.TotalAmount.StringFixed(2), stock, stock-2, ResetColor)

	section("10. Transaction rollback")
	_, err = orders.Place(ctx, adminID, []core.LineItem{{ProductID: productID, Quantity: stock + 100}})
	if op.IsValidation(err) {
		fmt.Printf("%sOrder rejected and rolled back: %v%s\n", SuccessColor, err, ResetColor)
	} else if err != nil {
		exitErr("rollback demo", err)
	}

	section("11. Delete protection")
	err = orders.Delete(ctx, order.ID)
	if errors.Is(err, store.ErrOrderHasItems) {
		fmt.Printf("%sDelete blocked: %v%s\n", SuccessColor, err, ResetColor)
	} else if err != nil {
		exitErr("delete demo", err)
	}

	section("12. Query plan")
	plan, err := st.ExplainQuery(ctx, `SELECT * FROM orders WHERE user_id = 1 AND status = 'completed'`)
	if err != nil {
		exitErr("explain", err)
	}
	for _, line := range plan {
		fmt.Println(line)
	}

	section("13. Optimization")
	if err := st.Optimize(ctx); err != nil {
		exitErr("optimize", err)
	}
	fmt.Println("Statistics refreshed, covering index in place")

	section("14. Backup and restore")
	var buf bytes.Buffer
	dumper := instance.Dumper()
	if err := dumper.Dump(ctx, &buf); err != nil {
		exitErr("dump", err)
	}
	fmt.Printf("Dump is %d bytes\n", buf.Len())

	vault, err := dump.NewMemoryVault()
	if err != nil {
		exitErr("vault", err)
	}
	rev, err := vault.Save("showcase.sql", buf.Bytes(), core.Identity{
		Name:  identity.Name,
		Email: identity.Email,
	}, "Nightly backup")
	if err != nil {
		exitErr("vault save", err)
	}
	if err := vault.Snapshot("v1"); err != nil {
		exitErr("vault snapshot", err)
	}
	fmt.Printf("Backup committed as %s, tagged v1\n", rev.Id[:12])

	if *backup != "" {
		if err := dumper.DumpTo(ctx, *backup); err != nil {
			exitErr("dump to target", err)
		}
		fmt.Printf("Dump written to %s\n", *backup)
	}

	saved, err := vault.Retrieve("showcase.sql")
	if err != nil {
		exitErr("vault retrieve", err)
	}
	applied, err := dumper.Restore(ctx, bytes.NewReader(saved))
	if err != nil {
		exitErr("restore", err)
	}
	restored, err := reports.SalesStatistics(ctx)
	if err != nil {
		exitErr("verify restore", err)
	}
	fmt.Printf("Replayed %d statements, %d orders restored, revenue %s\n",
		applied, restored.OrderCount, restored.TotalRevenue.StringFixed(2))

	section("15. Audit trail")
	var auditCount int64
	if err := st.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM audit_log`).Scan(&auditCount); err != nil {
		exitErr("audit count", err)
	}
	fmt.Printf("%d audit entries recorded\n", auditCount)

	section("16. Schema documentation")
	doc, err := inspect.Collect(ctx, st)
	if err != nil {
		exitErr("collect documentation", err)
	}
	doc.Render(os.Stdout)

	fmt.Printf("\n%s✓ Showcase complete%s\n", SuccessColor, ResetColor)
}

func printBanner() {
	fmt.Println()
	bannerWidth := 39 // inner width of the banner box
	versionLine := fmt.Sprintf("ShowcaseDB v%s", Version)
	padding := bannerWidth - len(versionLine) - 2 // -2 for "  " margins
	if padding < 0 {
		padding = 0
	}
	leftPad := padding / 2
	rightPad := padding - leftPad

	fmt.Printf("%s%s╔═══════════════════════════════════════╗%s\n", BoldColor, HeaderColor, ResetColor)
	fmt.Printf("%s%s║ %*s%s%*s ║%s\n", BoldColor, HeaderColor, leftPad, "", versionLine, rightPad, "", ResetColor)
	fmt.Printf("%s%s║   Embedded Database Showcase          ║%s\n", BoldColor, HeaderColor, ResetColor)
	fmt.Printf("%s%s╚═══════════════════════════════════════╝%s\n", BoldColor, HeaderColor, ResetColor)
	fmt.Println()
}

func section(title string) {
	fmt.Printf("\n%s%s=== %s ===%s\n", BoldColor, HeaderColor, title, ResetColor)
}

func exitErr(what string, err error) {
	fmt.Printf("%sError: %s: %v%s\n", ErrorColor, what, err, ResetColor)
	os.Exit(1)
}
