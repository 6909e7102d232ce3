package main

import (
	"context"
	"encoding/json"
	"flag"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"tienda/internal/repository"
)

type productJSON struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	ImageURL    string          `json:"image_url"`
}

func main() {
	var (
		databaseURL   string
		productsFile  string
		adminName     string
		adminEmail    string
		adminPassword string
	)

	flag.StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&productsFile, "products-file", "db/seed/products.json", "path to products JSON file (.gz supported)")
	flag.StringVar(&adminName, "admin-name", "Admin", "admin account display name")
	flag.StringVar(&adminEmail, "admin-email", "", "admin account email (or TIENDA_ADMIN_EMAIL env)")
	flag.StringVar(&adminPassword, "admin-password", "", "admin account password (or TIENDA_ADMIN_PASSWORD env)")
	flag.Parse()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if adminEmail == "" {
		adminEmail = os.Getenv("TIENDA_ADMIN_EMAIL")
	}
	if adminPassword == "" {
		adminPassword = os.Getenv("TIENDA_ADMIN_PASSWORD")
	}
	if adminEmail != "" && adminPassword == "" {
		slog.Error("admin password is required when --admin-email is set")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, databaseURL, productsFile, adminName, adminEmail, adminPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, databaseURL, productsFile, adminName, adminEmail, adminPassword string) error {
	slog.Info("connecting to database")

	pool, err := repository.NewPool(ctx, databaseURL)
	if err != nil {
		return errors.Wrap(err, "connect to database")
	}
	defer pool.Close()

	slog.Info("running migrations")

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return errors.Wrap(seedProducts(ctx, pool, productsFile), "seed products")
	})
	if adminEmail != "" {
		g.Go(func() error {
			return errors.Wrap(seedAdmin(ctx, pool, adminName, adminEmail, adminPassword), "seed admin user")
		})
	}

	return g.Wait()
}

// seedProducts loads the catalog from a JSON file (gzip-compressed files are
// handled transparently) and inserts it, but only into an empty table so
// re-running the tool never duplicates the catalog.
func seedProducts(ctx context.Context, pool *pgxpool.Pool, productsFile string) error {
	slog.Info("reading products file", slog.String("path", productsFile))

	products, err := readProductsFile(productsFile)
	if err != nil {
		return err
	}

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		var existing int
		if err := tx.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&existing); err != nil {
			return errors.Wrap(err, "count products")
		}
		if existing > 0 {
			slog.Info("products already seeded, skipping", slog.Int("existing", existing))
			return nil
		}

		slog.Info("inserting products", slog.Int("count", len(products)))

		for _, p := range products {
			if _, err := tx.Exec(ctx,
				`INSERT INTO products (name, description, price, stock, image_url)
				 VALUES ($1, $2, $3, $4, $5)`,
				p.Name, p.Description, p.Price, p.Stock, p.ImageURL,
			); err != nil {
				return errors.Wrapf(err, "insert product %q", p.Name)
			}
		}
		return nil
	})
}

func readProductsFile(path string) ([]productJSON, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	var products []productJSON
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, errors.Wrap(err, "parse products JSON")
	}
	return products, nil
}

// seedAdmin upserts the bootstrap admin account keyed by email.
func seedAdmin(ctx context.Context, pool *pgxpool.Pool, name, email, password string) error {
	slog.Info("seeding admin user", slog.String("email", email))

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return errors.Wrap(err, "hash admin password")
	}

	if _, err := pool.Exec(ctx,
		`INSERT INTO users (name, email, password_hash, is_admin)
		 VALUES ($1, lower($2), $3, TRUE)
		 ON CONFLICT (email) DO UPDATE
		 SET password_hash = EXCLUDED.password_hash, is_admin = TRUE`,
		name, email, string(hash),
	); err != nil {
		return errors.Wrap(err, "upsert admin user")
	}

	return nil
}
