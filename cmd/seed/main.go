package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jwg-resto/pos-api/internal/auth"
	"github.com/jwg-resto/pos-api/internal/config"
	"github.com/jwg-resto/pos-api/internal/enum"
	"github.com/jwg-resto/pos-api/internal/logging"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

type menuSeed struct {
	name     string
	price    string
	prepTime int
}

type stockSeed struct {
	name     string
	category string
	unit     string
	stock    string
	minimum  string
	price    string
}

type ingredientSeed struct {
	menu     string
	item     string
	quantity string
	unit     string
}

var (
	seedSettings = map[string]string{
		"tax_percentage":            "10",
		"service_charge_percentage": "5",
		"auto_deduct_inventory":     "false",
	}

	seedTables = []struct {
		number   string
		capacity int
	}{
		{"T01", 2}, {"T02", 4}, {"T03", 4}, {"T04", 6}, {"T05", 8},
	}

	seedMenu = []menuSeed{
		{"Nasi Goreng", "25000", 15},
		{"Mie Goreng", "23000", 15},
		{"Ayam Bakar", "35000", 25},
		{"Es Teh", "8000", 3},
		{"Kopi Susu", "18000", 5},
	}

	seedStock = []stockSeed{
		{"Beras", "Bahan Pokok", "kg", "50", "10", "14000"},
		{"Telur", "Bahan Pokok", "pcs", "120", "30", "2000"},
		{"Mie Kering", "Bahan Pokok", "pack", "40", "10", "3500"},
		{"Ayam", "Protein", "kg", "15", "5", "38000"},
		{"Teh", "Minuman", "pack", "20", "5", "12000"},
		{"Kopi", "Minuman", "kg", "3", "1", "150000"},
		{"Susu Kental Manis", "Minuman", "can", "24", "6", "11000"},
	}

	seedRecipes = []ingredientSeed{
		{"Nasi Goreng", "Beras", "0.2", "kg"},
		{"Nasi Goreng", "Telur", "1", "pcs"},
		{"Mie Goreng", "Mie Kering", "1", "pack"},
		{"Mie Goreng", "Telur", "1", "pcs"},
		{"Ayam Bakar", "Ayam", "0.25", "kg"},
		{"Ayam Bakar", "Beras", "0.2", "kg"},
		{"Es Teh", "Teh", "0.05", "pack"},
		{"Kopi Susu", "Kopi", "0.02", "kg"},
		{"Kopi Susu", "Susu Kental Manis", "0.25", "can"},
	}
)

func main() {
	email := flag.String("email", "", "Admin email address")
	password := flag.String("password", "", "Admin password")
	name := flag.String("name", "", "Admin full name")
	withToken := flag.Bool("token", false, "Print a development JWT for the admin")
	flag.Parse()

	if *email == "" {
		*email = os.Getenv("SEED_EMAIL")
	}
	if *password == "" {
		*password = os.Getenv("SEED_PASSWORD")
	}
	if *name == "" {
		*name = os.Getenv("SEED_NAME")
	}

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	logger := logging.New(cfg.LogLevel, "text")

	if *email == "" {
		*email = "admin@jwg-resto.test"
	}
	if *password == "" {
		*password = "password123"
		logger.Warn("using default password 'password123', change it before production")
	}
	if *name == "" {
		*name = "Admin Resto"
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("connect database")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.WithError(err).Fatal("ping database")
	}

	// Everything or nothing.
	tx, err := pool.Begin(ctx)
	if err != nil {
		logger.WithError(err).Fatal("begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	s := &seeder{tx: tx, logger: logger}
	adminID, err := s.admin(ctx, *email, *password, *name)
	if err == nil {
		err = s.settings(ctx)
	}
	if err == nil {
		err = s.tables(ctx)
	}
	var menuIDs, stockIDs map[string]uuid.UUID
	if err == nil {
		menuIDs, err = s.menu(ctx)
	}
	if err == nil {
		stockIDs, err = s.inventory(ctx)
	}
	if err == nil {
		err = s.recipes(ctx, menuIDs, stockIDs)
	}
	if err == nil {
		err = s.discount(ctx)
	}
	if err != nil {
		logger.WithError(err).Fatal("seed")
	}

	if err := tx.Commit(ctx); err != nil {
		logger.WithError(err).Fatal("commit")
	}
	logger.WithField("admin_id", adminID).Info("seed completed")

	if *withToken {
		token, err := auth.GenerateToken(cfg.JWTSecret, adminID, enum.UserRoleAdmin)
		if err != nil {
			logger.WithError(err).Fatal("generate token")
		}
		fmt.Println(token)
	}
}

type seeder struct {
	tx     pgx.Tx
	logger logrus.FieldLogger
}

// lookup returns the id matched by query, or uuid.Nil when there is no row.
func (s *seeder) lookup(ctx context.Context, query string, args ...any) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.tx.QueryRow(ctx, query, args...).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, nil
	}
	return id, err
}

func (s *seeder) admin(ctx context.Context, email, password, fullName string) (uuid.UUID, error) {
	existing, err := s.lookup(ctx, `SELECT id FROM users WHERE email = $1`, email)
	if err != nil {
		return uuid.Nil, fmt.Errorf("check user: %w", err)
	}
	if existing != uuid.Nil {
		s.logger.WithField("email", email).Info("admin already exists, skipping")
		return existing, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return uuid.Nil, fmt.Errorf("hash password: %w", err)
	}

	var id uuid.UUID
	err = s.tx.QueryRow(ctx, `
		INSERT INTO users (email, full_name, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, email, fullName, string(hashed), enum.UserRoleAdmin).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert user: %w", err)
	}
	s.logger.WithField("email", email).Info("created admin")
	return id, nil
}

func (s *seeder) settings(ctx context.Context) error {
	for key, value := range seedSettings {
		_, err := s.tx.Exec(ctx, `
			INSERT INTO settings (setting_key, setting_value)
			VALUES ($1, $2)
			ON CONFLICT (setting_key) DO NOTHING
		`, key, value)
		if err != nil {
			return fmt.Errorf("insert setting %s: %w", key, err)
		}
	}
	return nil
}

func (s *seeder) tables(ctx context.Context) error {
	for _, t := range seedTables {
		_, err := s.tx.Exec(ctx, `
			INSERT INTO tables (table_number, capacity)
			VALUES ($1, $2)
			ON CONFLICT (table_number) DO NOTHING
		`, t.number, t.capacity)
		if err != nil {
			return fmt.Errorf("insert table %s: %w", t.number, err)
		}
	}
	s.logger.WithField("count", len(seedTables)).Info("tables ready")
	return nil
}

func (s *seeder) menu(ctx context.Context) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(seedMenu))
	for _, m := range seedMenu {
		id, err := s.lookup(ctx, `SELECT id FROM menu_items WHERE name = $1`, m.name)
		if err != nil {
			return nil, fmt.Errorf("check menu item %s: %w", m.name, err)
		}
		if id == uuid.Nil {
			err = s.tx.QueryRow(ctx, `
				INSERT INTO menu_items (name, price, preparation_time)
				VALUES ($1, $2::numeric, $3)
				RETURNING id
			`, m.name, m.price, m.prepTime).Scan(&id)
			if err != nil {
				return nil, fmt.Errorf("insert menu item %s: %w", m.name, err)
			}
		}
		ids[m.name] = id
	}
	s.logger.WithField("count", len(ids)).Info("menu ready")
	return ids, nil
}

func (s *seeder) inventory(ctx context.Context) (map[string]uuid.UUID, error) {
	ids := make(map[string]uuid.UUID, len(seedStock))
	for _, it := range seedStock {
		id, err := s.lookup(ctx, `SELECT id FROM inventory WHERE item_name = $1`, it.name)
		if err != nil {
			return nil, fmt.Errorf("check inventory item %s: %w", it.name, err)
		}
		if id == uuid.Nil {
			err = s.tx.QueryRow(ctx, `
				INSERT INTO inventory (item_name, category, unit, current_stock, minimum_stock, unit_price)
				VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6::numeric)
				RETURNING id
			`, it.name, it.category, it.unit, it.stock, it.minimum, it.price).Scan(&id)
			if err != nil {
				return nil, fmt.Errorf("insert inventory item %s: %w", it.name, err)
			}
			_, err = s.tx.Exec(ctx, `
				INSERT INTO inventory_movements
					(inventory_item_id, movement_type, quantity, unit, reference_type, reason)
				VALUES ($1, $2, $3::numeric, $4, $5, 'Initial stock')
			`, id, enum.MovementTypeIn, it.stock, it.unit, enum.ReferenceTypeManual)
			if err != nil {
				return nil, fmt.Errorf("log initial stock %s: %w", it.name, err)
			}
		}
		ids[it.name] = id
	}
	s.logger.WithField("count", len(ids)).Info("inventory ready")
	return ids, nil
}

func (s *seeder) recipes(ctx context.Context, menu, stock map[string]uuid.UUID) error {
	for _, r := range seedRecipes {
		menuID, itemID := menu[r.menu], stock[r.item]
		existing, err := s.lookup(ctx, `
			SELECT id FROM recipe_ingredients
			WHERE menu_item_id = $1 AND inventory_item_id = $2
		`, menuID, itemID)
		if err != nil {
			return fmt.Errorf("check recipe %s/%s: %w", r.menu, r.item, err)
		}
		if existing != uuid.Nil {
			continue
		}
		_, err = s.tx.Exec(ctx, `
			INSERT INTO recipe_ingredients (menu_item_id, inventory_item_id, quantity, unit)
			VALUES ($1, $2, $3::numeric, $4)
		`, menuID, itemID, r.quantity, r.unit)
		if err != nil {
			return fmt.Errorf("insert recipe %s/%s: %w", r.menu, r.item, err)
		}
	}
	return nil
}

func (s *seeder) discount(ctx context.Context) error {
	_, err := s.tx.Exec(ctx, `
		INSERT INTO discounts (code, discount_type, discount_value, min_purchase, max_discount)
		VALUES ('HEMAT10', 'percentage', 10, 50000, 20000)
		ON CONFLICT (code) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("insert discount: %w", err)
	}
	return nil
}
