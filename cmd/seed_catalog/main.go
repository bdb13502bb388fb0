// seed_catalog carga el catálogo de productos desde un CSV exportado de la base anterior.
//
// Uso: go run ./cmd/seed_catalog [-latin1] [-actor 1] catalogo.csv
//
// Columnas (separador ';', primera fila encabezado):
//
//	codigo;nombre;costo;precio;stock;stock_minimo;descuento_max
//
// Cada producto se crea con stock 0 y el stock del archivo entra como movimiento IN
// "saldo inicial", así el stock coincide con el libro de movimientos desde el primer día.
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/Ventas-api/internal/application/inventory"
	"github.com/jhoicas/Ventas-api/internal/domain"
	"github.com/jhoicas/Ventas-api/internal/domain/entity"
	"github.com/jhoicas/Ventas-api/internal/infrastructure/storage"
	"github.com/jhoicas/Ventas-api/pkg/config"
	"github.com/jhoicas/Ventas-api/pkg/logger"
)

const columns = 7

// catalogRow fila del CSV ya interpretada.
type catalogRow struct {
	line        int
	code        string
	name        string
	cost        decimal.Decimal
	price       decimal.Decimal
	stock       int64
	minimum     int64
	maxDiscount decimal.Decimal
}

// summary resultado de la carga.
type summary struct {
	created int
	skipped int
}

func main() {
	latin1 := flag.Bool("latin1", false, "el archivo viene en ISO-8859-1")
	actorID := flag.Int64("actor", 1, "usuario que figura en los movimientos de saldo inicial")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "uso: seed_catalog [-latin1] [-actor id] catalogo.csv")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level})

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatal().Err(err).Msg("abrir CSV")
	}
	defer f.Close()

	rows, err := parseCatalog(f, *latin1)
	if err != nil {
		log.Fatal().Err(err).Msg("leer CSV")
	}

	ctx := context.Background()
	st, err := storage.Open(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("abrir persistencia")
	}
	defer st.Close()

	res, err := load(ctx, st, *actorID, rows, log)
	if err != nil {
		log.Fatal().Err(err).Msg("cargar catálogo")
	}
	log.Info().Int("creados", res.created).Int("omitidos", res.skipped).Msg("catálogo cargado")
}

// parseCatalog lee y valida todas las filas. Un error de formato aborta la carga completa.
func parseCatalog(r io.Reader, latin1 bool) ([]catalogRow, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = columns
	cr.TrimLeadingSpace = true

	if _, err := cr.Read(); err != nil {
		return nil, fmt.Errorf("encabezado: %w", err)
	}
	var rows []catalogRow
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		row, err := parseRow(line, rec)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func parseRow(line int, rec []string) (catalogRow, error) {
	for i := range rec {
		rec[i] = strings.TrimSpace(rec[i])
	}
	row := catalogRow{line: line, code: rec[0], name: rec[1]}
	if row.code == "" || row.name == "" {
		return row, fmt.Errorf("línea %d: código y nombre son obligatorios", line)
	}
	var err error
	if row.cost, err = parseMoney(rec[2]); err != nil {
		return row, fmt.Errorf("línea %d: costo: %w", line, err)
	}
	if row.price, err = parseMoney(rec[3]); err != nil {
		return row, fmt.Errorf("línea %d: precio: %w", line, err)
	}
	if row.stock, err = strconv.ParseInt(rec[4], 10, 64); err != nil || row.stock < 0 {
		return row, fmt.Errorf("línea %d: stock inválido %q", line, rec[4])
	}
	if row.minimum, err = strconv.ParseInt(rec[5], 10, 64); err != nil || row.minimum < 0 {
		return row, fmt.Errorf("línea %d: stock mínimo inválido %q", line, rec[5])
	}
	if row.maxDiscount, err = parseMoney(rec[6]); err != nil || row.maxDiscount.GreaterThan(decimal.NewFromInt(100)) {
		return row, fmt.Errorf("línea %d: descuento máximo inválido %q", line, rec[6])
	}
	return row, nil
}

// parseMoney acepta coma decimal ("12,50") como la exportación original.
func parseMoney(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("valor negativo %s", s)
	}
	return d, nil
}

// load crea los productos y su saldo inicial. Un código ya existente se omite; cualquier otro
// error detiene la carga.
func load(ctx context.Context, st *storage.Storage, actorID int64, rows []catalogRow, log *logger.Logger) (summary, error) {
	var res summary
	actorID, err := ensureActor(ctx, st, actorID, log)
	if err != nil {
		return res, err
	}
	inv := inventory.NewRegisterMovementUseCase(st.Runner, st.Products, st.Users)
	for _, row := range rows {
		p := &entity.Product{
			Code:           row.code,
			Name:           row.name,
			CostPrice:      row.cost,
			SalePrice:      row.price,
			StockMinimum:   row.minimum,
			MaxDiscountPct: row.maxDiscount,
			Status:         entity.ProductStatusActive,
		}
		if err := st.Products.Create(ctx, p); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				log.Warn().Int("linea", row.line).Str("codigo", row.code).Msg("código existente, se omite")
				res.skipped++
				continue
			}
			return res, fmt.Errorf("línea %d: %w", row.line, err)
		}
		if row.stock > 0 {
			cost := row.cost
			if _, err := inv.RegisterMovement(ctx, inventory.MovementInputDTO{
				ActorID:   actorID,
				ProductID: p.ID,
				Type:      entity.MovementTypeIN,
				Quantity:  row.stock,
				UnitCost:  &cost,
				Reason:    entity.MovementReasonInitial,
			}); err != nil {
				return res, fmt.Errorf("línea %d: saldo inicial: %w", row.line, err)
			}
		}
		res.created++
	}
	return res, nil
}

// ensureActor devuelve el actor de los movimientos. Si se pide el 1 y no existe (base nueva)
// crea el admin inicial y devuelve su id.
func ensureActor(ctx context.Context, st *storage.Storage, actorID int64, log *logger.Logger) (int64, error) {
	u, err := st.Users.GetByID(ctx, actorID)
	if err != nil {
		return 0, err
	}
	if u != nil {
		if !u.IsActive() {
			return 0, fmt.Errorf("actor %d: %w", actorID, domain.ErrActorInvalid)
		}
		return u.ID, nil
	}
	if actorID != 1 {
		return 0, fmt.Errorf("actor %d: %w", actorID, domain.ErrActorInvalid)
	}
	admin := &entity.User{Username: "admin", Name: "Administrador", Role: entity.RoleAdmin, Status: entity.UserStatusActive}
	if err := st.Users.Create(ctx, admin); err != nil {
		return 0, err
	}
	log.Info().Int64("user_id", admin.ID).Msg("usuario admin creado")
	return admin.ID, nil
}
