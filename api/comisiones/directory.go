package comisiones

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LoadVendorDirectory reads the registered salespeople keyed by vendor code.
// Inactive users stay out: an inactive salesperson is not paid commission.
func LoadVendorDirectory(ctx context.Context, pgxPool *pgxpool.Pool) (map[string]Vendor, error) {
	rows, err := pgxPool.Query(ctx, `
		SELECT id, nombre, codigo_vendedor, porcentaje_comision, comision_base
		FROM users
		WHERE perfil = 'vendedor' AND activo = true AND codigo_vendedor IS NOT NULL
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	directory := make(map[string]Vendor)
	for rows.Next() {
		var (
			v          Vendor
			porcentaje *float64
			base       *float64
		)
		if err := rows.Scan(&v.ID, &v.Nombre, &v.CodigoVendedor, &porcentaje, &base); err != nil {
			return nil, err
		}
		if porcentaje != nil {
			d := decimal.NewFromFloat(*porcentaje)
			v.PorcentajeComision = &d
		}
		if base != nil {
			d := decimal.NewFromFloat(*base)
			v.ComisionBase = &d
		}
		directory[v.CodigoVendedor] = v
	}
	return directory, rows.Err()
}
