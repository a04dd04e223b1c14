package farms

import "time"

// Farm es una finca administrada por el sistema. Solo los admins
// gestionan fincas; la partición de datos por usuario es independiente.
type Farm struct {
	ID      string
	Name    string
	TaxID   string // NIT, único
	Address string
	Phone   string
	Email   string
	Active  bool

	CreatedAt time.Time
	UpdatedAt time.Time
}
