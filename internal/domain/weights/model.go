package weights

import "time"

// Kind clasifica el pesaje.
// @Enum birth, purchase, sale, routine
type Kind string

const (
	KindBirth    Kind = "birth"
	KindPurchase Kind = "purchase"
	KindSale     Kind = "sale"
	KindRoutine  Kind = "routine"
)

// ParseKind coacciona valores desconocidos a routine, igual que hacía la
// app original con tipo_seguimiento.
func ParseKind(s string) Kind {
	switch Kind(s) {
	case KindBirth, KindPurchase, KindSale, KindRoutine:
		return Kind(s)
	default:
		return KindRoutine
	}
}

// Weight es un pesaje de un animal. Pertenece a exactamente un animal
// por su id de servidor; TagCode se guarda redundante para búsquedas
// por chip. No hay baja lógica: solo borrado masivo por chip.
type Weight struct {
	ID       string
	AnimalID string
	TagCode  string

	Date     time.Time
	WeightKg float64
	Kind     Kind

	PurchaseCost       *float64
	SaleCost           *float64
	PurchasePricePerKg *float64
	SalePricePerKg     *float64

	// Ganancias derivadas; el cliente puede mandarlas ya calculadas.
	GainKg         *float64
	PartialGainKg  *float64
	GainValue      *float64
	TrackingMonths *int

	CreatedAt time.Time
	UpdatedAt time.Time
}
