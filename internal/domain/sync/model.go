package sync

import "encoding/json"

// Tablas sincronizables. El cliente declara sobre qué clase de entidad
// opera cada operación del batch.
const (
	TableAnimals      = "animals"
	TableWeights      = "weights"
	TableVaccinations = "vaccinations"
)

// Acciones del protocolo. DELETE solo existe para animals (baja lógica);
// pesajes y vacunas se borran únicamente por la ruta masiva por chip,
// fuera del sync.
const (
	ActionInsert = "INSERT"
	ActionUpdate = "UPDATE"
	ActionDelete = "DELETE"
)

// Operation es una intención de mutación acumulada offline por el
// cliente. RecordID lleva el id local del cliente en INSERT (para
// correlacionar el resultado) y el id de servidor en UPDATE de
// pesajes/vacunas y DELETE de animales. No se persiste nunca.
type Operation struct {
	Table    string          `json:"table"`
	Action   string          `json:"action"`
	RecordID string          `json:"recordId,omitempty"`
	Data     json.RawMessage `json:"data"`
}

// Result refleja el desenlace de una operación. El cliente debe revisar
// cada resultado aunque el batch entero haya respondido 200.
type Result struct {
	Success bool   `json:"success"`
	Action  string `json:"action"`
	Table   string `json:"table"`

	// INSERT exitoso: id asignado por el servidor + id local del cliente.
	ServerID string `json:"serverId,omitempty"`
	LocalID  string `json:"localId,omitempty"`

	// UPDATE/DELETE exitoso: filas afectadas.
	AffectedRows int64 `json:"affectedRows,omitempty"`

	// Fracaso: razón legible por máquina. En chip duplicado se adjunta
	// el id existente para que el cliente lo adopte en vez de reintentar.
	Error      string `json:"error,omitempty"`
	ExistingID string `json:"existingId,omitempty"`
}

func failure(table, action, reason string) Result {
	return Result{Success: false, Table: table, Action: action, Error: reason}
}

// Payloads de operaciones, con forma de entidad. Las fechas viajan como
// YYYY-MM-DD. Los tags de validator cubren los obligatorios del INSERT.

type animalPayload struct {
	TagCode       string  `json:"tag_code" validate:"required"`
	Photo         string  `json:"photo"`
	BirthWeightKg float64 `json:"birth_weight_kg" validate:"required,gt=0"`
	BreedID       int64   `json:"breed_id" validate:"required"`
	BirthDate     string  `json:"birth_date" validate:"required"`

	MotherID *string `json:"mother_id"`
	FatherID *string `json:"father_id"`
	Diseases *string `json:"diseases"`
	Notes    *string `json:"notes"`

	Origin        *string `json:"origin"`
	Brand         *string `json:"brand"`
	Category      *string `json:"category"`
	Location      *string `json:"location"`
	CalvingNumber *int    `json:"calving_number"`
	Precocity     *string `json:"precocity"`
	MatingType    *string `json:"mating_type"`
}

type weightPayload struct {
	AnimalID string  `json:"animal_id" validate:"required"`
	TagCode  string  `json:"tag_code"`
	Date     string  `json:"date" validate:"required"`
	WeightKg float64 `json:"weight_kg" validate:"required,gt=0"`
	Kind     string  `json:"kind"`

	PurchaseCost       *float64 `json:"purchase_cost"`
	SaleCost           *float64 `json:"sale_cost"`
	PurchasePricePerKg *float64 `json:"purchase_price_per_kg"`
	SalePricePerKg     *float64 `json:"sale_price_per_kg"`
	GainKg             *float64 `json:"gain_kg"`
	PartialGainKg      *float64 `json:"partial_gain_kg"`
	GainValue          *float64 `json:"gain_value"`
	TrackingMonths     *int     `json:"tracking_months"`
}

type vaccinationPayload struct {
	AnimalID      string  `json:"animal_id" validate:"required"`
	Date          string  `json:"date" validate:"required"`
	VaccineTypeID int64   `json:"vaccine_type_id"`
	VaccineNameID int64   `json:"vaccine_name_id"`
	Dose          string  `json:"dose"`
	Notes         *string `json:"notes"`
}
