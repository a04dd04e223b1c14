package animals

import "time"

// Animal representa un animal registrado en la finca.
// TagCode (el chip físico) es la clave natural: única entre animales
// activos de un mismo usuario. ID es el identificador asignado por el
// servidor y nunca cambia.
type Animal struct {
	ID          string
	OwnerUserID string

	TagCode string
	Photo   string

	BirthWeightKg float64
	BreedID       int64
	BirthDate     time.Time

	// Linaje: referencias opcionales a otros animales.
	MotherID *string
	FatherID *string

	Diseases *string
	Notes    *string

	Origin        *string
	Brand         *string
	Category      *string
	Location      *string
	CalvingNumber *int
	Precocity     *string
	MatingType    *string

	// Active en false = baja lógica. La fila nunca se borra por sync.
	Active bool

	CreatedAt time.Time
	UpdatedAt time.Time

	// BreedName es el nombre de la raza denormalizado para respuestas
	// de lectura; no se persiste en la tabla de animales.
	BreedName string
}

const DefaultPhoto = "default.jpg"
