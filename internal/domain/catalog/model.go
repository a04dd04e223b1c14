package catalog

// IDs centinela de los catálogos. Cuando el cliente manda una referencia
// que ya no existe (catálogo local desactualizado), se guarda el centinela
// en vez de rechazar la operación. Los valores vienen de las filas
// "Otra Raza" / "Otra Vacuna" / "Otro Tipo" sembradas en la base.
const (
	BreedOtherID       int64 = 25
	VaccineNameOtherID int64 = 23
	VaccineTypeOtherID int64 = 11
)

// Breed es una raza del catálogo.
type Breed struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// VaccineType es un tipo de vacuna del catálogo (viral, bacteriana, etc).
type VaccineType struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// VaccineName es un nombre comercial/común de vacuna del catálogo.
type VaccineName struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
