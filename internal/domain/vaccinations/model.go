package vaccinations

import "time"

// Vaccination es una aplicación de vacuna a un animal. Pertenece a
// exactamente un animal por su id de servidor. Las referencias a los
// catálogos de tipo y nombre caen al centinela "otro" si el id que
// manda el cliente ya no existe.
type Vaccination struct {
	ID       string
	AnimalID string

	Date          time.Time
	VaccineTypeID int64
	VaccineNameID int64

	// Dose lleva cantidad y unidad en texto libre, ej. "3 ml".
	Dose  string
	Notes *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// Denormalizados para respuestas de lectura.
	VaccineTypeName string
	VaccineName     string
}
