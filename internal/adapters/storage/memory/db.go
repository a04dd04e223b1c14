package memory

import (
	"sync"

	"farm-livestock-history/internal/domain/animals"
	"farm-livestock-history/internal/domain/farms"
	"farm-livestock-history/internal/domain/vaccinations"
	"farm-livestock-history/internal/domain/weights"
)

// DB es la base in-memory compartida por todos los repos del paquete.
// A diferencia de repos aislados, acá el estado es uno solo: lo que
// escribe el sync lo ven las rutas CRUD y viceversa, igual que contra
// Postgres. Sirve para dev y para los tests end-to-end.
type DB struct {
	mu sync.Mutex

	animals      map[string]animals.Animal
	weights      map[string]weights.Weight
	vaccinations map[string]vaccinations.Vaccination
	farms        map[string]farms.Farm

	breeds       map[int64]string
	vaccineTypes map[int64]string
	vaccineNames map[int64]string
}

func NewDB() *DB {
	return &DB{
		animals:      make(map[string]animals.Animal),
		weights:      make(map[string]weights.Weight),
		vaccinations: make(map[string]vaccinations.Vaccination),
		farms:        make(map[string]farms.Farm),

		// Catálogos sembrados con las mismas filas base (y centinelas)
		// que la base real.
		breeds: map[int64]string{
			1:  "Brahman",
			2:  "Angus",
			3:  "Holstein",
			4:  "Gyr",
			25: "Otra Raza",
		},
		vaccineTypes: map[int64]string{
			1:  "Viral",
			2:  "Bacteriana",
			11: "Otro Tipo",
		},
		vaccineNames: map[int64]string{
			1:  "Fiebre Aftosa",
			2:  "Brucelosis",
			3:  "Carbón Sintomático",
			23: "Otra Vacuna",
		},
	}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
