package router

import (
	"database/sql"
	"net/http"
	"os"

	mem "farm-livestock-history/internal/adapters/storage/memory"
	pg "farm-livestock-history/internal/adapters/storage/postgres"
	"farm-livestock-history/internal/domain/animals"
	"farm-livestock-history/internal/domain/catalog"
	"farm-livestock-history/internal/domain/farms"
	"farm-livestock-history/internal/domain/sync"
	"farm-livestock-history/internal/domain/vaccinations"
	"farm-livestock-history/internal/domain/weights"
	"farm-livestock-history/internal/middleware"
	"farm-livestock-history/internal/platform/logger"
	"farm-livestock-history/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger logger.Logger // nil => logger desde env
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	log := opts.Logger
	if log == nil {
		log = logger.NewFromEnv()
	}

	var (
		animalsRepo animals.Repository
		weightsRepo weights.Repository
		vaccRepo    vaccinations.Repository
		farmsRepo   farms.Repository
		catalogRepo catalog.Repository
		syncStore   sync.Store
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			}
		}
	}

	if db != nil {
		animalsRepo = pg.NewAnimalsRepo(db)
		weightsRepo = pg.NewWeightsRepo(db)
		vaccRepo = pg.NewVaccinationsRepo(db)
		farmsRepo = pg.NewFarmsRepo(db)
		catalogRepo = pg.NewCatalogRepo(db)
		syncStore = pg.NewSyncStore(db)
	} else {
		// una sola base in-memory: lo que escribe el sync lo ven las
		// rutas CRUD, igual que contra Postgres
		state := mem.NewDB()
		animalsRepo = mem.NewAnimalsRepo(state)
		weightsRepo = mem.NewWeightsRepo(state)
		vaccRepo = mem.NewVaccinationsRepo(state)
		farmsRepo = mem.NewFarmsRepo(state)
		catalogRepo = mem.NewCatalogRepo(state)
		syncStore = mem.NewSyncStore(state)
	}

	breeds := catalog.LookupFunc(catalogRepo.BreedExists)
	vaccineTypes := catalog.LookupFunc(catalogRepo.VaccineTypeExists)
	vaccineNames := catalog.LookupFunc(catalogRepo.VaccineNameExists)

	// Services por módulo
	weightsSvc := weights.NewService(weightsRepo)
	animalsSvc := animals.NewService(animalsRepo, breeds, weightsSvc)
	vaccSvc := vaccinations.NewService(vaccRepo, vaccineTypes, vaccineNames)
	farmsSvc := farms.NewService(farmsRepo)
	syncSvc := sync.NewService(syncStore, log)

	// Rutas por módulo
	animals.RegisterRoutes(r, animalsSvc)
	weights.RegisterRoutes(r, weightsSvc, animalsSvc)
	vaccinations.RegisterRoutes(r, vaccSvc, animalsSvc)
	farms.RegisterRoutes(r, farmsSvc)
	catalog.RegisterRoutes(r, catalogRepo)
	sync.RegisterRoutes(r, syncSvc)

	return r
}
