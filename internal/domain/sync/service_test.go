package sync_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mem "farm-livestock-history/internal/adapters/storage/memory"
	"farm-livestock-history/internal/domain/sync"
	"farm-livestock-history/internal/domain/weights"
	"farm-livestock-history/internal/platform/logger"
	"farm-livestock-history/internal/ports/auth"
)

func newTestService() *sync.Service {
	return sync.NewService(mem.NewSyncStore(mem.NewDB()), logger.Nop())
}

func user(id string) auth.Claims {
	return auth.Claims{UserID: id, Role: auth.RoleUser}
}

func admin() auth.Claims {
	return auth.Claims{UserID: "admin-1", Role: auth.RoleAdmin}
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return b
}

func animalInsertOp(t *testing.T, localID, tagCode string) sync.Operation {
	t.Helper()
	return sync.Operation{
		Table:    sync.TableAnimals,
		Action:   sync.ActionInsert,
		RecordID: localID,
		Data: mustJSON(t, map[string]any{
			"tag_code":        tagCode,
			"birth_weight_kg": 32.5,
			"breed_id":        1,
			"birth_date":      "2024-03-10",
		}),
	}
}

func TestProcessBatch_InsertAnimalCreatesBirthWeight(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	out, err := svc.ProcessBatch(ctx, user("u1"), []sync.Operation{
		animalInsertOp(t, "local-7", "CHIP-001"),
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)

	res := out.Results[0]
	assert.True(t, res.Success)
	assert.Equal(t, sync.TableAnimals, res.Table)
	assert.NotEmpty(t, res.ServerID)
	assert.Equal(t, "local-7", res.LocalID)
	assert.Equal(t, 1, out.SuccessCount)
	assert.Equal(t, 0, out.FailCount)

	// el alta produce exactamente un pesaje de nacimiento
	ws, err := svc.PullWeights(ctx, user("u1"), nil)
	require.NoError(t, err)
	require.Len(t, ws, 1)
	assert.Equal(t, res.ServerID, ws[0].AnimalID)
	assert.Equal(t, "CHIP-001", ws[0].TagCode)
	assert.Equal(t, weights.KindBirth, ws[0].Kind)
	assert.Equal(t, 32.5, ws[0].WeightKg)
}

func TestProcessBatch_DuplicateTagReturnsExistingID(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	first, err := svc.ProcessBatch(ctx, user("u1"), []sync.Operation{
		animalInsertOp(t, "l1", "CHIP-001"),
	})
	require.NoError(t, err)
	require.True(t, first.Results[0].Success)

	// reintento offline del mismo alta: falla con el id existente, el
	// cliente debe adoptarlo
	second, err := svc.ProcessBatch(ctx, user("u1"), []sync.Operation{
		animalInsertOp(t, "l1", "CHIP-001"),
	})
	require.NoError(t, err)
	res := second.Results[0]
	assert.False(t, res.Success)
	assert.Equal(t, first.Results[0].ServerID, res.ExistingID)
	assert.Equal(t, 1, second.FailCount)

	// solo hay un animal
	as, err := svc.PullAnimals(ctx, user("u1"), nil)
	require.NoError(t, err)
	assert.Len(t, as, 1)
}

func TestProcessBatch_SameBatchVisibility(t *testing.T) {
	svc := newTestService()

	// la segunda operación ve el insert de la primera dentro del mismo batch
	out, err := svc.ProcessBatch(context.Background(), user("u1"), []sync.Operation{
		animalInsertOp(t, "l1", "CHIP-001"),
		animalInsertOp(t, "l2", "CHIP-001"),
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 2)

	assert.True(t, out.Results[0].Success)
	assert.False(t, out.Results[1].Success)
	assert.Equal(t, out.Results[0].ServerID, out.Results[1].ExistingID)
}

func TestProcessBatch_PartialFailureDoesNotAbort(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	out, err := svc.ProcessBatch(ctx, user("u1"), []sync.Operation{
		{Table: "unknown", Action: sync.ActionInsert, Data: mustJSON(t, map[string]any{})},
		animalInsertOp(t, "l2", "CHIP-002"),
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 2)

	assert.False(t, out.Results[0].Success)
	assert.NotEmpty(t, out.Results[0].Error)
	assert.True(t, out.Results[1].Success)
	assert.Equal(t, 1, out.SuccessCount)
	assert.Equal(t, 1, out.FailCount)

	// el batch se confirmó: la operación buena quedó persistida
	as, err := svc.PullAnimals(ctx, user("u1"), nil)
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, "CHIP-002", as[0].TagCode)
}

func TestProcessBatch_InvalidPayloadIsPerOpFailure(t *testing.T) {
	svc := newTestService()

	out, err := svc.ProcessBatch(context.Background(), user("u1"), []sync.Operation{
		{
			Table:  sync.TableAnimals,
			Action: sync.ActionInsert,
			// falta tag_code y el peso es inválido
			Data: mustJSON(t, map[string]any{
				"birth_weight_kg": 0,
				"breed_id":        1,
				"birth_date":      "2024-03-10",
			}),
		},
	})
	require.NoError(t, err)
	assert.False(t, out.Results[0].Success)
	assert.Equal(t, 1, out.FailCount)
}

func TestProcessBatch_UnknownBreedFallsBackToSentinel(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	out, err := svc.ProcessBatch(ctx, user("u1"), []sync.Operation{
		{
			Table:  sync.TableAnimals,
			Action: sync.ActionInsert,
			Data: mustJSON(t, map[string]any{
				"tag_code":        "CHIP-001",
				"birth_weight_kg": 30,
				"breed_id":        999, // catálogo local del cliente desactualizado
				"birth_date":      "2024-03-10",
			}),
		},
	})
	require.NoError(t, err)
	require.True(t, out.Results[0].Success)

	as, err := svc.PullAnimals(ctx, user("u1"), nil)
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, int64(25), as[0].BreedID)
	assert.Equal(t, "Otra Raza", as[0].BreedName)
}

func TestProcessBatch_VaccinationSentinelsAndOwnership(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	ins, err := svc.ProcessBatch(ctx, user("u1"), []sync.Operation{
		animalInsertOp(t, "l1", "CHIP-001"),
	})
	require.NoError(t, err)
	animalID := ins.Results[0].ServerID

	out, err := svc.ProcessBatch(ctx, user("u1"), []sync.Operation{
		{
			Table:  sync.TableVaccinations,
			Action: sync.ActionInsert,
			Data: mustJSON(t, map[string]any{
				"animal_id":       animalID,
				"date":            "2024-05-01",
				"vaccine_type_id": 777,
				"vaccine_name_id": 888,
				"dose":            "  3 ml ",
			}),
		},
	})
	require.NoError(t, err)
	require.True(t, out.Results[0].Success)

	vs, err := svc.PullVaccinations(ctx, user("u1"), nil)
	require.NoError(t, err)
	require.Len(t, vs, 1)
	assert.Equal(t, int64(11), vs[0].VaccineTypeID)
	assert.Equal(t, int64(23), vs[0].VaccineNameID)
	assert.Equal(t, "3 ml", vs[0].Dose)

	// otro usuario no puede colgar vacunas del animal ajeno
	out2, err := svc.ProcessBatch(ctx, user("u2"), []sync.Operation{
		{
			Table:  sync.TableVaccinations,
			Action: sync.ActionInsert,
			Data: mustJSON(t, map[string]any{
				"animal_id": animalID,
				"date":      "2024-05-02",
			}),
		},
	})
	require.NoError(t, err)
	assert.False(t, out2.Results[0].Success)
	assert.Equal(t, "animal not found or not owned", out2.Results[0].Error)
}

func TestProcessBatch_UpdateIsScopedToOwner(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.ProcessBatch(ctx, user("u1"), []sync.Operation{
		animalInsertOp(t, "l1", "CHIP-001"),
	})
	require.NoError(t, err)

	updateData := mustJSON(t, map[string]any{
		"tag_code":        "CHIP-001",
		"birth_weight_kg": 35,
		"breed_id":        2,
		"birth_date":      "2024-03-11",
	})

	// u2 no es dueño: falla de negocio, no error de batch
	out, err := svc.ProcessBatch(ctx, user("u2"), []sync.Operation{
		{Table: sync.TableAnimals, Action: sync.ActionUpdate, Data: updateData},
	})
	require.NoError(t, err)
	assert.False(t, out.Results[0].Success)
	assert.Equal(t, "animal not found or not owned", out.Results[0].Error)

	// admin sí puede tocar registros de cualquier usuario
	out, err = svc.ProcessBatch(ctx, admin(), []sync.Operation{
		{Table: sync.TableAnimals, Action: sync.ActionUpdate, Data: updateData},
	})
	require.NoError(t, err)
	assert.True(t, out.Results[0].Success)
	assert.Equal(t, int64(1), out.Results[0].AffectedRows)

	as, err := svc.PullAnimals(ctx, user("u1"), nil)
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, float64(35), as[0].BirthWeightKg)
	assert.Equal(t, int64(2), as[0].BreedID)
}

func TestProcessBatch_UpdateResolvesTagWithinTenant(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	// El chip solo es único por usuario: dos tenants pueden tener el
	// mismo chip activo a la vez, y el UPDATE de cada dueño debe
	// resolver siempre contra su propia fila.
	_, err := svc.ProcessBatch(ctx, user("u1"), []sync.Operation{
		animalInsertOp(t, "l1", "CHIP-DUP"),
	})
	require.NoError(t, err)
	_, err = svc.ProcessBatch(ctx, user("u2"), []sync.Operation{
		animalInsertOp(t, "l2", "CHIP-DUP"),
	})
	require.NoError(t, err)

	updateData := mustJSON(t, map[string]any{
		"tag_code":        "CHIP-DUP",
		"birth_weight_kg": 40,
		"breed_id":        1,
		"birth_date":      "2024-03-10",
	})

	// Repetido porque el orden de iteración del store en memoria no es
	// estable: una resolución sin acotar al dueño acierta o falla según
	// la vuelta.
	for i := 0; i < 25; i++ {
		out, err := svc.ProcessBatch(ctx, user("u1"), []sync.Operation{
			{Table: sync.TableAnimals, Action: sync.ActionUpdate, Data: updateData},
		})
		require.NoError(t, err)
		require.True(t, out.Results[0].Success, "vuelta %d", i)
		require.Equal(t, int64(1), out.Results[0].AffectedRows)
	}

	// La fila homónima de u2 queda intacta
	as, err := svc.PullAnimals(ctx, user("u2"), nil)
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, 32.5, as[0].BirthWeightKg)

	as, err = svc.PullAnimals(ctx, user("u1"), nil)
	require.NoError(t, err)
	require.Len(t, as, 1)
	assert.Equal(t, float64(40), as[0].BirthWeightKg)
}

func TestProcessBatch_DeleteIsSoft(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	ins, err := svc.ProcessBatch(ctx, user("u1"), []sync.Operation{
		animalInsertOp(t, "l1", "CHIP-001"),
	})
	require.NoError(t, err)
	animalID := ins.Results[0].ServerID

	out, err := svc.ProcessBatch(ctx, user("u1"), []sync.Operation{
		{Table: sync.TableAnimals, Action: sync.ActionDelete, RecordID: animalID},
	})
	require.NoError(t, err)
	require.True(t, out.Results[0].Success)
	assert.Equal(t, int64(1), out.Results[0].AffectedRows)

	// el feed de animales es solo-activos
	as, err := svc.PullAnimals(ctx, user("u1"), nil)
	require.NoError(t, err)
	assert.Empty(t, as)

	// el chip queda libre para un alta nueva
	out, err = svc.ProcessBatch(ctx, user("u1"), []sync.Operation{
		animalInsertOp(t, "l2", "CHIP-001"),
	})
	require.NoError(t, err)
	assert.True(t, out.Results[0].Success)
}

func TestProcessBatch_WeightUpdateByServerID(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	ins, err := svc.ProcessBatch(ctx, user("u1"), []sync.Operation{
		animalInsertOp(t, "l1", "CHIP-001"),
	})
	require.NoError(t, err)
	animalID := ins.Results[0].ServerID

	wIns, err := svc.ProcessBatch(ctx, user("u1"), []sync.Operation{
		{
			Table:  sync.TableWeights,
			Action: sync.ActionInsert,
			Data: mustJSON(t, map[string]any{
				"animal_id": animalID,
				"date":      "2024-06-01",
				"weight_kg": 120,
				"kind":      "no-such-kind", // se coacciona a routine
			}),
		},
	})
	require.NoError(t, err)
	require.True(t, wIns.Results[0].Success)
	weightID := wIns.Results[0].ServerID

	out, err := svc.ProcessBatch(ctx, user("u1"), []sync.Operation{
		{
			Table:    sync.TableWeights,
			Action:   sync.ActionUpdate,
			RecordID: weightID,
			Data: mustJSON(t, map[string]any{
				"date":                  "2024-06-02",
				"weight_kg":             125,
				"purchase_cost":         1800.50,
				"sale_cost":             2400,
				"purchase_price_per_kg": 15,
				"sale_price_per_kg":     19.2,
			}),
		},
	})
	require.NoError(t, err)
	require.True(t, out.Results[0].Success)
	assert.Equal(t, int64(1), out.Results[0].AffectedRows)

	ws, err := svc.PullWeights(ctx, user("u1"), nil)
	require.NoError(t, err)
	// pesaje de nacimiento + pesaje de rutina
	require.Len(t, ws, 2)
	for _, w := range ws {
		if w.ID == weightID {
			assert.Equal(t, float64(125), w.WeightKg)
			assert.Equal(t, weights.KindRoutine, w.Kind)

			// el UPDATE también persiste los campos económicos
			require.NotNil(t, w.PurchaseCost)
			assert.Equal(t, 1800.50, *w.PurchaseCost)
			require.NotNil(t, w.SaleCost)
			assert.Equal(t, float64(2400), *w.SaleCost)
			require.NotNil(t, w.PurchasePricePerKg)
			assert.Equal(t, float64(15), *w.PurchasePricePerKg)
			require.NotNil(t, w.SalePricePerKg)
			assert.Equal(t, 19.2, *w.SalePricePerKg)
		}
	}
}

func TestProcessBatch_RejectsEmptyInput(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.ProcessBatch(ctx, user("u1"), nil)
	assert.ErrorIs(t, err, sync.ErrNoOperations)

	_, err = svc.ProcessBatch(ctx, auth.Claims{}, []sync.Operation{animalInsertOp(t, "l1", "CHIP-001")})
	assert.ErrorIs(t, err, sync.ErrNoScope)
}

func TestPull_SinceWatermarkAndTenantScope(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.ProcessBatch(ctx, user("u1"), []sync.Operation{
		animalInsertOp(t, "l1", "CHIP-001"),
	})
	require.NoError(t, err)

	time.Sleep(2 * time.Millisecond)

	_, err = svc.ProcessBatch(ctx, user("u1"), []sync.Operation{
		animalInsertOp(t, "l2", "CHIP-002"),
	})
	require.NoError(t, err)
	_, err = svc.ProcessBatch(ctx, user("u2"), []sync.Operation{
		animalInsertOp(t, "l3", "CHIP-900"),
	})
	require.NoError(t, err)

	all, err := svc.PullAnimals(ctx, user("u1"), nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	// ascendente por updated_at: el cliente toma el último como marca de agua
	assert.Equal(t, "CHIP-001", all[0].TagCode)
	assert.Equal(t, "CHIP-002", all[1].TagCode)

	// updated_at > since, estrictamente
	since := all[0].UpdatedAt
	delta, err := svc.PullAnimals(ctx, user("u1"), &since)
	require.NoError(t, err)
	require.Len(t, delta, 1)
	assert.Equal(t, "CHIP-002", delta[0].TagCode)

	// cada usuario ve solo lo suyo; admin ve todo
	other, err := svc.PullAnimals(ctx, user("u2"), nil)
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.Equal(t, "CHIP-900", other[0].TagCode)

	every, err := svc.PullAnimals(ctx, admin(), nil)
	require.NoError(t, err)
	assert.Len(t, every, 3)

	// sin usuario no hay pull
	_, err = svc.PullAnimals(ctx, auth.Claims{Role: auth.RoleUser}, nil)
	assert.ErrorIs(t, err, sync.ErrNoScope)
}
