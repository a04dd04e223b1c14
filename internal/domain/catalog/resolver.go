package catalog

import "context"

// Lookup responde si un id existe en un catálogo.
// Dentro de un batch de sync la implementación consulta sobre la misma
// transacción; fuera de batch, sobre el pool normal.
type Lookup interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// LookupFunc adapta una función a Lookup.
type LookupFunc func(ctx context.Context, id int64) (bool, error)

func (f LookupFunc) Exists(ctx context.Context, id int64) (bool, error) {
	return f(ctx, id)
}

// ResolveOrDefault devuelve id si existe en el catálogo; si no existe
// (o id es cero), devuelve fallback. Nunca falla por referencia inválida:
// la sincronización no debe bloquearse por catálogos viejos en el cliente.
func ResolveOrDefault(ctx context.Context, lk Lookup, id, fallback int64) (int64, error) {
	if id == 0 {
		return fallback, nil
	}
	ok, err := lk.Exists(ctx, id)
	if err != nil {
		return 0, err
	}
	if !ok {
		return fallback, nil
	}
	return id, nil
}
