package catalog

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Nombres de los slots de caché (uno por colección).
const (
	SlotCompanies = "companies"
	SlotEmployees = "employees"
	SlotAssets    = "assets"
	SlotActivity  = "activity"
)

var allSlots = []string{SlotCompanies, SlotEmployees, SlotAssets, SlotActivity}

// Cache es un arena de slots con nombre que guarda colecciones ya leídas del store remoto.
// Es una copia desechable: nunca es autoritativa y se vacía completa en cada escritura.
//
// Las lecturas concurrentes del mismo slot se agrupan con singleflight. Cada Clear avanza
// una época; un fetch iniciado en una época anterior no puebla el slot al terminar.
type Cache struct {
	mu    sync.RWMutex
	slots map[string]any
	epoch uint64
	group singleflight.Group
}

// NewCache construye un cache vacío.
func NewCache() *Cache {
	return &Cache{slots: make(map[string]any, len(allSlots))}
}

// Clear invalida todos los slots.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.epoch++
	clear(c.slots)
	c.mu.Unlock()
	for _, name := range allSlots {
		c.group.Forget(name)
	}
}

// Len devuelve cuántos slots están poblados.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.slots)
}

func (c *Cache) lookup(name string) (any, uint64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.slots[name]
	return v, c.epoch, ok
}

func (c *Cache) storeIfCurrent(name string, epoch uint64, v any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return false
	}
	c.slots[name] = v
	return true
}

// load devuelve el contenido del slot o lo trae con fetch. El slice devuelto es el
// almacenado en el cache: quien lo exponga fuera del paquete debe copiarlo.
// Un fetch fallido no se guarda.
func load[T any](ctx context.Context, c *Cache, name string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if v, _, ok := c.lookup(name); ok {
		return v.([]T), nil
	}
	// El fetch compartido no debe cancelarse porque el primer llamador se haya ido.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(name, func() (any, error) {
		cached, epoch, ok := c.lookup(name)
		if ok {
			return cached, nil
		}
		items, err := fetch(shared)
		if err != nil {
			return nil, err
		}
		if items == nil {
			items = []T{}
		}
		c.storeIfCurrent(name, epoch, items)
		return items, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]T), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
