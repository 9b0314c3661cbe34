package catalog

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompanies_SegundaLecturaUsaCache(t *testing.T) {
	env := newEnv(t)
	env.company(t, "Acme")
	ctx := context.Background()

	first := env.store.Companies(ctx)
	second := env.store.Companies(ctx)

	assert.Equal(t, first, second)
	assert.EqualValues(t, 1, env.companies.lists.Load())
}

func TestCompanies_LecturaFallidaNoSeCachea(t *testing.T) {
	env := newEnv(t)
	env.company(t, "Acme")
	ctx := context.Background()

	env.companies.failReads.Store(true)
	assert.Empty(t, env.store.Companies(ctx), "un fallo degrada a colección vacía")
	assert.NotNil(t, env.store.Companies(ctx))

	env.companies.failReads.Store(false)
	assert.Len(t, env.store.Companies(ctx), 1, "la siguiente lectura vuelve a consultar el store")
	assert.EqualValues(t, 3, env.companies.lists.Load())
}

func TestClearCache_ForzaNuevaLectura(t *testing.T) {
	env := newEnv(t)
	env.company(t, "Acme")
	ctx := context.Background()

	env.store.Companies(ctx)
	env.store.ClearCache()
	env.store.Companies(ctx)

	assert.EqualValues(t, 2, env.companies.lists.Load())
}

func TestCache_FetchIniciadoAntesDeClearNoRepuebla(t *testing.T) {
	env := newEnv(t)
	env.company(t, "Acme")
	env.companies.started = make(chan struct{}, 1)
	env.companies.release = make(chan struct{})
	ctx := context.Background()

	done := make(chan []string)
	go func() {
		var names []string
		for _, c := range env.store.Companies(ctx) {
			names = append(names, c.Name)
		}
		done <- names
	}()

	<-env.companies.started
	env.store.ClearCache()
	close(env.companies.release)

	assert.Equal(t, []string{"Acme"}, <-done, "el llamador recibe el resultado de su lectura")
	assert.Zero(t, env.store.cache.Len(), "pero el slot no se puebla con datos de una época anterior")
}

func TestCache_LecturasConcurrentesSeAgrupan(t *testing.T) {
	env := newEnv(t)
	env.company(t, "Acme")
	env.companies.started = make(chan struct{}, 1)
	env.companies.release = make(chan struct{})
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]int, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = len(env.store.Companies(ctx))
		}(i)
	}
	<-env.companies.started
	// Da tiempo a que el resto de lectores se sume al fetch en curso.
	time.Sleep(20 * time.Millisecond)
	close(env.companies.release)
	wg.Wait()

	for _, n := range results {
		assert.Equal(t, 1, n)
	}
	assert.EqualValues(t, 1, env.companies.lists.Load())
}

func TestCache_LlamadorCanceladoNoAbortaElFetchCompartido(t *testing.T) {
	env := newEnv(t)
	env.company(t, "Acme")
	env.companies.started = make(chan struct{}, 1)
	env.companies.release = make(chan struct{})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-env.companies.started
		cancel()
	}()
	assert.Empty(t, env.store.Companies(ctx), "el llamador cancelado recibe colección vacía")

	close(env.companies.release)
	require.Eventually(t, func() bool { return env.store.cache.Len() == 1 }, time.Second, 5*time.Millisecond,
		"el fetch termina y puebla el slot para los demás")
	assert.Len(t, env.store.Companies(context.Background()), 1)
}

func TestLecturas_DevuelvenCopias(t *testing.T) {
	env := newEnv(t)
	c := env.company(t, "Acme")
	a := env.asset(t, c.ID, "T-1")
	e := env.employee(t, "ana")
	_, err := env.store.AssignAsset(context.Background(), a.ID, e.ID, "")
	require.NoError(t, err)
	ctx := context.Background()

	list := env.store.Assets(ctx)
	require.Len(t, list, 1)
	list[0].Brand = "mutado"
	list[0].History[0].Notes = "mutado"

	again := env.store.Assets(ctx)
	assert.Equal(t, "Dell", again[0].Brand)
	assert.NotEqual(t, "mutado", again[0].History[0].Notes)
}
