package session_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/jhoicas/Activos-api/internal/application/ports"
	"github.com/jhoicas/Activos-api/internal/application/session"
	"github.com/jhoicas/Activos-api/internal/domain/entity"
)

// fakeClient simula el SDK del proveedor de identidad: una sola sesión, listeners
// notificados antes de retornar.
type fakeClient struct {
	mu        sync.Mutex
	accounts  map[string]account // por email
	current   *ports.Identity
	listeners map[int]func(*ports.Identity)
	next      int
	signInErr error
	signOuts  atomic.Int32
}

type account struct {
	uid      string
	password string
}

func newFakeClient() *fakeClient {
	return &fakeClient{accounts: map[string]account{}, listeners: map[int]func(*ports.Identity){}}
}

func (c *fakeClient) addAccount(uid, email, password string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accounts[email] = account{uid: uid, password: password}
}

func (c *fakeClient) SignIn(_ context.Context, email, password string) (*ports.Identity, error) {
	c.mu.Lock()
	if c.signInErr != nil {
		err := c.signInErr
		c.mu.Unlock()
		return nil, err
	}
	acc, ok := c.accounts[email]
	c.mu.Unlock()
	if !ok || acc.password != password {
		return nil, &ports.ProviderError{Code: ports.CodeInvalidCredential}
	}
	ident := &ports.Identity{UID: acc.uid, Email: email}
	c.emit(ident)
	return ident, nil
}

func (c *fakeClient) SignUp(_ context.Context, email, password string) (*ports.Identity, error) {
	c.mu.Lock()
	if _, ok := c.accounts[email]; ok {
		c.mu.Unlock()
		return nil, &ports.ProviderError{Code: ports.CodeEmailInUse}
	}
	if len(password) < 6 {
		c.mu.Unlock()
		return nil, &ports.ProviderError{Code: ports.CodeWeakPassword}
	}
	uid := uuid.New().String()
	c.accounts[email] = account{uid: uid, password: password}
	c.mu.Unlock()
	ident := &ports.Identity{UID: uid, Email: email}
	c.emit(ident)
	return ident, nil
}

func (c *fakeClient) SignOut(context.Context) error {
	c.signOuts.Add(1)
	c.emit(nil)
	return nil
}

func (c *fakeClient) DeleteAccount(context.Context) error {
	c.mu.Lock()
	if c.current == nil {
		c.mu.Unlock()
		return &ports.ProviderError{Code: ports.CodeNoCurrentUser}
	}
	delete(c.accounts, c.current.Email)
	c.mu.Unlock()
	c.emit(nil)
	return nil
}

func (c *fakeClient) OnIdentityChanged(fn func(*ports.Identity)) func() {
	c.mu.Lock()
	id := c.next
	c.next++
	c.listeners[id] = fn
	current := c.current
	c.mu.Unlock()
	fn(current)
	return func() {
		c.mu.Lock()
		delete(c.listeners, id)
		c.mu.Unlock()
	}
}

func (c *fakeClient) hasAccount(email string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.accounts[email]
	return ok
}

// emit fija la identidad actual y notifica fuera del lock.
func (c *fakeClient) emit(ident *ports.Identity) {
	c.mu.Lock()
	c.current = ident
	fns := make([]func(*ports.Identity), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()
	for _, fn := range fns {
		fn(ident)
	}
}

// gatedProfiles envuelve la capa de datos real para contar lecturas, retenerlas por UID
// o hacerlas fallar.
type gatedProfiles struct {
	session.ProfileStore
	mu        sync.Mutex
	gates     map[string]chan struct{}
	fetches   map[string]int
	finished  map[string]int
	fetchErr  error
	createErr error
}

func newGatedProfiles(inner session.ProfileStore) *gatedProfiles {
	return &gatedProfiles{
		ProfileStore: inner,
		gates:        map[string]chan struct{}{},
		fetches:      map[string]int{},
		finished:     map[string]int{},
	}
}

// hold retiene las lecturas de uid hasta que se llame la función devuelta.
func (g *gatedProfiles) hold(uid string) (release func()) {
	ch := make(chan struct{})
	g.mu.Lock()
	g.gates[uid] = ch
	g.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(ch) }) }
}

func (g *gatedProfiles) FetchEmployee(ctx context.Context, id string) (*entity.Employee, error) {
	g.mu.Lock()
	g.fetches[id]++
	gate := g.gates[id]
	err := g.fetchErr
	g.mu.Unlock()
	if gate != nil {
		<-gate
	}
	defer func() {
		g.mu.Lock()
		g.finished[id]++
		g.mu.Unlock()
	}()
	if err != nil {
		return nil, err
	}
	return g.ProfileStore.FetchEmployee(ctx, id)
}

func (g *gatedProfiles) CreateProfile(ctx context.Context, e *entity.Employee) error {
	if g.createErr != nil {
		return g.createErr
	}
	return g.ProfileStore.CreateProfile(ctx, e)
}

func (g *gatedProfiles) fetchCount(uid string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fetches[uid]
}

func (g *gatedProfiles) finishedCount(uid string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.finished[uid]
}

// memBlobs guarda los avatares en memoria.
type memBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    bool
}

func (b *memBlobs) Upload(_ context.Context, key string, data []byte, _ string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.fail {
		return "", errors.New("bucket no disponible")
	}
	if b.objects == nil {
		b.objects = map[string][]byte{}
	}
	b.objects[key] = data
	return b.URL(key), nil
}

func (b *memBlobs) URL(key string) string { return "https://blobs.test/" + key }
