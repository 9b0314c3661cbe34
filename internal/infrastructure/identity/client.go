package identity

import (
	"context"
	"sync"

	"github.com/jhoicas/Activos-api/internal/application/ports"
)

// Client mantiene la identidad de una sesión y notifica sus cambios a los listeners.
type Client struct {
	svc *Service

	mu        sync.Mutex
	current   *ports.Identity
	listeners map[int]func(*ports.Identity)
	nextID    int
}

var _ ports.IdentityClient = (*Client)(nil)

func newClient(svc *Service) *Client {
	return &Client{svc: svc, listeners: make(map[int]func(*ports.Identity))}
}

// SignIn verifica las credenciales y, si son válidas, cambia la identidad actual.
func (c *Client) SignIn(ctx context.Context, email, password string) (*ports.Identity, error) {
	cred, err := c.svc.Verify(ctx, email, password)
	if err != nil {
		return nil, err
	}
	ident := &ports.Identity{UID: cred.UID, Email: cred.Email}
	c.set(ident)
	return ident, nil
}

// SignUp crea la cuenta e inicia sesión con ella.
func (c *Client) SignUp(ctx context.Context, email, password string) (*ports.Identity, error) {
	cred, err := c.svc.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}
	ident := &ports.Identity{UID: cred.UID, Email: cred.Email}
	c.set(ident)
	return ident, nil
}

// SignOut limpia la identidad actual.
func (c *Client) SignOut(ctx context.Context) error {
	c.set(nil)
	return nil
}

// DeleteAccount elimina la cuenta actual y cierra la sesión.
func (c *Client) DeleteAccount(ctx context.Context) error {
	c.mu.Lock()
	current := c.current
	c.mu.Unlock()
	if current == nil {
		return &ports.ProviderError{Code: ports.CodeNoCurrentUser}
	}
	if err := c.svc.Remove(ctx, current.UID); err != nil {
		return err
	}
	c.set(nil)
	return nil
}

// Current devuelve la identidad actual o nil.
func (c *Client) Current() *ports.Identity {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyIdentity(c.current)
}

// OnIdentityChanged registra fn y la invoca de inmediato con la identidad actual.
func (c *Client) OnIdentityChanged(fn func(*ports.Identity)) func() {
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	current := copyIdentity(c.current)
	c.mu.Unlock()

	fn(current)

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.listeners, id)
			c.mu.Unlock()
		})
	}
}

// set cambia la identidad y notifica solo si cambió el UID.
func (c *Client) set(ident *ports.Identity) {
	c.mu.Lock()
	if sameIdentity(c.current, ident) {
		c.mu.Unlock()
		return
	}
	c.current = copyIdentity(ident)
	fns := make([]func(*ports.Identity), 0, len(c.listeners))
	for _, fn := range c.listeners {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn(copyIdentity(ident))
	}
}

func sameIdentity(a, b *ports.Identity) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.UID == b.UID
}

func copyIdentity(i *ports.Identity) *ports.Identity {
	if i == nil {
		return nil
	}
	cp := *i
	return &cp
}
