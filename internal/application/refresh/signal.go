// Package refresh implementa la señal de refresco: un contador monotónico que cualquier
// mutación incrementa y que las vistas observan para volver a leer sus datos.
package refresh

import "sync"

// Signal es un contador de versión con suscriptores. No distingue tipo de entidad:
// cualquier cambio invalida todo, igual que el caché de catalog.
type Signal struct {
	mu      sync.Mutex
	version uint64
	nextID  int
	subs    map[int]chan uint64
}

// NewSignal construye la señal en versión 0.
func NewSignal() *Signal {
	return &Signal{subs: make(map[int]chan uint64)}
}

// Version devuelve la versión actual.
func (s *Signal) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Bump incrementa la versión y avisa a los suscriptores. Nunca bloquea: un suscriptor
// lento recibe solo la última versión pendiente.
func (s *Signal) Bump() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	for _, ch := range s.subs {
		deliverLatest(ch, s.version)
	}
	return s.version
}

// Subscribe devuelve un canal que recibe cada nueva versión y la función para cancelar.
// Tras cancel el canal queda cerrado.
func (s *Signal) Subscribe() (<-chan uint64, func()) {
	ch := make(chan uint64, 1)
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

// Subscribers devuelve la cantidad de suscriptores activos.
func (s *Signal) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// deliverLatest reemplaza el valor pendiente, si lo hay, por v. Se llama con s.mu tomado,
// así que no compite con otro Bump por el mismo canal.
func deliverLatest(ch chan uint64, v uint64) {
	select {
	case ch <- v:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- v:
	default:
	}
}
