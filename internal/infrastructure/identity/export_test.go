package identity

import "time"

// SetClock reemplaza el reloj del servicio en las pruebas.
func (s *Service) SetClock(now func() time.Time) { s.now = now }

// Limiters cantidad de contadores de intentos retenidos.
func (s *Service) Limiters() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.limiters)
}
