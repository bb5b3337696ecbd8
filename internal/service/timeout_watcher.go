package service

import (
	"sync"
	"time"
)

// ExpireFunc se ejecuta cuando vence el plazo de una partida.
type ExpireFunc func(sessionID string)

// TimeoutWatcher mantiene un timer por partida. Al dispararse no asume exclusividad:
// quien expira debe pasar por la misma puerta at-most-once que las jugadas.
type TimeoutWatcher struct {
	mu       sync.Mutex
	timers   map[string]*time.Timer
	onExpire ExpireFunc
	stopped  bool
}

func NewTimeoutWatcher(onExpire ExpireFunc) *TimeoutWatcher {
	return &TimeoutWatcher{
		timers:   make(map[string]*time.Timer),
		onExpire: onExpire,
	}
}

// Arm programa la expiración de sessionID para deadline. Rearmar reemplaza el timer anterior.
func (w *TimeoutWatcher) Arm(sessionID string, deadline time.Time) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	if prev, ok := w.timers[sessionID]; ok {
		prev.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(time.Until(deadline), func() {
		w.mu.Lock()
		current, ok := w.timers[sessionID]
		if !ok || current != timer {
			w.mu.Unlock()
			return
		}
		delete(w.timers, sessionID)
		w.mu.Unlock()

		if w.onExpire != nil {
			w.onExpire(sessionID)
		}
	})
	w.timers[sessionID] = timer
}

// Cancel detiene el timer si todavía no se disparó. Devuelve false si no había timer.
func (w *TimeoutWatcher) Cancel(sessionID string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	timer, ok := w.timers[sessionID]
	if !ok {
		return false
	}
	delete(w.timers, sessionID)
	return timer.Stop()
}

// Armed devuelve cuántos timers siguen pendientes.
func (w *TimeoutWatcher) Armed() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.timers)
}

// Stop cancela todos los timers. Después de Stop, Arm no hace nada.
func (w *TimeoutWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	for id, timer := range w.timers {
		timer.Stop()
		delete(w.timers, id)
	}
}
