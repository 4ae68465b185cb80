package ecs

import "github.com/milk9111/helicopter/ecs/component"

// ForEach visits every live entity carrying kind. Components may be added or
// removed from inside fn.
func ForEach[A any](w *World, ka component.ComponentKind[A], fn func(Entity, *A)) {
	if w == nil || fn == nil {
		return
	}
	for _, id := range w.store(ka.ID(), false).ids() {
		e, ok := w.entities.current(id)
		if !ok {
			continue
		}
		a, ok := Get(w, e, ka)
		if !ok {
			continue
		}
		fn(e, a)
	}
}

func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(Entity, *A, *B)) {
	if fn == nil {
		return
	}
	ForEach(w, ka, func(e Entity, a *A) {
		b, ok := Get(w, e, kb)
		if !ok {
			return
		}
		fn(e, a, b)
	})
}

func ForEach3[A, B, C any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], kc component.ComponentKind[C], fn func(Entity, *A, *B, *C)) {
	if fn == nil {
		return
	}
	ForEach2(w, ka, kb, func(e Entity, a *A, b *B) {
		c, ok := Get(w, e, kc)
		if !ok {
			return
		}
		fn(e, a, b, c)
	})
}

// First returns the first live entity carrying kind.
func First[A any](w *World, ka component.ComponentKind[A]) (Entity, bool) {
	if w == nil {
		return 0, false
	}
	for _, id := range w.store(ka.ID(), false).ids() {
		if e, ok := w.entities.current(id); ok {
			return e, true
		}
	}
	return 0, false
}

// Resolve converts a stored entity reference back into a live handle.
func Resolve(w *World, ref uint64) (Entity, bool) {
	e := Entity(ref)
	if ref == 0 || !IsAlive(w, e) {
		return 0, false
	}
	return e, true
}
