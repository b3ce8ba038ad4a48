package hub

import (
	"context"
	"log"
	"time"

	"signroom-backend/internal/cache"
	"signroom-backend/internal/geometry"
)

// =============================================================================
// Stroke Relay
// =============================================================================

// RelayStroke republishes a signer's pointer path to the whole room.
// The join-time binding is the source of truth for routing: a bound
// signer's payload side/index is ignored, so a spoofed slot reference
// cannot land in someone else's rectangle. Points are relayed
// unscaled together with the declared source size; each receiver
// scales independently.
func (r *Room) RelayStroke(p *Participant, msg *StrokeMessage) {
	side, index, ok := r.resolveSlot(p, msg.Side, msg.Index)
	if !ok {
		// Slot layout changes race with in-flight strokes; a stale
		// reference must not fail the connection.
		log.Printf("[Room %s] Dropping stroke for stale slot %s:%d", r.ID, msg.Side, msg.Index)
		return
	}

	if len(msg.Points) == 0 || msg.SourceWidth <= 0 || msg.SourceHeight <= 0 {
		return
	}

	r.mu.Lock()
	key := slotKey{Side: side, Index: index}
	rec := r.records[key]
	if rec == nil {
		rec = &SignatureRecord{
			OriginalWidth:  msg.SourceWidth,
			OriginalHeight: msg.SourceHeight,
		}
		r.records[key] = rec
	}
	rec.Strokes = append(rec.Strokes, Stroke{
		Points: msg.Points,
		Size:   msg.Size,
		Color:  msg.Color,
	})
	r.mu.Unlock()

	r.persistStroke(side, index, msg)

	r.broadcast(&StrokeMessage{
		Type:         MsgStroke,
		Side:         string(side),
		Index:        index,
		Points:       msg.Points,
		Size:         msg.Size,
		Color:        msg.Color,
		SourceWidth:  msg.SourceWidth,
		SourceHeight: msg.SourceHeight,
	})
}

// RelayClear wipes one slot's signature wholesale and tells every view
// to clear that rectangle.
func (r *Room) RelayClear(p *Participant, msg *ClearMessage) {
	side, index, ok := r.resolveSlot(p, msg.Side, msg.Index)
	if !ok {
		log.Printf("[Room %s] Dropping clear for stale slot %s:%d", r.ID, msg.Side, msg.Index)
		return
	}

	r.mu.Lock()
	delete(r.records, slotKey{Side: side, Index: index})
	r.mu.Unlock()

	if r.hub.sigCache != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := r.hub.sigCache.ClearSlot(ctx, r.ID, string(side), index); err != nil {
				log.Printf("[Room %s] Failed to clear cached signature %s: %v", r.ID, geometry.Label(side, index), err)
			}
		}()
	}

	r.broadcast(&ClearMessage{Type: MsgClear, Side: string(side), Index: index})
}

// resolveSlot applies the addressing rule: a signer uses its join-time
// binding, an admin addresses slots through the payload. Either way
// the resolved pair must exist in the current arrays.
func (r *Room) resolveSlot(p *Participant, payloadSide string, payloadIndex int) (geometry.Side, int, bool) {
	side := geometry.Side(payloadSide)
	index := payloadIndex
	if p.Role == RoleSigner {
		side = p.Side
		index = p.Index
	}

	if !side.Valid() || index < 0 {
		return side, index, false
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	slots := r.slotsA
	if side == geometry.SideB {
		slots = r.slotsB
	}
	return side, index, index < len(slots)
}

func (r *Room) persistStroke(side geometry.Side, index int, msg *StrokeMessage) {
	if r.hub.sigCache == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		err := r.hub.sigCache.AppendStroke(ctx, r.ID, string(side), index, &cache.CachedStroke{
			Points:       msg.Points,
			Size:         msg.Size,
			Color:        msg.Color,
			SourceWidth:  msg.SourceWidth,
			SourceHeight: msg.SourceHeight,
		})
		if err != nil {
			log.Printf("[Room %s] Failed to cache stroke %s: %v", r.ID, geometry.Label(side, index), err)
		}
	}()
}

// =============================================================================
// Slot mutation fan-out
// =============================================================================

// UpdateSlots replaces both slot arrays wholesale and republishes the
// layout. A SignatureRecord survives as long as its (side, index) is
// still present in the new arrays; records for removed pairs are
// dropped. Arrays are only ever swapped whole under the room lock.
func (r *Room) UpdateSlots(slotsA, slotsB []geometry.Rect) {
	r.mu.Lock()
	r.slotsA = append([]geometry.Rect{}, slotsA...)
	r.slotsB = append([]geometry.Rect{}, slotsB...)

	var removed []slotKey
	for key := range r.records {
		limit := len(slotsA)
		if key.Side == geometry.SideB {
			limit = len(slotsB)
		}
		if key.Index >= limit {
			delete(r.records, key)
			removed = append(removed, key)
		}
	}
	r.mu.Unlock()

	// Retained copies of dropped records must go too, or an
	// evict/reload cycle would resurrect them for a re-added
	// (side, index).
	if r.hub.sigCache != nil && len(removed) > 0 {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			for _, key := range removed {
				if err := r.hub.sigCache.ClearSlot(ctx, r.ID, string(key.Side), key.Index); err != nil {
					log.Printf("[Room %s] Failed to clear cached signature %s: %v", r.ID, geometry.Label(key.Side, key.Index), err)
				}
			}
		}()
	}

	r.broadcast(&SlotsUpdateMessage{Type: MsgSlotsUpdate, SlotsA: slotsA, SlotsB: slotsB})
}

// Deleted tells every subscriber the room is gone, then evicts it.
// Publish-then-evict: clients must hear about the deletion before the
// channel becomes unroutable.
func (r *Room) Deleted() {
	r.broadcast(&RoomDeletedMessage{Type: MsgRoomDeleted, RoomID: r.ID})
	r.hub.Evict(r.ID)

	if r.hub.sigCache != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := r.hub.sigCache.DeleteRoom(ctx, r.ID); err != nil {
				log.Printf("[Room %s] Failed to drop cached signatures: %v", r.ID, err)
			}
		}()
	}
}

// =============================================================================
// Snapshot
// =============================================================================

// Snapshot assembles the full current room state for a (re)joining
// participant: geometry plus accumulated signatures, deep-copied so
// later strokes do not mutate the caller's view.
func (r *Room) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	view := func(side geometry.Side, slots []geometry.Rect) []SlotView {
		out := make([]SlotView, len(slots))
		for i, rect := range slots {
			out[i] = SlotView{Rect: rect}
			if rec, ok := r.records[slotKey{Side: side, Index: i}]; ok {
				out[i].SignatureData = rec.copy()
			}
		}
		return out
	}

	return &Snapshot{
		ID:          r.ID,
		Title:       r.Title,
		StageWidth:  r.StageWidth,
		StageHeight: r.StageHeight,
		SlotsA:      view(geometry.SideA, r.slotsA),
		SlotsB:      view(geometry.SideB, r.slotsB),
	}
}

// Slots returns copies of the current slot arrays.
func (r *Room) Slots() (slotsA, slotsB []geometry.Rect) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]geometry.Rect{}, r.slotsA...), append([]geometry.Rect{}, r.slotsB...)
}

func (rec *SignatureRecord) copy() *SignatureRecord {
	out := &SignatureRecord{
		OriginalWidth:  rec.OriginalWidth,
		OriginalHeight: rec.OriginalHeight,
		Strokes:        make([]Stroke, len(rec.Strokes)),
	}
	copy(out.Strokes, rec.Strokes)
	return out
}
