package orderstore

import (
	"slices"

	"github.com/google/uuid"

	"github.com/click2print/orderdesk/internal/model"
)

// SetInternalComment stores the designer note for an order. An empty text
// removes the note.
func (s *Store) SetInternalComment(orderID, text string) {
	s.mutate("set_internal_comment", func(draft *model.FormData) {
		if text == "" {
			delete(draft.InternalComments, orderID)
			return
		}
		draft.InternalComments[orderID] = text
	})
}

// AddDesignerUploads appends items to the manifest for orderID. Items without
// an ID get a fresh one. The stored items are returned.
func (s *Store) AddDesignerUploads(orderID string, items ...model.DesignerUpload) []model.DesignerUpload {
	added := make([]model.DesignerUpload, len(items))
	for i, item := range items {
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		added[i] = item
	}

	s.mutate("add_designer_uploads", func(draft *model.FormData) {
		draft.DesignerUploads[orderID] = append(draft.DesignerUploads[orderID], added...)
	})
	return slices.Clone(added)
}

// RemoveDesignerUpload drops one item from the manifest for orderID and
// reports whether it was there. An emptied manifest is removed.
func (s *Store) RemoveDesignerUpload(orderID, id string) bool {
	s.mu.Lock()
	found := slices.ContainsFunc(s.state.DesignerUploads[orderID], func(u model.DesignerUpload) bool {
		return u.ID == id
	})
	s.mu.Unlock()
	if !found {
		return false
	}

	removed := false
	s.mutate("remove_designer_upload", func(draft *model.FormData) {
		before := len(draft.DesignerUploads[orderID])
		kept := slices.DeleteFunc(draft.DesignerUploads[orderID], func(u model.DesignerUpload) bool {
			return u.ID == id
		})
		removed = len(kept) < before
		if len(kept) == 0 {
			delete(draft.DesignerUploads, orderID)
			return
		}
		draft.DesignerUploads[orderID] = kept
	})
	return removed
}
