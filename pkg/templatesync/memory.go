package templatesync

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store with per-row atomic read-modify-write.
// It backs tests and single-node deployments; production multi-tenant setups
// supply their own Store over the real database.
type MemoryStore struct {
	mu        sync.Mutex
	templates map[string]Template
	instances map[string]Instance
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		templates: make(map[string]Template),
		instances: make(map[string]Instance),
	}
}

var _ Store = (*MemoryStore)(nil)

// GetTemplate returns a deep copy of the stored template.
func (s *MemoryStore) GetTemplate(_ context.Context, templateID string) (Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tpl, ok := s.templates[templateID]
	if !ok {
		return Template{}, ErrTemplateNotFound
	}
	return copyTemplate(tpl), nil
}

// SaveTemplate inserts or replaces a template.
func (s *MemoryStore) SaveTemplate(_ context.Context, tpl Template) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.templates[tpl.ID] = copyTemplate(tpl)
	return nil
}

// DeleteTemplate removes a template. Missing templates error.
func (s *MemoryStore) DeleteTemplate(_ context.Context, templateID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[templateID]; !ok {
		return ErrTemplateNotFound
	}
	delete(s.templates, templateID)
	return nil
}

// UpdateTemplate applies an atomic read-modify-write on one template row.
func (s *MemoryStore) UpdateTemplate(_ context.Context, templateID string, apply func(*Template) (bool, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	tpl, ok := s.templates[templateID]
	if !ok {
		return false, ErrTemplateNotFound
	}
	row := copyTemplate(tpl)
	changed, err := apply(&row)
	if err != nil {
		return false, err
	}
	if changed {
		s.templates[templateID] = row
	}
	return changed, nil
}

// GetInstance returns a deep copy of the stored instance.
func (s *MemoryStore) GetInstance(_ context.Context, formID string) (Instance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[formID]
	if !ok {
		return Instance{}, ErrInstanceNotFound
	}
	return copyInstance(inst), nil
}

// SaveInstance inserts or replaces an instance.
func (s *MemoryStore) SaveInstance(_ context.Context, inst Instance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instances[inst.ID] = copyInstance(inst)
	return nil
}

// DeleteInstance removes an instance. Missing instances error.
func (s *MemoryStore) DeleteInstance(_ context.Context, formID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.instances[formID]; !ok {
		return ErrInstanceNotFound
	}
	delete(s.instances, formID)
	return nil
}

// UpdateInstance applies an atomic read-modify-write on one instance row.
// The apply callback runs under the store lock, so the guard it evaluates
// (for example Customized) cannot change between read and write.
func (s *MemoryStore) UpdateInstance(_ context.Context, formID string, apply func(*Instance) (bool, error)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inst, ok := s.instances[formID]
	if !ok {
		return false, ErrInstanceNotFound
	}
	row := copyInstance(inst)
	changed, err := apply(&row)
	if err != nil {
		return false, err
	}
	if changed {
		s.instances[formID] = row
	}
	return changed, nil
}

// ListDerivations returns instance ids with the given source template, in
// lexicographic order for deterministic iteration.
func (s *MemoryStore) ListDerivations(_ context.Context, templateID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id, inst := range s.instances {
		if inst.SourceTemplateID == templateID {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func copyTemplate(tpl Template) Template {
	out := tpl
	out.Current = tpl.Current.Clone()
	return out
}

func copyInstance(inst Instance) Instance {
	out := inst
	out.Current = inst.Current.Clone()
	if inst.Previous != nil {
		prev := inst.Previous.Clone()
		out.Previous = &prev
	}
	return out
}
