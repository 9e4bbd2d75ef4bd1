package employee

import (
	"context"
	"fmt"
)

var demoEmployees = []Fields{
	{Name: "Ada Lovelace", Email: "ada@example.com", Position: "Engineer"},
	{Name: "Grace Hopper", Email: "grace@example.com", Position: "Rear Admiral"},
	{Name: "Alan Turing", Email: "alan@example.com", Position: "Researcher"},
}

// Seed inserts a few demo employees when the directory is empty.
func (s *Service) Seed(ctx context.Context) (int, error) {
	inserted := 0
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.store.List(txCtx)
		if err != nil {
			return fmt.Errorf("seed: list employees: %w", err)
		}
		if len(existing) > 0 {
			return nil
		}
		now := s.clock.Now()
		for _, fields := range demoEmployees {
			if _, err := s.store.Insert(txCtx, fields, now); err != nil {
				return fmt.Errorf("seed: insert %s: %w", fields.Email, err)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}
