package redis

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/facetsearch/internal/db"
)

// HSetMulti stores multiple hashes in a single DoMulti round-trip.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	if len(items) == 0 {
		return nil
	}

	cmds := make([]rueidis.Completed, 0, len(items))
	for _, item := range items {
		if len(item.Fields) == 0 {
			return fmt.Errorf("hash %s has no fields", item.Key)
		}
		cmd := s.b().Hset().Key(item.Key).FieldValue()
		// Sorted so the command is deterministic.
		names := make([]string, 0, len(item.Fields))
		for k := range item.Fields {
			names = append(names, k)
		}
		sort.Strings(names)
		for _, k := range names {
			cmd = cmd.FieldValue(k, item.Fields[k])
		}
		cmds = append(cmds, cmd.Build())
	}

	for i, res := range s.client.DoMulti(ctx, cmds...) {
		if err := res.Error(); err != nil {
			return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", items[i].Key, err)}
		}
	}
	return nil
}
