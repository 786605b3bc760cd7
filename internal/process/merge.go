// Package process holds the pure transformation functions: table merging,
// availability arithmetic, license estimation and deep-link construction.
// Nothing here performs I/O.
package process

import (
	"fmt"

	"github.com/dm/appdx/internal/model"
)

// Error is a processing failure. It halts only the table being built, never
// the whole run.
type Error struct {
	Table string
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("process: %s: %v", e.Table, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// MergeOnKey outer-joins tables on the named key column into one table.
// Every key value present in any input produces exactly one output row;
// columns a given input has no row for are filled with the no-data marker,
// never zero, so "zero usage" stays distinguishable from "not collected".
// Colliding column names are disambiguated with the source table name.
// Inputs where the key column never appears are rejected.
func MergeOnKey(name, key string, tables ...*model.Table) (*model.Table, error) {
	out := model.NewTable(name)
	out.AddColumns(key)

	// Column mapping per table: original name → output name.
	type source struct {
		table  *model.Table
		byKey  map[string]model.Row
		rename map[string]string
	}

	taken := map[string]struct{}{key: {}}
	var sources []source
	var keyOrder []string
	keySeen := make(map[string]struct{})

	for _, t := range tables {
		if t == nil || t.Empty() {
			continue
		}
		hasKey := false
		for _, c := range t.Columns {
			if c == key {
				hasKey = true
				break
			}
		}
		if !hasKey {
			return nil, &Error{Table: t.Name, Err: fmt.Errorf("missing join key %q", key)}
		}

		src := source{
			table:  t,
			byKey:  make(map[string]model.Row, t.Len()),
			rename: make(map[string]string, len(t.Columns)),
		}
		for _, c := range t.Columns {
			if c == key {
				continue
			}
			outName := c
			if _, clash := taken[outName]; clash {
				outName = fmt.Sprintf("%s (%s)", c, t.Name)
			}
			taken[outName] = struct{}{}
			src.rename[c] = outName
			out.AddColumns(outName)
		}
		for _, r := range t.Rows {
			kc, ok := r[key]
			if !ok || !kc.HasData() {
				continue
			}
			kv := kc.Value()
			// First row per key wins within one table.
			if _, dup := src.byKey[kv]; !dup {
				src.byKey[kv] = r
			}
			if _, ok := keySeen[kv]; !ok {
				keySeen[kv] = struct{}{}
				keyOrder = append(keyOrder, kv)
			}
		}
		sources = append(sources, src)
	}

	for _, kv := range keyOrder {
		row := model.Row{key: model.String(kv)}
		for _, src := range sources {
			in, ok := src.byKey[kv]
			for c, outName := range src.rename {
				if !ok {
					row[outName] = model.NoData()
					continue
				}
				cell, has := in[c]
				if !has {
					cell = model.NoData()
				}
				row[outName] = cell
			}
		}
		out.AddRow(row)
	}

	return out, nil
}
