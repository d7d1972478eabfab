package store

import (
	"strings"
)

// whereClause builds the WHERE and LIMIT suffix for opts. tsCol names the
// timestamp column; a non-empty name is matched exactly against nameCol.
func whereClause(opts QueryOpts, tsCol, nameCol, name string) (string, []any) {
	var conds []string
	var args []any

	if opts.After > 0 {
		conds = append(conds, "sequence > ?")
		args = append(args, opts.After)
	}
	if opts.Before > 0 {
		conds = append(conds, "sequence < ?")
		args = append(args, opts.Before)
	}
	if !opts.From.IsZero() {
		conds = append(conds, tsCol+" >= ?")
		args = append(args, opts.From.UnixMilli())
	}
	if !opts.To.IsZero() {
		conds = append(conds, tsCol+" <= ?")
		args = append(args, opts.To.UnixMilli())
	}
	if name != "" {
		conds = append(conds, nameCol+" = ?")
		args = append(args, name)
	}

	var b strings.Builder
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY sequence DESC")
	if opts.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, opts.Limit)
	}
	return b.String(), args
}
