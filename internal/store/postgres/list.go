package postgres

import (
	"fmt"
	"strings"

	"campusboard/internal/domain"
)

var filterOps = map[domain.FilterOp]string{
	domain.FilterEq:  "=",
	domain.FilterGt:  ">",
	domain.FilterGte: ">=",
	domain.FilterLt:  "<",
	domain.FilterLte: "<=",
}

// buildListQuery translates ListParams into SQL against a whitelist of
// filterable/sortable columns. Unknown fields and operators are ignored
// rather than rejected, matching the permissive query-feature contract.
func buildListQuery(base string, baseConds []string, baseArgs []any, columns map[string]string, defaultSort string, params domain.ListParams) (string, []any) {
	conds := append([]string(nil), baseConds...)
	args := append([]any(nil), baseArgs...)

	for _, f := range params.Filters {
		col, ok := columns[f.Field]
		if !ok {
			continue
		}
		op, ok := filterOps[f.Op]
		if !ok {
			continue
		}
		args = append(args, f.Value)
		placeholder := fmt.Sprintf("$%d", len(args))
		if col == "created_at" {
			placeholder += "::timestamptz"
		}
		conds = append(conds, fmt.Sprintf("%s %s %s", col, op, placeholder))
	}

	var b strings.Builder
	b.WriteString(base)
	if len(conds) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conds, " AND "))
	}

	var orderBy []string
	for _, s := range params.Sort {
		col, ok := columns[s.Field]
		if !ok {
			continue
		}
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		orderBy = append(orderBy, col+" "+dir)
	}
	if len(orderBy) == 0 {
		orderBy = []string{defaultSort + " DESC"}
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(strings.Join(orderBy, ", "))

	args = append(args, params.PageSize())
	b.WriteString(fmt.Sprintf(" LIMIT $%d", len(args)))
	args = append(args, params.Offset())
	b.WriteString(fmt.Sprintf(" OFFSET $%d", len(args)))

	return b.String(), args
}
