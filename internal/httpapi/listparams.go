package httpapi

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"campusboard/internal/domain"
)

// parseListParams reads the list-query features from the URL: plain keys are
// equality filters, bracketed keys carry an operator (createdAt[gte]=...),
// and page/sort/limit/fields are reserved.
func parseListParams(q url.Values) domain.ListParams {
	var params domain.ListParams

	for key, values := range q {
		if len(values) == 0 || values[0] == "" {
			continue
		}
		value := values[0]

		switch key {
		case "page":
			if n, err := strconv.Atoi(value); err == nil {
				params.Page = n
			}
			continue
		case "limit":
			if n, err := strconv.Atoi(value); err == nil {
				params.Limit = n
			}
			continue
		case "sort":
			for _, field := range strings.Split(value, ",") {
				field = strings.TrimSpace(field)
				if field == "" {
					continue
				}
				desc := strings.HasPrefix(field, "-")
				params.Sort = append(params.Sort, domain.SortField{
					Field: strings.TrimPrefix(field, "-"),
					Desc:  desc,
				})
			}
			continue
		case "fields":
			for _, field := range strings.Split(value, ",") {
				field = strings.TrimSpace(field)
				if field != "" {
					params.Fields = append(params.Fields, field)
				}
			}
			continue
		}

		field, op := splitFilterKey(key)
		params.Filters = append(params.Filters, domain.Filter{Field: field, Op: op, Value: value})
	}

	return params
}

func splitFilterKey(key string) (string, domain.FilterOp) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, domain.FilterEq
	}
	field := key[:open]
	switch domain.FilterOp(key[open+1 : len(key)-1]) {
	case domain.FilterGt:
		return field, domain.FilterGt
	case domain.FilterGte:
		return field, domain.FilterGte
	case domain.FilterLt:
		return field, domain.FilterLt
	case domain.FilterLte:
		return field, domain.FilterLte
	default:
		return field, domain.FilterEq
	}
}

// applyFieldSelection reduces response objects to the requested JSON fields.
// The id field is always kept. Unknown field names simply select nothing.
func applyFieldSelection(v any, fields []string) any {
	if len(fields) == 0 {
		return v
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return v
	}

	keep := map[string]bool{"id": true}
	for _, f := range fields {
		keep[f] = true
	}

	switch d := decoded.(type) {
	case []any:
		for i, item := range d {
			if m, ok := item.(map[string]any); ok {
				d[i] = pruneMap(m, keep)
			}
		}
		return d
	case map[string]any:
		return pruneMap(d, keep)
	default:
		return decoded
	}
}

func pruneMap(m map[string]any, keep map[string]bool) map[string]any {
	for k := range m {
		if !keep[k] {
			delete(m, k)
		}
	}
	return m
}
