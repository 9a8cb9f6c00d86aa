package handler

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/dtroode/modulehub/internal/model"
)

type filterQuery struct {
	Where  map[string]any  `json:"where"`
	Order  json.RawMessage `json:"order"`
	Limit  int             `json:"limit"`
	Skip   int             `json:"skip"`
	Offset int             `json:"offset"`
}

// parseFilter reads the JSON encoded "filter" query parameter:
//
//	filter={"where":{"name":"core"},"order":["id DESC"],"limit":10,"skip":20}
//
// order may also be a single string. skip and offset are synonyms.
func parseFilter(query url.Values) (model.Filter, error) {
	raw := strings.TrimSpace(query.Get("filter"))
	if raw == "" {
		return model.Filter{}, nil
	}

	var q filterQuery
	if err := decodeQueryJSON(raw, &q); err != nil {
		return model.Filter{}, fmt.Errorf("%w: %v", model.NewInputError("invalid filter"), err)
	}

	where, err := normalizeFields(q.Where)
	if err != nil {
		return model.Filter{}, err
	}

	order, err := parseOrder(q.Order)
	if err != nil {
		return model.Filter{}, err
	}

	offset := q.Offset
	if q.Skip != 0 {
		offset = q.Skip
	}
	if q.Limit < 0 || offset < 0 {
		return model.Filter{}, model.NewInputError("invalid filter: limit and skip must not be negative")
	}

	return model.Filter{
		Where:  model.Where(where),
		Order:  order,
		Limit:  q.Limit,
		Offset: offset,
	}, nil
}

// parseWhere reads the JSON encoded "where" query parameter.
func parseWhere(query url.Values) (model.Where, error) {
	raw := strings.TrimSpace(query.Get("where"))
	if raw == "" {
		return nil, nil
	}

	var where map[string]any
	if err := decodeQueryJSON(raw, &where); err != nil {
		return nil, fmt.Errorf("%w: %v", model.NewInputError("invalid where"), err)
	}

	normalized, err := normalizeFields(where)
	if err != nil {
		return nil, err
	}
	return model.Where(normalized), nil
}

func parseOrder(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var one string
	if err := json.Unmarshal(raw, &one); err == nil {
		return []string{one}, nil
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, model.NewInputError("invalid filter: order must be a string or a list of strings")
	}
	return many, nil
}

func decodeQueryJSON(raw string, dst any) error {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	dec.UseNumber()
	return dec.Decode(dst)
}

// normalizeFields converts JSON numbers into int64 or float64 and rejects
// values that are not scalars.
func normalizeFields(fields map[string]any) (map[string]any, error) {
	if len(fields) == 0 {
		return nil, nil
	}

	out := make(map[string]any, len(fields))
	for k, v := range fields {
		switch val := v.(type) {
		case json.Number:
			if i, err := val.Int64(); err == nil {
				out[k] = i
				continue
			}
			f, err := val.Float64()
			if err != nil {
				return nil, model.NewInputError(fmt.Sprintf("invalid number for field %q", k))
			}
			out[k] = f
		case string, bool, nil:
			out[k] = val
		default:
			return nil, model.NewInputError(fmt.Sprintf("field %q must be a scalar value", k))
		}
	}
	return out, nil
}
