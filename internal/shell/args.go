package shell

import (
	"fmt"
	"strconv"
	"strings"

	repo "storefront/internal/repository"
)

// splitArgsは空白区切り。"..."で囲めば空白を含められる
func splitArgs(line string) ([]string, error) {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		hasArg  bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
			hasArg = true
		case !inQuote && (r == ' ' || r == '\t'):
			if hasArg {
				args = append(args, cur.String())
				cur.Reset()
				hasArg = false
			}
		default:
			cur.WriteRune(r)
			hasArg = true
		}
	}
	if inQuote {
		return nil, fmt.Errorf("unterminated quote")
	}
	if hasArg {
		args = append(args, cur.String())
	}
	return args, nil
}

// parseProductFieldsはkey=valueの並びをbaseに上書きする
func parseProductFields(base repo.ProductInput, fields []string) (repo.ProductInput, error) {
	in := base
	for _, f := range fields {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			return in, fmt.Errorf("expected key=value, got %q", f)
		}
		switch strings.ToLower(key) {
		case "title":
			in.Title = value
		case "description":
			in.Description = value
		case "code":
			in.Code = value
		case "category":
			in.Category = value
		case "img":
			in.Img = value
		case "price":
			p, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return in, fmt.Errorf("invalid price %q", value)
			}
			in.Price = p
		case "stock":
			n, err := strconv.Atoi(value)
			if err != nil {
				return in, fmt.Errorf("invalid stock %q", value)
			}
			in.Stock = n
		case "status":
			b, err := strconv.ParseBool(value)
			if err != nil {
				return in, fmt.Errorf("invalid status %q", value)
			}
			in.Status = b
		default:
			return in, fmt.Errorf("unknown field %q", key)
		}
	}
	return in, nil
}
