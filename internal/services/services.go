// package services implements the HTTP gateway and API clients for the movie catalogue
package services

import (
	"fmt"
	"net/url"
	"path"
	"strconv"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

// Params holds query parameters. Nil values and empty strings are dropped by [BuildQuery].
type Params map[string]any

// BuildQuery stringifies p into [url.Values]. Encoding sorts keys.
func BuildQuery(p Params) url.Values {
	q := url.Values{}
	for k, v := range p {
		s, ok := paramString(v)
		if !ok {
			continue
		}
		q.Set(k, s)
	}
	return q
}

func paramString(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, t != ""
	case *string:
		if t == nil {
			return "", false
		}
		return *t, *t != ""
	case int:
		return strconv.Itoa(t), true
	case *int:
		if t == nil {
			return "", false
		}
		return strconv.Itoa(*t), true
	case bool:
		return strconv.FormatBool(t), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case fmt.Stringer:
		s := t.String()
		return s, s != ""
	default:
		return fmt.Sprint(t), true
	}
}

// resourcePath joins a collection and an escaped id, rejecting empty ids.
func resourcePath(collection string, id models.ID, rest ...string) (string, error) {
	if id == "" {
		return "", fmt.Errorf("%w: id is required", shared.ErrMissingArgument)
	}
	p := collection + "/" + url.PathEscape(id.String())
	if len(rest) > 0 {
		p = path.Join(append([]string{p}, rest...)...)
	}
	return p, nil
}
