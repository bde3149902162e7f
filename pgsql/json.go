package pgsql

import "strings"

// maxJSONPairs is how many key/value pairs fit in one json_build_object call.
// PostgreSQL functions take at most 100 arguments.
const maxJSONPairs = 50

// JSONPair is one key/value entry of a JSON object.
type JSONPair struct {
	Key   string
	Value Expr
}

// JSONBuildObject renders a JSON object from pairs. Objects wider than
// maxJSONPairs are assembled from jsonb chunks and cast back to json.
type JSONBuildObject struct {
	Pairs []JSONPair
}

// SQL renders the object constructor.
func (j JSONBuildObject) SQL() string {
	if len(j.Pairs) <= maxJSONPairs {
		return buildObject("json_build_object", j.Pairs)
	}

	var chunks []string
	for start := 0; start < len(j.Pairs); start += maxJSONPairs {
		end := min(start+maxJSONPairs, len(j.Pairs))
		chunks = append(chunks, buildObject("jsonb_build_object", j.Pairs[start:end]))
	}
	return "(" + strings.Join(chunks, " || ") + ")::json"
}

func buildObject(fn string, pairs []JSONPair) string {
	args := make([]Expr, 0, len(pairs)*2)
	for _, p := range pairs {
		args = append(args, Lit(p.Key), p.Value)
	}
	return Func{Name: fn, Args: args}.SQL()
}
