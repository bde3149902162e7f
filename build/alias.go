package build

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"

	"github.com/graphql-go/graphql"
)

const maxAliasLength = 60

// SafeAlias maps a response key to the key its value is stored under in the
// generated JSON. Short aliases get an "@" prefix; long ones, and ones that
// already start with "@", are hashed so they cannot collide with a prefixed
// alias or exceed identifier limits.
func SafeAlias(alias string) string {
	if len(alias) > maxAliasLength || strings.HasPrefix(alias, "@") {
		sum := sha1.Sum([]byte(alias))
		return "@@" + hex.EncodeToString(sum[:])
	}
	return "@" + alias
}

// SafeAliasFromResolveInfo returns the safe alias of the field being resolved.
func SafeAliasFromResolveInfo(info graphql.ResolveInfo) string {
	return SafeAlias(responseKey(info))
}

func responseKey(info graphql.ResolveInfo) string {
	if len(info.FieldASTs) > 0 {
		f := info.FieldASTs[0]
		if f.Alias != nil && f.Alias.Value != "" {
			return f.Alias.Value
		}
		if f.Name != nil {
			return f.Name.Value
		}
	}
	return info.FieldName
}
