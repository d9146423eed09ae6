package warehouse

import "strings"

// blockedKeywords are statement kinds refused before any remote call.
// Order matters: CheckSQL reports the first keyword in this list that
// appears in the statement.
var blockedKeywords = []string{
	"DROP",
	"DELETE",
	"TRUNCATE",
	"ALTER",
	"CREATE",
	"INSERT",
	"UPDATE",
	"MERGE",
	"GRANT",
	"REVOKE",
}

// CheckSQL tests the statement against the destructive-keyword blocklist.
// Matching is case-insensitive and whole-token: an identifier such as
// DROPBOX_ID must not trip the DROP rule. Returns the matched keyword
// and true when the statement should be rejected.
func CheckSQL(sql string) (string, bool) {
	tokens := strings.Fields(strings.ToUpper(sql))
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		seen[tok] = struct{}{}
	}
	for _, kw := range blockedKeywords {
		if _, ok := seen[kw]; ok {
			return kw, true
		}
	}
	return "", false
}
