package warehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheckSQL(t *testing.T) {
	tests := []struct {
		name    string
		sql     string
		keyword string
		blocked bool
	}{
		{
			name: "plain select",
			sql:  "SELECT * FROM main.default.trips",
		},
		{
			name:    "drop table",
			sql:     "DROP TABLE main.default.trips",
			keyword: "DROP",
			blocked: true,
		},
		{
			name:    "lowercase delete",
			sql:     "delete from t where id = 1",
			keyword: "DELETE",
			blocked: true,
		},
		{
			name:    "mixed case insert",
			sql:     "Insert Into t Values (1)",
			keyword: "INSERT",
			blocked: true,
		},
		{
			name: "keyword as identifier substring",
			sql:  "SELECT DROPBOX_ID, UPDATED_AT FROM accounts",
		},
		{
			name: "keyword inside column name",
			sql:  "SELECT created_by FROM events",
		},
		{
			name:    "first keyword in list order wins",
			sql:     "DELETE FROM t; DROP TABLE t",
			keyword: "DROP",
			blocked: true,
		},
		{
			name:    "grant",
			sql:     "GRANT SELECT ON TABLE t TO `user`",
			keyword: "GRANT",
			blocked: true,
		},
		{
			name: "empty statement",
			sql:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kw, blocked := CheckSQL(tt.sql)
			assert.Equal(t, tt.blocked, blocked)
			assert.Equal(t, tt.keyword, kw)
		})
	}
}
