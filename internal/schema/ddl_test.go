package schema

import (
	"strings"
	"testing"
)

func TestCreateTableSQLIncludesForeignKey(t *testing.T) {
	table := TableDef{
		Name: "credentials",
		Columns: []ColumnDef{
			{Name: "user_id", Type: TypeText, PrimaryKey: true,
				References: &ForeignKey{Table: "users", Column: "id", OnDelete: OnDeleteCascade}},
			{Name: "password_hash", Type: TypeText, NotNull: true, Default: "''"},
		},
	}
	sql := createTableSQL(table)
	if !strings.Contains(sql, "FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE") {
		t.Fatalf("missing foreign key clause: %s", sql)
	}
	if !strings.Contains(sql, "PRIMARY KEY (user_id)") {
		t.Fatalf("missing primary key clause: %s", sql)
	}
}

func TestCreateTableSQLCompositePrimaryKey(t *testing.T) {
	table := TableDef{
		Name: "daily_bandwidth_usage",
		Columns: []ColumnDef{
			{Name: "user_id", Type: TypeText, PrimaryKey: true},
			{Name: "usage_date", Type: TypeText, PrimaryKey: true},
			{Name: "bytes_served", Type: TypeInteger, NotNull: true, Default: "0"},
		},
	}
	sql := createTableSQL(table)
	if !strings.Contains(sql, "PRIMARY KEY (user_id, usage_date)") {
		t.Fatalf("missing composite primary key clause: %s", sql)
	}
}

func TestAddColumnSQLDropsNotNullWithoutDefault(t *testing.T) {
	got := addColumnSQL("widgets", ColumnDef{Name: "label", Type: TypeText, NotNull: true})
	if strings.Contains(got, "NOT NULL") {
		t.Fatalf("expected NOT NULL to be dropped for a defaultless add: %s", got)
	}
}

func TestAddColumnSQLKeepsNotNullWithDefault(t *testing.T) {
	got := addColumnSQL("widgets", ColumnDef{Name: "label", Type: TypeText, NotNull: true, Default: "''"})
	if !strings.Contains(got, "NOT NULL") {
		t.Fatalf("expected NOT NULL to be kept when a default is present: %s", got)
	}
}
