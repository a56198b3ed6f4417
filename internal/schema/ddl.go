package schema

import (
	"fmt"
	"strings"
)

// createTableSQL renders a full CREATE TABLE IF NOT EXISTS statement for t.
func createTableSQL(t TableDef) string {
	var cols []string
	var pk []string
	for _, c := range t.Columns {
		cols = append(cols, columnSQL(c))
		if c.PrimaryKey && !c.AutoIncr {
			pk = append(pk, c.Name)
		}
	}
	// table-level primary key clause; a single AutoIncr PK is declared
	// inline in columnSQL instead, since SQLite requires that form to
	// actually get rowid-aliasing behavior.
	if len(pk) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pk, ", ")))
	}
	for _, c := range t.Columns {
		if c.References != nil {
			cols = append(cols, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s(%s) ON DELETE %s",
				c.Name, c.References.Table, c.References.Column, c.References.OnDelete))
		}
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", t.Name, strings.Join(cols, ",\n\t"))
}

func columnSQL(c ColumnDef) string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte(' ')
	b.WriteString(string(c.Type))
	if c.PrimaryKey && c.AutoIncr {
		b.WriteString(" PRIMARY KEY AUTOINCREMENT")
	}
	if c.NotNull {
		b.WriteString(" NOT NULL")
	}
	if c.Default != "" {
		b.WriteString(" DEFAULT ")
		b.WriteString(c.Default)
	}
	if c.Unique && !c.PrimaryKey {
		b.WriteString(" UNIQUE")
	}
	return b.String()
}

// addColumnSQL renders an ALTER TABLE ... ADD COLUMN statement for a column
// missing from an existing table. SQLite forbids adding a NOT NULL column
// without a default on a non-empty table, so a column added this way must
// always carry one.
func addColumnSQL(table string, c ColumnDef) string {
	def := columnSQL(c)
	if c.NotNull && c.Default == "" {
		// non-destructive add: drop the NOT NULL rather than fail outright.
		def = strings.Replace(def, " NOT NULL", "", 1)
	}
	return fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, def)
}

func createIndexSQL(table string, idx IndexDef) string {
	unique := ""
	if idx.Unique {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX IF NOT EXISTS %s ON %s (%s)",
		unique, idx.Name, table, strings.Join(idx.Columns, ", "))
}
