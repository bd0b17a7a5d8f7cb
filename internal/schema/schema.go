// Package schema extracts the sqlite_master rows from page 1 (spec 4.J):
// table/index/view/trigger definitions, their root pages, and their
// CREATE statements, plus a column-name heuristic for CREATE TABLE SQL.
// Grounded on original_source/src/mainfile.rs's get_tables_info/
// get_triggers and original_source/src/utils.rs's
// get_column_names_from_creation_query.
package schema

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/xwb1989/sqlparser"

	"github.com/p1tsi/sqliteforensics/internal/btree"
	"github.com/p1tsi/sqliteforensics/internal/overflow"
	"github.com/p1tsi/sqliteforensics/internal/session"
	"github.com/p1tsi/sqliteforensics/internal/sqliteerr"
)

// Record is one row of sqlite_master: a table, index, view or trigger
// definition.
type Record struct {
	Type     string // "table", "index", "view", "trigger"
	Name     string
	TblName  string
	RootPage uint32
	SQL      string
}

// Extract walks the table B-tree rooted at page 1 and returns every
// sqlite_master row found. Unlike the original implementation, which
// reads only page 1's own cells plus one level of its interior children,
// this traverses the full B-tree via internal/btree so a schema spread
// across a deeper interior tree (possible, if rare, for very large
// schemas) is not missed.
func Extract(fileBytes []byte, pageSize int, sess *session.Session, src overflow.Source) ([]Record, error) {
	cls, err := btree.Traverse(fileBytes, 1, pageSize, sess, src)
	if err != nil {
		return nil, sqliteerr.New("extract_schema", err, nil)
	}

	var records []Record
	for _, pageNum := range cls.LeafOrder {
		p := cls.Pages[pageNum]
		for _, c := range p.Cells {
			lc, err := c.AsLeaf()
			if err != nil || len(lc.Data) < 5 {
				continue
			}
			rootPage, _ := strconv.ParseUint(strings.TrimSpace(lc.Data[3]), 10, 32)
			records = append(records, Record{
				Type:     lc.Data[0],
				Name:     lc.Data[1],
				TblName:  lc.Data[2],
				RootPage: uint32(rootPage),
				SQL:      lc.Data[4],
			})
		}
	}
	return records, nil
}

// Tables filters records down to table definitions, keyed by table name.
func Tables(records []Record) map[string]Record {
	out := make(map[string]Record)
	for _, r := range records {
		if r.Type == "table" {
			out[r.Name] = r
		}
	}
	return out
}

// TableList filters records down to table definitions, preserving the
// order they were found in page 1 — used where output order should be
// stable rather than keyed by a map.
func TableList(records []Record) []Record {
	var out []Record
	for _, r := range records {
		if r.Type == "table" {
			out = append(out, r)
		}
	}
	return out
}

// Triggers filters records down to trigger CREATE statements.
func Triggers(records []Record) []string {
	var out []string
	for _, r := range records {
		if r.Type == "trigger" {
			out = append(out, r.SQL)
		}
	}
	return out
}

var (
	createTableRe = regexp.MustCompile(`(?i)^CREATE TABLE [^(]+\(([a-zA-Z0-9_ ,%()\[\]'"]*)\)`)
	castFuncRe    = regexp.MustCompile(`\(CAST\([a-zA-Z0-9, '_%()]*AS INTEGER\)\)`)
)

var constraintKeywords = []string{"CONSTRAINT", "FOREIGN", "CHECK", "UNIQUE", "PRIMARY"}

// ColumnNames extracts the ordered column names from a CREATE TABLE
// statement using the same regex heuristic as the original tool, rather
// than a full SQL grammar: this is deliberate, since sqlite_master SQL
// text for virtual tables and other edge cases does not parse as
// ordinary DDL at all. When the regex heuristic fails to match, it makes
// a best-effort secondary call into ValidateDDL to tell a genuinely
// malformed/virtual table apart from a statement the regex simply
// can't shape-match, then returns ErrMalformedCreateSQL either way with
// that diagnosis attached.
func ColumnNames(createSQL string) ([]string, error) {
	flattened := strings.NewReplacer("\n", "", "\r", "", "\t", " ").Replace(createSQL)

	match := createTableRe.FindStringSubmatch(flattened)
	if match == nil {
		ctx := map[string]interface{}{"sql": createSQL}
		if ddlErr := ValidateDDL(createSQL); ddlErr != nil {
			ctx["sqlparser_diagnosis"] = ddlErr.Error()
		} else {
			ctx["sqlparser_diagnosis"] = "parses as DDL under sqlparser; regex shape mismatch only"
		}
		return nil, sqliteerr.New("extract_columns", sqliteerr.ErrMalformedCreateSQL, ctx)
	}

	columnDefs := castFuncRe.ReplaceAllString(match[1], "")

	var columns []string
	for _, def := range strings.Split(columnDefs, ",") {
		trimmed := strings.TrimSpace(def)
		upper := strings.ToUpper(trimmed)
		stopsHere := false
		for _, kw := range constraintKeywords {
			if strings.HasPrefix(upper, kw) {
				stopsHere = true
				break
			}
		}
		if stopsHere {
			break
		}

		unquoted := strings.NewReplacer(`"`, "", "'", "").Replace(trimmed)
		fields := strings.Fields(unquoted)
		if len(fields) == 0 {
			continue
		}
		columns = append(columns, fields[0])
	}

	return columns, nil
}

// ValidateDDL runs createSQL through sqlparser as a secondary check on
// top of the regex heuristic above: ColumnNames calls it when the regex
// does not match, to attach the parser's own diagnosis to the
// ErrMalformedCreateSQL it returns. It is not called when the regex
// matches. It is never the primary column
// extraction path, since sqlparser speaks MySQL-flavored DDL and does
// not understand SQLite dialect quirks (AUTOINCREMENT placement, WITHOUT
// ROWID, STRICT) without normalization. Grounded on app/database.go's
// parseTableSchema/normalizeSQLiteToMySQL.
func ValidateDDL(createSQL string) error {
	normalized := normalizeForParser(createSQL)

	stmt, err := sqlparser.Parse(normalized)
	if err != nil {
		return sqliteerr.New("validate_create_sql", sqliteerr.ErrMalformedCreateSQL, map[string]interface{}{
			"sql":        createSQL,
			"normalized": normalized,
			"parse_err":  err.Error(),
		})
	}

	ddl, ok := stmt.(*sqlparser.DDL)
	if !ok || ddl.Action != "create" || ddl.TableSpec == nil {
		return sqliteerr.New("validate_create_sql", sqliteerr.ErrMalformedCreateSQL, map[string]interface{}{
			"sql": createSQL,
		})
	}
	return nil
}

func normalizeForParser(sql string) string {
	normalized := strings.ReplaceAll(sql, `"`, "")
	normalized = strings.ReplaceAll(normalized, "primary key autoincrement", "AUTO_INCREMENT PRIMARY KEY")
	normalized = strings.ReplaceAll(normalized, "PRIMARY KEY AUTOINCREMENT", "AUTO_INCREMENT PRIMARY KEY")
	normalized = strings.ReplaceAll(normalized, "WITHOUT ROWID", "")
	normalized = strings.ReplaceAll(normalized, "without rowid", "")
	normalized = strings.ReplaceAll(normalized, "STRICT", "")
	return strings.TrimSpace(normalized)
}
