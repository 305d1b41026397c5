package sqldb

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/txn2/mcp-sqlcontext/pkg/query"
	"github.com/txn2/mcp-sqlcontext/pkg/schema"
)

// fakeClient serves the information-schema query from schemaRows and
// every other statement from results, recording what was issued.
type fakeClient struct {
	schemaRows [][]any
	results    map[string]*query.Result
	queryErr   error
	issued     []string
}

func (f *fakeClient) Query(_ context.Context, sql string, _ ...any) (*query.Result, error) {
	f.issued = append(f.issued, sql)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if strings.HasPrefix(sql, "SELECT TABLE_NAME") {
		return &query.Result{
			Columns: []string{"TABLE_NAME", "COLUMN_NAME", "DATA_TYPE", "IS_NULLABLE"},
			Rows:    f.schemaRows,
		}, nil
	}
	if r, ok := f.results[sql]; ok {
		return r, nil
	}
	return &query.Result{}, nil
}

func (f *fakeClient) Schema() string { return "test" }
func (f *fakeClient) Close() error   { return nil }

var _ query.Client = (*fakeClient)(nil)

// sampleQueries returns the non-schema statements the client saw.
func (f *fakeClient) sampleQueries() []string {
	var out []string
	for _, sql := range f.issued {
		if !strings.HasPrefix(sql, "SELECT TABLE_NAME") {
			out = append(out, sql)
		}
	}
	return out
}

func twoTableClient() *fakeClient {
	return &fakeClient{schemaRows: [][]any{
		{"orders", "id", "bigint", "NO"},
		{"users", "id", "bigint", "NO"},
		{"users", "email", "varchar", "YES"},
	}}
}

func TestNew_BothListsIsConfigError(t *testing.T) {
	_, err := New(Config{
		Client:        &fakeClient{},
		IncludeTables: []string{"a"},
		IgnoreTables:  []string{"b"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestNew_RequiresClient(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestNew_DefaultSampleRows(t *testing.T) {
	db, err := New(Config{Client: &fakeClient{}})
	require.NoError(t, err)
	assert.Equal(t, defaultSampleRows, db.cfg.SampleRows)
}

func TestTableInfo_UnloadedIsEmpty(t *testing.T) {
	client := twoTableClient()
	db, err := New(Config{Client: client})
	require.NoError(t, err)
	assert.False(t, db.Loaded())

	info, err := db.TableInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "", info)
	assert.Empty(t, client.issued, "unloaded facade issues no queries")
}

func TestOpen_LoadsTables(t *testing.T) {
	db, err := Open(context.Background(), Config{Client: twoTableClient()})
	require.NoError(t, err)
	assert.True(t, db.Loaded())
	assert.Equal(t, []string{"orders", "users"}, schema.Names(db.Tables()))
}

func TestOpen_UnknownIncludeTableFails(t *testing.T) {
	client := twoTableClient()
	_, err := Open(context.Background(), Config{
		Client:        client,
		IncludeTables: []string{"orders", "missing"},
	})
	require.Error(t, err)

	var unknown *schema.UnknownTableError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "missing", unknown.Table)
	assert.Equal(t, schema.IntentInclude, unknown.Intent)
	assert.Empty(t, client.sampleQueries(), "no sample query after failed validation")
}

func TestOpen_UnknownIgnoreTableFails(t *testing.T) {
	_, err := Open(context.Background(), Config{
		Client:       twoTableClient(),
		IgnoreTables: []string{"missing"},
	})
	require.Error(t, err)

	var unknown *schema.UnknownTableError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, schema.IntentIgnore, unknown.Intent)
}

func TestOpen_SchemaLoadErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	_, err := Open(context.Background(), Config{Client: &fakeClient{queryErr: boom}})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestTableInfo_UnknownTargetFailsBeforeSampleQueries(t *testing.T) {
	client := twoTableClient()
	db, err := Open(context.Background(), Config{Client: client})
	require.NoError(t, err)

	_, err = db.TableInfo(context.Background(), "users", "missing")
	require.Error(t, err)

	var unknown *schema.UnknownTableError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, schema.IntentTarget, unknown.Intent)
	assert.Empty(t, client.sampleQueries(), "validation failure precedes sample queries")
}

func TestTableInfo_TargetsOverrideIncludeList(t *testing.T) {
	client := twoTableClient()
	db, err := Open(context.Background(), Config{
		Client:        client,
		IncludeTables: []string{"orders"},
		SampleRows:    -1,
	})
	require.NoError(t, err)

	// users is outside the include list but valid as an explicit target.
	info, err := db.TableInfo(context.Background(), "users")
	require.NoError(t, err)
	assert.Contains(t, info, "CREATE TABLE users")
	assert.NotContains(t, info, "CREATE TABLE orders")
}

func TestTableInfo_IncludeListApplies(t *testing.T) {
	db, err := Open(context.Background(), Config{
		Client:        twoTableClient(),
		IncludeTables: []string{"orders"},
		SampleRows:    -1,
	})
	require.NoError(t, err)

	info, err := db.TableInfo(context.Background())
	require.NoError(t, err)
	assert.Contains(t, info, "CREATE TABLE orders")
	assert.NotContains(t, info, "CREATE TABLE users")
}

func TestTableInfo_IgnoreListApplies(t *testing.T) {
	db, err := Open(context.Background(), Config{
		Client:       twoTableClient(),
		IgnoreTables: []string{"orders"},
		SampleRows:   -1,
	})
	require.NoError(t, err)

	info, err := db.TableInfo(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, info, "CREATE TABLE orders")
	assert.Contains(t, info, "CREATE TABLE users")
}

func TestTableInfo_SampleQueriesSequentialInOrder(t *testing.T) {
	client := twoTableClient()
	db, err := Open(context.Background(), Config{Client: client, SampleRows: 2})
	require.NoError(t, err)

	_, err = db.TableInfo(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"SELECT * FROM orders LIMIT 2",
		"SELECT * FROM users LIMIT 2",
	}, client.sampleQueries())
}

func TestRun_FetchAll(t *testing.T) {
	client := twoTableClient()
	client.results = map[string]*query.Result{
		"SELECT a FROM t": {
			Columns: []string{"a"},
			Rows:    [][]any{{1}, {2}},
		},
	}
	db, err := Open(context.Background(), Config{Client: client})
	require.NoError(t, err)

	out, err := db.Run(context.Background(), "SELECT a FROM t", query.FetchAll)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"a":1},{"a":2}]`, out)
}

func TestRun_EmptyFetchModeMeansAll(t *testing.T) {
	db, err := Open(context.Background(), Config{Client: twoTableClient()})
	require.NoError(t, err)

	out, err := db.Run(context.Background(), "SELECT 1", "")
	require.NoError(t, err)
	assert.Equal(t, "[]", out)
}

func TestRun_FetchOne(t *testing.T) {
	client := twoTableClient()
	client.results = map[string]*query.Result{
		"SELECT a FROM t": {
			Columns: []string{"a"},
			Rows:    [][]any{{1}, {2}},
		},
	}
	db, err := Open(context.Background(), Config{Client: client})
	require.NoError(t, err)

	out, err := db.Run(context.Background(), "SELECT a FROM t", query.FetchOne)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, out)
}

func TestRun_FetchOneEmptyResult(t *testing.T) {
	db, err := Open(context.Background(), Config{Client: twoTableClient()})
	require.NoError(t, err)

	out, err := db.Run(context.Background(), "SELECT a FROM empty_t", query.FetchOne)
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestRun_UnknownFetchMode(t *testing.T) {
	db, err := Open(context.Background(), Config{Client: twoTableClient()})
	require.NoError(t, err)

	_, err = db.Run(context.Background(), "SELECT 1", "many")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch mode")
}

func TestRun_QueryErrorPropagates(t *testing.T) {
	client := twoTableClient()
	db, err := Open(context.Background(), Config{Client: client})
	require.NoError(t, err)

	boom := errors.New("syntax error")
	client.queryErr = boom

	_, err = db.Run(context.Background(), "SELEC", query.FetchAll)
	assert.ErrorIs(t, err, boom)
}
