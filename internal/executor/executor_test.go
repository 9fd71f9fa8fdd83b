package executor_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relique-lang/relique/internal/dbstate"
	"github.com/relique-lang/relique/internal/direrr"
	"github.com/relique-lang/relique/internal/executor"
	"github.com/relique-lang/relique/internal/parser"
)

func requireIntegrityError(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	derr, ok := err.(*direrr.Error)
	require.True(t, ok, "expected *direrr.Error, got %T", err)
	assert.Equal(t, direrr.KindIntegrity, derr.Kind)
}

func run(t *testing.T, db *dbstate.DBState, src string) (*dbstate.DBState, executor.Result, error) {
	t.Helper()
	cmds, err := parser.Parse(src)
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	return executor.Run(cmds[0], db)
}

func mustRun(t *testing.T, db *dbstate.DBState, src string) (*dbstate.DBState, executor.Result) {
	t.Helper()
	next, res, err := run(t, db, src)
	require.NoError(t, err)
	return next, res
}

func TestAddThenEvalForFiltersById(t *testing.T) {
	db := dbstate.New()
	db, _ = mustRun(t, db, `entity P { unique id: Int, name: [Char] }`)
	db, _ = mustRun(t, db, `add P { id:(1;2;3$), name:("Ann";"Bo";"Cy"$) }`)
	_, res := mustRun(t, db,
		`eval { for(P) (p:Object(P)) -> Maybe([Char]) { if p.id == 2 then Just(p.name) else Nothing:[Char] } }`)
	assert.Contains(t, res.Output, "Bo")
	assert.NotContains(t, res.Output, "Ann")
}

func TestDeleteBlockedWhileReferenced(t *testing.T) {
	db := dbstate.New()
	db, _ = mustRun(t, db, `entity P { unique id: Int }`)
	db, _ = mustRun(t, db, `add P { id:(1$) }`)
	db, _ = mustRun(t, db, `entity Q { owner: Object(P) }`)
	db, _ = mustRun(t, db, `add Q { owner:(#(P, id, 1)$) }`)

	_, _, err := run(t, db, `delete P (p:Object(P)) -> Bool { true }`)
	requireIntegrityError(t, err)
}

func TestRestrictRejectsOutOfRangeValue(t *testing.T) {
	db := dbstate.New()
	db, _ = mustRun(t, db,
		`entity P { score: Restrict(Int, (x:Int) -> Bool { x >= 0 }) }`)
	_, _, err := run(t, db, `add P { score:(-1$) }`)
	require.Error(t, err)
}

func TestRestrictAcceptsInRangeValue(t *testing.T) {
	db := dbstate.New()
	db, _ = mustRun(t, db,
		`entity P { score: Restrict(Int, (x:Int) -> Bool { x >= 0 }) }`)
	_, res, err := run(t, db, `add P { score:(3$) }`)
	require.NoError(t, err)
	_ = res
}

func TestGenAttributeAutoIncrements(t *testing.T) {
	db := dbstate.New()
	db, _ = mustRun(t, db,
		`entity P { unique id: Int, seq: Gen(Int, (n:Int) -> Int { n * 2 }) }`)
	db, _ = mustRun(t, db, `add P { id:(10;20;30$) }`)
	_, res := mustRun(t, db, `eval { for(P) (p:Object(P)) -> Maybe(Int) { Just(p.seq) } }`)
	assert.Equal(t, "[0, 2, 4]", res.Output)
}

func TestReshapeNewBackfillsOnPopulatedEntity(t *testing.T) {
	db := dbstate.New()
	db, _ = mustRun(t, db, `entity P { unique id: Int }`)
	db, _ = mustRun(t, db, `add P { id:(5;6$) }`)
	db, _ = mustRun(t, db,
		`reshape P { new flag: Bool as (p:Object(P)) -> Bool { p.id == 5 } } as P2`)
	_, res := mustRun(t, db, `eval { for(P2) (p:Object(P2)) -> Maybe(Bool) { Just(p.flag) } }`)
	assert.Equal(t, "[true, false]", res.Output)
}

func TestReshapeNewOnEmptyEntityYieldsNoRows(t *testing.T) {
	db := dbstate.New()
	db, _ = mustRun(t, db, `entity P { unique id: Int }`)
	db, _ = mustRun(t, db,
		`reshape P { new flag: Bool as (p:Object(P)) -> Bool { true } } as P2`)
	_, res := mustRun(t, db, `eval { for(P2) (p:Object(P2)) -> Maybe(Bool) { Just(p.flag) } }`)
	assert.Equal(t, "[]", res.Output)
}

func TestCommitOpenRoundTripReproducesSameEval(t *testing.T) {
	db := dbstate.New()
	db, _ = mustRun(t, db, `entity P { unique id: Int, name: [Char] }`)
	db, _ = mustRun(t, db, `add P { id:(1;2$), name:("Ann";"Bo"$) }`)

	path := filepath.Join(t.TempDir(), "snap.db")
	db, res := mustRun(t, db, `commit "`+path+`"`)
	assert.Positive(t, res.CommitBytes)
	_, statErr := os.Stat(path)
	require.NoError(t, statErr)

	reopened, _ := mustRun(t, dbstate.New(), `open "`+path+`"`)
	_, want := mustRun(t, db, `eval { for(P) (p:Object(P)) -> Maybe([Char]) { Just(p.name) } }`)
	_, got := mustRun(t, reopened, `eval { for(P) (p:Object(P)) -> Maybe([Char]) { Just(p.name) } }`)
	assert.Equal(t, want.Output, got.Output)
}

func TestDropRejectedWhileReferenced(t *testing.T) {
	db := dbstate.New()
	db, _ = mustRun(t, db, `entity P { unique id: Int }`)
	db, _ = mustRun(t, db, `add P { id:(1$) }`)
	db, _ = mustRun(t, db, `entity Q { owner: Object(P) }`)
	db, _ = mustRun(t, db, `add Q { owner:(#(P, id, 1)$) }`)

	_, _, err := run(t, db, `drop P`)
	requireIntegrityError(t, err)
}

func TestUniqueAttributeRejectsDuplicateWithinSameAdd(t *testing.T) {
	db := dbstate.New()
	db, _ = mustRun(t, db, `entity P { unique id: Int }`)
	_, _, err := run(t, db, `add P { id:(1;1$) }`)
	requireIntegrityError(t, err)
}

func TestTransformAppliesToMatchingRowsOnly(t *testing.T) {
	db := dbstate.New()
	db, _ = mustRun(t, db, `entity P { unique id: Int, score: Int }`)
	db, _ = mustRun(t, db, `add P { id:(1;2$), score:(10;20$) }`)
	db, _ = mustRun(t, db,
		`transform P { score: (p:Object(P)) -> Int { 0 } } where (p:Object(P)) -> Bool { p.id == 1 }`)
	_, res := mustRun(t, db, `eval { for(P) (p:Object(P)) -> Maybe(Int) { Just(p.score) } }`)
	assert.Equal(t, "[0, 20]", res.Output)
}

func TestReshapeCollapseRemovesAttribute(t *testing.T) {
	db := dbstate.New()
	db, _ = mustRun(t, db, `entity P { unique id: Int, extra: Int }`)
	db, _ = mustRun(t, db, `add P { id:(1$), extra:(9$) }`)
	_, _, err := run(t, db, `reshape P { collapse extra } as P2`)
	require.NoError(t, err)
}

func TestEntityGlobalAttributeCreatedAndReadable(t *testing.T) {
	db := dbstate.New()
	db, _ = mustRun(t, db, `entity Cfg { global version as () -> Int { 7 } }`)
	_, res := mustRun(t, db, `eval { Cfg.version }`)
	assert.Equal(t, "7", res.Output)
}

func TestEntityGlobalAttributeWrongArityRejected(t *testing.T) {
	db := dbstate.New()
	_, _, err := run(t, db, `entity Cfg { global version as (x:Int) -> Int { x } }`)
	require.Error(t, err)
}

func TestReshapeNewGlobalAttributeCreatedAndReadable(t *testing.T) {
	db := dbstate.New()
	db, _ = mustRun(t, db, `entity P { unique id: Int }`)
	db, _ = mustRun(t, db, `add P { id:(1$) }`)
	db, _ = mustRun(t, db, `reshape P { new global ver as () -> Int { 3 } } as P2`)
	_, res := mustRun(t, db, `eval { P2.ver }`)
	assert.Equal(t, "3", res.Output)
}

func TestReshapeNewRestrictRejectsSynthesizedValue(t *testing.T) {
	db := dbstate.New()
	db, _ = mustRun(t, db, `entity P { unique id: Int }`)
	db, _ = mustRun(t, db, `add P { id:(-1$) }`)
	_, _, err := run(t, db,
		`reshape P { new score: Restrict(Int, (x:Int) -> Bool { x >= 0 }) as (p:Object(P)) -> Int { p.id } } as P2`)
	require.Error(t, err)
}

func TestReshapeNewUniqueRejectsDuplicateSynthesizedValues(t *testing.T) {
	db := dbstate.New()
	db, _ = mustRun(t, db, `entity P { unique id: Int }`)
	db, _ = mustRun(t, db, `add P { id:(1;2$) }`)
	_, _, err := run(t, db,
		`reshape P { new unique flag: Bool as (p:Object(P)) -> Bool { true } } as P2`)
	requireIntegrityError(t, err)
}
