package testutil

import (
	"testing"

	"github.com/sebdah/goldie/v2"
)

// AssertGoldenSQL compares generated SQL against testdata/golden/<name>.golden.
//
// Run the test with -update to rewrite the fixture.
func AssertGoldenSQL(t *testing.T, name, sql string) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, []byte(sql+"\n"))
}
