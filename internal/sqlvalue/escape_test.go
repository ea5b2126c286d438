package sqlvalue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeString_Backslash(t *testing.T) {
	assert.Equal(t, `O\'Brien`, EscapeString(`O'Brien`))
	assert.Equal(t, `say \"hi\"`, EscapeString(`say "hi"`))
	assert.Equal(t, `C:\\temp`, EscapeString(`C:\temp`))
	assert.Equal(t, `\\\'`, EscapeString(`\'`))
	assert.Equal(t, `a\nb\0`, EscapeString("a\nb\x00"))
}

func TestEscapeString_Standard(t *testing.T) {
	assert.Equal(t, `O''Brien`, SQLite.EscapeString(`O'Brien`))
	assert.Equal(t, `C:\temp "x"`, SQLite.EscapeString(`C:\temp "x"`))
}

func TestEscapeLikeString(t *testing.T) {
	assert.Equal(t, `100\% \_done\'`, EscapeLikeString(`100% _done'`))
	assert.Equal(t, `100\% \_d\\ne''`, SQLite.EscapeLikeString(`100% _d\ne'`))

	// A backslash must survive both string and pattern unescaping.
	assert.Equal(t, `a\\\\b`, EscapeLikeString(`a\b`))
	assert.Equal(t, `a\\b`, SQLite.EscapeLikeString(`a\b`))
}

func TestEscapeIdentifier(t *testing.T) {
	assert.Equal(t, "`Name`", EscapeIdentifier("Name"))
	assert.Equal(t, "`Name`", EscapeIdentifier("`Name`"))
	assert.Equal(t, "`we``ird`", EscapeIdentifier("we`ird"))
	assert.Equal(t, "Channel.*", EscapeIdentifier("Channel.*"))
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "`chat_data`.`User_Alias`", EscapePath("chat_data", "User_Alias"))
	assert.Equal(t, "`User_Alias`", EscapePath("", "User_Alias"))
}

func TestLike(t *testing.T) {
	assert.Equal(t, "LIKE '%a%'", MySQL.Like("%a%"))
	assert.Equal(t, `LIKE '%a%' ESCAPE '\'`, SQLite.Like("%a%"))
}
