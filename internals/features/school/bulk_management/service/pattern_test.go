// file: internals/features/school/bulk_management/service/pattern_test.go
package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslatePatternWildcard(t *testing.T) {
	re, err := TranslatePattern("CSE2021*")
	require.NoError(t, err)

	assert.True(t, re.MatchString("CSE2021001"))
	assert.True(t, re.MatchString("CSE2021"))
	assert.False(t, re.MatchString("CSE2022001"))
	assert.False(t, re.MatchString("XCSE2021001"), "pola harus di-anchor di awal")
}

func TestTranslatePatternDotIsLiteral(t *testing.T) {
	re, err := TranslatePattern("CSE.2021*")
	require.NoError(t, err)

	assert.True(t, re.MatchString("CSE.2021001"))
	assert.False(t, re.MatchString("CSEX2021001"), "'.' bukan metacharacter")
}

func TestTranslatePatternCaseInsensitive(t *testing.T) {
	re, err := TranslatePattern("cse2021*")
	require.NoError(t, err)
	assert.True(t, re.MatchString("CSE2021001"))
}

func TestTranslatePatternMatchAll(t *testing.T) {
	re, err := TranslatePattern("*")
	require.NoError(t, err)
	assert.True(t, re.MatchString("apapun"))
	assert.True(t, re.MatchString(""))
}

func TestTranslatePatternNoWildcardIsExact(t *testing.T) {
	re, err := TranslatePattern("CSE2021001")
	require.NoError(t, err)
	assert.True(t, re.MatchString("CSE2021001"))
	assert.False(t, re.MatchString("CSE20210011"), "tanpa '*' harus exact match")
}

func TestTranslatePatternMultipleWildcards(t *testing.T) {
	re, err := TranslatePattern("CSE*01*")
	require.NoError(t, err)
	assert.True(t, re.MatchString("CSE2021015"))
	assert.False(t, re.MatchString("EE2021015"))
}
