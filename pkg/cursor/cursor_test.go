package cursor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdmitry/cclint/pkg/cursor"
)

type stubCursor struct {
	kind cursor.Kind
	toks []string
	kids []cursor.Cursor
}

func (s *stubCursor) Kind() cursor.Kind            { return s.kind }
func (s *stubCursor) Spelling() string             { return "" }
func (s *stubCursor) Tokens() []string              { return s.toks }
func (s *stubCursor) Location() cursor.Location    { return cursor.Location{} }
func (s *stubCursor) Children() []cursor.Cursor    { return s.kids }
func (s *stubCursor) Type() cursor.TypeInfo        { return cursor.TypeInfo{} }
func (s *stubCursor) ReferencedDecl() cursor.Cursor { return nil }
func (s *stubCursor) IsExternStorage() bool        { return false }
func (s *stubCursor) HasInitializer() bool         { return false }

func declRef() *stubCursor { return &stubCursor{kind: cursor.KindDeclRefExpr} }

func TestConstantInt(t *testing.T) {
	tests := []struct {
		name string
		toks []string
		want int64
		ok   bool
	}{
		{"simple", []string{"4"}, 4, true},
		{"negative", []string{"-", "1"}, -1, true},
		{"parenthesized", []string{"(", "2", ")"}, 2, true},
		{"non-literal", []string{"x"}, 0, false},
		{"trailing-tokens", []string{"4", "+", "1"}, 0, false},
		{"empty", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &stubCursor{toks: tt.toks}
			got, ok := cursor.ConstantInt(c)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFirstDeclRef(t *testing.T) {
	ref := declRef()
	wrapped := &stubCursor{kind: cursor.KindUnaryOperator, kids: []cursor.Cursor{ref}}
	got := cursor.FirstDeclRef(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, cursor.KindDeclRefExpr, got.Kind())

	assert.Nil(t, cursor.FirstDeclRef(&stubCursor{}))
	assert.Nil(t, cursor.FirstDeclRef(nil))
}

func TestContainsToken(t *testing.T) {
	assert.True(t, cursor.ContainsToken([]string{"a", "=", "b"}, "="))
	assert.False(t, cursor.ContainsToken([]string{"a", "b"}, "="))
}

func TestLocationOfNilUsesUnknownFile(t *testing.T) {
	loc := cursor.LocationOf(nil)
	assert.Equal(t, cursor.UnknownFile, loc.File)
}

func TestEnsureLoadedIsIdempotent(t *testing.T) {
	require.NoError(t, cursor.EnsureLoaded())
	require.NoError(t, cursor.EnsureLoaded())
}
