package php

import (
	"math"
	"testing"

	"github.com/heshanpadmasiri/phpast/phpast"

	"github.com/stretchr/testify/assert"
)

func TestParseInteger(t *testing.T) {
	tests := []struct {
		raw  string
		want phpast.Value
	}{
		{"0", phpast.Int(0)},
		{"42", phpast.Int(42)},
		{"1_000_000", phpast.Int(1000000)},
		{"0x1F", phpast.Int(31)},
		{"0XFF", phpast.Int(255)},
		{"0b101", phpast.Int(5)},
		{"017", phpast.Int(15)},
		{"0o17", phpast.Int(15)},
		{"9223372036854775807", phpast.Int(math.MaxInt64)},
		{"9223372036854775808", phpast.Float(9223372036854775808)},
		{"0xFFFFFFFFFFFFFFFF", phpast.Float(18446744073709551615)},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, parseInteger(tt.raw))
		})
	}
}

func TestUnescapeSingleQuoted(t *testing.T) {
	assert.Equal(t, `it's`, unescapeSingleQuoted(`it\'s`))
	assert.Equal(t, `a\b`, unescapeSingleQuoted(`a\\b`))
	assert.Equal(t, `a\nb`, unescapeSingleQuoted(`a\nb`))
	assert.Equal(t, `trailing\`, unescapeSingleQuoted(`trailing\`))
}

func TestUnescapeDoubleQuoted(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		quote byte
		want  string
	}{
		{"simple escapes", `a\tb\nc\\d\$e`, '"', "a\tb\nc\\d$e"},
		{"escaped quote", `say \"hi\"`, '"', `say "hi"`},
		{"other quote kept", "\\`x", '"', "\\`x"},
		{"backtick in shell", "\\`x", '`', "`x"},
		{"quote in heredoc", `\"x`, 0, `\"x`},
		{"hex", `\x41\x4a`, '"', "AJ"},
		{"short hex", `\x7g`, '"', "\x07g"},
		{"bad hex", `\xg`, '"', `\xg`},
		{"octal", `\101\0`, '"', "A\x00"},
		{"unicode", `\u{1F600}`, '"', "\U0001F600"},
		{"unicode without braces", `\u1234`, '"', `\u1234`},
		{"unknown", `\q`, '"', `\q`},
		{"trailing backslash", `a\`, '"', `a\`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unescapeDoubleQuoted(tt.raw, tt.quote))
		})
	}
}

func TestDedent(t *testing.T) {
	out, atLineStart := dedent("    a\n  b\n      c", 4, true)
	assert.Equal(t, "a\nb\n  c", out)
	assert.False(t, atLineStart)

	out, atLineStart = dedent("x\n", 2, false)
	assert.Equal(t, "x\n", out)
	assert.True(t, atLineStart)

	out, _ = dedent("  a", 0, true)
	assert.Equal(t, "  a", out)
}

func TestStripLeadingNewline(t *testing.T) {
	assert.Equal(t, "a", stripLeadingNewline("\na"))
	assert.Equal(t, "a", stripLeadingNewline("\r\na"))
	assert.Equal(t, "\na", stripLeadingNewline("\n\na"))
	assert.Equal(t, "a", stripLeadingNewline("a"))
}

func TestIsDocComment(t *testing.T) {
	assert.True(t, isDocComment("/** doc */"))
	assert.True(t, isDocComment("/**\n * doc\n */"))
	assert.False(t, isDocComment("/**/"))
	assert.False(t, isDocComment("/***/"))
	assert.False(t, isDocComment("/* plain */"))
	assert.False(t, isDocComment("// line"))
}

func TestNewName(t *testing.T) {
	tests := []struct {
		raw   string
		flags phpast.Flags
		want  string
	}{
		{"Foo", phpast.NameNotFQ, "Foo"},
		{`Foo\Bar`, phpast.NameNotFQ, `Foo\Bar`},
		{`\Foo\Bar`, phpast.NameFQ, `Foo\Bar`},
		{`namespace\Foo`, phpast.NameRelative, "Foo"},
		{`Foo \ Bar`, phpast.NameNotFQ, `Foo\Bar`},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assertTree(t, node(phpast.KindName, tt.flags, 7, phpast.String(tt.want)), newName(tt.raw, 7))
		})
	}
}
