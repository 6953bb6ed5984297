package config_test

import (
	"fmt"
	"log"
	"testing"

	"github.com/kdmitry/cclint/internal/config"
	"github.com/stretchr/testify/require"
)

func ExampleEnabled_Set() {
	var e config.Enabled

	if err := e.Set("true"); err != nil {
		log.Fatal(err)
	}

	fmt.Println(e.String())
	// Output: true
}

func ExampleEnabled_Set_falseSpellings() {
	var e config.Enabled
	_ = e.Set("true")

	if err := e.Set(""); err != nil {
		log.Fatal(err)
	}

	fmt.Println(e.String())
	// Output: false
}

func TestEnabled_SetInvalid(t *testing.T) {
	var e config.Enabled

	cases := []string{"yes", "no", "enabled", "2"}
	for _, c := range cases {
		err := e.Set(c)
		require.Error(t, err, "invalid value %q produces no error", c)
	}
}

func ExampleCompileArgs_Set() {
	var a config.CompileArgs

	_ = a.Set("-Iinclude")
	_ = a.Set("-DDEBUG")

	fmt.Println(a.String())
	// Output: -Iinclude -DDEBUG
}

func TestCompileArgs_SetValue(t *testing.T) {
	var a config.CompileArgs

	err := a.SetValue("-Iinclude -DDEBUG")
	require.NoError(t, err)
	require.Equal(t, config.CompileArgs{"-Iinclude", "-DDEBUG"}, a)
}

func TestCompileArgs_SetValueEmptyIsNoop(t *testing.T) {
	var a config.CompileArgs

	err := a.SetValue("")
	require.NoError(t, err)
	require.Nil(t, a)
}

func TestMustLoad_SourcesFromArgs(t *testing.T) {
	cfg := config.MustLoad([]string{"--stop-on-error", "true", "a.c", "b.c"})

	require.Equal(t, []string{"a.c", "b.c"}, cfg.Sources)
	require.True(t, bool(cfg.StopOnError))
	require.True(t, bool(cfg.EnableSuggestions), "suggestions default to enabled")
}

func TestNewForTest(t *testing.T) {
	cfg := config.NewForTest("a.c", "b.c")

	require.Equal(t, []string{"a.c", "b.c"}, cfg.Sources)
	require.True(t, bool(cfg.EnableSuggestions))
	require.Equal(t, "debug", cfg.Logger.Level)
}
