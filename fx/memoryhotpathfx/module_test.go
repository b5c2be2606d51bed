package memoryhotpathfx

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap/zaptest"

	"github.com/discochess/hotpath"
	"github.com/discochess/hotpath/internal/source/memsource"
	"github.com/discochess/hotpath/internal/words"
)

func TestModule(t *testing.T) {
	var (
		client *hotpath.Client
		src    *memsource.Source
	)

	app := fxtest.New(t,
		fx.Supply(zaptest.NewLogger(t)),
		Module,
		fx.Populate(&client, &src),
	)
	app.RequireStart()

	src.Set("cat", "dog")

	ok, err := client.Exists(context.Background(), "dog")
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if !ok {
		t.Error("Exists(dog) = false, want true")
	}
	if got := client.Snapshot().FileReads; got != 1 {
		t.Errorf("FileReads = %d, want 1", got)
	}

	app.RequireStop()

	if _, err := client.Exists(context.Background(), "dog"); !errors.Is(err, hotpath.ErrClosed) {
		t.Errorf("Exists() after stop error = %v, want ErrClosed", err)
	}
}

func TestModule_CachedWithWords(t *testing.T) {
	var client *hotpath.Client

	app := fxtest.New(t,
		fx.Supply(zaptest.NewLogger(t), hotpath.ModeCached),
		fx.Supply(fx.Annotated{Name: "words", Target: []string{"apple", "banana"}}),
		Module,
		fx.Populate(&client),
	)
	app.RequireStart()
	defer app.RequireStop()

	if got := client.Strategy().Name(); got != "cached" {
		t.Errorf("strategy = %q, want cached", got)
	}
	ok, err := client.Exists(context.Background(), "banana")
	if err != nil || !ok {
		t.Errorf("Exists(banana) = %v, %v; want true", ok, err)
	}
	rep := client.Snapshot()
	if rep.FileReads != 0 {
		t.Errorf("FileReads = %d, want 0", rep.FileReads)
	}
	if m, ok := rep.Method(words.MethodLoadDictionary); !ok || m.Calls != 1 {
		t.Errorf("Method(%q) = %+v, %v; want 1 call", words.MethodLoadDictionary, m, ok)
	}
	if rep.DictionaryWords != 2 {
		t.Errorf("DictionaryWords = %d, want 2", rep.DictionaryWords)
	}
}
