package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kulikvl/ip-anonymizer/internal/anonymizer"
	"github.com/kulikvl/ip-anonymizer/internal/database/entity"
	"github.com/kulikvl/ip-anonymizer/internal/logging"
	"github.com/kulikvl/ip-anonymizer/internal/model"
	"github.com/kulikvl/ip-anonymizer/internal/scrambletest"
)

func newEngine(t *testing.T) *anonymizer.Engine {
	t.Helper()
	keyFile := filepath.Join(t.TempDir(), "processor.key")
	if err := os.WriteFile(keyFile, bytes.Repeat([]byte{3}, 32), 0o600); err != nil {
		t.Fatal(err)
	}
	e, err := anonymizer.New(&scrambletest.Scrambler{}, keyFile, anonymizer.AlgorithmBlowfish)
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestAnonymizeLogsMapsAndDrops(t *testing.T) {
	in := make(chan model.HttpLogRecord, 3)
	out := make(chan entity.HttpLogRecord, 3)
	in <- model.HttpLogRecord{RemoteAddr: "10.0.0.1", URL: "/a"}
	in <- model.HttpLogRecord{RemoteAddr: "10.0.0", URL: "/bad"}
	in <- model.HttpLogRecord{RemoteAddr: "10.0.0.2", URL: "/b"}
	close(in)

	anonymizeLogs(context.Background(), in, out, newEngine(t), logging.Discard())

	var urls []string
	for row := range out {
		if row.RemoteAddr == "10.0.0.1" || row.RemoteAddr == "10.0.0.2" {
			t.Errorf("real address stored for %s", row.URL)
		}
		urls = append(urls, row.URL)
	}
	if len(urls) != 2 || urls[0] != "/a" || urls[1] != "/b" {
		t.Errorf("rows = %v, want [/a /b]", urls)
	}
}

func TestAnonymizeLogsReturnsOnCancelWithoutReader(t *testing.T) {
	in := make(chan model.HttpLogRecord, 1)
	out := make(chan entity.HttpLogRecord)
	in <- model.HttpLogRecord{RemoteAddr: "192.168.1.1"}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		anonymizeLogs(ctx, in, out, newEngine(t), logging.Discard())
	}()

	// Nothing reads out, as after the writer has returned.
	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("anonymizeLogs blocked on send after cancel")
	}
	if _, ok := <-out; ok {
		t.Error("out not closed")
	}
}
